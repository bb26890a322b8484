package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"herovid/internal/transcode"
)

// printResults writes the per-artifact outcome, as a table when stdout is a
// terminal and as plain lines otherwise so output stays grep-friendly in
// scripts and CI logs.
func printResults(w io.Writer, results []transcode.Result) {
	if !isTerminal(w) {
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Status, r.Input, r.Artifact, resultDetail(r))
		}
		return
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Input", "Artifact", "Status", "Detail"})
	for _, r := range results {
		tw.AppendRow(table.Row{r.Input, r.Artifact, r.Status, resultDetail(r)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	fmt.Fprintln(w, tw.Render())
}

func resultDetail(r transcode.Result) string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case r.PosterWidth > 0:
		return strconv.Itoa(r.PosterWidth) + "px"
	default:
		return ""
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
