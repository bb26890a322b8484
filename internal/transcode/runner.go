package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Runner executes an external command and returns its stdout. Implementations
// must fold stderr into the returned error so failures carry the tool's own
// diagnostics.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// execRunner runs commands through os/exec.
type execRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s timed out: %w", filepath.Base(binary), ctx.Err())
		}
		if line := lastLine(stderr.String()); line != "" {
			return nil, fmt.Errorf("%s: %w: %s", filepath.Base(binary), err, line)
		}
		return nil, fmt.Errorf("%s: %w", filepath.Base(binary), err)
	}

	return stdout.Bytes(), nil
}

// lastLine returns the final non-empty line of s.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
