package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"herovid/internal/config"
	"herovid/internal/mediafmt"
	"herovid/internal/slot"
)

// validateCmd checks the slot manifest against the transcoded artifacts.
var validateCmd = &cobra.Command{
	Use:   "validate [manifest]",
	Short: "Validate the slot manifest against transcoded artifacts",
	Long: `Load the slot manifest and verify that every source identifier it
references has all four delivery artifacts in the output directory.
Run this after a transcode batch to catch slots that would fail to
resolve at runtime.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}

	manifestPath := cfg.Content.SlotManifest
	if len(args) == 1 {
		manifestPath = args[0]
	}

	registry, err := slot.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	suffixes := []string{
		mediafmt.SuffixAVC,
		mediafmt.SuffixHEVC,
		mediafmt.SuffixVP9,
		mediafmt.PosterSuffix,
	}

	out := cmd.OutOrStdout()
	missing := 0
	for _, sl := range registry.Slots() {
		bases := []string{sl.Source()}
		if sl.Mobile() != "" {
			bases = append(bases, sl.Mobile())
		}
		for _, base := range bases {
			for _, suffix := range suffixes {
				artifact := base + suffix
				if _, err := os.Stat(filepath.Join(cfg.Transcode.OutputDir, artifact)); err != nil {
					fmt.Fprintf(out, "slot %d: missing %s\n", sl.Index(), artifact)
					missing++
				}
			}
		}
	}

	if missing > 0 {
		return fmt.Errorf("%d artifacts missing for %d slots", missing, registry.Len())
	}
	fmt.Fprintf(out, "%d slots validated, all artifacts present\n", registry.Len())
	return nil
}
