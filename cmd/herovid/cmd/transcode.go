package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"herovid/internal/config"
	"herovid/internal/transcode"
	"herovid/internal/util"
)

// transcodeCmd produces the delivery variants for one or more source videos.
var transcodeCmd = &cobra.Command{
	Use:   "transcode <source>...",
	Short: "Produce delivery variants for source videos",
	Long: `Transcode each source video into the four delivery artifacts the site
serves: an AVC MP4, an HEVC MP4 (hvc1 tag), a VP9 WebM, and a WebP
poster frame. Artifacts that already exist in the output directory are
skipped, so re-running after adding sources only encodes what is new.

A failing source or artifact is reported and the batch continues.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranscode,
}

func init() {
	flags := transcodeCmd.Flags()
	flags.String("output-dir", "public/media", "directory artifacts are written to")
	flags.String("preset", "slow", "x264/x265 encoder preset")
	flags.Int("max-width", 0, "cap output width in pixels (0 keeps source width)")

	mustBindPFlag("transcode.output_dir", flags.Lookup("output-dir"))
	mustBindPFlag("transcode.preset", flags.Lookup("preset"))
	mustBindPFlag("transcode.max_width", flags.Lookup("max-width"))

	rootCmd.AddCommand(transcodeCmd)
}

func runTranscode(cmd *cobra.Command, args []string) error {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ffmpegPath := cfg.FFmpeg.BinaryPath
	if ffmpegPath == "" {
		var err error
		ffmpegPath, err = util.FindBinary("ffmpeg", "HEROVID_FFMPEG_BINARY")
		if err != nil {
			return err
		}
	}
	ffprobePath := cfg.FFmpeg.ProbePath
	if ffprobePath == "" {
		var err error
		ffprobePath, err = util.FindBinary("ffprobe", "HEROVID_FFPROBE_BINARY")
		if err != nil {
			return err
		}
	}

	slog.Info("starting transcode batch",
		"sources", len(args),
		"output_dir", cfg.Transcode.OutputDir,
		"ffmpeg", ffmpegPath)

	prober := transcode.NewProber(ffprobePath, cfg.FFmpeg.ProbeTimeout, nil)
	pipeline := transcode.NewPipeline(ffmpegPath, prober, transcode.Options{
		OutputDir:     cfg.Transcode.OutputDir,
		Preset:        cfg.Transcode.Preset,
		H264CRF:       cfg.Transcode.H264CRF,
		H265CRF:       cfg.Transcode.H265CRF,
		VP9CRF:        cfg.Transcode.VP9CRF,
		PosterQuality: cfg.Transcode.PosterQuality,
		MaxWidth:      cfg.Transcode.MaxWidth,
		Timeout:       cfg.Transcode.Timeout,
	})

	results, err := pipeline.Run(cmd.Context(), args)
	if err != nil {
		return err
	}

	printResults(cmd.OutOrStdout(), results)

	ok, skipped, failed := transcode.Summarize(results)
	fmt.Fprintf(cmd.OutOrStdout(), "%d ok, %d skipped, %d failed\n", ok, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d artifacts failed", failed)
	}
	return nil
}
