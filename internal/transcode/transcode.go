// Package transcode implements the offline batch pipeline that prepares the
// delivery variants for each source video: an AVC and an HEVC MP4, a VP9
// WebM, and a WebP poster frame. Artifact names follow the suffix scheme the
// runtime format selector resolves against.
package transcode

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/webp"

	"herovid/internal/mediafmt"
)

// Status classifies the outcome of a single artifact.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result reports the outcome for one artifact of one input.
type Result struct {
	Input    string
	Artifact string
	Status   Status
	// PosterWidth is the decoded width of a verified poster, zero otherwise.
	PosterWidth int
	Err         error
}

// Kind identifies an artifact variant.
type Kind int

const (
	KindAVC Kind = iota
	KindHEVC
	KindVP9
	KindPoster
)

// Suffix returns the filename suffix appended to the source's base name.
func (k Kind) Suffix() string {
	switch k {
	case KindAVC:
		return mediafmt.SuffixAVC
	case KindHEVC:
		return mediafmt.SuffixHEVC
	case KindVP9:
		return mediafmt.SuffixVP9
	case KindPoster:
		return mediafmt.PosterSuffix
	default:
		return ""
	}
}

// kinds is the production order for each input.
var kinds = []Kind{KindAVC, KindHEVC, KindVP9, KindPoster}

// Options tunes the encode settings.
type Options struct {
	OutputDir     string
	Preset        string // x264/x265 preset
	H264CRF       int
	H265CRF       int
	VP9CRF        int
	PosterQuality int // libwebp quality, 1-100
	// MaxWidth caps output width; 0 keeps the source width.
	MaxWidth int
	// Timeout bounds a single artifact encode.
	Timeout time.Duration

	Runner Runner
	Logger *slog.Logger
}

func (o *Options) fillDefaults() {
	if o.Preset == "" {
		o.Preset = "slow"
	}
	if o.H264CRF == 0 {
		o.H264CRF = 23
	}
	if o.H265CRF == 0 {
		o.H265CRF = 26
	}
	if o.VP9CRF == 0 {
		o.VP9CRF = 33
	}
	if o.PosterQuality == 0 {
		o.PosterQuality = 80
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Minute
	}
	if o.Runner == nil {
		o.Runner = NewExecRunner()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Pipeline produces the delivery artifacts for a batch of source videos.
type Pipeline struct {
	ffmpeg string
	prober *Prober
	opts   Options
	logger *slog.Logger
}

// NewPipeline creates a pipeline using the given ffmpeg binary and prober.
func NewPipeline(ffmpegPath string, prober *Prober, opts Options) *Pipeline {
	opts.fillDefaults()
	return &Pipeline{
		ffmpeg: ffmpegPath,
		prober: prober,
		opts:   opts,
		logger: opts.Logger.With("component", "transcode"),
	}
}

// Run processes every input and returns one result per artifact. A failing
// input or artifact is recorded and the batch moves on; Run only returns an
// error when the output directory cannot be created.
func (p *Pipeline) Run(ctx context.Context, inputs []string) ([]Result, error) {
	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var results []Result
	for _, input := range inputs {
		results = append(results, p.processInput(ctx, input)...)
	}
	return results, nil
}

func (p *Pipeline) processInput(ctx context.Context, input string) []Result {
	src, err := p.prober.Probe(ctx, input)
	if err != nil {
		p.logger.Error("probe failed", "input", input, "error", err)
		return []Result{{Input: input, Artifact: "probe", Status: StatusFailed, Err: err}}
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	p.logger.Info("processing source",
		"input", input,
		"width", src.Width,
		"height", src.Height,
		"codec", src.Codec,
		"duration", src.Duration)

	results := make([]Result, 0, len(kinds))
	for _, kind := range kinds {
		results = append(results, p.produce(ctx, input, base, kind, src))
	}
	return results
}

func (p *Pipeline) produce(ctx context.Context, input, base string, kind Kind, src *SourceInfo) Result {
	target := filepath.Join(p.opts.OutputDir, base+kind.Suffix())
	res := Result{Input: input, Artifact: filepath.Base(target)}

	if _, err := os.Stat(target); err == nil {
		p.logger.Debug("artifact exists, skipping", "artifact", res.Artifact)
		res.Status = StatusSkipped
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	args := p.encodeArgs(input, target, kind, src)
	if _, err := p.opts.Runner.Run(ctx, p.ffmpeg, args); err != nil {
		p.logger.Error("encode failed", "artifact", res.Artifact, "error", err)
		_ = os.Remove(target)
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	if kind == KindPoster {
		width, err := verifyPoster(target)
		if err != nil {
			p.logger.Error("poster verification failed", "artifact", res.Artifact, "error", err)
			_ = os.Remove(target)
			res.Status = StatusFailed
			res.Err = err
			return res
		}
		res.PosterWidth = width
	}

	p.logger.Info("artifact written", "artifact", res.Artifact)
	res.Status = StatusOK
	return res
}

// encodeArgs builds the ffmpeg argument list for one artifact. All video
// variants are muted; the slots loop silently.
func (p *Pipeline) encodeArgs(input, target string, kind Kind, src *SourceInfo) []string {
	args := []string{
		"-loglevel", "error",
		"-hide_banner",
		"-y",
		"-i", input,
	}

	if p.opts.MaxWidth > 0 && src.Width > p.opts.MaxWidth {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:-2", p.opts.MaxWidth))
	}

	switch kind {
	case KindAVC:
		args = append(args,
			"-c:v", "libx264",
			"-preset", p.opts.Preset,
			"-crf", strconv.Itoa(p.opts.H264CRF),
			"-pix_fmt", "yuv420p",
			"-movflags", "+faststart",
			"-an",
		)
	case KindHEVC:
		args = append(args,
			"-c:v", "libx265",
			"-preset", p.opts.Preset,
			"-crf", strconv.Itoa(p.opts.H265CRF),
			"-tag:v", "hvc1",
			"-pix_fmt", "yuv420p",
			"-movflags", "+faststart",
			"-an",
		)
	case KindVP9:
		args = append(args,
			"-c:v", "libvpx-vp9",
			"-crf", strconv.Itoa(p.opts.VP9CRF),
			"-b:v", "0",
			"-row-mt", "1",
			"-an",
		)
	case KindPoster:
		args = append(args,
			"-frames:v", "1",
			"-c:v", "libwebp",
			"-quality", strconv.Itoa(p.opts.PosterQuality),
			"-an",
		)
	}

	return append(args, target)
}

// verifyPoster confirms the written poster decodes as WebP and returns its
// pixel width.
func verifyPoster(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cfg, err := webp.DecodeConfig(f)
	if err != nil {
		return 0, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return cfg.Width, nil
}

// Summarize counts results by status.
func Summarize(results []Result) (ok, skipped, failed int) {
	for _, r := range results {
		switch r.Status {
		case StatusOK:
			ok++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return ok, skipped, failed
}
