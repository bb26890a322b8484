package transcode

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// SourceInfo describes the properties of a source video the pipeline cares
// about: the frame geometry that drives scaling decisions and the duration
// reported alongside results.
type SourceInfo struct {
	Width    int
	Height   int
	Codec    string
	Duration time.Duration
}

// probeResult mirrors the subset of ffprobe's JSON output the prober reads.
type probeResult struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Prober reads source video properties via ffprobe.
type Prober struct {
	binary  string
	timeout time.Duration
	runner  Runner
}

// NewProber creates a prober using the given ffprobe binary. A nil runner
// falls back to os/exec.
func NewProber(binary string, timeout time.Duration, runner Runner) *Prober {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if runner == nil {
		runner = NewExecRunner()
	}
	return &Prober{binary: binary, timeout: timeout, runner: runner}
}

// Probe returns the first video stream's geometry and codec plus the
// container duration. Files without a video stream are an error.
func (p *Prober) Probe(ctx context.Context, path string) (*SourceInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}

	output, err := p.runner.Run(ctx, p.binary, args)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", path, err)
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output for %s: %w", path, err)
	}

	info := &SourceInfo{}
	for _, stream := range result.Streams {
		if stream.CodecType == "video" {
			info.Width = stream.Width
			info.Height = stream.Height
			info.Codec = stream.CodecName
			break
		}
	}
	if info.Width == 0 || info.Height == 0 {
		return nil, fmt.Errorf("no video stream in %s", path)
	}

	if result.Format.Duration != "" {
		if secs, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil {
			info.Duration = time.Duration(secs * float64(time.Second))
		}
	}

	return info, nil
}
