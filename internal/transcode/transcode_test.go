package transcode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalWebP returns the smallest lossless WebP header that decodes as a
// 1x1 image.
func minimalWebP() []byte {
	return []byte{
		'R', 'I', 'F', 'F', 18, 0, 0, 0,
		'W', 'E', 'B', 'P',
		'V', 'P', '8', 'L', 5, 0, 0, 0,
		0x2f, 0, 0, 0, 0, 0,
	}
}

// fakeRunner answers ffprobe calls with canned JSON and simulates ffmpeg by
// writing the target file.
type fakeRunner struct {
	calls       [][]string
	probeJSON   map[string]string
	probeErr    map[string]error
	failSuffix  string
	posterBytes []byte
}

func (r *fakeRunner) Run(_ context.Context, binary string, args []string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{binary}, args...))

	if binary == "ffprobe" {
		input := args[len(args)-1]
		if err := r.probeErr[input]; err != nil {
			return nil, err
		}
		if out, ok := r.probeJSON[input]; ok {
			return []byte(out), nil
		}
		return []byte(sampleProbeJSON), nil
	}

	target := args[len(args)-1]
	if r.failSuffix != "" && strings.HasSuffix(target, r.failSuffix) {
		return nil, errors.New("encoder exit status 1")
	}

	data := []byte("encoded")
	if strings.HasSuffix(target, "-poster.webp") {
		data = r.posterBytes
		if data == nil {
			data = minimalWebP()
		}
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return nil, err
	}
	return nil, nil
}

// encodeTargets returns the final argument of every ffmpeg invocation.
func (r *fakeRunner) encodeTargets() []string {
	var targets []string
	for _, call := range r.calls {
		if call[0] == "ffmpeg" {
			targets = append(targets, filepath.Base(call[len(call)-1]))
		}
	}
	return targets
}

func newTestPipeline(t *testing.T, runner *fakeRunner, opts Options) *Pipeline {
	t.Helper()
	if opts.OutputDir == "" {
		opts.OutputDir = t.TempDir()
	}
	opts.Runner = runner
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	opts.Timeout = time.Minute
	prober := NewProber("ffprobe", 10*time.Second, runner)
	return NewPipeline("ffmpeg", prober, opts)
}

func resultFor(t *testing.T, results []Result, artifact string) Result {
	t.Helper()
	for _, r := range results {
		if r.Artifact == artifact {
			return r
		}
	}
	t.Fatalf("no result for artifact %s", artifact)
	return Result{}
}

func TestPipeline_ProducesAllArtifacts(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestPipeline(t, runner, Options{})

	results, err := p.Run(context.Background(), []string{"clips/rain.mov"})
	require.NoError(t, err)
	require.Len(t, results, 4)

	for _, artifact := range []string{"rain_h264.mp4", "rain_h265.mp4", "rain.webm", "rain-poster.webp"} {
		res := resultFor(t, results, artifact)
		assert.Equal(t, StatusOK, res.Status, artifact)
		assert.FileExists(t, filepath.Join(p.opts.OutputDir, artifact))
	}

	poster := resultFor(t, results, "rain-poster.webp")
	assert.Equal(t, 1, poster.PosterWidth)
}

func TestPipeline_SkipsExistingArtifacts(t *testing.T) {
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "rain_h265.mp4"), []byte("old"), 0o644))

	runner := &fakeRunner{}
	p := newTestPipeline(t, runner, Options{OutputDir: outDir})

	results, err := p.Run(context.Background(), []string{"clips/rain.mov"})
	require.NoError(t, err)

	assert.Equal(t, StatusSkipped, resultFor(t, results, "rain_h265.mp4").Status)
	assert.Equal(t, StatusOK, resultFor(t, results, "rain_h264.mp4").Status)
	assert.NotContains(t, runner.encodeTargets(), "rain_h265.mp4")

	// Existing file untouched.
	data, err := os.ReadFile(filepath.Join(outDir, "rain_h265.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestPipeline_EncodeFailureContinuesBatch(t *testing.T) {
	runner := &fakeRunner{failSuffix: ".webm"}
	p := newTestPipeline(t, runner, Options{})

	results, err := p.Run(context.Background(), []string{"clips/rain.mov", "clips/smoke.mov"})
	require.NoError(t, err)
	require.Len(t, results, 8)

	for _, base := range []string{"rain", "smoke"} {
		assert.Equal(t, StatusFailed, resultFor(t, results, base+".webm").Status)
		assert.Equal(t, StatusOK, resultFor(t, results, base+"_h264.mp4").Status)
		assert.Equal(t, StatusOK, resultFor(t, results, base+"-poster.webp").Status)
	}
}

func TestPipeline_ProbeFailureContinuesBatch(t *testing.T) {
	runner := &fakeRunner{probeErr: map[string]error{"clips/bad.mov": errors.New("ffprobe: exit status 1")}}
	p := newTestPipeline(t, runner, Options{})

	results, err := p.Run(context.Background(), []string{"clips/bad.mov", "clips/rain.mov"})
	require.NoError(t, err)
	require.Len(t, results, 5)

	bad := resultFor(t, results, "probe")
	assert.Equal(t, StatusFailed, bad.Status)
	assert.Equal(t, "clips/bad.mov", bad.Input)

	assert.Equal(t, StatusOK, resultFor(t, results, "rain_h264.mp4").Status)
}

func TestPipeline_PosterVerificationFailure(t *testing.T) {
	runner := &fakeRunner{posterBytes: []byte("definitely not webp")}
	p := newTestPipeline(t, runner, Options{})

	results, err := p.Run(context.Background(), []string{"clips/rain.mov"})
	require.NoError(t, err)

	poster := resultFor(t, results, "rain-poster.webp")
	assert.Equal(t, StatusFailed, poster.Status)
	require.Error(t, poster.Err)

	// The corrupt artifact must not be left behind to be skipped next run.
	assert.NoFileExists(t, filepath.Join(p.opts.OutputDir, "rain-poster.webp"))
}

func TestPipeline_ScalesWideSources(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestPipeline(t, runner, Options{MaxWidth: 1280})

	_, err := p.Run(context.Background(), []string{"clips/rain.mov"})
	require.NoError(t, err)

	for _, call := range runner.calls {
		if call[0] != "ffmpeg" {
			continue
		}
		assert.Contains(t, call, "scale=1280:-2")
	}
}

func TestPipeline_NarrowSourceNotUpscaled(t *testing.T) {
	runner := &fakeRunner{probeJSON: map[string]string{
		"clips/tiny.mov": `{"format": {"duration": "1.0"}, "streams": [{"codec_type": "video", "codec_name": "h264", "width": 640, "height": 360}]}`,
	}}
	p := newTestPipeline(t, runner, Options{MaxWidth: 1280})

	_, err := p.Run(context.Background(), []string{"clips/tiny.mov"})
	require.NoError(t, err)

	for _, call := range runner.calls {
		assert.NotContains(t, call, "scale=1280:-2")
	}
}

func TestPipeline_HEVCUsesHVC1Tag(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestPipeline(t, runner, Options{})

	_, err := p.Run(context.Background(), []string{"clips/rain.mov"})
	require.NoError(t, err)

	var found bool
	for _, call := range runner.calls {
		if call[0] == "ffmpeg" && strings.HasSuffix(call[len(call)-1], "_h265.mp4") {
			found = true
			assert.Contains(t, call, "libx265")
			assert.Contains(t, call, "hvc1")
		}
	}
	assert.True(t, found)
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Status: StatusOK},
		{Status: StatusOK},
		{Status: StatusSkipped},
		{Status: StatusFailed},
	}

	ok, skipped, failed := Summarize(results)
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, failed)
}
