package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Content: ContentConfig{
			Root:             "/media/",
			SlotManifest:     "slots.yaml",
			MobileBreakpoint: 768,
		},
		Playback: PlaybackConfig{
			VisibleThreshold: 0.5,
			CreateDelay:      200 * time.Millisecond,
			TeardownDelay:    300 * time.Millisecond,
			PosterFadeDelay:  300 * time.Millisecond,
		},
		Transcode: TranscodeConfig{
			OutputDir:     "public/media",
			Preset:        "slow",
			H264CRF:       23,
			H265CRF:       26,
			VP9CRF:        33,
			PosterQuality: 80,
		},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Logging defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Content defaults
	assert.Equal(t, "/media/", cfg.Content.Root)
	assert.Equal(t, "slots.yaml", cfg.Content.SlotManifest)
	assert.Equal(t, 768, cfg.Content.MobileBreakpoint)

	// Playback defaults
	assert.InDelta(t, 0.5, cfg.Playback.VisibleThreshold, 1e-9)
	assert.Equal(t, 200*time.Millisecond, cfg.Playback.CreateDelay)
	assert.Equal(t, 300*time.Millisecond, cfg.Playback.TeardownDelay)
	assert.Equal(t, 300*time.Millisecond, cfg.Playback.PosterFadeDelay)

	// FFmpeg defaults
	assert.Empty(t, cfg.FFmpeg.BinaryPath)
	assert.Equal(t, 30*time.Second, cfg.FFmpeg.ProbeTimeout)

	// Transcode defaults
	assert.Equal(t, "public/media", cfg.Transcode.OutputDir)
	assert.Equal(t, "slow", cfg.Transcode.Preset)
	assert.Equal(t, 23, cfg.Transcode.H264CRF)
	assert.Equal(t, 26, cfg.Transcode.H265CRF)
	assert.Equal(t, 33, cfg.Transcode.VP9CRF)
	assert.Equal(t, 80, cfg.Transcode.PosterQuality)
	assert.Zero(t, cfg.Transcode.MaxWidth)
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: debug
  format: text

content:
  root: /assets/video/
  mobile_breakpoint: 640

playback:
  create_delay: 150ms
  teardown_delay: 500ms

transcode:
  output_dir: dist/media
  h264_crf: 20
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "/assets/video/", cfg.Content.Root)
	assert.Equal(t, 640, cfg.Content.MobileBreakpoint)
	assert.Equal(t, 150*time.Millisecond, cfg.Playback.CreateDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Playback.TeardownDelay)
	assert.Equal(t, "dist/media", cfg.Transcode.OutputDir)
	assert.Equal(t, 20, cfg.Transcode.H264CRF)

	// Untouched sections keep their defaults
	assert.InDelta(t, 0.5, cfg.Playback.VisibleThreshold, 1e-9)
	assert.Equal(t, 33, cfg.Transcode.VP9CRF)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HEROVID_CONTENT_ROOT", "/cdn/")
	t.Setenv("HEROVID_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/cdn/", cfg.Content.Root)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_InvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("logging: [not a map"), 0o644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "missing content root",
			mutate:  func(c *Config) { c.Content.Root = "" },
			wantErr: "content.root",
		},
		{
			name:    "zero breakpoint",
			mutate:  func(c *Config) { c.Content.MobileBreakpoint = 0 },
			wantErr: "content.mobile_breakpoint",
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Playback.VisibleThreshold = 1.5 },
			wantErr: "playback.visible_threshold",
		},
		{
			name:    "negative delay",
			mutate:  func(c *Config) { c.Playback.TeardownDelay = -time.Second },
			wantErr: "playback delays",
		},
		{
			name:    "missing output dir",
			mutate:  func(c *Config) { c.Transcode.OutputDir = "" },
			wantErr: "transcode.output_dir",
		},
		{
			name:    "crf out of range",
			mutate:  func(c *Config) { c.Transcode.VP9CRF = 99 },
			wantErr: "transcode.vp9_crf",
		},
		{
			name:    "poster quality out of range",
			mutate:  func(c *Config) { c.Transcode.PosterQuality = 0 },
			wantErr: "transcode.poster_quality",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
