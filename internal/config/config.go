// Package config provides configuration management for herovid using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultMobileBreakpoint  = 768
	defaultVisibleThreshold  = 0.5
	defaultCreateDelay       = 200 * time.Millisecond
	defaultTeardownDelay     = 300 * time.Millisecond
	defaultPosterFadeDelay   = 300 * time.Millisecond
	defaultContentRoot       = "/media/"
	defaultTranscodePreset   = "slow"
	defaultH264CRF           = 23
	defaultH265CRF           = 26
	defaultVP9CRF            = 33
	defaultPosterQuality     = 80
	defaultTranscodeTimeout  = 30 * time.Minute
	defaultProbeTimeout      = 30 * time.Second
	defaultTranscodeOutDir   = "public/media"
)

// Config holds all configuration for the application.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Content   ContentConfig   `mapstructure:"content"`
	Playback  PlaybackConfig  `mapstructure:"playback"`
	FFmpeg    FFmpegConfig    `mapstructure:"ffmpeg"`
	Transcode TranscodeConfig `mapstructure:"transcode"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// ContentConfig holds the media content layout configuration.
type ContentConfig struct {
	// Root is the URL prefix every media and poster URL is built under.
	Root string `mapstructure:"root"`
	// SlotManifest is the path to the YAML file describing media slots.
	SlotManifest string `mapstructure:"slot_manifest"`
	// MobileBreakpoint is the viewport width (px) at or below which the
	// mobile source variant and deferred creation apply.
	MobileBreakpoint int `mapstructure:"mobile_breakpoint"`
}

// PlaybackConfig holds the playback lifecycle timing configuration.
type PlaybackConfig struct {
	// VisibleThreshold is the intersection ratio at which a slot counts as visible.
	VisibleThreshold float64 `mapstructure:"visible_threshold"`
	// CreateDelay debounces media creation on narrow viewports.
	CreateDelay time.Duration `mapstructure:"create_delay"`
	// TeardownDelay is the grace window between exit and destruction.
	TeardownDelay time.Duration `mapstructure:"teardown_delay"`
	// PosterFadeDelay is the desktop-only delay before the poster fades
	// once media has started playing.
	PosterFadeDelay time.Duration `mapstructure:"poster_fade_delay"`
}

// FFmpegConfig holds FFmpeg binary configuration.
type FFmpegConfig struct {
	BinaryPath   string        `mapstructure:"binary_path"`   // Path to ffmpeg binary (empty = auto-detect)
	ProbePath    string        `mapstructure:"probe_path"`    // Path to ffprobe binary (empty = auto-detect)
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"` // Timeout for a single probe
}

// TranscodeConfig holds the batch transcode pipeline configuration.
type TranscodeConfig struct {
	OutputDir     string        `mapstructure:"output_dir"`
	Preset        string        `mapstructure:"preset"`
	H264CRF       int           `mapstructure:"h264_crf"`
	H265CRF       int           `mapstructure:"h265_crf"`
	VP9CRF        int           `mapstructure:"vp9_crf"`
	PosterQuality int           `mapstructure:"poster_quality"`
	// MaxWidth caps output width; 0 keeps the probed source width.
	MaxWidth int           `mapstructure:"max_width"`
	Timeout  time.Duration `mapstructure:"timeout"` // Per-artifact encode timeout
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with HEROVID_ and use underscores for
// nesting. Example: HEROVID_CONTENT_ROOT=/media/.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("herovid")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.herovid")
	}

	v.SetEnvPrefix("HEROVID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file so defaults are in place.
func SetDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Content defaults
	v.SetDefault("content.root", defaultContentRoot)
	v.SetDefault("content.slot_manifest", "slots.yaml")
	v.SetDefault("content.mobile_breakpoint", defaultMobileBreakpoint)

	// Playback defaults
	v.SetDefault("playback.visible_threshold", defaultVisibleThreshold)
	v.SetDefault("playback.create_delay", defaultCreateDelay)
	v.SetDefault("playback.teardown_delay", defaultTeardownDelay)
	v.SetDefault("playback.poster_fade_delay", defaultPosterFadeDelay)

	// FFmpeg defaults
	v.SetDefault("ffmpeg.binary_path", "")
	v.SetDefault("ffmpeg.probe_path", "")
	v.SetDefault("ffmpeg.probe_timeout", defaultProbeTimeout)

	// Transcode defaults
	v.SetDefault("transcode.output_dir", defaultTranscodeOutDir)
	v.SetDefault("transcode.preset", defaultTranscodePreset)
	v.SetDefault("transcode.h264_crf", defaultH264CRF)
	v.SetDefault("transcode.h265_crf", defaultH265CRF)
	v.SetDefault("transcode.vp9_crf", defaultVP9CRF)
	v.SetDefault("transcode.poster_quality", defaultPosterQuality)
	v.SetDefault("transcode.max_width", 0)
	v.SetDefault("transcode.timeout", defaultTranscodeTimeout)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Content.Root == "" {
		return fmt.Errorf("content.root is required")
	}
	if c.Content.MobileBreakpoint < 1 {
		return fmt.Errorf("content.mobile_breakpoint must be at least 1")
	}

	if c.Playback.VisibleThreshold <= 0 || c.Playback.VisibleThreshold > 1 {
		return fmt.Errorf("playback.visible_threshold must be in (0, 1]")
	}
	if c.Playback.CreateDelay < 0 || c.Playback.TeardownDelay < 0 || c.Playback.PosterFadeDelay < 0 {
		return fmt.Errorf("playback delays must not be negative")
	}

	if c.Transcode.OutputDir == "" {
		return fmt.Errorf("transcode.output_dir is required")
	}
	const maxCRF = 63
	for name, crf := range map[string]int{
		"transcode.h264_crf": c.Transcode.H264CRF,
		"transcode.h265_crf": c.Transcode.H265CRF,
		"transcode.vp9_crf":  c.Transcode.VP9CRF,
	} {
		if crf < 0 || crf > maxCRF {
			return fmt.Errorf("%s must be between 0 and %d", name, maxCRF)
		}
	}
	if c.Transcode.PosterQuality < 1 || c.Transcode.PosterQuality > 100 {
		return fmt.Errorf("transcode.poster_quality must be between 1 and 100")
	}

	return nil
}
