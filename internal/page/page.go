// Package page wires the interaction layer for one page load: platform
// detection, slot registration, visibility-driven playback, hover tooltips,
// and one-shot scroll restoration. It is the single place the host document
// hands its capabilities to and receives the assembled session back from.
package page

import (
	"fmt"
	"log/slog"

	"herovid/internal/config"
	"herovid/internal/hover"
	"herovid/internal/mediafmt"
	"herovid/internal/platform"
	"herovid/internal/playback"
	"herovid/internal/scroll"
	"herovid/internal/slot"
	"herovid/internal/visibility"
)

// Environment carries the host facts captured once at page load.
type Environment struct {
	UserAgent string
	Platform  string
	// Path is the location the page was loaded at, used to remember the
	// last visited section.
	Path string
}

// SessionConfig assembles the pieces a session is built from.
type SessionConfig struct {
	Registry *slot.Registry
	Env      Environment

	// Doc is the host document the playback manager drives.
	Doc playback.Document
	// ScrollDoc scrolls to section markers; nil disables restoration.
	ScrollDoc scroll.Document
	// Store holds the session-scoped scroll state; nil uses an in-memory one.
	Store scroll.Store

	Content  config.ContentConfig
	Playback config.PlaybackConfig

	Clock  playback.Clock
	Logger *slog.Logger
}

// Session is the assembled interaction layer for one page load.
type Session struct {
	plat     platform.Info
	registry *slot.Registry
	manager  *playback.Manager
	tracker  *visibility.Tracker
	restorer *scroll.Restorer
	hover    *hover.Registry
	logger   *slog.Logger
}

// NewSession detects the platform, registers every slot with the playback
// manager, and starts observing them for visibility.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("slot registry is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	plat := platform.Detect(cfg.Env.UserAgent, cfg.Env.Platform)
	logger.Info(plat.Banner, "browser", plat.Browser, "safari_on_mac", plat.SafariOnMac)

	selector := mediafmt.NewSelector(cfg.Content.Root, cfg.Content.MobileBreakpoint, plat)
	manager := playback.NewManager(cfg.Doc, selector, playback.Options{
		MobileBreakpoint: cfg.Content.MobileBreakpoint,
		CreateDelay:      cfg.Playback.CreateDelay,
		TeardownDelay:    cfg.Playback.TeardownDelay,
		PosterFadeDelay:  cfg.Playback.PosterFadeDelay,
		Clock:            cfg.Clock,
		Logger:           logger,
	})

	for _, sl := range cfg.Registry.Slots() {
		if err := manager.Register(sl); err != nil {
			return nil, fmt.Errorf("registering slot %d: %w", sl.Index(), err)
		}
	}

	// The playback manager implements visibility.Handler directly.
	tracker := visibility.NewTracker(cfg.Playback.VisibleThreshold, manager)
	tracker.Observe(cfg.Registry.Slots()...)

	var restorer *scroll.Restorer
	if cfg.ScrollDoc != nil {
		store := cfg.Store
		if store == nil {
			store = scroll.NewMemoryStore()
		}
		restorer = scroll.NewRestorer(store, cfg.ScrollDoc)
		restorer.Remember(cfg.Env.Path)
	}

	return &Session{
		plat:     plat,
		registry: cfg.Registry,
		manager:  manager,
		tracker:  tracker,
		restorer: restorer,
		hover:    hover.NewRegistry(),
		logger:   logger,
	}, nil
}

// Platform returns the detected platform facts.
func (s *Session) Platform() platform.Info { return s.plat }

// Slots returns the registered slots in registration order.
func (s *Session) Slots() []*slot.Slot { return s.registry.Slots() }

// Playback returns the playback manager for direct state inspection.
func (s *Session) Playback() *playback.Manager { return s.manager }

// Hover returns the tooltip registry.
func (s *Session) Hover() *hover.Registry { return s.hover }

// ReportVisibility forwards a batch of intersection observations to the
// visibility tracker, which drives the playback lifecycle.
func (s *Session) ReportVisibility(batch []visibility.Observation) {
	s.tracker.Report(batch)
}

// RestoreScroll performs the one-shot scroll restoration. It returns whether
// a scroll happened; it is safe to call when restoration is disabled.
func (s *Session) RestoreScroll() bool {
	if s.restorer == nil {
		return false
	}
	return s.restorer.Restore()
}
