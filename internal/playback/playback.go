// Package playback owns the media lifecycle of every slot: when a live media
// element is created, when it is torn down, and how the static poster fades
// against it. All decisions run through a per-slot state machine guarded by
// cancel-before-replace timer discipline, so a stale debounce or grace timer
// can never commit a transition the slot has already moved past.
package playback

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"herovid/internal/mediafmt"
	"herovid/internal/slot"
)

// State is a slot's position in the playback lifecycle.
type State int

// Lifecycle states.
const (
	// StateIdle: poster only, no media, no pending timers.
	StateIdle State = iota
	// StatePendingCreate: create timer scheduled, no media yet.
	StatePendingCreate
	// StateAttached: media element created but its started signal has not
	// fired; the poster stays fully visible.
	StateAttached
	// StatePlaying: media started, visible.
	StatePlaying
	// StatePendingTeardown: exit observed, teardown timer scheduled, media
	// still attached so a quick re-entry can resume it.
	StatePendingTeardown
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePendingCreate:
		return "pending_create"
	case StateAttached:
		return "attached"
	case StatePlaying:
		return "playing"
	case StatePendingTeardown:
		return "pending_teardown"
	default:
		return "unknown"
	}
}

// Media is the live element handle at the document boundary.
type Media interface {
	// Show and Hide mutate opacity only; the element stays in the document.
	Show()
	Hide()
	// Pause stops playback ahead of detachment.
	Pause()
	// Detach clears the source reference, releases buffered data and removes
	// the element from the document. The handle is dead afterwards.
	Detach()
}

// Poster controls a slot's static poster. The poster node is never removed
// from the document, only faded.
type Poster interface {
	Show()
	Hide()
}

// Document is the narrow DOM boundary the manager drives. CreateMedia must
// attach a hidden, autoplaying element and invoke started asynchronously once
// buffered frames render; invoking it synchronously from CreateMedia is not
// allowed.
type Document interface {
	CreateMedia(s *slot.Slot, src string, started func()) Media
	Poster(s *slot.Slot) Poster
	Supports(mime string) bool
	ViewportWidth() int
}

// Options configures a Manager. Zero values fall back to the layout's
// defaults: 768 px breakpoint, 200 ms create debounce, 300 ms teardown grace,
// 300 ms poster fade grace, real clock, default logger.
type Options struct {
	MobileBreakpoint int
	CreateDelay      time.Duration
	TeardownDelay    time.Duration
	PosterFadeDelay  time.Duration
	Clock            Clock
	Logger           *slog.Logger
}

func (o *Options) fillDefaults() {
	if o.MobileBreakpoint == 0 {
		o.MobileBreakpoint = 768
	}
	if o.CreateDelay == 0 {
		o.CreateDelay = 200 * time.Millisecond
	}
	if o.TeardownDelay == 0 {
		o.TeardownDelay = 300 * time.Millisecond
	}
	if o.PosterFadeDelay == 0 {
		o.PosterFadeDelay = 300 * time.Millisecond
	}
	if o.Clock == nil {
		o.Clock = NewRealClock()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// slotState carries everything mutable about one slot. seq increments on
// every transition that invalidates outstanding timers; callbacks capture the
// value at scheduling time and bail out if it moved.
type slotState struct {
	state      State
	media      Media
	instanceID string
	started    bool
	pending    Timer
	seq        uint64
}

// Manager is the playback lifecycle manager. It implements
// visibility.Handler so a tracker can feed it directly. All entry points are
// safe for the serialized event-loop model the layout assumes; the internal
// mutex only exists because Go timers fire on their own goroutines.
type Manager struct {
	mu       sync.Mutex
	doc      Document
	selector *mediafmt.Selector
	opts     Options
	logger   *slog.Logger
	slots    map[*slot.Slot]*slotState
}

// NewManager creates a lifecycle manager over the given document boundary and
// format selector.
func NewManager(doc Document, selector *mediafmt.Selector, opts Options) *Manager {
	opts.fillDefaults()
	return &Manager{
		doc:      doc,
		selector: selector,
		opts:     opts,
		logger:   opts.Logger.With(slog.String("component", "playback")),
		slots:    make(map[*slot.Slot]*slotState),
	}
}

// Register binds the slot's poster URL (derived exactly once, at the current
// viewport width) and makes the slot eligible for lifecycle events. The
// poster starts visible.
func (m *Manager) Register(s *slot.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.slots[s]; ok {
		return nil
	}
	if err := s.BindPoster(m.selector.PosterURL(s, m.doc.ViewportWidth())); err != nil {
		return err
	}
	m.slots[s] = &slotState{state: StateIdle}
	m.doc.Poster(s).Show()
	return nil
}

// State returns the slot's current lifecycle state.
func (m *Manager) State(s *slot.Slot) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.slots[s]; ok {
		return st.state
	}
	return StateIdle
}

// InstanceID returns the identifier of the currently attached media element,
// empty when no element is attached.
func (m *Manager) InstanceID(s *slot.Slot) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.slots[s]; ok {
		return st.instanceID
	}
	return ""
}

// SlotEntered handles a visibility enter transition.
func (m *Manager) SlotEntered(s *slot.Slot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.slots[s]
	if !ok {
		return
	}

	switch st.state {
	case StateIdle:
		if m.narrow() {
			// Debounce rapid scroll-by on narrow viewports before paying for
			// a network request.
			m.schedule(st, m.opts.CreateDelay, func(seq uint64) func() {
				return func() { m.createFired(s, seq) }
			})
			st.state = StatePendingCreate
			return
		}
		m.create(s, st)

	case StatePendingTeardown:
		// Re-entry inside the grace window resumes the existing element.
		m.cancelPending(st)
		st.media.Show()
		if st.started {
			st.state = StatePlaying
			if !m.narrow() {
				m.doc.Poster(s).Hide()
			}
		} else {
			st.state = StateAttached
		}

	default:
		// Already pending-create, attached or playing: idempotent.
	}
}

// SlotExited handles a visibility exit transition.
func (m *Manager) SlotExited(s *slot.Slot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.slots[s]
	if !ok {
		return
	}

	switch st.state {
	case StatePendingCreate:
		// Never created; nothing to tear down.
		m.cancelPending(st)
		st.state = StateIdle

	case StateAttached, StatePlaying:
		st.media.Hide()
		if !m.narrow() {
			m.doc.Poster(s).Show()
		}
		// Let the fade transition finish before the element is destroyed.
		m.schedule(st, m.opts.TeardownDelay, func(seq uint64) func() {
			return func() { m.teardownFired(s, seq) }
		})
		st.state = StatePendingTeardown

	default:
		// Idle or already pending teardown: nothing to do.
	}
}

// narrow reports whether the current viewport is at or below the mobile
// breakpoint.
func (m *Manager) narrow() bool {
	return m.doc.ViewportWidth() <= m.opts.MobileBreakpoint
}

// schedule replaces the slot's pending timer with a new one. Bumping seq
// first guarantees any prior callback that already left the timer wheel
// becomes a no-op.
func (m *Manager) schedule(st *slotState, d time.Duration, mk func(uint64) func()) {
	if st.pending != nil {
		st.pending.Stop()
	}
	st.seq++
	st.pending = m.opts.Clock.AfterFunc(d, mk(st.seq))
}

// cancelPending stops and clears the slot's pending timer and invalidates any
// callback already in flight.
func (m *Manager) cancelPending(st *slotState) {
	if st.pending != nil {
		st.pending.Stop()
		st.pending = nil
	}
	st.seq++
}

// scheduleGrace schedules the desktop poster fade without touching the
// pending-timer slot; capturing seq ties its validity to the current
// transition, so any later exit invalidates it.
func (m *Manager) scheduleGrace(s *slot.Slot, st *slotState) {
	captured := st.seq
	m.opts.Clock.AfterFunc(m.opts.PosterFadeDelay, func() {
		m.posterFadeFired(s, captured)
	})
}

// create resolves a source URL and attaches a media element. On a selection
// failure the slot stays idle showing its poster; degradation is silent
// beyond a log line.
func (m *Manager) create(s *slot.Slot, st *slotState) {
	src, err := m.selector.Select(s, m.doc.ViewportWidth(), m.doc.Supports)
	if err != nil {
		m.logger.Warn("media source selection failed",
			slog.Int("slot", s.Index()),
			slog.String("source", s.Source()),
			slog.String("error", err.Error()),
		)
		st.state = StateIdle
		return
	}

	id := uuid.NewString()
	st.instanceID = id
	st.started = false
	st.media = m.doc.CreateMedia(s, src, func() { m.mediaStarted(s, id) })
	st.state = StateAttached

	m.logger.Debug("media attached",
		slog.Int("slot", s.Index()),
		slog.String("instance", id),
		slog.String("src", src),
	)
}

// createFired commits a debounced creation, unless the slot moved on while
// the timer was in flight.
func (m *Manager) createFired(s *slot.Slot, seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.slots[s]
	if !ok || st.seq != seq || st.state != StatePendingCreate {
		return
	}
	st.pending = nil
	m.create(s, st)
}

// mediaStarted is the element's own "started playing" signal. It is keyed by
// instance ID, not by seq: the same element may legitimately survive several
// exit/enter transitions before it starts.
func (m *Manager) mediaStarted(s *slot.Slot, instanceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.slots[s]
	if !ok || st.instanceID != instanceID {
		return
	}

	st.started = true
	if st.state != StateAttached {
		// Started while exited (pending teardown): remember it, keep the
		// element hidden. A re-entry will restore visibility.
		return
	}

	st.state = StatePlaying
	st.media.Show()
	if !m.narrow() {
		// Desktop only: the narrow-viewport create delay already absorbs the
		// visual gap, so mobile keeps the poster untouched.
		m.scheduleGrace(s, st)
	}

	m.logger.Debug("media playing",
		slog.Int("slot", s.Index()),
		slog.String("instance", instanceID),
	)
}

// posterFadeFired hides the poster after the desktop grace delay, unless the
// slot transitioned again in the meantime.
func (m *Manager) posterFadeFired(s *slot.Slot, seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.slots[s]
	if !ok || st.seq != seq || st.state != StatePlaying {
		return
	}
	m.doc.Poster(s).Hide()
}

// teardownFired destroys the media element after the grace window expired
// with no re-entry.
func (m *Manager) teardownFired(s *slot.Slot, seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.slots[s]
	if !ok || st.seq != seq || st.state != StatePendingTeardown {
		return
	}
	st.pending = nil

	st.media.Pause()
	st.media.Detach()
	st.media = nil
	st.started = false

	m.logger.Debug("media detached",
		slog.Int("slot", s.Index()),
		slog.String("instance", st.instanceID),
	)
	st.instanceID = ""
	st.state = StateIdle
}
