// Package typewriter implements the headline text-replacement animation: the
// current phrase is deleted rune by rune, the next one typed in, then held.
// Every intermediate string is emitted through a sink so the host can render
// it however it likes.
package typewriter

import (
	"sync"
	"time"
)

// Clock schedules the per-tick delays; tests substitute a simulated one.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancelable handle to a scheduled tick.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Sink receives every intermediate text state.
type Sink func(text string)

// Options tunes the animation cadence. Zero values fall back to defaults.
type Options struct {
	TypeDelay   time.Duration // per typed rune, default 80ms
	DeleteDelay time.Duration // per deleted rune, default 40ms
	HoldDelay   time.Duration // pause on a complete phrase, default 2s
	Clock       Clock
}

func (o *Options) fillDefaults() {
	if o.TypeDelay == 0 {
		o.TypeDelay = 80 * time.Millisecond
	}
	if o.DeleteDelay == 0 {
		o.DeleteDelay = 40 * time.Millisecond
	}
	if o.HoldDelay == 0 {
		o.HoldDelay = 2 * time.Second
	}
	if o.Clock == nil {
		o.Clock = realClock{}
	}
}

type mode int

const (
	modeHolding mode = iota
	modeDeleting
	modeTyping
)

// Rotator cycles through phrases with typewriter semantics. At most one tick
// is pending at any time; Stop cancels it.
type Rotator struct {
	mu      sync.Mutex
	opts    Options
	phrases []string
	sink    Sink

	idx     int
	text    []rune
	mode    mode
	pending Timer
	stopped bool
}

// NewRotator creates a rotator over the given phrases. The first phrase is
// emitted in full immediately; Start begins the rotation. Phrases must not be
// empty.
func NewRotator(phrases []string, sink Sink, opts Options) *Rotator {
	opts.fillDefaults()
	r := &Rotator{
		opts:    opts,
		phrases: phrases,
		sink:    sink,
		text:    []rune(phrases[0]),
		mode:    modeHolding,
	}
	sink(phrases[0])
	return r
}

// Start schedules the first transition. Calling Start on a running or
// stopped rotator is a no-op.
func (r *Rotator) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || r.pending != nil || len(r.phrases) < 2 {
		return
	}
	r.pending = r.opts.Clock.AfterFunc(r.opts.HoldDelay, r.tick)
}

// Stop cancels the pending tick; the current text stays as emitted.
func (r *Rotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
}

// Text returns the currently emitted text.
func (r *Rotator) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.text)
}

func (r *Rotator) tick() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.pending = nil

	var delay time.Duration
	switch r.mode {
	case modeHolding:
		r.mode = modeDeleting
		if len(r.text) > 0 {
			r.text = r.text[:len(r.text)-1]
		}
		delay = r.opts.DeleteDelay
		if len(r.text) == 0 {
			r.idx = (r.idx + 1) % len(r.phrases)
			r.mode = modeTyping
			delay = r.opts.TypeDelay
		}

	case modeDeleting:
		if len(r.text) > 0 {
			r.text = r.text[:len(r.text)-1]
			delay = r.opts.DeleteDelay
		}
		if len(r.text) == 0 {
			r.idx = (r.idx + 1) % len(r.phrases)
			r.mode = modeTyping
			delay = r.opts.TypeDelay
		}

	case modeTyping:
		next := []rune(r.phrases[r.idx])
		if len(r.text) < len(next) {
			r.text = append(r.text, next[len(r.text)])
		}
		if len(r.text) == len(next) {
			r.mode = modeHolding
			delay = r.opts.HoldDelay
		} else {
			delay = r.opts.TypeDelay
		}
	}

	text := string(r.text)
	sink := r.sink
	r.pending = r.opts.Clock.AfterFunc(delay, r.tick)
	r.mu.Unlock()

	sink(text)
}
