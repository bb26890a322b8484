// Package visibility tracks which media slots are on screen. One shared
// tracker receives intersection-ratio observations from the document boundary
// and emits an event per slot only when its visible state flips across the
// threshold.
package visibility

import (
	"herovid/internal/slot"
)

// DefaultThreshold is the intersection ratio at which a slot counts as
// visible: at least half of its area inside the viewport.
const DefaultThreshold = 0.5

// Handler receives enter/exit transitions. Per slot, calls arrive in FIFO
// order relative to that slot's real transitions; no ordering is guaranteed
// between slots within one report batch.
type Handler interface {
	SlotEntered(s *slot.Slot)
	SlotExited(s *slot.Slot)
}

// Observation is one slot's intersection ratio from an observer callback batch.
type Observation struct {
	Slot  *slot.Slot
	Ratio float64
}

// Tracker observes a fixed set of slots against a single shared threshold.
type Tracker struct {
	threshold float64
	handler   Handler
	visible   map[*slot.Slot]bool
}

// NewTracker creates a tracker that reports transitions to handler. A
// threshold of 0 falls back to DefaultThreshold.
func NewTracker(threshold float64, handler Handler) *Tracker {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	return &Tracker{
		threshold: threshold,
		handler:   handler,
		visible:   make(map[*slot.Slot]bool),
	}
}

// Observe registers slots for visibility callbacks. Slots start invisible;
// the first report at or above the threshold emits their initial enter.
// Observing an already-observed slot is a no-op.
func (t *Tracker) Observe(slots ...*slot.Slot) {
	for _, s := range slots {
		if _, ok := t.visible[s]; !ok {
			t.visible[s] = false
		}
	}
}

// Observed reports whether the slot is registered with the tracker.
func (t *Tracker) Observed(s *slot.Slot) bool {
	_, ok := t.visible[s]
	return ok
}

// Report processes one observation batch. For every observed slot whose
// visible state changed, exactly one enter or exit event fires; unchanged
// and unobserved slots are ignored.
func (t *Tracker) Report(batch []Observation) {
	for _, obs := range batch {
		prev, ok := t.visible[obs.Slot]
		if !ok {
			continue
		}
		now := obs.Ratio >= t.threshold
		if now == prev {
			continue
		}
		t.visible[obs.Slot] = now
		if now {
			t.handler.SlotEntered(obs.Slot)
		} else {
			t.handler.SlotExited(obs.Slot)
		}
	}
}
