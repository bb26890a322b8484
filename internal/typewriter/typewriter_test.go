package typewriter

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	when    time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, when: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	remaining := c.timers[:0]
	for _, t := range c.timers {
		switch {
		case t.stopped:
		case t.when <= c.now:
			t.fired = true
			due = append(due, t)
		default:
			remaining = append(remaining, t)
		}
	}
	c.timers = remaining
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].when < due[j].when })
	for _, t := range due {
		t.f()
	}
}

func testOptions(clock *fakeClock) Options {
	return Options{
		TypeDelay:   10 * time.Millisecond,
		DeleteDelay: 5 * time.Millisecond,
		HoldDelay:   100 * time.Millisecond,
		Clock:       clock,
	}
}

func TestRotator_EmitsFirstPhraseImmediately(t *testing.T) {
	clock := &fakeClock{}
	var emitted []string
	r := NewRotator([]string{"one", "two"}, func(s string) { emitted = append(emitted, s) }, testOptions(clock))

	assert.Equal(t, []string{"one"}, emitted)
	assert.Equal(t, "one", r.Text())
}

func TestRotator_DeletesThenTypesNextPhrase(t *testing.T) {
	clock := &fakeClock{}
	var emitted []string
	r := NewRotator([]string{"one", "two"}, func(s string) { emitted = append(emitted, s) }, testOptions(clock))
	r.Start()

	// Nothing moves during the hold.
	clock.Advance(99 * time.Millisecond)
	assert.Equal(t, "one", r.Text())

	// Hold expires: deletion begins rune by rune.
	clock.Advance(1 * time.Millisecond)
	assert.Equal(t, "on", r.Text())
	clock.Advance(5 * time.Millisecond)
	assert.Equal(t, "o", r.Text())
	clock.Advance(5 * time.Millisecond)
	assert.Equal(t, "", r.Text())

	// Then the next phrase types in.
	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, "t", r.Text())
	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, "tw", r.Text())
	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, "two", r.Text())

	require.NotEmpty(t, emitted)
	assert.Equal(t, []string{"one", "on", "o", "", "t", "tw", "two"}, emitted)
}

func TestRotator_WrapsAroundPhraseList(t *testing.T) {
	clock := &fakeClock{}
	r := NewRotator([]string{"ab", "cd"}, func(string) {}, testOptions(clock))
	r.Start()

	// Full cycle to "cd", then another back to "ab".
	for i := 0; i < 2; i++ {
		clock.Advance(100 * time.Millisecond) // hold expiry, first delete
		clock.Advance(5 * time.Millisecond)   // second delete
		clock.Advance(10 * time.Millisecond)  // first rune
		clock.Advance(10 * time.Millisecond)  // second rune
	}

	assert.Equal(t, "ab", r.Text())
}

func TestRotator_StopCancelsPendingTick(t *testing.T) {
	clock := &fakeClock{}
	r := NewRotator([]string{"one", "two"}, func(string) {}, testOptions(clock))
	r.Start()
	r.Stop()

	clock.Advance(time.Second)
	assert.Equal(t, "one", r.Text())
}

func TestRotator_SinglePhraseNeverRotates(t *testing.T) {
	clock := &fakeClock{}
	var emitted []string
	r := NewRotator([]string{"only"}, func(s string) { emitted = append(emitted, s) }, testOptions(clock))
	r.Start()

	clock.Advance(time.Second)
	assert.Equal(t, "only", r.Text())
	assert.Equal(t, []string{"only"}, emitted)
}
