package hover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnterLeave(t *testing.T) {
	r := NewRegistry()
	r.Define("rain", "field recordings, 2024")
	r.Define("smoke", "installation piece")

	_, _, ok := r.Current()
	assert.False(t, ok)

	r.Enter("rain")
	section, tooltip, ok := r.Current()
	assert.True(t, ok)
	assert.Equal(t, "rain", section)
	assert.Equal(t, "field recordings, 2024", tooltip)

	r.Leave("rain")
	_, _, ok = r.Current()
	assert.False(t, ok)
}

func TestEnterDisplacesPrevious(t *testing.T) {
	r := NewRegistry()
	r.Define("rain", "a")
	r.Define("smoke", "b")

	r.Enter("rain")
	r.Enter("smoke")

	section, _, ok := r.Current()
	assert.True(t, ok)
	assert.Equal(t, "smoke", section)

	// A stale leave from the displaced section must not clear the hover.
	r.Leave("rain")
	section, _, ok = r.Current()
	assert.True(t, ok)
	assert.Equal(t, "smoke", section)
}

func TestEnterUnknownSectionIgnored(t *testing.T) {
	r := NewRegistry()
	r.Define("rain", "a")

	r.Enter("unknown")
	_, _, ok := r.Current()
	assert.False(t, ok)
}
