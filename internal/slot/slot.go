// Package slot defines the media slot data model: one container in the page
// layout holding a static poster and, at most, one live media element.
package slot

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one slot as declared in the manifest. Identifiers are
// opaque strings; the transcode pipeline's naming convention gives them
// meaning.
type Config struct {
	// Source is the desktop source identifier (required).
	Source string `yaml:"source"`
	// Mobile is an optional mobile-specific source identifier.
	Mobile string `yaml:"mobile,omitempty"`
}

// Slot is one registered media container. Identity is the slot's position in
// the registry; source identifiers and the poster URL are immutable once set.
// The live media attachment is owned exclusively by the playback manager and
// is not stored here.
type Slot struct {
	index  int
	cfg    Config
	poster string
}

// Index returns the slot's position in the registry.
func (s *Slot) Index() int { return s.index }

// Source returns the desktop source identifier.
func (s *Slot) Source() string { return s.cfg.Source }

// Mobile returns the mobile source identifier, empty if the slot has none.
func (s *Slot) Mobile() string { return s.cfg.Mobile }

// Poster returns the bound poster URL, empty until BindPoster is called.
func (s *Slot) Poster() string { return s.poster }

// BindPoster fixes the slot's poster URL. The poster is derived exactly once
// at registration and never again, so rebinding is an error.
func (s *Slot) BindPoster(url string) error {
	if s.poster != "" {
		return fmt.Errorf("slot %d: poster already bound to %s", s.index, s.poster)
	}
	s.poster = url
	return nil
}

// Registry owns the fixed set of slots for one page. It replaces the
// module-scoped mutable state of the original layout with explicit ownership.
type Registry struct {
	slots []*Slot
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a slot for the given configuration and returns it.
// The slot's identity is its insertion position.
func (r *Registry) Add(cfg Config) (*Slot, error) {
	if cfg.Source == "" {
		return nil, fmt.Errorf("slot %d: source identifier is required", len(r.slots))
	}
	s := &Slot{index: len(r.slots), cfg: cfg}
	r.slots = append(r.slots, s)
	return s, nil
}

// Slots returns all registered slots in registration order.
func (r *Registry) Slots() []*Slot {
	return r.slots
}

// Len returns the number of registered slots.
func (r *Registry) Len() int {
	return len(r.slots)
}

// manifest is the on-disk YAML shape.
type manifest struct {
	Slots []Config `yaml:"slots"`
}

// LoadManifest reads a YAML slot manifest and returns a populated registry.
func LoadManifest(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading slot manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest parses YAML manifest bytes into a registry.
func ParseManifest(data []byte) (*Registry, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing slot manifest: %w", err)
	}

	r := NewRegistry()
	for i, cfg := range m.Slots {
		if _, err := r.Add(cfg); err != nil {
			return nil, fmt.Errorf("manifest entry %d: %w", i, err)
		}
	}
	return r, nil
}
