// Package hover tracks which page section is currently hovered and resolves
// its tooltip text. It replaces the module-scoped "currently hovered title"
// variable of the original layout with an explicitly owned registry.
package hover

import "sync"

// Registry maps section identifiers to tooltip text and tracks at most one
// currently hovered section.
type Registry struct {
	mu       sync.Mutex
	tooltips map[string]string
	current  string
}

// NewRegistry returns an empty registry with no hovered section.
func NewRegistry() *Registry {
	return &Registry{tooltips: make(map[string]string)}
}

// Define associates tooltip text with a section identifier.
func (r *Registry) Define(section, tooltip string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tooltips[section] = tooltip
}

// Enter marks the section as hovered, displacing any previous one. Unknown
// sections are ignored.
func (r *Registry) Enter(section string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tooltips[section]; !ok {
		return
	}
	r.current = section
}

// Leave clears the hover only if section is still the current one; a stale
// leave event from a displaced section is a no-op.
func (r *Registry) Leave(section string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == section {
		r.current = ""
	}
}

// Current returns the hovered section and its tooltip text, ok reporting
// whether any section is hovered.
func (r *Registry) Current() (section, tooltip string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == "" {
		return "", "", false
	}
	return r.current, r.tooltips[r.current], true
}
