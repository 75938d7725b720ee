package building

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Handle identifies one delivered part. A part keeps its name across
// regenerations but gets a fresh ID every time it is replaced, so a
// consumer can tell stale meshes from current ones.
type Handle struct {
	ID   uuid.UUID
	Part Part
}

// Registry holds the latest generated part for each part name.
// Regenerating replaces the previous result instead of adding to it.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

// Replace installs parts as the current result. Every previously held
// part is dropped, including names missing from parts. The new handles
// are returned in the order of parts.
func (r *Registry) Replace(parts []Part) []Handle {
	out := make([]Handle, len(parts))
	next := make(map[string]Handle, len(parts))
	for i, p := range parts {
		h := Handle{ID: uuid.New(), Part: p}
		next[p.Name] = h
		out[i] = h
	}

	r.mu.Lock()
	r.handles = next
	r.mu.Unlock()
	return out
}

// Get returns the current handle for a part name.
func (r *Registry) Get(name string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[name]
	return h, ok
}

// Keys returns the held part names, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.handles))
	for k := range r.handles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of held parts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
