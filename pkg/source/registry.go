// Package source keeps the list of configured feed sources
package source

import (
	"sync"

	"github.com/umputun/newsagg/pkg/domain"
)

// Registry holds feed sources in insertion order, unique by ID
type Registry struct {
	mu      sync.RWMutex
	sources []domain.Source
	ids     map[string]struct{}
}

// NewRegistry creates a registry with the initial sources. Duplicate IDs are dropped, first one wins.
func NewRegistry(initial []domain.Source) *Registry {
	r := &Registry{
		sources: make([]domain.Source, 0, len(initial)),
		ids:     make(map[string]struct{}, len(initial)),
	}
	for _, src := range initial {
		r.Add(src)
	}
	return r
}

// Add appends a source. It returns false and changes nothing if the ID is already registered.
func (r *Registry) Add(src domain.Source) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[src.ID]; ok {
		return false
	}
	r.ids[src.ID] = struct{}{}
	r.sources = append(r.sources, src)
	return true
}

// List returns all sources in insertion order
func (r *Registry) List() []domain.Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]domain.Source, len(r.sources))
	copy(res, r.sources)
	return res
}

// ByCategory returns sources of the given category in insertion order, empty if none match
func (r *Registry) ByCategory(category string) []domain.Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := []domain.Source{}
	for _, src := range r.sources {
		if src.Category == category {
			res = append(res, src)
		}
	}
	return res
}

// Get returns the source with the given ID
func (r *Registry) Get(id string) (domain.Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.ids[id]; !ok {
		return domain.Source{}, false
	}
	for _, src := range r.sources {
		if src.ID == id {
			return src, true
		}
	}
	return domain.Source{}, false
}

// Categories returns distinct categories in order of first appearance
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	res := []string{}
	for _, src := range r.sources {
		if _, ok := seen[src.Category]; ok {
			continue
		}
		seen[src.Category] = struct{}{}
		res = append(res, src.Category)
	}
	return res
}
