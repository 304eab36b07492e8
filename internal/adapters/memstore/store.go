// Package memstore provides an in-memory asset store for embedding hosts and tests.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"

	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
)

var _ ports.AssetStore = (*Store)(nil)

// Store keeps assets and generated outputs in memory. Names added with the same
// *domain.Asset share its identity, like chunks emitted from one module.
type Store struct {
	mu      sync.RWMutex
	order   []string
	assets  map[string]*domain.Asset
	outputs map[string]domain.Output
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		assets:  make(map[string]*domain.Asset),
		outputs: make(map[string]domain.Output),
	}
}

// Add registers asset under name and returns it.
func (s *Store) Add(name string, asset *domain.Asset) *domain.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[name]; !ok {
		s.order = append(s.order, name)
	}
	s.assets[name] = asset
	return asset
}

// Assets lists registered assets in insertion order.
func (s *Store) Assets(_ context.Context) ([]domain.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files := make([]domain.File, 0, len(s.order))
	for _, name := range s.order {
		files = append(files, domain.File{Name: name, Asset: s.assets[name]})
	}
	return files, nil
}

// Write records out under name.
func (s *Store) Write(name string, out domain.Output) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[name] = out
	return nil
}

// Remove forgets the output stored under name.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.outputs, name)
	return nil
}

// Output returns what was written under name.
func (s *Store) Output(name string) (domain.Output, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, ok := s.outputs[name]
	return out, ok
}

// Outputs returns the sorted names of all written outputs.
func (s *Store) Outputs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.outputs))
}
