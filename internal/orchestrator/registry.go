package orchestrator

import (
	"context"
	"sync"

	"signalflow/internal/domain"

	"github.com/google/uuid"
)

type registryEntry struct {
	snapshot *domain.ReportWorkflow
	cancel   context.CancelFunc
}

// Registry indexes the workflows currently executing in this process for
// fast status reads. It is strictly a cache: every snapshot it holds has
// already been persisted, and a miss falls back to the store.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*registryEntry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[uuid.UUID]*registryEntry)}
}

func (r *Registry) Register(snapshot *domain.ReportWorkflow, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[snapshot.ID] = &registryEntry{snapshot: snapshot, cancel: cancel}
}

// Update replaces the cached snapshot. Only the goroutine owning the
// workflow id calls this, always after the persisted write succeeded.
func (r *Registry) Update(snapshot *domain.ReportWorkflow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[snapshot.ID]; ok {
		e.snapshot = snapshot
	}
}

// Snapshot returns a copy of the cached record. Callers get their own
// clone so no reader can mutate the cache out from under the store.
func (r *Registry) Snapshot(id uuid.UUID) (*domain.ReportWorkflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.snapshot.Clone(), true
}

func (r *Registry) CancelFunc(id uuid.UUID) (context.CancelFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.cancel, true
}

func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
