package orchestrator

import (
	"context"
	"testing"

	"signalflow/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry()
	wf := domain.NewReportWorkflow("P1", "C1", "a.edf", 10)

	_, cancel := context.WithCancel(context.Background())
	reg.Register(wf.Clone(), cancel)
	require.Equal(t, 1, reg.Len())

	snap, ok := reg.Snapshot(wf.ID)
	require.True(t, ok)
	assert.Equal(t, domain.WorkflowCreated, snap.Status)

	// Update replaces the cached snapshot without touching the original.
	next := wf.Clone()
	next.Status = domain.WorkflowRunning
	reg.Update(next)

	snap, ok = reg.Snapshot(wf.ID)
	require.True(t, ok)
	assert.Equal(t, domain.WorkflowRunning, snap.Status)

	fn, ok := reg.CancelFunc(wf.ID)
	require.True(t, ok)
	require.NotNil(t, fn)

	reg.Remove(wf.ID)
	_, ok = reg.Snapshot(wf.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestSnapshotIsIsolatedFromCache(t *testing.T) {
	reg := NewRegistry()
	wf := domain.NewReportWorkflow("P1", "C1", "a.edf", 10)
	reg.Register(wf.Clone(), func() {})

	snap, ok := reg.Snapshot(wf.ID)
	require.True(t, ok)

	// Mutating a handed-out snapshot must not reach the cache.
	snap.Status = domain.WorkflowFailed
	snap.Stages[0].MarkFailed("boom")

	fresh, ok := reg.Snapshot(wf.ID)
	require.True(t, ok)
	assert.Equal(t, domain.WorkflowCreated, fresh.Status)
	assert.Equal(t, domain.StagePending, fresh.Stages[0].Status)
}

func TestRegistryMiss(t *testing.T) {
	reg := NewRegistry()

	_, ok := reg.Snapshot(uuid.New())
	assert.False(t, ok)

	_, ok = reg.CancelFunc(uuid.New())
	assert.False(t, ok)

	// Update for an unknown id is a no-op, not a registration.
	reg.Update(domain.NewReportWorkflow("P1", "C1", "a.edf", 1))
	assert.Equal(t, 0, reg.Len())
}
