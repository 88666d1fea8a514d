package ports

import (
	"context"
	"time"

	"signalflow/internal/domain"

	"github.com/google/uuid"
)

// ObjectStore durably stores a binary file under a key and returns a
// content reference.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// SignalJobClient talks to the external asynchronous signal processor. The
// job is observed only through submit/poll/fetch.
type SignalJobClient interface {
	// Submit hands the uploaded file reference to the processor and
	// returns a handle for polling.
	Submit(ctx context.Context, fileRef string, meta domain.JobMetadata) (domain.JobHandle, error)

	// Poll reports the job's current state.
	Poll(ctx context.Context, handle domain.JobHandle) (domain.JobPoll, error)

	// Fetch retrieves the result payload of a succeeded job.
	Fetch(ctx context.Context, handle domain.JobHandle) (*domain.SignalMetrics, error)
}

// WorkflowStore persists workflow snapshots keyed by workflow id. It is the
// authoritative copy; the in-process registry is only a cache over it.
type WorkflowStore interface {
	// Create persists a brand-new record with its stage rows.
	Create(ctx context.Context, wf *domain.ReportWorkflow) error

	// Save writes the full current snapshot. Saving over a record that is
	// already terminal in the store is rejected with ALREADY_TERMINAL.
	Save(ctx context.Context, wf *domain.ReportWorkflow) error

	// Load returns the persisted snapshot, or NOT_FOUND.
	Load(ctx context.Context, id uuid.UUID) (*domain.ReportWorkflow, error)

	// ListUnfinished returns non-terminal records created before the cutoff.
	// Used by the startup reconciliation pass.
	ListUnfinished(ctx context.Context, createdBefore time.Time) ([]domain.ReportWorkflow, error)
}

// UsageNotifier records billable report completions per clinic. Calls are
// best-effort: a failure is logged by the caller and never fails the
// workflow.
type UsageNotifier interface {
	Increment(ctx context.Context, clinicID string) error
}
