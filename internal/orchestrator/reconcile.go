package orchestrator

import (
	"context"
	"time"

	"signalflow/internal/domain"
)

// Reconcile finishes workflows a previous process left behind. There is no
// automatic resume: any non-terminal record older than staleThreshold is
// marked FAILED with reason INTERRUPTED so callers see a definite outcome
// instead of a record stuck in CREATED or RUNNING forever.
func (o *Orchestrator) Reconcile(ctx context.Context, staleThreshold time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-staleThreshold)

	stale, err := o.store.ListUnfinished(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	reconciled := 0
	for i := range stale {
		wf := &stale[i]
		if _, owned := o.registry.Snapshot(wf.ID); owned {
			continue
		}

		// Fail the first stage that never finished so the failure stays
		// attributable to a named stage.
		for j := range wf.Stages {
			s := &wf.Stages[j]
			if s.Status == domain.StageRunning || s.Status == domain.StagePending {
				s.MarkFailed("interrupted by process restart")
				break
			}
		}
		wf.Fail(domain.KindInterrupted, "interrupted by process restart")

		if err := o.store.Save(ctx, wf); err != nil {
			o.log.WithField("workflow", wf.ID).Errorf("reconciliation save failed: %v", err)
			continue
		}

		o.log.WithField("workflow", wf.ID).Warn("marked interrupted workflow as failed")
		reconciled++
	}

	return reconciled, nil
}
