package orchestrator

import (
	"context"
	"time"

	"signalflow/internal/core/ports"
	"signalflow/internal/domain"
)

// awaitJob polls the external job at a fixed interval until it reports
// completion, reports failure, the bounded maximum wait elapses, or the
// workflow is cancelled. This is the only suspension point in the pipeline.
func awaitJob(ctx context.Context, jobs ports.SignalJobClient, handle domain.JobHandle, interval, maxWait time.Duration) (*domain.SignalMetrics, error) {
	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		poll, err := jobs.Poll(ctx, handle)
		if err != nil {
			if ctx.Err() != nil {
				return nil, domain.StageE(domain.KindCancelled, domain.StageExternalProcessing,
					"cancelled while waiting for job %s", handle)
			}
			return nil, domain.StageE(domain.KindExternalProcessingError, domain.StageExternalProcessing,
				"polling job %s: %v", handle, err)
		}

		switch poll.State {
		case domain.JobSucceeded:
			metrics, err := jobs.Fetch(ctx, handle)
			if err != nil {
				return nil, domain.StageE(domain.KindExternalProcessingError, domain.StageExternalProcessing,
					"fetching result of job %s: %v", handle, err)
			}
			return metrics, nil
		case domain.JobFailed:
			return nil, domain.StageE(domain.KindExternalProcessingError, domain.StageExternalProcessing,
				"%s", poll.Error)
		}

		select {
		case <-ctx.Done():
			return nil, domain.StageE(domain.KindCancelled, domain.StageExternalProcessing,
				"cancelled while waiting for job %s", handle)
		case <-deadline.C:
			return nil, domain.StageE(domain.KindExternalTimeout, domain.StageExternalProcessing,
				"job %s did not complete within %s", handle, maxWait)
		case <-ticker.C:
		}
	}
}
