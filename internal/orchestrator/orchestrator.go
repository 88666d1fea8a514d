// Package orchestrator drives the fixed five-stage report pipeline: Upload,
// ExternalProcessing, SecondaryAnalysis, PlanGeneration, Finalization. One
// goroutine owns each workflow id; every state transition is persisted
// before the next stage starts, so the store is always authoritative.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"signalflow/internal/core/ports"
	"signalflow/internal/domain"
	"signalflow/internal/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Orchestrator struct {
	store    ports.WorkflowStore
	executor *StepExecutor
	registry *Registry
	log      *logrus.Logger
}

func New(store ports.WorkflowStore, executor *StepExecutor, registry *Registry, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		executor: executor,
		registry: registry,
		log:      logger,
	}
}

// Start validates the submission, persists a CREATED record and launches
// the pipeline goroutine. The returned id is usable immediately; execution
// is not awaited.
func (o *Orchestrator) Start(ctx context.Context, file []byte, fileName, patientID, clinicID string) (uuid.UUID, error) {
	switch {
	case len(file) == 0:
		return uuid.Nil, domain.E(domain.KindInvalidInput, "file is empty")
	case fileName == "":
		return uuid.Nil, domain.E(domain.KindInvalidInput, "file name is required")
	case patientID == "":
		return uuid.Nil, domain.E(domain.KindInvalidInput, "patient id is required")
	case clinicID == "":
		return uuid.Nil, domain.E(domain.KindInvalidInput, "clinic id is required")
	}

	wf := domain.NewReportWorkflow(patientID, clinicID, fileName, int64(len(file)))
	if err := o.store.Create(ctx, wf); err != nil {
		return uuid.Nil, err
	}

	// The run context is detached from the caller's: the caller returns
	// immediately and must not abort the pipeline. Cancel goes through the
	// registry.
	runCtx, cancel := context.WithCancel(context.Background())
	o.registry.Register(wf.Clone(), cancel)

	metrics.ReportsStarted.Inc()
	metrics.ActiveWorkflows.Inc()

	go o.run(runCtx, wf, file)

	return wf.ID, nil
}

// GetStatus returns the latest persisted snapshot. Registry hits avoid a
// store round-trip for live workflows; the call never blocks on in-flight
// stage work.
func (o *Orchestrator) GetStatus(ctx context.Context, id uuid.UUID) (*domain.ReportWorkflow, error) {
	if snap, ok := o.registry.Snapshot(id); ok {
		return snap, nil
	}
	return o.store.Load(ctx, id)
}

// Cancel requests cancellation of a live workflow. The flag is observed by
// the running stage at its next check point; already-completed stages keep
// their side effects. Terminal workflows reject the request.
func (o *Orchestrator) Cancel(ctx context.Context, id uuid.UUID) error {
	if snap, ok := o.registry.Snapshot(id); ok {
		// The cached snapshot can already be terminal while the owning
		// goroutine is still tearing down its registry entry.
		if snap.IsTerminal() {
			return domain.E(domain.KindAlreadyTerminal, "workflow %s is already %s", id, snap.Status)
		}
		if cancel, ok := o.registry.CancelFunc(id); ok {
			cancel()
			return nil
		}
	}

	wf, err := o.store.Load(ctx, id)
	if err != nil {
		return err
	}
	if wf.IsTerminal() {
		return domain.E(domain.KindAlreadyTerminal, "workflow %s is already %s", id, wf.Status)
	}

	// Non-terminal but not owned by this process (left over from a crash):
	// finish it directly in the store.
	wf.CancelNow()
	return o.store.Save(ctx, wf)
}

// run executes the stages strictly in order, persisting after every
// transition. It is the only writer for this workflow id.
func (o *Orchestrator) run(ctx context.Context, wf *domain.ReportWorkflow, file []byte) {
	defer func() {
		o.registry.Remove(wf.ID)
		metrics.ActiveWorkflows.Dec()
	}()

	logger := o.log.WithField("workflow", wf.ID)

	wf.Status = domain.WorkflowRunning

	for i := range wf.Stages {
		if ctx.Err() != nil {
			o.finishCancelled(wf, logger)
			return
		}

		stage := &wf.Stages[i]
		stage.MarkRunning()
		if !o.persist(wf, logger) {
			return
		}
		logger.WithField("stage", stage.Name).Info("stage started")

		started := time.Now()
		result, err := o.executor.Execute(ctx, stage.Name, wf, file)
		metrics.StageDuration.WithLabelValues(string(stage.Name)).Observe(time.Since(started).Seconds())

		if err != nil {
			if ctx.Err() != nil || domain.IsKind(err, domain.KindCancelled) {
				o.finishCancelled(wf, logger)
				return
			}
			o.finishFailed(wf, stage, err, logger)
			return
		}

		stage.MarkCompleted(result)
		if stage.Name == domain.StageFinalization {
			// The Finalization payload is the consolidated report.
			wf.Complete(result)
		}
		if !o.persist(wf, logger) {
			return
		}
		logger.WithField("stage", stage.Name).Info("stage completed")
	}

	metrics.ReportsFinished.WithLabelValues(string(domain.WorkflowCompleted)).Inc()
	logger.Info("workflow completed")
}

func (o *Orchestrator) finishFailed(wf *domain.ReportWorkflow, stage *domain.StageState, err error, logger *logrus.Entry) {
	reason := err.Error()
	kind := domain.KindOf(err)
	var de *domain.Error
	if errors.As(err, &de) {
		// failureReason carries the triggering message verbatim; the kind
		// travels separately.
		reason = de.Message
	}

	stage.MarkFailed(reason)
	wf.Fail(kind, reason)
	if !o.persist(wf, logger) {
		return
	}

	metrics.ReportsFinished.WithLabelValues(string(domain.WorkflowFailed)).Inc()
	logger.WithFields(logrus.Fields{
		"stage": stage.Name,
		"kind":  kind,
	}).Errorf("workflow failed: %s", reason)
}

func (o *Orchestrator) finishCancelled(wf *domain.ReportWorkflow, logger *logrus.Entry) {
	wf.CancelNow()
	if !o.persist(wf, logger) {
		return
	}

	metrics.ReportsFinished.WithLabelValues(string(domain.WorkflowCancelled)).Inc()
	logger.Info("workflow cancelled")
}

// persist writes the snapshot to the store and, only after that succeeded,
// refreshes the registry cache. Uses a background context so cancellation
// never loses a transition. A persistence failure abandons the run: the
// next stage must not start without the previous transition on disk.
func (o *Orchestrator) persist(wf *domain.ReportWorkflow, logger *logrus.Entry) bool {
	if err := o.store.Save(context.Background(), wf); err != nil {
		logger.Errorf("failed to persist workflow state: %v", err)
		return false
	}
	o.registry.Update(wf.Clone())
	return true
}
