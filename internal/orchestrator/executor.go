package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"signalflow/internal/analysis"
	"signalflow/internal/core/ports"
	"signalflow/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// StepExecutor runs a single pipeline stage: it performs the stage's action
// against the external collaborators and translates provider failures into
// the orchestrator's error taxonomy. It never touches the store.
type StepExecutor struct {
	objects ports.ObjectStore
	jobs    ports.SignalJobClient
	usage   ports.UsageNotifier

	pollInterval time.Duration
	maxPollWait  time.Duration

	log *logrus.Logger
}

func NewStepExecutor(
	objects ports.ObjectStore,
	jobs ports.SignalJobClient,
	usage ports.UsageNotifier,
	pollInterval, maxPollWait time.Duration,
	logger *logrus.Logger,
) *StepExecutor {
	return &StepExecutor{
		objects:      objects,
		jobs:         jobs,
		usage:        usage,
		pollInterval: pollInterval,
		maxPollWait:  maxPollWait,
		log:          logger,
	}
}

// Execute runs the named stage. file is the raw submitted recording; it is
// only consumed by the Upload stage. The result payload becomes the stage's
// recorded result and the next stage's input.
func (e *StepExecutor) Execute(ctx context.Context, name domain.StageName, wf *domain.ReportWorkflow, file []byte) (datatypes.JSON, error) {
	switch name {
	case domain.StageUpload:
		return e.runUpload(ctx, wf, file)
	case domain.StageExternalProcessing:
		return e.runExternalProcessing(ctx, wf)
	case domain.StageSecondaryAnalysis:
		return e.runSecondaryAnalysis(wf)
	case domain.StagePlanGeneration:
		return e.runPlanGeneration(wf)
	case domain.StageFinalization:
		return e.runFinalization(ctx, wf)
	default:
		return nil, fmt.Errorf("unknown stage %q", name)
	}
}

func (e *StepExecutor) runUpload(ctx context.Context, wf *domain.ReportWorkflow, file []byte) (datatypes.JSON, error) {
	key := fmt.Sprintf("reports/%s/%s", wf.ID, wf.FileName)

	ref, err := e.objects.Put(ctx, key, file)
	if err != nil {
		return nil, domain.StageE(domain.KindStorageError, domain.StageUpload, "%v", err)
	}

	wf.FileRef = ref
	return toJSON(domain.UploadResult{FileRef: ref})
}

func (e *StepExecutor) runExternalProcessing(ctx context.Context, wf *domain.ReportWorkflow) (datatypes.JSON, error) {
	handle, err := e.jobs.Submit(ctx, wf.FileRef, domain.JobMetadata{
		FileName:  wf.FileName,
		PatientID: wf.PatientID,
	})
	if err != nil {
		return nil, domain.StageE(domain.KindExternalProcessingError, domain.StageExternalProcessing,
			"submitting job: %v", err)
	}

	metrics, err := awaitJob(ctx, e.jobs, handle, e.pollInterval, e.maxPollWait)
	if err != nil {
		return nil, err
	}
	return toJSON(metrics)
}

func (e *StepExecutor) runSecondaryAnalysis(wf *domain.ReportWorkflow) (datatypes.JSON, error) {
	var metrics domain.SignalMetrics
	if err := stageResult(wf, domain.StageExternalProcessing, &metrics); err != nil {
		return nil, domain.StageE(domain.KindAnalysisError, domain.StageSecondaryAnalysis, "%v", err)
	}

	result, err := analysis.Analyze(&metrics)
	if err != nil {
		return nil, domain.StageE(domain.KindAnalysisError, domain.StageSecondaryAnalysis, "%v", err)
	}
	return toJSON(result)
}

func (e *StepExecutor) runPlanGeneration(wf *domain.ReportWorkflow) (datatypes.JSON, error) {
	var result domain.AnalysisResult
	if err := stageResult(wf, domain.StageSecondaryAnalysis, &result); err != nil {
		return nil, domain.StageE(domain.KindPlanGenerationError, domain.StagePlanGeneration, "%v", err)
	}

	plan, err := analysis.BuildPlan(&result)
	if err != nil {
		return nil, domain.StageE(domain.KindPlanGenerationError, domain.StagePlanGeneration, "%v", err)
	}
	return toJSON(plan)
}

// runFinalization assembles the consolidated report. The usage notification
// is best-effort: by this point the scientific result is complete, so a
// notification failure is logged and swallowed, never fatal.
func (e *StepExecutor) runFinalization(ctx context.Context, wf *domain.ReportWorkflow) (datatypes.JSON, error) {
	report := domain.FinalReport{
		WorkflowID:  wf.ID.String(),
		PatientID:   wf.PatientID,
		ClinicID:    wf.ClinicID,
		FileRef:     wf.FileRef,
		GeneratedAt: time.Now().UTC(),
	}

	if err := stageResult(wf, domain.StageExternalProcessing, &report.Metrics); err != nil {
		return nil, domain.StageE(domain.KindAnalysisError, domain.StageFinalization, "%v", err)
	}
	if err := stageResult(wf, domain.StageSecondaryAnalysis, &report.Analysis); err != nil {
		return nil, domain.StageE(domain.KindAnalysisError, domain.StageFinalization, "%v", err)
	}
	if err := stageResult(wf, domain.StagePlanGeneration, &report.Plan); err != nil {
		return nil, domain.StageE(domain.KindAnalysisError, domain.StageFinalization, "%v", err)
	}

	elapsed := time.Since(wf.CreatedAt)
	report.ProcessingSeconds = elapsed.Seconds()
	report.QualityScore = analysis.QualityScore(wf.Stages, elapsed)

	if err := e.usage.Increment(ctx, wf.ClinicID); err != nil {
		e.log.WithFields(logrus.Fields{
			"workflow": wf.ID,
			"clinic":   wf.ClinicID,
		}).Warnf("usage notification failed: %v", err)
	}

	return toJSON(report)
}

// stageResult decodes a completed stage's payload into out.
func stageResult(wf *domain.ReportWorkflow, name domain.StageName, out any) error {
	stage := wf.Stage(name)
	if stage == nil || len(stage.Result) == 0 {
		return fmt.Errorf("missing %s result", name)
	}
	if err := json.Unmarshal(stage.Result, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", name, err)
	}
	return nil
}

func toJSON(v any) (datatypes.JSON, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(payload), nil
}
