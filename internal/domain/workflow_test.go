package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReportWorkflowShape(t *testing.T) {
	wf := NewReportWorkflow("P1", "C1", "rec.edf", 2<<20)

	assert.Equal(t, WorkflowCreated, wf.Status)
	assert.False(t, wf.IsTerminal())
	require.Len(t, wf.Stages, len(PipelineStages))

	for i, s := range wf.Stages {
		assert.Equal(t, i, s.Seq)
		assert.Equal(t, PipelineStages[i], s.Name)
		assert.Equal(t, StagePending, s.Status)
		assert.Equal(t, wf.ID, s.WorkflowID)
	}
}

func TestTerminalTransitions(t *testing.T) {
	completed := NewReportWorkflow("P1", "C1", "a.edf", 1)
	completed.Complete([]byte(`{"quality_score":100}`))
	assert.True(t, completed.IsTerminal())
	assert.NotNil(t, completed.CompletedAt)
	assert.NotEmpty(t, completed.FinalResult)

	failed := NewReportWorkflow("P1", "C1", "a.edf", 1)
	failed.Fail(KindStorageError, "disk full")
	assert.True(t, failed.IsTerminal())
	assert.Equal(t, KindStorageError, failed.FailureKind)
	assert.Equal(t, "disk full", failed.FailureReason)
}

func TestCancelNowSkipsRunningStage(t *testing.T) {
	wf := NewReportWorkflow("P1", "C1", "a.edf", 1)
	wf.Status = WorkflowRunning
	wf.Stages[0].MarkCompleted(nil)
	wf.Stages[1].MarkRunning()

	wf.CancelNow()

	assert.Equal(t, WorkflowCancelled, wf.Status)
	assert.Equal(t, StageCompleted, wf.Stages[0].Status)
	assert.Equal(t, StageSkipped, wf.Stages[1].Status)
	assert.Equal(t, StagePending, wf.Stages[2].Status)
}

func TestCloneIsIndependent(t *testing.T) {
	wf := NewReportWorkflow("P1", "C1", "a.edf", 1)
	wf.Stages[0].MarkRunning()

	cp := wf.Clone()
	cp.Stages[0].MarkFailed("boom")
	cp.Status = WorkflowFailed

	assert.Equal(t, StageRunning, wf.Stages[0].Status)
	assert.Equal(t, WorkflowCreated, wf.Status)
}

func TestStageLookup(t *testing.T) {
	wf := NewReportWorkflow("P1", "C1", "a.edf", 1)

	s := wf.Stage(StagePlanGeneration)
	require.NotNil(t, s)
	assert.Equal(t, 3, s.Seq)

	assert.Nil(t, wf.Stage(StageName("NO_SUCH_STAGE")))
}

func TestErrorKinds(t *testing.T) {
	err := StageE(KindExternalTimeout, StageExternalProcessing, "job %s timed out", "j-1")
	assert.Equal(t, KindExternalTimeout, KindOf(err))
	assert.True(t, IsKind(err, KindExternalTimeout))
	assert.Contains(t, err.Error(), "EXTERNAL_PROCESSING")
	assert.Contains(t, err.Error(), "j-1")

	wrapped := fmt.Errorf("stage execution: %w", err)
	assert.Equal(t, KindExternalTimeout, KindOf(wrapped))

	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsKind(errors.New("plain"), KindExternalTimeout))
}
