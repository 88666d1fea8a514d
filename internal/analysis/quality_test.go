package analysis

import (
	"testing"
	"time"

	"signalflow/internal/domain"

	"github.com/stretchr/testify/assert"
)

func stagesWithStatuses(statuses ...domain.StageStatus) []domain.StageState {
	out := make([]domain.StageState, len(statuses))
	for i, s := range statuses {
		out[i] = domain.StageState{Seq: i, Status: s}
	}
	return out
}

func TestQualityScoreAllStagesFast(t *testing.T) {
	stages := stagesWithStatuses(
		domain.StageCompleted, domain.StageCompleted, domain.StageCompleted,
		domain.StageCompleted, domain.StageCompleted,
	)
	assert.Equal(t, 100, QualityScore(stages, 90*time.Second))
}

func TestQualityScoreSlowProcessing(t *testing.T) {
	stages := stagesWithStatuses(
		domain.StageCompleted, domain.StageCompleted, domain.StageCompleted,
		domain.StageCompleted, domain.StageCompleted,
	)
	assert.Equal(t, 90, QualityScore(stages, 11*time.Minute))
}

func TestQualityScoreFailedStagePenalty(t *testing.T) {
	// Unreachable in the live pipeline (first failure is terminal), but the
	// documented deduction is preserved.
	stages := stagesWithStatuses(
		domain.StageCompleted, domain.StageFailed, domain.StagePending,
		domain.StagePending, domain.StagePending,
	)
	assert.Equal(t, 80, QualityScore(stages, time.Minute))
}

func TestQualityScoreNeverNegative(t *testing.T) {
	stages := stagesWithStatuses(
		domain.StageFailed, domain.StageFailed, domain.StageFailed,
		domain.StageFailed, domain.StageFailed,
	)
	assert.Equal(t, 0, QualityScore(stages, 20*time.Minute))
}
