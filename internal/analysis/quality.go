package analysis

import (
	"time"

	"signalflow/internal/domain"
)

const (
	baseQualityScore   = 100
	failedStagePenalty = 20
	slowPenalty        = 10

	// Recordings that take longer than this end to end lose the slow
	// penalty, regardless of why.
	slowCeiling = 10 * time.Minute
)

// QualityScore derives the report quality from the stage states and the
// total processing time. A failed stage costs failedStagePenalty points;
// under the first-failure-is-terminal policy a workflow that reaches
// scoring has no failed stages, so that deduction is kept for parity with
// the documented policy rather than for a path that can currently occur.
func QualityScore(stages []domain.StageState, elapsed time.Duration) int {
	score := baseQualityScore

	for _, s := range stages {
		if s.Status == domain.StageFailed {
			score -= failedStagePenalty
		}
	}

	if elapsed > slowCeiling {
		score -= slowPenalty
	}

	if score < 0 {
		score = 0
	}
	return score
}
