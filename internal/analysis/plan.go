package analysis

import (
	"fmt"

	"signalflow/internal/domain"
)

// BuildPlan turns an analysis result into a care plan. Follow-up cadence is
// driven purely by the risk level.
func BuildPlan(a *domain.AnalysisResult) (*domain.CarePlan, error) {
	if a == nil {
		return nil, fmt.Errorf("missing analysis result")
	}

	switch a.Risk {
	case domain.RiskHigh:
		return &domain.CarePlan{
			FollowUpDays:     7,
			ReferralRequired: true,
			Actions: []string{
				"refer to cardiology within one week",
				"provide patient with symptom diary",
			},
		}, nil
	case domain.RiskModerate:
		return &domain.CarePlan{
			FollowUpDays: 30,
			Actions: []string{
				"repeat recording in 30 days",
				"review lifestyle and medication adherence",
			},
		}, nil
	case domain.RiskLow:
		return &domain.CarePlan{
			FollowUpDays: 180,
			Actions: []string{
				"routine follow-up in 6 months",
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown risk level %q", a.Risk)
	}
}
