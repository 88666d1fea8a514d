// Package analysis holds the in-process transforms applied on top of the
// external processor's output: risk classification, care plan generation
// and report quality scoring.
package analysis

import (
	"errors"
	"fmt"
	"strings"

	"signalflow/internal/domain"
)

var ErrMalformedMetrics = errors.New("malformed signal metrics")

// Analyze classifies the processed signal into a risk level with findings
// and recommendations. The input is the ExternalProcessing stage's payload.
func Analyze(metrics *domain.SignalMetrics) (*domain.AnalysisResult, error) {
	if metrics == nil {
		return nil, ErrMalformedMetrics
	}
	if metrics.MeanHeartRate <= 0 || metrics.DurationSecond <= 0 {
		return nil, fmt.Errorf("%w: mean_heart_rate=%.1f duration=%.1f",
			ErrMalformedMetrics, metrics.MeanHeartRate, metrics.DurationSecond)
	}
	if metrics.MinHeartRate > metrics.MaxHeartRate {
		return nil, fmt.Errorf("%w: min_heart_rate %.1f above max %.1f",
			ErrMalformedMetrics, metrics.MinHeartRate, metrics.MaxHeartRate)
	}

	result := &domain.AnalysisResult{
		Risk:   domain.RiskLow,
		Rhythm: "Sinus rhythm",
	}

	labels := make(map[string]bool, len(metrics.RhythmLabels))
	for _, l := range metrics.RhythmLabels {
		labels[strings.ToLower(l)] = true
	}

	switch {
	case labels["afib"]:
		result.Rhythm = "Atrial fibrillation"
		result.Risk = domain.RiskHigh
		result.Findings = append(result.Findings, "atrial fibrillation episodes detected")
	case labels["vt"]:
		result.Rhythm = "Ventricular tachycardia"
		result.Risk = domain.RiskHigh
		result.Findings = append(result.Findings, "ventricular tachycardia run detected")
	}

	if metrics.MeanHeartRate > 120 || metrics.MeanHeartRate < 40 {
		result.Risk = domain.RiskHigh
		result.Findings = append(result.Findings,
			fmt.Sprintf("mean heart rate %.0f bpm outside safe range", metrics.MeanHeartRate))
	} else if result.Risk != domain.RiskHigh && (metrics.MeanHeartRate > 100 || metrics.MeanHeartRate < 50) {
		result.Risk = domain.RiskModerate
		result.Findings = append(result.Findings,
			fmt.Sprintf("mean heart rate %.0f bpm borderline", metrics.MeanHeartRate))
	}

	if metrics.QTIntervalMs > 480 && result.Risk == domain.RiskLow {
		result.Risk = domain.RiskModerate
		result.Findings = append(result.Findings,
			fmt.Sprintf("prolonged QT interval %.0f ms", metrics.QTIntervalMs))
	}

	if metrics.ArtifactRatio > 0.3 {
		result.Findings = append(result.Findings,
			fmt.Sprintf("high artifact ratio %.2f, interpret with caution", metrics.ArtifactRatio))
	}

	switch result.Risk {
	case domain.RiskHigh:
		result.Recommendations = append(result.Recommendations,
			"urgent cardiology review",
			"consider continuous monitoring")
	case domain.RiskModerate:
		result.Recommendations = append(result.Recommendations,
			"schedule follow-up ECG",
			"review medication for rate control")
	default:
		result.Recommendations = append(result.Recommendations,
			"no immediate action required")
	}

	return result, nil
}
