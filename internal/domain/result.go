package domain

import "time"

// UploadResult is the payload of the Upload stage.
type UploadResult struct {
	FileRef string `json:"file_ref"`
}

// SignalMetrics is the payload returned by the external signal processor
// and recorded as the ExternalProcessing stage result.
type SignalMetrics struct {
	MeanHeartRate  float64  `json:"mean_heart_rate"`
	MinHeartRate   float64  `json:"min_heart_rate"`
	MaxHeartRate   float64  `json:"max_heart_rate"`
	QTIntervalMs   float64  `json:"qt_interval_ms"`
	RhythmLabels   []string `json:"rhythm_labels"`
	ArtifactRatio  float64  `json:"artifact_ratio"`
	DurationSecond float64  `json:"duration_seconds"`
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

// AnalysisResult is the payload of the SecondaryAnalysis stage: a risk
// classification with human-readable findings and recommendations.
type AnalysisResult struct {
	Risk            RiskLevel `json:"risk"`
	Rhythm          string    `json:"rhythm"`
	Findings        []string  `json:"findings"`
	Recommendations []string  `json:"recommendations"`
}

// CarePlan is the payload of the PlanGeneration stage.
type CarePlan struct {
	FollowUpDays     int      `json:"follow_up_days"`
	Actions          []string `json:"actions"`
	ReferralRequired bool     `json:"referral_required"`
}

// FinalReport is the consolidated output assembled by Finalization and
// stored as the workflow's final result.
type FinalReport struct {
	WorkflowID string `json:"workflow_id"`
	PatientID  string `json:"patient_id"`
	ClinicID   string `json:"clinic_id"`
	FileRef    string `json:"file_ref"`

	Metrics  SignalMetrics  `json:"metrics"`
	Analysis AnalysisResult `json:"analysis"`
	Plan     CarePlan       `json:"plan"`

	ProcessingSeconds float64   `json:"processing_seconds"`
	QualityScore      int       `json:"quality_score"`
	GeneratedAt       time.Time `json:"generated_at"`
}
