package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WorkflowStatus string

const (
	WorkflowCreated   WorkflowStatus = "CREATED"
	WorkflowRunning   WorkflowStatus = "RUNNING"
	WorkflowCompleted WorkflowStatus = "COMPLETED"
	WorkflowFailed    WorkflowStatus = "FAILED"
	WorkflowCancelled WorkflowStatus = "CANCELLED"
)

// ReportWorkflow is one end-to-end run of the five-stage report pipeline
// for a single submitted biosignal file. The persisted row is authoritative;
// the in-memory registry only caches the latest saved snapshot.
type ReportWorkflow struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`

	// Opaque foreign references, owned by the clinic-facing layer.
	PatientID string `gorm:"type:varchar(100);index;not null" json:"patient_id"`
	ClinicID  string `gorm:"type:varchar(100);index;not null" json:"clinic_id"`

	FileName string `gorm:"type:varchar(255);not null" json:"file_name"`
	FileSize int64  `gorm:"not null" json:"file_size"`
	FileRef  string `gorm:"type:varchar(512)" json:"file_ref,omitempty"` // set after Upload

	Status WorkflowStatus `gorm:"type:varchar(20);index;default:'CREATED'" json:"status"`

	Stages []StageState `gorm:"foreignKey:WorkflowID" json:"stages"`

	FailureKind   Kind           `gorm:"type:varchar(40)" json:"failure_kind,omitempty"`
	FailureReason string         `gorm:"type:text" json:"failure_reason,omitempty"`
	FinalResult   datatypes.JSON `gorm:"type:jsonb" json:"final_result,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"-"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (ReportWorkflow) TableName() string { return "report_workflows" }

// NewReportWorkflow builds a CREATED record with all five stages PENDING.
func NewReportWorkflow(patientID, clinicID, fileName string, fileSize int64) *ReportWorkflow {
	id := uuid.New()

	stages := make([]StageState, 0, len(PipelineStages))
	for seq, name := range PipelineStages {
		stages = append(stages, StageState{
			ID:         uuid.New(),
			WorkflowID: id,
			Seq:        seq,
			Name:       name,
			Status:     StagePending,
		})
	}

	return &ReportWorkflow{
		ID:        id,
		PatientID: patientID,
		ClinicID:  clinicID,
		FileName:  fileName,
		FileSize:  fileSize,
		Status:    WorkflowCreated,
		Stages:    stages,
		CreatedAt: time.Now().UTC(),
	}
}

func (w *ReportWorkflow) IsTerminal() bool {
	return w.Status == WorkflowCompleted || w.Status == WorkflowFailed || w.Status == WorkflowCancelled
}

// Stage returns the state for the named stage. The pipeline is fixed, so a
// miss only happens on a corrupted record.
func (w *ReportWorkflow) Stage(name StageName) *StageState {
	for i := range w.Stages {
		if w.Stages[i].Name == name {
			return &w.Stages[i]
		}
	}
	return nil
}

// Fail marks the workflow terminally failed with the triggering error
// recorded verbatim.
func (w *ReportWorkflow) Fail(kind Kind, reason string) {
	now := time.Now().UTC()
	w.Status = WorkflowFailed
	w.FailureKind = kind
	w.FailureReason = reason
	w.CompletedAt = &now
}

// Complete marks the workflow terminally completed with the consolidated
// report payload.
func (w *ReportWorkflow) Complete(finalResult datatypes.JSON) {
	now := time.Now().UTC()
	w.Status = WorkflowCompleted
	w.FinalResult = finalResult
	w.CompletedAt = &now
}

// CancelNow marks the workflow cancelled. The in-flight stage, if any, is
// marked SKIPPED rather than FAILED so that FAILED stays reserved for real
// stage errors.
func (w *ReportWorkflow) CancelNow() {
	now := time.Now().UTC()
	for i := range w.Stages {
		if w.Stages[i].Status == StageRunning {
			w.Stages[i].Status = StageSkipped
			w.Stages[i].CompletedAt = &now
		}
	}
	w.Status = WorkflowCancelled
	w.CompletedAt = &now
}

// Clone returns a deep copy safe to hand to concurrent readers.
func (w *ReportWorkflow) Clone() *ReportWorkflow {
	cp := *w
	cp.Stages = make([]StageState, len(w.Stages))
	copy(cp.Stages, w.Stages)
	if w.FinalResult != nil {
		cp.FinalResult = make(datatypes.JSON, len(w.FinalResult))
		copy(cp.FinalResult, w.FinalResult)
	}
	return &cp
}
