package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type StageName string

const (
	StageUpload             StageName = "UPLOAD"
	StageExternalProcessing StageName = "EXTERNAL_PROCESSING"
	StageSecondaryAnalysis  StageName = "SECONDARY_ANALYSIS"
	StagePlanGeneration     StageName = "PLAN_GENERATION"
	StageFinalization       StageName = "FINALIZATION"
)

// PipelineStages is the fixed execution order. Stages are always attempted
// in this order, one at a time, never reordered.
var PipelineStages = []StageName{
	StageUpload,
	StageExternalProcessing,
	StageSecondaryAnalysis,
	StagePlanGeneration,
	StageFinalization,
}

type StageStatus string

const (
	StagePending   StageStatus = "PENDING"
	StageRunning   StageStatus = "RUNNING"
	StageCompleted StageStatus = "COMPLETED"
	StageFailed    StageStatus = "FAILED"
	StageSkipped   StageStatus = "SKIPPED"
)

// StageState tracks one pipeline stage of a workflow. Result is the opaque
// payload produced by the stage and consumed as input by the next.
type StageState struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"-"`
	WorkflowID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	Seq        int       `gorm:"not null" json:"seq"`

	Name   StageName   `gorm:"type:varchar(30);not null" json:"name"`
	Status StageStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Error  string         `gorm:"type:text" json:"error,omitempty"`
	Result datatypes.JSON `gorm:"type:jsonb" json:"result,omitempty"`
}

func (StageState) TableName() string { return "report_workflow_stages" }

func (s *StageState) MarkRunning() {
	now := time.Now().UTC()
	s.Status = StageRunning
	s.StartedAt = &now
}

func (s *StageState) MarkCompleted(result datatypes.JSON) {
	now := time.Now().UTC()
	s.Status = StageCompleted
	s.Result = result
	s.CompletedAt = &now
}

func (s *StageState) MarkFailed(errMsg string) {
	now := time.Now().UTC()
	s.Status = StageFailed
	s.Error = errMsg
	s.CompletedAt = &now
}
