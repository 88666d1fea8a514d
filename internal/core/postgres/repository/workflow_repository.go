package repository

import (
	"context"
	"errors"
	"time"

	"signalflow/internal/core/ports"
	"signalflow/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates the gorm-backed workflow store.
func NewWorkflowRepository(db *gorm.DB) ports.WorkflowStore {
	return &workflowRepository{db: db}
}

func (r *workflowRepository) Create(ctx context.Context, wf *domain.ReportWorkflow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Stages").Create(wf).Error; err != nil {
			return err
		}
		if len(wf.Stages) > 0 {
			if err := tx.Create(&wf.Stages).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Save writes the full snapshot. The status check on the stored row keeps
// terminal records immutable: once COMPLETED, FAILED or CANCELLED is
// persisted, any further save attempt is rejected rather than silently
// ignored.
func (r *workflowRepository) Save(ctx context.Context, wf *domain.ReportWorkflow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current domain.ReportWorkflow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status").
			Where("id = ?", wf.ID).
			First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.E(domain.KindNotFound, "workflow %s not found", wf.ID)
			}
			return err
		}

		if terminalStatus(current.Status) {
			return domain.E(domain.KindAlreadyTerminal, "workflow %s is already %s", wf.ID, current.Status)
		}

		if err := tx.Omit("Stages").Save(wf).Error; err != nil {
			return err
		}
		for i := range wf.Stages {
			if err := tx.Save(&wf.Stages[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *workflowRepository) Load(ctx context.Context, id uuid.UUID) (*domain.ReportWorkflow, error) {
	var wf domain.ReportWorkflow
	err := r.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Where("id = ?", id).
		First(&wf).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.E(domain.KindNotFound, "workflow %s not found", id)
		}
		return nil, err
	}
	return &wf, nil
}

func (r *workflowRepository) ListUnfinished(ctx context.Context, createdBefore time.Time) ([]domain.ReportWorkflow, error) {
	var workflows []domain.ReportWorkflow
	err := r.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Where("status IN ? AND created_at < ?",
			[]domain.WorkflowStatus{domain.WorkflowCreated, domain.WorkflowRunning},
			createdBefore).
		Find(&workflows).Error
	return workflows, err
}

func terminalStatus(s domain.WorkflowStatus) bool {
	return s == domain.WorkflowCompleted || s == domain.WorkflowFailed || s == domain.WorkflowCancelled
}
