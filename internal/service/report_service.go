package service

import (
	"context"

	"signalflow/internal/domain"
	"signalflow/internal/orchestrator"

	"github.com/google/uuid"
)

// ReportService is the API-facing facade over the orchestrator. It owns id
// parsing so handlers never deal with uuids directly.
type ReportService interface {
	Start(ctx context.Context, file []byte, fileName, patientID, clinicID string) (string, error)
	GetStatus(ctx context.Context, workflowID string) (*domain.ReportWorkflow, error)
	Cancel(ctx context.Context, workflowID string) error
}

type reportService struct {
	orch *orchestrator.Orchestrator
}

// Constructor
func NewReportService(orch *orchestrator.Orchestrator) ReportService {
	return &reportService{orch: orch}
}

func (s *reportService) Start(ctx context.Context, file []byte, fileName, patientID, clinicID string) (string, error) {
	id, err := s.orch.Start(ctx, file, fileName, patientID, clinicID)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *reportService) GetStatus(ctx context.Context, workflowID string) (*domain.ReportWorkflow, error) {
	id, err := parseID(workflowID)
	if err != nil {
		return nil, err
	}
	return s.orch.GetStatus(ctx, id)
}

func (s *reportService) Cancel(ctx context.Context, workflowID string) error {
	id, err := parseID(workflowID)
	if err != nil {
		return err
	}
	return s.orch.Cancel(ctx, id)
}

func parseID(workflowID string) (uuid.UUID, error) {
	id, err := uuid.Parse(workflowID)
	if err != nil {
		return uuid.Nil, domain.E(domain.KindInvalidInput, "invalid workflow id %q", workflowID)
	}
	return id, nil
}
