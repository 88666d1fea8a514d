package dto

import "signalflow/internal/domain"

// SubmitReportForm binds the multipart fields of POST /reports. The file
// part itself is read by the handler.
type SubmitReportForm struct {
	PatientID string `form:"patient_id" binding:"required"`
	ClinicID  string `form:"clinic_id" binding:"required"`
}

type SubmitReportResponse struct {
	WorkflowID string `json:"workflow_id"`
}

type ErrorResponse struct {
	Kind  domain.Kind `json:"kind,omitempty"`
	Error string      `json:"error"`
}
