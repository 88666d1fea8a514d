package handler

import (
	"io"
	"net/http"

	"signalflow/internal/api/dto"
	"signalflow/internal/domain"
	"signalflow/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// SubmitReport accepts a multipart upload (file + patient/clinic refs) and
// returns the workflow id immediately; the pipeline runs asynchronously.
func (h *ReportHandler) SubmitReport(c *gin.Context) {
	var form dto.SubmitReportForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Kind: domain.KindInvalidInput, Error: err.Error()})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Kind: domain.KindInvalidInput, Error: "file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Kind: domain.KindInvalidInput, Error: err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Kind: domain.KindInvalidInput, Error: err.Error()})
		return
	}

	workflowID, err := h.service.Start(c.Request.Context(), data, fileHeader.Filename, form.PatientID, form.ClinicID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.SubmitReportResponse{WorkflowID: workflowID})
}

// GetReportStatus returns the full per-stage breakdown so the caller can
// show exactly which stage failed and why.
func (h *ReportHandler) GetReportStatus(c *gin.Context) {
	wf, err := h.service.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (h *ReportHandler) CancelReport(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancellation requested"})
}

func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case domain.KindInvalidInput:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindAlreadyTerminal:
		status = http.StatusConflict
	}

	c.JSON(status, dto.ErrorResponse{Kind: kind, Error: err.Error()})
}
