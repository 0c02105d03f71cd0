package handlers

import (
	"bytes"
	"net/http"

	"github.com/SAP-F-2025/learning-engine/internal/services"
	"github.com/SAP-F-2025/learning-engine/internal/utils"
	"github.com/SAP-F-2025/learning-engine/internal/validator"
	"github.com/gin-gonic/gin"
)

// ReportHandler streams XLSX or CSV exports of graded answers.
type ReportHandler struct {
	BaseHandler
	reports   services.ReportService
	validator *validator.Validator
}

func NewReportHandler(reports services.ReportService, validator *validator.Validator, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler: NewBaseHandler(logger),
		reports:     reports,
		validator:   validator,
	}
}

// ExportSession writes the graded questions of an open session
// @Router /sessions/{id}/report [get]
func (h *ReportHandler) ExportSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	format, ok := h.format(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	info, err := h.reports.ExportSession(c.Request.Context(), id, format, &buf)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.attach(c, info, &buf)
}

// ExportLedger writes every recorded answer of a lesson
// @Router /lessons/{lesson_id}/report [get]
func (h *ReportHandler) ExportLedger(c *gin.Context) {
	lessonID := ParseStringIDParam(c, "lesson_id")
	if lessonID == "" {
		return
	}
	format, ok := h.format(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Exporting lesson ledger", "lesson_id", lessonID, "format", format)

	var buf bytes.Buffer
	info, err := h.reports.ExportLedger(c.Request.Context(), lessonID, format, &buf)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.attach(c, info, &buf)
}

func (h *ReportHandler) format(c *gin.Context) (string, bool) {
	var req services.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid query", Details: err.Error(), Code: CodeValidation})
		return "", false
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: err, Code: CodeValidation})
		return "", false
	}
	return req.Format, true
}

func (h *ReportHandler) attach(c *gin.Context, info *services.ReportInfo, buf *bytes.Buffer) {
	c.Header("Content-Disposition", "attachment; filename="+info.Filename)
	c.Data(http.StatusOK, info.ContentType, buf.Bytes())
}
