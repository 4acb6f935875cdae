package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nidoapp/nido-api/internal/models"
	"github.com/nidoapp/nido-api/internal/service"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
	"github.com/nidoapp/nido-api/pkg/response"
)

type attendanceService interface {
	Record(ctx context.Context, req service.RecordAttendanceRequest) error
	History(ctx context.Context) ([]models.AttendanceHistoryRow, error)
	ExportHistory(ctx context.Context, format service.ExportFormat) (*service.ExportResult, error)
}

// AttendanceHandler manages attendance endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Record godoc
// @Summary Record attendance for a group
// @Description Upserts today's attendance for every student in the batch
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RecordAttendanceRequest true "Attendance batch"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	if err := h.service.Record(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"recorded": len(req.Records)})
}

// History godoc
// @Summary List attendance history
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/history [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	rows, err := h.service.History(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// ExportHistory godoc
// @Summary Export attendance history
// @Description Downloads the attendance history as CSV or PDF
// @Tags Attendance
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /attendance/history/export [get]
func (h *AttendanceHandler) ExportHistory(c *gin.Context) {
	result, err := h.service.ExportHistory(c.Request.Context(), service.ExportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
