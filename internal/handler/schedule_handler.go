package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nidoapp/nido-api/internal/models"
	"github.com/nidoapp/nido-api/internal/service"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
	"github.com/nidoapp/nido-api/pkg/response"
)

type scheduleService interface {
	List(ctx context.Context) ([]models.ScheduleDocument, error)
	Upload(ctx context.Context, req service.UploadScheduleRequest) (*models.ScheduleDocument, error)
	Delete(ctx context.Context, id string) error
}

// ScheduleHandler manages schedule document endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// List godoc
// @Summary List schedule documents
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	schedules, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules)
}

// Upload godoc
// @Summary Upload a schedule document
// @Tags Schedules
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document"
// @Param title formData string false "Title"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "a file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	var title *string
	if value := strings.TrimSpace(c.PostForm("title")); value != "" {
		title = &value
	}

	doc, err := h.service.Upload(c.Request.Context(), service.UploadScheduleRequest{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Title:    title,
		Content:  src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// Delete godoc
// @Summary Delete a schedule document
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
