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

type activityService interface {
	List(ctx context.Context) ([]models.Activity, bool, error)
	Upload(ctx context.Context, req service.UploadActivityRequest) (*models.Activity, error)
	Delete(ctx context.Context, id string) error
}

// ActivityHandler manages the media gallery endpoints.
type ActivityHandler struct {
	service activityService
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service activityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// List godoc
// @Summary List gallery activities
// @Tags Activities
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	activities, cached, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	var meta map[string]interface{}
	if cached {
		meta = map[string]interface{}{"cache": "hit"}
	}
	response.JSON(c, http.StatusOK, activities, meta)
}

// Upload godoc
// @Summary Upload a gallery photo or video
// @Tags Activities
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Media file"
// @Param description formData string false "Description"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activities [post]
func (h *ActivityHandler) Upload(c *gin.Context) {
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

	var description *string
	if value := strings.TrimSpace(c.PostForm("description")); value != "" {
		description = &value
	}

	activity, err := h.service.Upload(c.Request.Context(), service.UploadActivityRequest{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Description: description,
		Content:     src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// Delete godoc
// @Summary Delete a gallery activity
// @Tags Activities
// @Produce json
// @Param id path string true "Activity ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /activities/{id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
