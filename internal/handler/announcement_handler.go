package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nidoapp/nido-api/internal/models"
	"github.com/nidoapp/nido-api/internal/service"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
	"github.com/nidoapp/nido-api/pkg/response"
)

type announcementService interface {
	Latest(ctx context.Context) (*models.Announcement, error)
	Publish(ctx context.Context, req service.PublishAnnouncementRequest) (*models.Announcement, error)
	Clear(ctx context.Context) error
}

// AnnouncementHandler manages the announcement slot endpoints.
type AnnouncementHandler struct {
	service announcementService
}

// NewAnnouncementHandler constructs the handler.
func NewAnnouncementHandler(service announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

// Latest godoc
// @Summary Get the current announcement
// @Description Returns null data when the slot is empty
// @Tags Announcements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /announcement [get]
func (h *AnnouncementHandler) Latest(c *gin.Context) {
	announcement, err := h.service.Latest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcement)
}

// Publish godoc
// @Summary Publish an announcement
// @Description Replaces any existing announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param payload body service.PublishAnnouncementRequest true "Announcement"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /announcement [post]
func (h *AnnouncementHandler) Publish(c *gin.Context) {
	var req service.PublishAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid announcement payload"))
		return
	}

	announcement, err := h.service.Publish(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, announcement)
}

// Clear godoc
// @Summary Clear the announcement slot
// @Tags Announcements
// @Produce json
// @Success 204
// @Router /announcement [delete]
func (h *AnnouncementHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
