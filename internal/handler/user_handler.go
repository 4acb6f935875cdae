package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nidoapp/nido-api/internal/models"
	"github.com/nidoapp/nido-api/pkg/response"
)

type userService interface {
	ListPending(ctx context.Context) ([]models.UserInfo, error)
	ListTeachers(ctx context.Context) ([]models.UserInfo, error)
	Approve(ctx context.Context, id string) (*models.UserInfo, error)
	Delete(ctx context.Context, id string) error
}

// UserHandler manages account administration endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler constructs the handler.
func NewUserHandler(service userService) *UserHandler {
	return &UserHandler{service: service}
}

// ListPending godoc
// @Summary List accounts awaiting approval
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/pending [get]
func (h *UserHandler) ListPending(c *gin.Context) {
	users, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}

// ListTeachers godoc
// @Summary List approved teacher accounts
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/teachers [get]
func (h *UserHandler) ListTeachers(c *gin.Context) {
	users, err := h.service.ListTeachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}

// Approve godoc
// @Summary Approve a pending account
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/approve/{id} [post]
func (h *UserHandler) Approve(c *gin.Context) {
	info, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info)
}

// Delete godoc
// @Summary Delete an account
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
