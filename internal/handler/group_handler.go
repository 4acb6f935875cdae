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

type groupService interface {
	List(ctx context.Context) ([]models.Group, bool, error)
	Create(ctx context.Context, req service.CreateGroupRequest) (*models.Group, error)
	Delete(ctx context.Context, id string) error
}

type assignmentService interface {
	List(ctx context.Context, groupID string) ([]models.AssignedTeacher, error)
	Assign(ctx context.Context, groupID, userID string) error
	Unassign(ctx context.Context, groupID, userID string) error
}

// GroupHandler manages classroom group endpoints, including teacher
// assignments.
type GroupHandler struct {
	groups      groupService
	assignments assignmentService
}

// NewGroupHandler constructs the handler.
func NewGroupHandler(groups groupService, assignments assignmentService) *GroupHandler {
	return &GroupHandler{groups: groups, assignments: assignments}
}

// List godoc
// @Summary List groups
// @Tags Groups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	groups, cached, err := h.groups.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	var meta map[string]interface{}
	if cached {
		meta = map[string]interface{}{"cache": "hit"}
	}
	response.JSON(c, http.StatusOK, groups, meta)
}

// Create godoc
// @Summary Create group
// @Tags Groups
// @Accept json
// @Produce json
// @Param payload body service.CreateGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var req service.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid group payload"))
		return
	}

	group, err := h.groups.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// Delete godoc
// @Summary Delete group
// @Description Removes a group; enrolled students are detached, not deleted
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /groups/{id} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.groups.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListTeachers godoc
// @Summary List teachers assigned to a group
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /groups/{id}/teachers [get]
func (h *GroupHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.assignments.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers)
}

// AssignTeacher godoc
// @Summary Assign a teacher to a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body object true "User reference"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /groups/{id}/teachers [post]
func (h *GroupHandler) AssignTeacher(c *gin.Context) {
	var payload struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	if err := h.assignments.Assign(c.Request.Context(), c.Param("id"), payload.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnassignTeacher godoc
// @Summary Remove a teacher from a group
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Param userId path string true "User ID"
// @Success 204
// @Router /groups/{id}/teachers/{userId} [delete]
func (h *GroupHandler) UnassignTeacher(c *gin.Context) {
	if err := h.assignments.Unassign(c.Request.Context(), c.Param("id"), c.Param("userId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
