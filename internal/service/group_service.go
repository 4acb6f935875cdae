package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nidoapp/nido-api/internal/models"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
)

const groupsCacheKey = "nido:groups"

type groupRepository interface {
	List(ctx context.Context) ([]models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id string) (bool, error)
}

// CreateGroupRequest is the payload for creating a classroom.
type CreateGroupRequest struct {
	Name         string  `json:"nombre" validate:"required,max=100"`
	ScheduleText *string `json:"horario"`
	HomeroomName *string `json:"profesor"`
}

// GroupService manages classroom groups.
type GroupService struct {
	repo   groupRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewGroupService constructs the service.
func NewGroupService(repo groupRepository, cache *CacheService, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{repo: repo, cache: cache, logger: logger}
}

// List returns all groups, served from cache when warm.
func (s *GroupService) List(ctx context.Context) ([]models.Group, bool, error) {
	var cached []models.Group
	if hit, _ := s.cache.Get(ctx, groupsCacheKey, &cached); hit {
		return cached, true, nil
	}
	groups, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	_ = s.cache.Set(ctx, groupsCacheKey, groups)
	return groups, false, nil
}

// Create adds a new group.
func (s *GroupService) Create(ctx context.Context, req CreateGroupRequest) (*models.Group, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "group name is required")
	}
	group := &models.Group{
		Name:         req.Name,
		ScheduleText: req.ScheduleText,
		HomeroomName: req.HomeroomName,
	}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}
	s.cache.Invalidate(ctx, groupsCacheKey)
	s.logger.Info("group created", zap.String("group_id", group.ID), zap.String("name", group.Name))
	return group, nil
}

// Delete removes a group; its students are detached, not deleted.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete group")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}
	s.cache.Invalidate(ctx, groupsCacheKey)
	s.logger.Info("group deleted", zap.String("group_id", id))
	return nil
}
