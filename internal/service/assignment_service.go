package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/nidoapp/nido-api/internal/models"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
)

type assignmentRepository interface {
	ListByGroup(ctx context.Context, groupID string) ([]models.AssignedTeacher, error)
	Assign(ctx context.Context, groupID, userID string) error
	Unassign(ctx context.Context, groupID, userID string) error
}

type assignmentGroupResolver interface {
	GetByID(ctx context.Context, id string) (*models.Group, error)
}

// AssignmentService manages teacher-to-group assignments.
type AssignmentService struct {
	repo   assignmentRepository
	groups assignmentGroupResolver
	logger *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(repo assignmentRepository, groups assignmentGroupResolver, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, groups: groups, logger: logger}
}

// List returns teachers assigned to a group.
func (s *AssignmentService) List(ctx context.Context, groupID string) ([]models.AssignedTeacher, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	teachers, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return teachers, nil
}

// Assign links a user to a group. Assigning an existing pair is a no-op.
func (s *AssignmentService) Assign(ctx context.Context, groupID, userID string) error {
	if userID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "user_id is required")
	}
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if err := s.repo.Assign(ctx, groupID, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign teacher")
	}
	s.logger.Info("teacher assigned", zap.String("group_id", groupID), zap.String("user_id", userID))
	return nil
}

// Unassign removes the pair. Removing an absent pair is a no-op.
func (s *AssignmentService) Unassign(ctx context.Context, groupID, userID string) error {
	if err := s.repo.Unassign(ctx, groupID, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unassign teacher")
	}
	return nil
}
