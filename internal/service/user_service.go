package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/nidoapp/nido-api/internal/models"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
	Delete(ctx context.Context, id string) error
}

// UserService covers the pending/teacher approval flow.
type UserService struct {
	repo   userRepository
	logger *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(repo userRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// ListPending returns users awaiting approval.
func (s *UserService) ListPending(ctx context.Context) ([]models.UserInfo, error) {
	return s.listRole(ctx, models.RolePending)
}

// ListTeachers returns all approved teachers.
func (s *UserService) ListTeachers(ctx context.Context) ([]models.UserInfo, error) {
	return s.listRole(ctx, models.RoleTeacher)
}

func (s *UserService) listRole(ctx context.Context, role models.UserRole) ([]models.UserInfo, error) {
	users, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	infos := make([]models.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, models.UserInfo{ID: u.ID, Username: u.Username, Role: u.Role})
	}
	return infos, nil
}

// Approve promotes a pending user to teacher. Roles never move backwards.
func (s *UserService) Approve(ctx context.Context, id string) (*models.UserInfo, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role == models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user is already an administrator")
	}
	if user.Role != models.RoleTeacher {
		if err := s.repo.UpdateRole(ctx, id, models.RoleTeacher); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve user")
		}
		s.logger.Info("user approved", zap.String("user_id", id), zap.String("username", user.Username))
	}
	return &models.UserInfo{ID: user.ID, Username: user.Username, Role: models.RoleTeacher}, nil
}

// Delete removes a user. The administrator account can never be deleted.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role == models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "the administrator account cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("username", user.Username))
	return nil
}
