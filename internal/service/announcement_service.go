package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nidoapp/nido-api/internal/models"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
)

type announcementRepository interface {
	Latest(ctx context.Context) (*models.Announcement, error)
	Replace(ctx context.Context, announcement *models.Announcement) error
	Clear(ctx context.Context) error
}

// PublishAnnouncementRequest carries a new announcement.
type PublishAnnouncementRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// AnnouncementService manages the single latest-wins notice.
type AnnouncementService struct {
	repo   announcementRepository
	logger *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, logger *zap.Logger) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, logger: logger}
}

// Latest returns the current announcement, or nil when the slot is empty.
func (s *AnnouncementService) Latest(ctx context.Context) (*models.Announcement, error) {
	announcement, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	return announcement, nil
}

// Publish replaces whatever announcement exists with the new one.
func (s *AnnouncementService) Publish(ctx context.Context, req PublishAnnouncementRequest) (*models.Announcement, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if req.Title == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title is required")
	}
	if req.Message == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message is required")
	}

	announcement := &models.Announcement{Title: req.Title, Message: req.Message}
	if err := s.repo.Replace(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish announcement")
	}
	s.logger.Info("announcement published", zap.String("announcement_id", announcement.ID))
	return announcement, nil
}

// Clear empties the announcement slot.
func (s *AnnouncementService) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear announcement")
	}
	s.logger.Info("announcement cleared")
	return nil
}
