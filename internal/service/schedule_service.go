package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/nidoapp/nido-api/internal/models"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
	"github.com/nidoapp/nido-api/pkg/storage"
)

type scheduleRepository interface {
	List(ctx context.Context) ([]models.ScheduleDocument, error)
	Create(ctx context.Context, doc *models.ScheduleDocument) error
	DeleteReturningURL(ctx context.Context, id string) (string, error)
}

// UploadScheduleRequest carries a schedule document upload.
type UploadScheduleRequest struct {
	Filename string
	Size     int64
	Title    *string
	Content  io.Reader
}

// ScheduleService manages monthly schedule documents.
type ScheduleService struct {
	repo        scheduleRepository
	store       *storage.UploadStore
	reclaimer   *FileReclaimer
	metrics     *MetricsService
	maxFileSize int64
	logger      *zap.Logger
}

// NewScheduleService constructs the service.
func NewScheduleService(repo scheduleRepository, store *storage.UploadStore, reclaimer *FileReclaimer, metrics *MetricsService, maxFileSize int64, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		repo:        repo,
		store:       store,
		reclaimer:   reclaimer,
		metrics:     metrics,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// List returns all schedule documents, newest first.
func (s *ScheduleService) List(ctx context.Context) ([]models.ScheduleDocument, error) {
	schedules, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return schedules, nil
}

// Upload stores the document and records it.
func (s *ScheduleService) Upload(ctx context.Context, req UploadScheduleRequest) (*models.ScheduleDocument, error) {
	if req.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a file is required")
	}
	if s.maxFileSize > 0 && req.Size > s.maxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.maxFileSize))
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			req.Title = nil
		} else {
			req.Title = &trimmed
		}
	}

	filename, err := s.store.SaveStream(req.Filename, req.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}

	doc := &models.ScheduleDocument{
		Title:   req.Title,
		FileURL: s.store.URL(filename),
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		if cleanupErr := s.store.Delete(filename); cleanupErr != nil {
			s.logger.Warn("failed to remove upload after insert error", zap.String("filename", filename), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}

	if s.metrics != nil {
		s.metrics.RecordUpload(req.Size)
	}
	s.logger.Info("schedule uploaded", zap.String("schedule_id", doc.ID), zap.Int64("size", req.Size))
	return doc, nil
}

// Delete removes a schedule document and reclaims its file.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	fileURL, err := s.repo.DeleteReturningURL(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	if fileURL == "" {
		return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
	}
	s.reclaimer.Reclaim(fileURL)
	s.logger.Info("schedule deleted", zap.String("schedule_id", id))
	return nil
}
