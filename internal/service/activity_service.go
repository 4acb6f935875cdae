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

const activitiesCacheKey = "nido:activities"

type activityRepository interface {
	List(ctx context.Context) ([]models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	DeleteReturningURL(ctx context.Context, id string) (string, error)
}

// UploadActivityRequest carries a gallery upload.
type UploadActivityRequest struct {
	Filename    string
	ContentType string
	Size        int64
	Description *string
	Content     io.Reader
}

// ActivityService manages the media gallery.
type ActivityService struct {
	repo        activityRepository
	store       *storage.UploadStore
	reclaimer   *FileReclaimer
	cache       *CacheService
	metrics     *MetricsService
	maxFileSize int64
	logger      *zap.Logger
}

// NewActivityService constructs the service.
func NewActivityService(repo activityRepository, store *storage.UploadStore, reclaimer *FileReclaimer, cache *CacheService, metrics *MetricsService, maxFileSize int64, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		repo:        repo,
		store:       store,
		reclaimer:   reclaimer,
		cache:       cache,
		metrics:     metrics,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// List returns all gallery entries, newest first.
func (s *ActivityService) List(ctx context.Context) ([]models.Activity, bool, error) {
	var cached []models.Activity
	if hit, _ := s.cache.Get(ctx, activitiesCacheKey, &cached); hit {
		return cached, true, nil
	}
	activities, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	_ = s.cache.Set(ctx, activitiesCacheKey, activities)
	return activities, false, nil
}

// Upload stores the media file and creates the gallery row. When the row
// insert fails the freshly written file is removed so nothing is orphaned.
func (s *ActivityService) Upload(ctx context.Context, req UploadActivityRequest) (*models.Activity, error) {
	if req.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a file is required")
	}
	if s.maxFileSize > 0 && req.Size > s.maxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.maxFileSize))
	}

	filename, err := s.store.SaveStream(req.Filename, req.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}

	activity := &models.Activity{
		FileURL:     s.store.URL(filename),
		FileType:    fileTypeFromContentType(req.ContentType),
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, activity); err != nil {
		if cleanupErr := s.store.Delete(filename); cleanupErr != nil {
			s.logger.Warn("failed to remove upload after insert error", zap.String("filename", filename), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}

	if s.metrics != nil {
		s.metrics.RecordUpload(req.Size)
	}
	s.cache.Invalidate(ctx, activitiesCacheKey)
	s.logger.Info("activity uploaded",
		zap.String("activity_id", activity.ID),
		zap.String("file_type", string(activity.FileType)),
		zap.Int64("size", req.Size),
	)
	return activity, nil
}

// Delete removes a gallery entry. The row goes first; the file is reclaimed
// in the background afterwards.
func (s *ActivityService) Delete(ctx context.Context, id string) error {
	fileURL, err := s.repo.DeleteReturningURL(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity")
	}
	if fileURL == "" {
		return appErrors.Clone(appErrors.ErrNotFound, "activity not found")
	}
	s.reclaimer.Reclaim(fileURL)
	s.cache.Invalidate(ctx, activitiesCacheKey)
	s.logger.Info("activity deleted", zap.String("activity_id", id))
	return nil
}

func fileTypeFromContentType(contentType string) models.ActivityFileType {
	if strings.HasPrefix(contentType, "video/") {
		return models.ActivityFileVideo
	}
	return models.ActivityFileImage
}
