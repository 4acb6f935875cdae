package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	sweepJobAttendance = "attendance"
	sweepJobActivities = "activities"
)

type attendanceSweepRepository interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type activitySweepRepository interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) ([]string, error)
}

// RetentionConfig bounds how far back records are kept and how often sweeps run.
type RetentionConfig struct {
	AttendanceWindow   time.Duration
	AttendanceInterval time.Duration
	ActivityWindow     time.Duration
	ActivityInterval   time.Duration
}

// RetentionService periodically prunes expired attendance records and gallery
// activities. Activity rows are always removed before their files.
type RetentionService struct {
	attendance attendanceSweepRepository
	activities activitySweepRepository
	reclaimer  *FileReclaimer
	metrics    *MetricsService
	cache      *CacheService
	cfg        RetentionConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewRetentionService constructs the sweeper.
func NewRetentionService(attendance attendanceSweepRepository, activities activitySweepRepository, reclaimer *FileReclaimer, metrics *MetricsService, cache *CacheService, cfg RetentionConfig, logger *zap.Logger) *RetentionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AttendanceInterval <= 0 {
		cfg.AttendanceInterval = 24 * time.Hour
	}
	if cfg.ActivityInterval <= 0 {
		cfg.ActivityInterval = 24 * time.Hour
	}
	return &RetentionService{
		attendance: attendance,
		activities: activities,
		reclaimer:  reclaimer,
		metrics:    metrics,
		cache:      cache,
		cfg:        cfg,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Start runs one immediate sweep of each kind and then keeps sweeping on the
// configured intervals until the context is cancelled.
func (s *RetentionService) Start(ctx context.Context) {
	go s.loop(ctx, s.cfg.AttendanceInterval, s.SweepAttendance)
	go s.loop(ctx, s.cfg.ActivityInterval, s.SweepActivities)
}

func (s *RetentionService) loop(ctx context.Context, interval time.Duration, sweep func(context.Context)) {
	sweep(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}

// SweepAttendance removes attendance records older than the retention window.
func (s *RetentionService) SweepAttendance(ctx context.Context) {
	cutoff := s.now().Add(-s.cfg.AttendanceWindow)
	deleted, err := s.attendance.DeleteOlderThan(ctx, cutoff)
	if s.metrics != nil {
		s.metrics.ObserveSweep(sweepJobAttendance, deleted, err)
	}
	if err != nil {
		s.logger.Error("attendance sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("attendance sweep complete", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
}

// SweepActivities removes expired gallery rows, then schedules their files for
// background reclamation.
func (s *RetentionService) SweepActivities(ctx context.Context) {
	cutoff := s.now().Add(-s.cfg.ActivityWindow)
	urls, err := s.activities.DeleteExpired(ctx, cutoff)
	if s.metrics != nil {
		s.metrics.ObserveSweep(sweepJobActivities, int64(len(urls)), err)
	}
	if err != nil {
		s.logger.Error("activity sweep failed", zap.Error(err))
		return
	}
	if len(urls) == 0 {
		return
	}
	for _, url := range urls {
		s.reclaimer.Reclaim(url)
	}
	s.cache.Invalidate(ctx, activitiesCacheKey)
	s.logger.Info("activity sweep complete", zap.Int("deleted", len(urls)), zap.Time("cutoff", cutoff))
}
