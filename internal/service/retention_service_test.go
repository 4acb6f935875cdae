package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nidoapp/nido-api/pkg/storage"
)

type fakeAttendanceSweeper struct {
	cutoffs []time.Time
	deleted int64
	err     error
}

func (f *fakeAttendanceSweeper) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.deleted, f.err
}

type fakeActivitySweeper struct {
	cutoffs []time.Time
	urls    []string
	err     error
}

func (f *fakeActivitySweeper) DeleteExpired(ctx context.Context, cutoff time.Time) ([]string, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.urls, f.err
}

func newTestRetentionService(t *testing.T, attendance *fakeAttendanceSweeper, activities *fakeActivitySweeper) (*RetentionService, *storage.UploadStore, func()) {
	t.Helper()
	store, err := storage.NewUploadStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	reclaimer := NewFileReclaimer(store, 1, 1, 10*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	reclaimer.Start(ctx)

	noCache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	svc := NewRetentionService(attendance, activities, reclaimer, NewMetricsService(), noCache, RetentionConfig{
		AttendanceWindow: 30 * 24 * time.Hour,
		ActivityWindow:   7 * 24 * time.Hour,
	}, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC)
	}
	return svc, store, func() {
		cancel()
		reclaimer.Stop()
	}
}

func TestRetentionServiceSweepAttendanceUsesWindowCutoff(t *testing.T) {
	attendance := &fakeAttendanceSweeper{deleted: 5}
	svc, _, cleanup := newTestRetentionService(t, attendance, &fakeActivitySweeper{})
	defer cleanup()

	svc.SweepAttendance(context.Background())

	require.Len(t, attendance.cutoffs, 1)
	want := time.Date(2026, 1, 31, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, want, attendance.cutoffs[0])
}

func TestRetentionServiceSweepActivitiesReclaimsFiles(t *testing.T) {
	activities := &fakeActivitySweeper{}
	svc, store, cleanup := newTestRetentionService(t, &fakeAttendanceSweeper{}, activities)
	defer cleanup()

	filename := store.GenerateFilename("vieja.jpg")
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), filename), []byte("data"), 0o644))
	activities.urls = []string{store.URL(filename)}

	svc.SweepActivities(context.Background())

	require.Len(t, activities.cutoffs, 1)
	want := time.Date(2026, 2, 23, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, want, activities.cutoffs[0])

	assert.Eventually(t, func() bool {
		return !store.Exists(filename)
	}, time.Second, 10*time.Millisecond)
}

func TestRetentionServiceSweepActivitiesSurvivesRepoError(t *testing.T) {
	activities := &fakeActivitySweeper{err: errors.New("db down")}
	svc, _, cleanup := newTestRetentionService(t, &fakeAttendanceSweeper{}, activities)
	defer cleanup()

	svc.SweepActivities(context.Background())
	assert.Len(t, activities.cutoffs, 1)
}

func TestRetentionServiceSweepAttendanceSurvivesRepoError(t *testing.T) {
	attendance := &fakeAttendanceSweeper{err: errors.New("db down")}
	svc, _, cleanup := newTestRetentionService(t, attendance, &fakeActivitySweeper{})
	defer cleanup()

	svc.SweepAttendance(context.Background())
	assert.Len(t, attendance.cutoffs, 1)
}
