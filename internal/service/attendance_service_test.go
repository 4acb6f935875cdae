package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nidoapp/nido-api/internal/models"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
)

type fakeAttendanceRepo struct {
	batches  [][]models.AttendanceRecord
	batchErr error
	history  []models.AttendanceHistoryRow
}

func (f *fakeAttendanceRepo) RecordBatch(ctx context.Context, records []models.AttendanceRecord) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	f.batches = append(f.batches, records)
	return nil
}

func (f *fakeAttendanceRepo) History(ctx context.Context) ([]models.AttendanceHistoryRow, error) {
	return f.history, nil
}

type fakeGroupResolver struct {
	groups map[string]*models.Group
}

func (f *fakeGroupResolver) GetByID(ctx context.Context, id string) (*models.Group, error) {
	if group, ok := f.groups[id]; ok {
		return group, nil
	}
	return nil, sql.ErrNoRows
}

func newTestAttendanceService(repo *fakeAttendanceRepo, groups *fakeGroupResolver) *AttendanceService {
	svc := NewAttendanceService(repo, groups, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	}
	return svc
}

func TestAttendanceServiceRecordWritesWholeBatchForToday(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	groups := &fakeGroupResolver{groups: map[string]*models.Group{"g1": {ID: "g1", Name: "Sala Roja"}}}
	svc := newTestAttendanceService(repo, groups)

	err := svc.Record(context.Background(), RecordAttendanceRequest{
		GroupID: "g1",
		Records: []AttendanceRecordInput{
			{StudentID: "s1", Status: models.AttendanceStatusPresent},
			{StudentID: "s2", Status: models.AttendanceStatusAbsent},
		},
	})
	require.NoError(t, err)
	require.Len(t, repo.batches, 1)

	batch := repo.batches[0]
	require.Len(t, batch, 2)
	wantDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, rec := range batch {
		assert.Equal(t, wantDate, rec.Date)
		assert.Equal(t, "g1", rec.GroupID)
	}
}

func TestAttendanceServiceRecordRejectsEmptyBatch(t *testing.T) {
	svc := newTestAttendanceService(&fakeAttendanceRepo{}, &fakeGroupResolver{})

	err := svc.Record(context.Background(), RecordAttendanceRequest{GroupID: "g1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceRecordRejectsUnknownStatus(t *testing.T) {
	groups := &fakeGroupResolver{groups: map[string]*models.Group{"g1": {ID: "g1"}}}
	repo := &fakeAttendanceRepo{}
	svc := newTestAttendanceService(repo, groups)

	err := svc.Record(context.Background(), RecordAttendanceRequest{
		GroupID: "g1",
		Records: []AttendanceRecordInput{{StudentID: "s1", Status: "late"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.batches)
}

func TestAttendanceServiceRecordUnknownGroup(t *testing.T) {
	svc := newTestAttendanceService(&fakeAttendanceRepo{}, &fakeGroupResolver{})

	err := svc.Record(context.Background(), RecordAttendanceRequest{
		GroupID: "ghost",
		Records: []AttendanceRecordInput{{StudentID: "s1", Status: models.AttendanceStatusPresent}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceExportHistoryCSV(t *testing.T) {
	repo := &fakeAttendanceRepo{history: []models.AttendanceHistoryRow{
		{ID: "a1", Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Status: models.AttendanceStatusPresent, StudentName: "Ana", GroupName: "Sala Roja"},
	}}
	svc := newTestAttendanceService(repo, &fakeGroupResolver{})

	result, err := svc.ExportHistory(context.Background(), ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "attendance-20260302.csv", result.Filename)

	content := string(result.Content)
	assert.True(t, strings.Contains(content, "Date,Group,Student,Status"))
	assert.True(t, strings.Contains(content, "2026-03-01,Sala Roja,Ana,present"))
}

func TestAttendanceServiceExportHistoryPDF(t *testing.T) {
	repo := &fakeAttendanceRepo{history: []models.AttendanceHistoryRow{
		{ID: "a1", Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Status: models.AttendanceStatusAbsent, StudentName: "Luis", GroupName: "Sala Azul"},
	}}
	svc := newTestAttendanceService(repo, &fakeGroupResolver{})

	result, err := svc.ExportHistory(context.Background(), ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.NotEmpty(t, result.Content)
}

func TestAttendanceServiceExportHistoryUnknownFormat(t *testing.T) {
	svc := newTestAttendanceService(&fakeAttendanceRepo{}, &fakeGroupResolver{})

	_, err := svc.ExportHistory(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
