package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nidoapp/nido-api/internal/models"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
	"github.com/nidoapp/nido-api/pkg/export"
)

type attendanceRepository interface {
	RecordBatch(ctx context.Context, records []models.AttendanceRecord) error
	History(ctx context.Context) ([]models.AttendanceHistoryRow, error)
}

type attendanceGroupResolver interface {
	GetByID(ctx context.Context, id string) (*models.Group, error)
}

// RecordAttendanceRequest carries one submission for a group.
type RecordAttendanceRequest struct {
	GroupID string                  `json:"groupId"`
	Records []AttendanceRecordInput `json:"records"`
}

// AttendanceRecordInput is a single per-student outcome.
type AttendanceRecordInput struct {
	StudentID string                  `json:"studentId"`
	Status    models.AttendanceStatus `json:"status"`
}

// ExportFormat selects the history export rendering.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult bundles rendered bytes with response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// AttendanceService records daily attendance batches and serves history.
type AttendanceService struct {
	repo   attendanceRepository
	groups attendanceGroupResolver
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceRepository, groups attendanceGroupResolver, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		repo:   repo,
		groups: groups,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Record writes all records of one submission for today's date as a single
// atomic unit.
func (s *AttendanceService) Record(ctx context.Context, req RecordAttendanceRequest) error {
	if req.GroupID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "group_id is required")
	}
	if len(req.Records) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "records must not be empty")
	}
	if _, err := s.groups.GetByID(ctx, req.GroupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}

	date := truncateToDay(s.now())
	records := make([]models.AttendanceRecord, 0, len(req.Records))
	for _, input := range req.Records {
		if input.StudentID == "" {
			return appErrors.Clone(appErrors.ErrValidation, "student_id is required for every record")
		}
		if !input.Status.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported status %q", input.Status))
		}
		records = append(records, models.AttendanceRecord{
			StudentID: input.StudentID,
			GroupID:   req.GroupID,
			Date:      date,
			Status:    input.Status,
		})
	}

	if err := s.repo.RecordBatch(ctx, records); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	s.logger.Info("attendance recorded",
		zap.String("group_id", req.GroupID),
		zap.Int("records", len(records)),
		zap.Time("date", date),
	)
	return nil
}

// History returns all records joined with student and group names.
func (s *AttendanceService) History(ctx context.Context) ([]models.AttendanceHistoryRow, error) {
	rows, err := s.repo.History(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	return rows, nil
}

// ExportHistory renders the history as a downloadable CSV or PDF report.
func (s *AttendanceService) ExportHistory(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	rows, err := s.History(ctx)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Group", "Student", "Status"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":    row.Date.Format("2006-01-02"),
			"Group":   row.GroupName,
			"Student": row.StudentName,
			"Status":  string(row.Status),
		})
	}

	stamp := s.now().Format("20060102")
	switch strings.ToLower(string(format)) {
	case string(ExportFormatPDF):
		content, err := s.pdf.Render(dataset, "Attendance history")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: fmt.Sprintf("attendance-%s.pdf", stamp)}, nil
	case string(ExportFormatCSV), "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: fmt.Sprintf("attendance-%s.csv", stamp)}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
