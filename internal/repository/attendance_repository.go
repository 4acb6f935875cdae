package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nidoapp/nido-api/internal/models"
)

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// RecordBatch writes all records for one date inside a single transaction.
// Either every row commits or none do. Each row is an upsert on
// (student_id, date), so re-submitting a day replaces prior statuses.
func (r *AttendanceRepository) RecordBatch(ctx context.Context, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance batch: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO attendance (id, student_id, group_id, date, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (student_id, date)
DO UPDATE SET status = EXCLUDED.status, group_id = EXCLUDED.group_id, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, query, rec.ID, rec.StudentID, rec.GroupID, rec.Date, rec.Status, rec.CreatedAt, rec.UpdatedAt); err != nil {
			return fmt.Errorf("insert attendance record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance batch: %w", err)
	}
	committed = true
	return nil
}

// History returns every record joined with student and group names,
// newest dates first, then group name.
func (r *AttendanceRepository) History(ctx context.Context) ([]models.AttendanceHistoryRow, error) {
	const query = `SELECT a.id, a.date, a.status, s.full_name AS student_name, g.name AS group_name
FROM attendance a
JOIN students s ON s.id = a.student_id
JOIN groups g ON g.id = a.group_id
ORDER BY a.date DESC, g.name ASC`
	var rows []models.AttendanceHistoryRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("attendance history: %w", err)
	}
	return rows, nil
}

// DeleteOlderThan removes records dated before the cutoff and reports the
// number of rows swept.
func (r *AttendanceRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM attendance WHERE date < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep attendance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep attendance: %w", err)
	}
	return affected, nil
}
