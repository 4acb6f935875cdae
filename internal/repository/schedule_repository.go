package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nidoapp/nido-api/internal/models"
)

// ScheduleRepository handles persistence for schedule documents.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns all schedule documents, newest first.
func (r *ScheduleRepository) List(ctx context.Context) ([]models.ScheduleDocument, error) {
	const query = `SELECT id, title, file_url, created_at FROM schedules ORDER BY created_at DESC`
	var schedules []models.ScheduleDocument
	if err := r.db.SelectContext(ctx, &schedules, query); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// Create inserts a new schedule document.
func (r *ScheduleRepository) Create(ctx context.Context, doc *models.ScheduleDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO schedules (id, title, file_url, created_at)
VALUES (:id, :title, :file_url, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// DeleteReturningURL removes a schedule document and returns its file URL.
// Returns empty when no row matched.
func (r *ScheduleRepository) DeleteReturningURL(ctx context.Context, id string) (string, error) {
	var fileURL string
	err := r.db.GetContext(ctx, &fileURL, "DELETE FROM schedules WHERE id = $1 RETURNING file_url", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("delete schedule: %w", err)
	}
	return fileURL, nil
}
