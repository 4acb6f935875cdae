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

// ActivityRepository handles persistence for gallery activities.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// List returns all activities, newest first.
func (r *ActivityRepository) List(ctx context.Context) ([]models.Activity, error) {
	const query = `SELECT id, file_url, file_type, description, created_at FROM activities ORDER BY created_at DESC`
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// Create inserts a new activity.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activities (id, file_url, file_type, description, created_at)
VALUES (:id, :file_url, :file_type, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// DeleteReturningURL removes an activity and returns its file URL so the
// caller can reclaim the backing file. Returns empty when no row matched.
func (r *ActivityRepository) DeleteReturningURL(ctx context.Context, id string) (string, error) {
	var fileURL string
	err := r.db.GetContext(ctx, &fileURL, "DELETE FROM activities WHERE id = $1 RETURNING file_url", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("delete activity: %w", err)
	}
	return fileURL, nil
}

// DeleteExpired removes every activity created before the cutoff and returns
// the file URLs of the deleted rows. Rows go first; callers reclaim files
// afterwards so a crash can only orphan files, never row references.
func (r *ActivityRepository) DeleteExpired(ctx context.Context, cutoff time.Time) ([]string, error) {
	var urls []string
	if err := r.db.SelectContext(ctx, &urls, "DELETE FROM activities WHERE created_at < $1 RETURNING file_url", cutoff); err != nil {
		return nil, fmt.Errorf("sweep activities: %w", err)
	}
	return urls, nil
}
