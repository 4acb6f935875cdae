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

// AnnouncementRepository persists the single-slot announcement.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository constructs the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Latest returns the current announcement or nil when none exists.
func (r *AnnouncementRepository) Latest(ctx context.Context) (*models.Announcement, error) {
	const query = `SELECT id, title, message, created_at FROM announcements ORDER BY created_at DESC LIMIT 1`
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	return &announcement, nil
}

// Replace deletes any existing rows and inserts the new announcement in one
// transaction, so readers never observe an empty slot mid-publish.
func (r *AnnouncementRepository) Replace(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = time.Now().UTC()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin announcement replace: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM announcements"); err != nil {
		return fmt.Errorf("clear announcements: %w", err)
	}
	const query = `INSERT INTO announcements (id, title, message, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query, announcement.ID, announcement.Title, announcement.Message, announcement.CreatedAt); err != nil {
		return fmt.Errorf("insert announcement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit announcement replace: %w", err)
	}
	committed = true
	return nil
}

// Clear removes all announcements.
func (r *AnnouncementRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM announcements"); err != nil {
		return fmt.Errorf("clear announcements: %w", err)
	}
	return nil
}
