package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nidoapp/nido-api/internal/models"
)

// GroupRepository handles persistence for groups.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs the repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// List returns all groups in creation order.
func (r *GroupRepository) List(ctx context.Context) ([]models.Group, error) {
	const query = `SELECT id, name, schedule_text, homeroom_teacher, created_at FROM groups ORDER BY created_at ASC`
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// GetByID returns a group by identifier.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	const query = `SELECT id, name, schedule_text, homeroom_teacher, created_at FROM groups WHERE id = $1 LIMIT 1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// Create inserts a new group.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO groups (id, name, schedule_text, homeroom_teacher, created_at)
VALUES (:id, :name, :schedule_text, :homeroom_teacher, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// Delete removes a group. Students referencing it are detached by the
// schema's ON DELETE SET NULL; assignments cascade.
func (r *GroupRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM groups WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete group: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete group: %w", err)
	}
	return affected > 0, nil
}
