package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nidoapp/nido-api/internal/models"
)

// GroupTeacherRepository persists teacher-to-group assignments.
type GroupTeacherRepository struct {
	db *sqlx.DB
}

// NewGroupTeacherRepository constructs the repository.
func NewGroupTeacherRepository(db *sqlx.DB) *GroupTeacherRepository {
	return &GroupTeacherRepository{db: db}
}

// ListByGroup returns the users assigned to a group.
func (r *GroupTeacherRepository) ListByGroup(ctx context.Context, groupID string) ([]models.AssignedTeacher, error) {
	const query = `SELECT u.id, u.username
FROM group_teachers gt
JOIN users u ON u.id = gt.user_id
WHERE gt.group_id = $1
ORDER BY u.username ASC`
	var teachers []models.AssignedTeacher
	if err := r.db.SelectContext(ctx, &teachers, query, groupID); err != nil {
		return nil, fmt.Errorf("list group teachers: %w", err)
	}
	return teachers, nil
}

// Assign inserts the (group, user) pair. A duplicate pair is a no-op.
func (r *GroupTeacherRepository) Assign(ctx context.Context, groupID, userID string) error {
	const query = `INSERT INTO group_teachers (id, group_id, user_id, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (group_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), groupID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign teacher: %w", err)
	}
	return nil
}

// Unassign removes the pair. Removing an absent pair is a no-op.
func (r *GroupTeacherRepository) Unassign(ctx context.Context, groupID, userID string) error {
	const query = `DELETE FROM group_teachers WHERE group_id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, groupID, userID); err != nil {
		return fmt.Errorf("unassign teacher: %w", err)
	}
	return nil
}
