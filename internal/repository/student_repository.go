package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nidoapp/nido-api/internal/models"
)

// StudentRepository handles persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns all students, optionally filtered by group.
func (r *StudentRepository) List(ctx context.Context, groupID string) ([]models.Student, error) {
	query := `SELECT id, full_name, age, group_id, photo_url, created_at FROM students`
	args := []interface{}{}
	if groupID != "" {
		query += ` WHERE group_id = $1`
		args = append(args, groupID)
	}
	query += ` ORDER BY full_name ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// GetByID returns a student by identifier.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, full_name, age, group_id, photo_url, created_at FROM students WHERE id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (id, full_name, age, group_id, photo_url, created_at)
VALUES (:id, :full_name, :age, :group_id, :photo_url, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	return affected > 0, nil
}
