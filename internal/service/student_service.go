package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nidoapp/nido-api/internal/models"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, groupID string) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (bool, error)
}

// CreateStudentRequest is the payload for enrolling a student.
type CreateStudentRequest struct {
	FullName string  `json:"nombre_completo" validate:"required,max=150"`
	Age      *int    `json:"edad" validate:"omitempty,gte=0,lte=18"`
	GroupID  *string `json:"grupo_id"`
	PhotoURL *string `json:"foto_perfil"`
}

// StudentService manages student records.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students, optionally filtered by group.
func (s *StudentService) List(ctx context.Context, groupID string) ([]models.Student, error) {
	students, err := s.repo.List(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Create enrols a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student := &models.Student{
		FullName: req.FullName,
		Age:      req.Age,
		GroupID:  req.GroupID,
		PhotoURL: req.PhotoURL,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return student, nil
}

// Delete removes a student record.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return nil
}
