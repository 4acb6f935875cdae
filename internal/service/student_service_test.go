package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nidoapp/nido-api/internal/models"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
)

type fakeStudentRepo struct {
	students []models.Student
	lastList string
	deleted  bool
}

func (f *fakeStudentRepo) List(ctx context.Context, groupID string) ([]models.Student, error) {
	f.lastList = groupID
	return f.students, nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	student.ID = "s1"
	f.students = append(f.students, *student)
	return nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id string) (bool, error) {
	return f.deleted, nil
}

func TestStudentServiceCreateTrimsName(t *testing.T) {
	repo := &fakeStudentRepo{}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	student, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "  Ana Gomez  "})
	require.NoError(t, err)
	assert.Equal(t, "Ana Gomez", student.FullName)
}

func TestStudentServiceCreateRejectsInvalidAge(t *testing.T) {
	svc := NewStudentService(&fakeStudentRepo{}, validator.New(), zap.NewNop())

	age := 25
	_, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "Ana", Age: &age})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceListPassesGroupFilter(t *testing.T) {
	repo := &fakeStudentRepo{}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	_, err := svc.List(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", repo.lastList)
}

func TestStudentServiceDeleteMissing(t *testing.T) {
	svc := NewStudentService(&fakeStudentRepo{deleted: false}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
