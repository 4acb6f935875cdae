package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nidoapp/nido-api/internal/models"
	appErrors "github.com/nidoapp/nido-api/pkg/errors"
)

type fakeAuthUserRepo struct {
	users       map[string]*models.User
	createErr   error
	created     []*models.User
	adminSeeded bool
}

func (f *fakeAuthUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := f.users[username]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.users == nil {
		f.users = make(map[string]*models.User)
	}
	copy := *user
	f.users[user.Username] = &copy
	f.created = append(f.created, &copy)
	return nil
}

func (f *fakeAuthUserRepo) EnsureAdmin(ctx context.Context, username, passwordHash string) error {
	f.adminSeeded = true
	return nil
}

func newTestAuthService(repo *fakeAuthUserRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "nido-api",
	})
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceLogin(t *testing.T) {
	repo := &fakeAuthUserRepo{users: map[string]*models.User{
		"profe": {ID: "u1", Username: "profe", PasswordHash: hashPassword(t, "profe123"), Role: models.RoleAdmin},
	}}
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "profe", Password: "profe123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &fakeAuthUserRepo{users: map[string]*models.User{
		"profe": {ID: "u1", Username: "profe", PasswordHash: hashPassword(t, "profe123"), Role: models.RoleAdmin},
	}}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "profe", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	svc := newTestAuthService(&fakeAuthUserRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceRegisterHashesPasswordAndStartsPending(t *testing.T) {
	repo := &fakeAuthUserRepo{}
	svc := newTestAuthService(repo)

	info, err := svc.Register(context.Background(), models.RegisterRequest{Username: "nueva", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RolePending, info.Role)

	require.Len(t, repo.created, 1)
	stored := repo.created[0]
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func TestAuthServiceRegisterDuplicateUsername(t *testing.T) {
	repo := &fakeAuthUserRepo{createErr: &pq.Error{Code: "23505"}}
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Username: "profe", Password: "secret1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAuthServiceRegisterRejectsShortPassword(t *testing.T) {
	svc := newTestAuthService(&fakeAuthUserRepo{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{Username: "nueva", Password: "abc"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	svc := newTestAuthService(&fakeAuthUserRepo{})

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
}

func TestAuthServiceSeedAdmin(t *testing.T) {
	repo := &fakeAuthUserRepo{}
	svc := newTestAuthService(repo)

	require.NoError(t, svc.SeedAdmin(context.Background(), "profe", "profe123"))
	assert.True(t, repo.adminSeeded)

	err := svc.SeedAdmin(context.Background(), "", "")
	require.Error(t, err)
}
