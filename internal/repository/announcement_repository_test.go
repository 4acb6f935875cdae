package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nidoapp/nido-api/internal/models"
)

func TestAnnouncementRepositoryLatestEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	mock.ExpectQuery("SELECT id, title, message, created_at FROM announcements").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "message", "created_at"}))

	announcement, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, announcement)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryLatest(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	mock.ExpectQuery("SELECT id, title, message, created_at FROM announcements").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "message", "created_at"}).
			AddRow("n1", "Reunion", "Viernes 10am", time.Now()))

	announcement, err := repo.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, announcement)
	assert.Equal(t, "Reunion", announcement.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryReplace(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM announcements")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO announcements").
		WithArgs(sqlmock.AnyArg(), "Titulo", "Mensaje", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	announcement := &models.Announcement{Title: "Titulo", Message: "Mensaje"}
	require.NoError(t, repo.Replace(context.Background(), announcement))
	assert.NotEmpty(t, announcement.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryReplaceRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM announcements")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO announcements").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), &models.Announcement{Title: "t", Message: "m"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
