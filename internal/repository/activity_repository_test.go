package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityRepositoryDeleteReturningURL(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM activities WHERE id = $1 RETURNING file_url")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"file_url"}).AddRow("/uploads/123-foto.jpg"))

	fileURL, err := repo.DeleteReturningURL(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/123-foto.jpg", fileURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryDeleteReturningURLMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM activities WHERE id = $1 RETURNING file_url")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"file_url"}))

	fileURL, err := repo.DeleteReturningURL(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, fileURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryDeleteExpired(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	cutoff := time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM activities WHERE created_at < $1 RETURNING file_url")).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"file_url"}).
			AddRow("/uploads/1-a.jpg").
			AddRow("/uploads/2-b.mp4"))

	urls, err := repo.DeleteExpired(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/1-a.jpg", "/uploads/2-b.mp4"}, urls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
