package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var windowRowCols = []string{
	"id", "start_at", "end_at", "is_open", "created_by", "created_at", "updated_at",
}

// Current filters the open rows through TransferWindow.Active: an
// open window whose range has already passed is skipped in favor of
// the one covering now.
func TestCurrentPicksCoveringWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, start_at, end_at, is_open, created_by, created_at, updated_at FROM transfer_windows WHERE is_open=1 ORDER BY start_at")).
		WillReturnRows(sqlmock.NewRows(windowRowCols).
			AddRow(1, now.AddDate(0, -3, 0), now.AddDate(0, -2, 0), true, 1, now, now).
			AddRow(2, now.AddDate(0, 0, -7), now.AddDate(0, 0, 7), true, 1, now, now))

	repo := NewWindowRepo(db)
	w, err := repo.Current(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), w.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// No open window covering now means ErrNotFound, which the handlers
// translate into "no active transfer window".
func TestCurrentNoneActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, start_at, end_at, is_open, created_by, created_at, updated_at FROM transfer_windows WHERE is_open=1 ORDER BY start_at")).
		WillReturnRows(sqlmock.NewRows(windowRowCols).
			AddRow(1, now.AddDate(0, -3, 0), now.AddDate(0, -2, 0), true, 1, now, now))

	repo := NewWindowRepo(db)
	_, err = repo.Current(context.Background(), now)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
