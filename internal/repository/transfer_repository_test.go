package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Completing a transfer rejects every other open transfer for the
// same player and kills their pending offers, all inside the
// caller's transaction. The competing rows are locked before being
// rejected.
func TestRejectCompetingTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id FROM transfers WHERE player_id=? AND id<>? AND status IN ('PENDING','NEGOTIATION') FOR UPDATE")).
		WithArgs(uint64(5), uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12).AddRow(13))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE transfers SET status='REJECTED' WHERE player_id=? AND id<>? AND status IN ('PENDING','NEGOTIATION')")).
		WithArgs(uint64(5), uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE offers SET status='REJECTED' WHERE status='PENDING' AND transfer_id IN (?,?)")).
		WithArgs(uint64(12), uint64(13)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	repo := NewTransferRepo(db)
	ids, err := repo.RejectCompetingTx(ctx, tx, 5, 11)
	require.NoError(t, err)
	assert.Equal(t, []uint64{12, 13}, ids)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// With no competitors nothing is rejected and no UPDATE runs.
func TestRejectCompetingTxNoCompetitors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id FROM transfers WHERE player_id=? AND id<>? AND status IN ('PENDING','NEGOTIATION') FOR UPDATE")).
		WithArgs(uint64(5), uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	repo := NewTransferRepo(db)
	ids, err := repo.RejectCompetingTx(ctx, tx, 5, 11)
	require.NoError(t, err)
	assert.Nil(t, ids)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
