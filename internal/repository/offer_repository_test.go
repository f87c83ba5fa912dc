package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Accepting an offer must, in one transaction, reject every pending
// sibling first and then flip exactly this offer to ACCEPTED. The
// expectations are ordered, so a test failure means the statements
// ran out of order or against the wrong rows.
func TestAcceptTxRejectsSiblingsThenAccepts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE offers SET status='REJECTED' WHERE transfer_id=? AND id<>? AND status='PENDING'")).
		WithArgs(uint64(7), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE offers SET status='ACCEPTED' WHERE id=? AND status='PENDING'")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	repo := NewOfferRepo(db)
	require.NoError(t, repo.AcceptTx(ctx, tx, 3, 7))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An offer that is no longer PENDING (a concurrent accept won the
// race, or it was already decided) must not be accepted again: the
// conditional UPDATE touches zero rows and AcceptTx reports a
// conflict.
func TestAcceptTxConflictWhenOfferDecided(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE offers SET status='REJECTED' WHERE transfer_id=? AND id<>? AND status='PENDING'")).
		WithArgs(uint64(7), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE offers SET status='ACCEPTED' WHERE id=? AND status='PENDING'")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	repo := NewOfferRepo(db)
	assert.ErrorIs(t, repo.AcceptTx(ctx, tx, 3, 7), ErrConflict)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// CounterTx only applies to a pending offer; countering a decided
// offer is a conflict, not a silent amount change.
func TestCounterTxConflictWhenOfferDecided(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE offers SET offered_amount_cents=?, status='PENDING', awaiting_response_from=? WHERE id=? AND status='PENDING'")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	repo := NewOfferRepo(db)
	assert.ErrorIs(t, repo.CounterTx(ctx, tx, 3, 900_000_00), ErrConflict)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
