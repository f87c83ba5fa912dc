package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velimirb/transfer-window/internal/model"
)

// Renaming a club is held to the same (name, country) duplicate rule
// as creation: when another non-rejected club already uses the pair,
// the update is refused and nothing is written.
func TestUpdateRefusesDuplicatePair(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT EXISTS(SELECT 1 FROM clubs WHERE name=? AND country=? AND status<>'REJECTED' AND id<>?)")).
		WithArgs("Real Norte", "Spain", uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(1))
	mock.ExpectRollback()

	repo := NewClubRepo(db)
	err = repo.Update(context.Background(), &model.Club{
		ID:      4,
		Name:    "Real Norte",
		Country: "Spain",
	})
	assert.ErrorIs(t, err, ErrDuplicateClub)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A club may keep (or retouch) its own pair: the EXISTS check
// excludes the club's own row, so updating without renaming
// succeeds.
func TestUpdateAllowsOwnPair(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT EXISTS(SELECT 1 FROM clubs WHERE name=? AND country=? AND status<>'REJECTED' AND id<>?)")).
		WithArgs("Real Norte", "Spain", uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE clubs SET name=?, country=?, manager=?, contact=?, logo_url=? WHERE id=?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewClubRepo(db)
	err = repo.Update(context.Background(), &model.Club{
		ID:      4,
		Name:    "Real Norte",
		Country: "Spain",
		Manager: "A. Prieto",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
