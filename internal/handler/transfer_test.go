package handler

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velimirb/transfer-window/internal/repository"
)

var transferRowCols = []string{
	"id", "player_id", "seller_club_id", "buyer_club_id",
	"type", "amount_cents", "status", "created_at", "updated_at",
}

func completeRequest(t *testing.T, h *TransferHandler, id string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/transfers/"+id+"/complete", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Complete(c))
	return rec
}

// Completing a transfer twice must not move the player twice: the
// second call observes COMPLETED under the row lock, gets a 409 and
// rolls back without issuing any further statements.
func TestCompleteAlreadyCompletedConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, player_id, seller_club_id, buyer_club_id, type, amount_cents, status, created_at, updated_at FROM transfers WHERE id=? FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows(transferRowCols).
			AddRow(11, 5, 2, 3, "PERMANENT", 500_000_000, "COMPLETED", now, now))
	mock.ExpectRollback()

	h := &TransferHandler{Transfers: repository.NewTransferRepo(db)}
	rec := completeRequest(t, h, "11")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "completed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A transfer that was never accepted cannot be completed either.
func TestCompletePendingConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, player_id, seller_club_id, buyer_club_id, type, amount_cents, status, created_at, updated_at FROM transfers WHERE id=? FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows(transferRowCols).
			AddRow(11, 5, 2, 3, "PERMANENT", 500_000_000, "PENDING", now, now))
	mock.ExpectRollback()

	h := &TransferHandler{Transfers: repository.NewTransferRepo(db)}
	rec := completeRequest(t, h, "11")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
