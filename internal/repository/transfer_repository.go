package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/velimirb/transfer-window/internal/model"
)

// TransferRepo provides data access to the transfers table. All
// state-transitioning reads go through GetForUpdateTx so that accept
// and complete operate under a row lock on the transfer; plain reads
// use GetByID. The caller owns the transaction lifecycle, matching
// the ...Tx convention used across this package.
type TransferRepo struct {
	db *sql.DB
}

func NewTransferRepo(db *sql.DB) *TransferRepo { return &TransferRepo{db: db} }

func (r *TransferRepo) DB() *sql.DB { return r.db }

const transferCols = "id, player_id, seller_club_id, buyer_club_id, type, amount_cents, status, created_at, updated_at"

func scanTransfer(row interface{ Scan(...interface{}) error }) (model.Transfer, error) {
	var t model.Transfer
	var seller sql.NullInt64
	err := row.Scan(&t.ID, &t.PlayerID, &seller, &t.BuyerClubID, &t.Type,
		&t.AmountCents, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if seller.Valid {
		id := uint64(seller.Int64)
		t.SellerClubID = &id
	}
	return t, err
}

// Create inserts a transfer in PENDING status and populates the
// generated ID. The seller club is derived by the handler from the
// player's current club before calling this.
func (r *TransferRepo) Create(ctx context.Context, t *model.Transfer) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO transfers (player_id, seller_club_id, buyer_club_id, type, amount_cents, status) VALUES (?,?,?,?,?,?)",
		t.PlayerID, nullID(t.SellerClubID), t.BuyerClubID, t.Type, t.AmountCents, model.TransferPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.Status = model.TransferPending
	return nil
}

// GetByID fetches a transfer without locking.
func (r *TransferRepo) GetByID(ctx context.Context, id uint64) (model.Transfer, error) {
	t, err := scanTransfer(r.db.QueryRowContext(ctx,
		"SELECT "+transferCols+" FROM transfers WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

// GetForUpdateTx fetches a transfer with a FOR UPDATE row lock. Any
// concurrent accept/reject/complete on the same transfer blocks here
// until the first transaction commits, which is what makes the
// "at most one accepted offer" invariant hold.
func (r *TransferRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Transfer, error) {
	t, err := scanTransfer(tx.QueryRowContext(ctx,
		"SELECT "+transferCols+" FROM transfers WHERE id=? FOR UPDATE", id))
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

// TransferFilter narrows List results. ClubID matches either side of
// the transfer.
type TransferFilter struct {
	ClubID   uint64
	PlayerID uint64
	Status   model.TransferStatus
}

// List returns transfers matching the filter, newest first.
func (r *TransferRepo) List(ctx context.Context, f TransferFilter) ([]model.Transfer, error) {
	q := "SELECT " + transferCols + " FROM transfers WHERE 1=1"
	args := []interface{}{}
	if f.ClubID != 0 {
		q += " AND (seller_club_id=? OR buyer_club_id=?)"
		args = append(args, f.ClubID, f.ClubID)
	}
	if f.PlayerID != 0 {
		q += " AND player_id=?"
		args = append(args, f.PlayerID)
	}
	if f.Status != "" {
		q += " AND status=?"
		args = append(args, f.Status)
	}
	q += " ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	transfers := make([]model.Transfer, 0)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

// UpdateStatusTx sets the transfer status within a transaction. The
// caller must have validated the transition against the table in
// model while holding the row lock.
func (r *TransferRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, to model.TransferStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE transfers SET status=? WHERE id=?", to, id)
	return err
}

// UpdateAmountTx overwrites the agreed amount, used when an offer
// different from the original asking price is accepted.
func (r *TransferRepo) UpdateAmountTx(ctx context.Context, tx *sql.Tx, id uint64, amountCents int64) error {
	_, err := tx.ExecContext(ctx, "UPDATE transfers SET amount_cents=? WHERE id=?", amountCents, id)
	return err
}

// RejectCompetingTx rejects every other open transfer referencing
// the same player, together with the pending offers attached to
// them. Called while completing a transfer so a player cannot be
// sold twice. It returns the IDs of the transfers that were
// rejected.
func (r *TransferRepo) RejectCompetingTx(ctx context.Context, tx *sql.Tx, playerID, exceptTransferID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT id FROM transfers WHERE player_id=? AND id<>? AND status IN ('PENDING','NEGOTIATION') FOR UPDATE",
		playerID, exceptTransferID)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE transfers SET status='REJECTED' WHERE player_id=? AND id<>? AND status IN ('PENDING','NEGOTIATION')",
		playerID, exceptTransferID); err != nil {
		return nil, err
	}
	// Offers chained to the rejected transfers die with them.
	q := "UPDATE offers SET status='REJECTED' WHERE status='PENDING' AND transfer_id IN ("
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			q += ","
		}
		q += "?"
		args = append(args, id)
	}
	q += ")"
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}
	return ids, nil
}

// Delete removes a transfer and its offers.
func (r *TransferRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, "DELETE FROM offers WHERE transfer_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM transfers WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
