package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/velimirb/transfer-window/internal/model"
)

// OfferRepo provides data access to the offers table. Accepting an
// offer is the most failure-sensitive operation in the system: it
// must reject every pending sibling on the same transfer in the same
// transaction, under the row lock the handler has already taken on
// the parent transfer via TransferRepo.GetForUpdateTx.
type OfferRepo struct {
	db *sql.DB
}

func NewOfferRepo(db *sql.DB) *OfferRepo { return &OfferRepo{db: db} }

func (r *OfferRepo) DB() *sql.DB { return r.db }

const offerCols = "id, transfer_id, buyer_club_id, offered_amount_cents, status, awaiting_response_from, created_at, updated_at"

func scanOffer(row interface{ Scan(...interface{}) error }) (model.Offer, error) {
	var o model.Offer
	err := row.Scan(&o.ID, &o.TransferID, &o.BuyerClubID, &o.OfferedAmountCents,
		&o.Status, &o.AwaitingResponseFrom, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// Create inserts a pending offer and populates the generated ID. The
// handler validates the parent transfer state before calling this.
func (r *OfferRepo) Create(ctx context.Context, o *model.Offer) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO offers (transfer_id, buyer_club_id, offered_amount_cents, status, awaiting_response_from) VALUES (?,?,?,?,?)",
		o.TransferID, o.BuyerClubID, o.OfferedAmountCents, model.OfferPending, model.PartySeller)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	o.Status = model.OfferPending
	o.AwaitingResponseFrom = model.PartySeller
	return nil
}

// GetByID fetches an offer without locking.
func (r *OfferRepo) GetByID(ctx context.Context, id uint64) (model.Offer, error) {
	o, err := scanOffer(r.db.QueryRowContext(ctx,
		"SELECT "+offerCols+" FROM offers WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrNotFound
	}
	return o, err
}

// GetForUpdateTx fetches an offer with a FOR UPDATE row lock. The
// parent transfer must be locked first (lock ordering: transfer then
// offer) to avoid deadlocks between concurrent accepts.
func (r *OfferRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Offer, error) {
	o, err := scanOffer(tx.QueryRowContext(ctx,
		"SELECT "+offerCols+" FROM offers WHERE id=? FOR UPDATE", id))
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrNotFound
	}
	return o, err
}

// ListByTransfer returns all offers on a transfer, newest first.
func (r *OfferRepo) ListByTransfer(ctx context.Context, transferID uint64) ([]model.Offer, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+offerCols+" FROM offers WHERE transfer_id=? ORDER BY created_at DESC", transferID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	offers := make([]model.Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// ListByBuyerClub returns the offers a club has placed.
func (r *OfferRepo) ListByBuyerClub(ctx context.Context, clubID uint64) ([]model.Offer, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+offerCols+" FROM offers WHERE buyer_club_id=? ORDER BY created_at DESC", clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	offers := make([]model.Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// SiblingBuyerUsersTx returns the user IDs owning the buyer clubs of
// every pending sibling offer, so the handler can notify the losers
// after their offers are rejected.
func (r *OfferRepo) SiblingBuyerUsersTx(ctx context.Context, tx *sql.Tx, transferID, exceptOfferID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT c.user_id
		 FROM offers o
		 JOIN clubs c ON c.id = o.buyer_club_id
		 WHERE o.transfer_id=? AND o.id<>? AND o.status='PENDING'`,
		transferID, exceptOfferID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// AcceptTx marks one offer ACCEPTED and every pending sibling on the
// same transfer REJECTED in two statements inside the caller's
// transaction. Both run under the transfer row lock, so a concurrent
// accept of a sibling observes this offer as ACCEPTED and fails its
// own transition check.
func (r *OfferRepo) AcceptTx(ctx context.Context, tx *sql.Tx, offerID, transferID uint64) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE offers SET status='REJECTED' WHERE transfer_id=? AND id<>? AND status='PENDING'",
		transferID, offerID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE offers SET status='ACCEPTED' WHERE id=? AND status='PENDING'", offerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// UpdateStatusTx sets the offer status within a transaction.
func (r *OfferRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, to model.OfferStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE offers SET status=? WHERE id=?", to, id)
	return err
}

// CounterTx replaces the offered amount on a pending offer and hands
// the next move to the buyer. The offer stays PENDING.
func (r *OfferRepo) CounterTx(ctx context.Context, tx *sql.Tx, id uint64, amountCents int64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE offers SET offered_amount_cents=?, status='PENDING', awaiting_response_from=? WHERE id=? AND status='PENDING'",
		amountCents, model.PartyBuyer, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// Delete removes an offer.
func (r *OfferRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM offers WHERE id=?", id)
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
	return nil
}
