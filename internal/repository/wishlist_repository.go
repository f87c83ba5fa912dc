package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/velimirb/transfer-window/internal/model"
)

// WishlistRepo provides data access to the wishlists table. The
// (club_id, player_id) pair carries a unique index so repeated adds
// surface as ErrWishlisted instead of duplicate rows.
type WishlistRepo struct {
	db *sql.DB
}

func NewWishlistRepo(db *sql.DB) *WishlistRepo { return &WishlistRepo{db: db} }

// Add inserts a wishlist entry and populates the generated ID.
func (r *WishlistRepo) Add(ctx context.Context, w *model.WishlistEntry) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO wishlists (club_id, player_id) VALUES (?,?)", w.ClubID, w.PlayerID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrWishlisted
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	return nil
}

// GetByID fetches a single entry.
func (r *WishlistRepo) GetByID(ctx context.Context, id uint64) (model.WishlistEntry, error) {
	var w model.WishlistEntry
	err := r.db.QueryRowContext(ctx,
		"SELECT id, club_id, player_id, created_at FROM wishlists WHERE id=? LIMIT 1",
		id).Scan(&w.ID, &w.ClubID, &w.PlayerID, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return w, ErrNotFound
	}
	return w, err
}

// WishlistedPlayer pairs an entry with the player's display fields
// so the listing endpoint does not need a second round trip.
type WishlistedPlayer struct {
	model.WishlistEntry
	PlayerName     string `json:"player_name"`
	PlayerPosition string `json:"player_position"`
}

// ListByClub returns a club's wishlist with player names, newest
// first.
func (r *WishlistRepo) ListByClub(ctx context.Context, clubID uint64) ([]WishlistedPlayer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT w.id, w.club_id, w.player_id, w.created_at, p.name, p.position
		 FROM wishlists w
		 JOIN players p ON p.id = w.player_id
		 WHERE w.club_id=?
		 ORDER BY w.created_at DESC`, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]WishlistedPlayer, 0)
	for rows.Next() {
		var it WishlistedPlayer
		if err := rows.Scan(&it.ID, &it.ClubID, &it.PlayerID, &it.CreatedAt, &it.PlayerName, &it.PlayerPosition); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Delete removes an entry by wishlist id.
func (r *WishlistRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM wishlists WHERE id=?", id)
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
