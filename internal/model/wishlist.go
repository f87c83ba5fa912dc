package model

import "time"

// WishlistEntry marks a club's non-binding interest in a player,
// stored in the `wishlists` table. The (club_id, player_id) pair is
// unique so repeated adds are conflicts rather than duplicates.
type WishlistEntry struct {
	ID        uint64    `json:"wishlist_id"`
	ClubID    uint64    `json:"club_id"`
	PlayerID  uint64    `json:"player_id"`
	CreatedAt time.Time `json:"created_at"`
}
