package model

import "time"

// Transfer represents a proposed move of a player from a seller club
// to a buyer club, as stored in the `transfers` table. SellerClubID
// is nil when the player is a free agent. Status moves through the
// table defined in status.go; accepting and completing a transfer
// are the two operations that run under a row lock.
type Transfer struct {
	ID           uint64         `json:"id"`
	PlayerID     uint64         `json:"player_id"`
	SellerClubID *uint64        `json:"seller_club_id,omitempty"`
	BuyerClubID  uint64         `json:"buyer_club_id"`
	Type         TransferType   `json:"type"`
	AmountCents  int64          `json:"amount_cents"`
	Status       TransferStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
