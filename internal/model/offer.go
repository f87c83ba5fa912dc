package model

import "time"

// Offer represents a monetary bid from a buyer club against an open
// transfer, stored in the `offers` table. At most one offer per
// transfer may ever be ACCEPTED; accepting one rejects all pending
// siblings in the same transaction. AwaitingResponseFrom records
// which party must act next and flips to BUYER after a counter.
type Offer struct {
	ID                   uint64      `json:"offer_id"`
	TransferID           uint64      `json:"transfer_id"`
	BuyerClubID          uint64      `json:"buyer_club_id"`
	OfferedAmountCents   int64       `json:"offered_amount_cents"`
	Status               OfferStatus `json:"status"`
	AwaitingResponseFrom OfferParty  `json:"awaiting_response_from"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}
