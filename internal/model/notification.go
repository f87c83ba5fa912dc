package model

import "time"

// Notification types emitted by domain actions.
const (
	NotifClubApproved      = "club_approved"
	NotifClubRejected      = "club_rejected"
	NotifOfferReceived     = "offer_received"
	NotifOfferAccepted     = "offer_accepted"
	NotifOfferRejected     = "offer_rejected"
	NotifOfferCountered    = "offer_countered"
	NotifTransferAccepted  = "transfer_accepted"
	NotifTransferRejected  = "transfer_rejected"
	NotifTransferCompleted = "transfer_completed"
)

// Notification is a per-user message row in the `notifications`
// table. There is no push channel: clients poll the listing endpoint
// and a notification is guaranteed only to appear on the next poll
// after it was written.
type Notification struct {
	ID      uint64    `json:"notif_id"`
	UserID  uint64    `json:"user_id"`
	Message string    `json:"message"`
	Type    string    `json:"type"`
	IsRead  bool      `json:"is_read"`
	SentAt  time.Time `json:"sent_at"`
}
