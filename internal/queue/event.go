// Package queue defines the message payloads exchanged over the
// broker and the background consumer that turns them into
// notification rows.
package queue

// NotificationQueueName is the durable queue notification events
// travel through.
const NotificationQueueName = "notification.created"

// NotificationEvent is published whenever a domain action needs to
// notify a user: club approval/rejection, offer accepted/rejected/
// countered, transfer completed. The consumer persists it as a
// notifications row which the client picks up on its next poll.
type NotificationEvent struct {
	UserID  uint64 `json:"user_id"`
	Type    string `json:"type"`
	Message string `json:"message"`
	SentAt  string `json:"sent_at"`
}
