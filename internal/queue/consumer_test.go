package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velimirb/transfer-window/internal/model"
)

func TestDecodeNotification(t *testing.T) {
	body, err := json.Marshal(NotificationEvent{
		UserID:  9,
		Type:    model.NotifOfferAccepted,
		Message: "Your offer of $5,500,000 was accepted",
		SentAt:  "2026-01-15T10:00:00Z",
	})
	require.NoError(t, err)

	n, err := DecodeNotification(body)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), n.UserID)
	assert.Equal(t, model.NotifOfferAccepted, n.Type)
	assert.Equal(t, "Your offer of $5,500,000 was accepted", n.Message)
	assert.False(t, n.IsRead)
}

func TestDecodeNotificationRejects(t *testing.T) {
	_, err := DecodeNotification([]byte("not json"))
	assert.Error(t, err)

	body, _ := json.Marshal(NotificationEvent{Type: "x", Message: "hello"})
	_, err = DecodeNotification(body)
	assert.Error(t, err) // no recipient

	body, _ = json.Marshal(NotificationEvent{UserID: 3, Type: "x"})
	_, err = DecodeNotification(body)
	assert.Error(t, err) // no message
}
