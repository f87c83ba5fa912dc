package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedTable(t *testing.T) {
	for _, tbl := range []string{"players", "transfers", "offers", "wishlists", "notifications", "transfer_windows", "clubs"} {
		assert.True(t, AllowedTable(tbl), tbl)
	}
	// Anything outside the allow-list must be refused, in particular
	// values shaped like injection payloads.
	for _, tbl := range []string{"users", "refresh_tokens", "", "players; DROP TABLE users", "PLAYERS", "players "} {
		assert.False(t, AllowedTable(tbl), tbl)
	}
}
