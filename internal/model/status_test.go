package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransferTransitions(t *testing.T) {
	cases := []struct {
		from, to TransferStatus
		ok       bool
	}{
		{TransferPending, TransferNegotiation, true},
		{TransferPending, TransferAccepted, true},
		{TransferPending, TransferRejected, true},
		{TransferPending, TransferCompleted, false},
		{TransferNegotiation, TransferAccepted, true},
		{TransferNegotiation, TransferRejected, true},
		{TransferNegotiation, TransferCompleted, false},
		{TransferAccepted, TransferCompleted, true},
		{TransferAccepted, TransferRejected, false},
		{TransferCompleted, TransferCompleted, false},
		{TransferCompleted, TransferPending, false},
		{TransferRejected, TransferAccepted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTransferStatusOpen(t *testing.T) {
	assert.True(t, TransferPending.Open())
	assert.True(t, TransferNegotiation.Open())
	assert.False(t, TransferAccepted.Open())
	assert.False(t, TransferRejected.Open())
	assert.False(t, TransferCompleted.Open())
}

func TestOfferTransitions(t *testing.T) {
	assert.True(t, OfferPending.CanTransition(OfferAccepted))
	assert.True(t, OfferPending.CanTransition(OfferRejected))
	// Accepted and rejected offers are terminal; at most one offer per
	// transfer can ever reach ACCEPTED.
	assert.False(t, OfferAccepted.CanTransition(OfferRejected))
	assert.False(t, OfferAccepted.CanTransition(OfferPending))
	assert.False(t, OfferRejected.CanTransition(OfferAccepted))
	assert.False(t, OfferRejected.CanTransition(OfferPending))
}

func TestClubTransitions(t *testing.T) {
	assert.True(t, ClubPending.CanTransition(ClubApproved))
	assert.True(t, ClubPending.CanTransition(ClubRejected))
	assert.False(t, ClubApproved.CanTransition(ClubRejected))
	assert.False(t, ClubRejected.CanTransition(ClubApproved))
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidPosition(PositionGoalkeeper))
	assert.False(t, ValidPosition("Striker"))
	assert.True(t, ValidHealthStatus(HealthRecovering))
	assert.False(t, ValidHealthStatus("FIT"))
	assert.True(t, TransferLoan.Valid())
	assert.False(t, TransferType("RENT").Valid())
	assert.True(t, ClubStatus("APPROVED").Valid())
	assert.False(t, ClubStatus("approved").Valid())
}

func TestWindowActiveAndOverlap(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := TransferWindow{StartAt: base, EndAt: base.AddDate(0, 1, 0), IsOpen: true}

	assert.True(t, w.Active(base))
	assert.True(t, w.Active(base.AddDate(0, 0, 15)))
	assert.False(t, w.Active(base.Add(-time.Second)))
	assert.False(t, w.Active(base.AddDate(0, 1, 0)))

	closed := w
	closed.IsOpen = false
	assert.False(t, closed.Active(base))

	assert.True(t, w.Overlaps(base.AddDate(0, 0, 20), base.AddDate(0, 2, 0)))
	assert.True(t, w.Overlaps(base.Add(-time.Hour), base.Add(time.Hour)))
	// Touching ranges do not overlap.
	assert.False(t, w.Overlaps(w.EndAt, w.EndAt.AddDate(0, 1, 0)))
	assert.False(t, w.Overlaps(base.AddDate(0, -1, 0), base))
}
