package model

// This file defines the status enumerations for clubs, transfers and
// offers together with their transition tables. Every state-mutating
// handler consults CanTransition before touching the database so that
// disallowed moves are rejected uniformly with a conflict instead of
// being silently applied.

// ClubStatus enumerates the lifecycle of a club registration.
type ClubStatus string

const (
	ClubPending  ClubStatus = "PENDING"
	ClubApproved ClubStatus = "APPROVED"
	ClubRejected ClubStatus = "REJECTED"
)

var clubTransitions = map[ClubStatus][]ClubStatus{
	ClubPending: {ClubApproved, ClubRejected},
}

// CanTransition reports whether a club may move from its current
// status to the target status. Approved and rejected are terminal.
func (s ClubStatus) CanTransition(to ClubStatus) bool {
	for _, t := range clubTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known club status.
func (s ClubStatus) Valid() bool {
	switch s {
	case ClubPending, ClubApproved, ClubRejected:
		return true
	}
	return false
}

// TransferStatus enumerates the lifecycle of a transfer record.
type TransferStatus string

const (
	TransferPending     TransferStatus = "PENDING"
	TransferNegotiation TransferStatus = "NEGOTIATION"
	TransferAccepted    TransferStatus = "ACCEPTED"
	TransferRejected    TransferStatus = "REJECTED"
	TransferCompleted   TransferStatus = "COMPLETED"
)

var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferPending:     {TransferNegotiation, TransferAccepted, TransferRejected},
	TransferNegotiation: {TransferAccepted, TransferRejected},
	TransferAccepted:    {TransferCompleted},
}

// CanTransition reports whether a transfer may move from its current
// status to the target status. Rejected and completed are terminal;
// in particular a completed transfer can never be completed again.
func (s TransferStatus) CanTransition(to TransferStatus) bool {
	for _, t := range transferTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Open reports whether the transfer still admits offers.
func (s TransferStatus) Open() bool {
	return s == TransferPending || s == TransferNegotiation
}

// OfferStatus enumerates the lifecycle of an offer attached to a
// transfer. A counter-offer keeps the offer in PENDING with a new
// amount rather than moving it through the table.
type OfferStatus string

const (
	OfferPending  OfferStatus = "PENDING"
	OfferAccepted OfferStatus = "ACCEPTED"
	OfferRejected OfferStatus = "REJECTED"
)

var offerTransitions = map[OfferStatus][]OfferStatus{
	OfferPending: {OfferAccepted, OfferRejected},
}

// CanTransition reports whether an offer may move from its current
// status to the target status.
func (s OfferStatus) CanTransition(to OfferStatus) bool {
	for _, t := range offerTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// OfferParty identifies which side of a negotiation must act next on
// an offer. Set to BUYER after a counter-offer from the seller.
type OfferParty string

const (
	PartyBuyer  OfferParty = "BUYER"
	PartySeller OfferParty = "SELLER"
)

// TransferType enumerates the kinds of player moves.
type TransferType string

const (
	TransferPermanent TransferType = "PERMANENT"
	TransferLoan      TransferType = "LOAN"
	TransferFree      TransferType = "FREE"
)

// Valid reports whether t is a known transfer type.
func (t TransferType) Valid() bool {
	switch t {
	case TransferPermanent, TransferLoan, TransferFree:
		return true
	}
	return false
}
