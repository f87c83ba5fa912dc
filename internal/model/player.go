package model

import "time"

// Player positions accepted by the API. Enforced server-side on
// create and update.
const (
	PositionGoalkeeper = "Goalkeeper"
	PositionDefender   = "Defender"
	PositionMidfielder = "Midfielder"
	PositionForward    = "Forward"
)

// ValidPosition reports whether p is one of the enumerated positions.
func ValidPosition(p string) bool {
	switch p {
	case PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionForward:
		return true
	}
	return false
}

// Health states accepted for players.
const (
	HealthFit        = "fit"
	HealthInjured    = "injured"
	HealthRecovering = "recovering"
)

// ValidHealthStatus reports whether h is one of the enumerated states.
func ValidHealthStatus(h string) bool {
	switch h {
	case HealthFit, HealthInjured, HealthRecovering:
		return true
	}
	return false
}

// Player represents a row in the `players` table. A player belongs
// to at most one club; a nil ClubID marks a free agent. Market value
// is stored in integer cents and formatted on the way out.
type Player struct {
	ID               uint64     `json:"id"`
	Name             string     `json:"name"`
	Age              uint8      `json:"age"`
	Nationality      string     `json:"nationality"`
	Position         string     `json:"position"`
	MarketValueCents int64      `json:"market_value_cents"`
	ContractEnd      *time.Time `json:"contract_end,omitempty"`
	HealthStatus     string     `json:"health_status"`
	ClubID           *uint64    `json:"club_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// FreeAgent reports whether the player currently has no club.
func (p *Player) FreeAgent() bool { return p.ClubID == nil }
