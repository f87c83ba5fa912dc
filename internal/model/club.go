package model

import "time"

// Club represents a row in the `clubs` table. A club is created in
// PENDING status by its owning CLUB user and moved to APPROVED or
// REJECTED by an admin. The pair (name, country) is unique among
// non-rejected clubs and license_no is unique outright; both rules
// are enforced server-side at creation time.
type Club struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	Country   string     `json:"country"`
	Manager   string     `json:"manager"`
	Contact   string     `json:"contact"`
	LicenseNo string     `json:"license_no"`
	Status    ClubStatus `json:"status"`
	LogoURL   string     `json:"logo_url,omitempty"`
	UserID    uint64     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
