package model

import "time"

// TransferWindow is an admin-defined time range during which clubs
// may initiate transfer activity, stored in `transfer_windows`.
// Creating a window that overlaps an existing open window is
// rejected. IsOpen can be flipped off early with the close action.
type TransferWindow struct {
	ID        uint64    `json:"id"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	IsOpen    bool      `json:"is_open"`
	CreatedBy uint64    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the window is open and covers the given
// instant.
func (w *TransferWindow) Active(now time.Time) bool {
	return w.IsOpen && !now.Before(w.StartAt) && now.Before(w.EndAt)
}

// Overlaps reports whether [start, end) intersects the window's own
// range. Used to reject overlapping window creation.
func (w *TransferWindow) Overlaps(start, end time.Time) bool {
	return start.Before(w.EndAt) && w.StartAt.Before(end)
}
