package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/velimirb/transfer-window/internal/model"
)

// WindowRepo provides data access to the transfer_windows table.
// Window creation runs an overlap check against existing open
// windows inside a transaction so two admins cannot schedule
// colliding windows.
type WindowRepo struct {
	db *sql.DB
}

func NewWindowRepo(db *sql.DB) *WindowRepo { return &WindowRepo{db: db} }

const windowCols = "id, start_at, end_at, is_open, created_by, created_at, updated_at"

func scanWindow(row interface{ Scan(...interface{}) error }) (model.TransferWindow, error) {
	var w model.TransferWindow
	err := row.Scan(&w.ID, &w.StartAt, &w.EndAt, &w.IsOpen, &w.CreatedBy, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

// Create inserts a window after verifying it does not overlap any
// existing open window. Returns ErrWindowOverlap otherwise.
func (r *WindowRepo) Create(ctx context.Context, w *model.TransferWindow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Overlap policy lives in model.TransferWindow.Overlaps; the
	// open windows are pulled into the transaction and checked there
	// so the repository and the model cannot drift apart.
	open, err := r.openWindowsTx(ctx, tx)
	if err != nil {
		return err
	}
	for i := range open {
		if open[i].Overlaps(w.StartAt.UTC(), w.EndAt.UTC()) {
			return ErrWindowOverlap
		}
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO transfer_windows (start_at, end_at, is_open, created_by) VALUES (?,?,?,?)",
		w.StartAt.UTC(), w.EndAt.UTC(), w.IsOpen, w.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a window by id.
func (r *WindowRepo) GetByID(ctx context.Context, id uint64) (model.TransferWindow, error) {
	w, err := scanWindow(r.db.QueryRowContext(ctx,
		"SELECT "+windowCols+" FROM transfer_windows WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return w, ErrNotFound
	}
	return w, err
}

// List returns all windows, most recent first.
func (r *WindowRepo) List(ctx context.Context) ([]model.TransferWindow, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+windowCols+" FROM transfer_windows ORDER BY start_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	windows := make([]model.TransferWindow, 0)
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// openWindowsTx returns the open windows, oldest first, inside the
// given transaction.
func (r *WindowRepo) openWindowsTx(ctx context.Context, tx *sql.Tx) ([]model.TransferWindow, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT "+windowCols+" FROM transfer_windows WHERE is_open=1 ORDER BY start_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	windows := make([]model.TransferWindow, 0)
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// Current returns the window that is open and covers now, or
// ErrNotFound when no window is active. The open rows are filtered
// through model.TransferWindow.Active so the activity rule is
// defined in exactly one place.
func (r *WindowRepo) Current(ctx context.Context, now time.Time) (model.TransferWindow, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+windowCols+" FROM transfer_windows WHERE is_open=1 ORDER BY start_at")
	if err != nil {
		return model.TransferWindow{}, err
	}
	defer rows.Close()
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return model.TransferWindow{}, err
		}
		if w.Active(now) {
			return w, nil
		}
	}
	if err := rows.Err(); err != nil {
		return model.TransferWindow{}, err
	}
	return model.TransferWindow{}, ErrNotFound
}

// Update overwrites the schedule of a window.
func (r *WindowRepo) Update(ctx context.Context, w *model.TransferWindow) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE transfer_windows SET start_at=?, end_at=?, is_open=? WHERE id=?",
		w.StartAt.UTC(), w.EndAt.UTC(), w.IsOpen, w.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close flips is_open off. Closing an already-closed window is a
// conflict so the action is not silently repeatable.
func (r *WindowRepo) Close(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE transfer_windows SET is_open=0 WHERE id=? AND is_open=1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// Delete removes a window.
func (r *WindowRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transfer_windows WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
