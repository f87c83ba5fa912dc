package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/velimirb/transfer-window/internal/model"
)

// ClubRepo provides CRUD operations for clubs and the duplicate
// checks run at registration time. Duplicate detection is performed
// server-side here (not delegated to the UI): a club with the same
// (name, country) among non-rejected clubs, or the same license
// number anywhere, cannot be registered.
type ClubRepo struct {
	db *sql.DB
}

func NewClubRepo(db *sql.DB) *ClubRepo { return &ClubRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *ClubRepo) DB() *sql.DB { return r.db }

const clubCols = "id, name, country, manager, contact, license_no, status, logo_url, user_id, created_at, updated_at"

func scanClub(row interface{ Scan(...interface{}) error }) (model.Club, error) {
	var c model.Club
	var logo sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Country, &c.Manager, &c.Contact,
		&c.LicenseNo, &c.Status, &logo, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if logo.Valid {
		c.LogoURL = logo.String
	}
	return c, err
}

// Create inserts a club after running both duplicate checks inside
// one transaction. The initial status is supplied by the caller
// (PENDING for club users, admins may create APPROVED directly).
func (r *ClubRepo) Create(ctx context.Context, c *model.Club) error {
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

	name := strings.TrimSpace(c.Name)
	country := strings.TrimSpace(c.Country)

	var exists bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM clubs WHERE name=? AND country=? AND status<>'REJECTED')",
		name, country).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateClub
	}
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM clubs WHERE license_no=?)", c.LicenseNo).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateLicense
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO clubs (name, country, manager, contact, license_no, status, logo_url, user_id) VALUES (?,?,?,?,?,?,?,?)",
		name, country, c.Manager, c.Contact, c.LicenseNo, c.Status, nullStr(c.LogoURL), c.UserID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateLicense
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a club by id. Returns ErrNotFound when absent.
func (r *ClubRepo) GetByID(ctx context.Context, id uint64) (model.Club, error) {
	c, err := scanClub(r.db.QueryRowContext(ctx,
		"SELECT "+clubCols+" FROM clubs WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

// GetByUserID fetches the club owned by a CLUB-role user.
func (r *ClubRepo) GetByUserID(ctx context.Context, userID uint64) (model.Club, error) {
	c, err := scanClub(r.db.QueryRowContext(ctx,
		"SELECT "+clubCols+" FROM clubs WHERE user_id=? LIMIT 1", userID))
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

// List returns clubs, optionally filtered by status, newest first.
func (r *ClubRepo) List(ctx context.Context, status model.ClubStatus) ([]model.Club, error) {
	q := "SELECT " + clubCols + " FROM clubs"
	args := []interface{}{}
	if status != "" {
		q += " WHERE status=?"
		args = append(args, status)
	}
	q += " ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	clubs := make([]model.Club, 0)
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, err
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

// Update overwrites the mutable fields of a club. Ownership checks
// are performed by the handler before calling this. Renaming is held
// to the same (name, country) duplicate rule as Create, so an update
// cannot manufacture a pair that creation would have refused.
func (r *ClubRepo) Update(ctx context.Context, c *model.Club) error {
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

	name := strings.TrimSpace(c.Name)
	country := strings.TrimSpace(c.Country)

	var exists bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM clubs WHERE name=? AND country=? AND status<>'REJECTED' AND id<>?)",
		name, country, c.ID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateClub
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE clubs SET name=?, country=?, manager=?, contact=?, logo_url=? WHERE id=?",
		name, country, c.Manager, c.Contact, nullStr(c.LogoURL), c.ID)
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
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpdateStatus moves a club from PENDING to APPROVED or REJECTED.
// The transition table is enforced in SQL by requiring the current
// status to admit the move, so a concurrent approve/reject race
// resolves to exactly one winner.
func (r *ClubRepo) UpdateStatus(ctx context.Context, id uint64, to model.ClubStatus) (model.Club, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE clubs SET status=? WHERE id=? AND status='PENDING'", to, id)
	if err != nil {
		return model.Club{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Club{}, err
	}
	if n == 0 {
		// Either the club does not exist or the transition is illegal.
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Club{}, err
		}
		return model.Club{}, ErrConflict
	}
	return r.GetByID(ctx, id)
}

// Delete removes a club. Players of the club become free agents
// (club_id set NULL) inside the same transaction.
func (r *ClubRepo) Delete(ctx context.Context, id uint64) error {
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
	if _, err := tx.ExecContext(ctx, "UPDATE players SET club_id=NULL WHERE club_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM clubs WHERE id=?", id)
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
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func nullStr(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
