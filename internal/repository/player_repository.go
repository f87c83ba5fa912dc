package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/velimirb/transfer-window/internal/model"
)

// PlayerRepo provides CRUD access to the players table. Listing
// supports the filters the market UI needs (club, position, free
// agents) and a visibility-restricted market query that hides
// players of unapproved clubs.
type PlayerRepo struct {
	db *sql.DB
}

func NewPlayerRepo(db *sql.DB) *PlayerRepo { return &PlayerRepo{db: db} }

func (r *PlayerRepo) DB() *sql.DB { return r.db }

const playerCols = "id, name, age, nationality, position, market_value_cents, contract_end, health_status, club_id, created_at, updated_at"

func scanPlayer(row interface{ Scan(...interface{}) error }) (model.Player, error) {
	var p model.Player
	var contractEnd sql.NullTime
	var clubID sql.NullInt64
	err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Nationality, &p.Position,
		&p.MarketValueCents, &contractEnd, &p.HealthStatus, &clubID, &p.CreatedAt, &p.UpdatedAt)
	if contractEnd.Valid {
		t := contractEnd.Time
		p.ContractEnd = &t
	}
	if clubID.Valid {
		id := uint64(clubID.Int64)
		p.ClubID = &id
	}
	return p, err
}

// Create inserts a player and populates the generated ID.
func (r *PlayerRepo) Create(ctx context.Context, p *model.Player) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO players (name, age, nationality, position, market_value_cents, contract_end, health_status, club_id) VALUES (?,?,?,?,?,?,?,?)",
		p.Name, p.Age, p.Nationality, p.Position, p.MarketValueCents, nullTime(p.ContractEnd), p.HealthStatus, nullID(p.ClubID))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a player by id. Returns ErrNotFound when absent.
func (r *PlayerRepo) GetByID(ctx context.Context, id uint64) (model.Player, error) {
	p, err := scanPlayer(r.db.QueryRowContext(ctx,
		"SELECT "+playerCols+" FROM players WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// PlayerFilter narrows List results. Zero values mean "no filter".
type PlayerFilter struct {
	ClubID     uint64
	Position   string
	FreeAgents bool
}

// List returns players matching the filter, newest first.
func (r *PlayerRepo) List(ctx context.Context, f PlayerFilter) ([]model.Player, error) {
	q := "SELECT " + playerCols + " FROM players WHERE 1=1"
	args := []interface{}{}
	if f.ClubID != 0 {
		q += " AND club_id=?"
		args = append(args, f.ClubID)
	}
	if f.Position != "" {
		q += " AND position=?"
		args = append(args, f.Position)
	}
	if f.FreeAgents {
		q += " AND club_id IS NULL"
	}
	q += " ORDER BY created_at DESC"
	return r.queryPlayers(ctx, q, args...)
}

// ListMarket returns the players visible on the transfer market:
// members of APPROVED clubs plus free agents. Players of pending or
// rejected clubs are deliberately excluded.
func (r *PlayerRepo) ListMarket(ctx context.Context, position string) ([]model.Player, error) {
	q := `SELECT ` + playerColsPrefixed("p") + `
	      FROM players p
	      LEFT JOIN clubs c ON c.id = p.club_id
	      WHERE (p.club_id IS NULL OR c.status = 'APPROVED')`
	args := []interface{}{}
	if position != "" {
		q += " AND p.position=?"
		args = append(args, position)
	}
	q += " ORDER BY p.market_value_cents DESC, p.id"
	return r.queryPlayers(ctx, q, args...)
}

func playerColsPrefixed(alias string) string {
	return alias + ".id, " + alias + ".name, " + alias + ".age, " + alias + ".nationality, " +
		alias + ".position, " + alias + ".market_value_cents, " + alias + ".contract_end, " +
		alias + ".health_status, " + alias + ".club_id, " + alias + ".created_at, " + alias + ".updated_at"
}

func (r *PlayerRepo) queryPlayers(ctx context.Context, q string, args ...interface{}) ([]model.Player, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	players := make([]model.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Update overwrites the mutable fields of a player.
func (r *PlayerRepo) Update(ctx context.Context, p *model.Player) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE players SET name=?, age=?, nationality=?, position=?, market_value_cents=?, contract_end=?, health_status=? WHERE id=?",
		p.Name, p.Age, p.Nationality, p.Position, p.MarketValueCents, nullTime(p.ContractEnd), p.HealthStatus, p.ID)
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

// GetClubForUpdateTx reads the player's current club under a FOR
// UPDATE lock. Used while accepting or completing a transfer to
// guard against the player having moved since the transfer was
// created.
func (r *PlayerRepo) GetClubForUpdateTx(ctx context.Context, tx *sql.Tx, playerID uint64) (*uint64, error) {
	var clubID sql.NullInt64
	err := tx.QueryRowContext(ctx,
		"SELECT club_id FROM players WHERE id=? FOR UPDATE", playerID).Scan(&clubID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !clubID.Valid {
		return nil, nil
	}
	id := uint64(clubID.Int64)
	return &id, nil
}

// ReassignClubTx moves the player to a new club within the caller's
// transaction. Part of transfer completion.
func (r *PlayerRepo) ReassignClubTx(ctx context.Context, tx *sql.Tx, playerID, clubID uint64) error {
	_, err := tx.ExecContext(ctx, "UPDATE players SET club_id=? WHERE id=?", clubID, playerID)
	return err
}

// Delete removes a player.
func (r *PlayerRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM players WHERE id=?", id)
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

func nullID(id *uint64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
