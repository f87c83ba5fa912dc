package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// ErrTableNotAllowed is returned when a bulk delete names a table
// outside the allow-list.
var ErrTableNotAllowed = errors.New("table not allowed")

// bulkTables is the hard allow-list of tables the generic bulk
// delete may touch, mapped to their id column. The table and column
// are never taken from the request verbatim; only allow-listed
// values reach the SQL text.
var bulkTables = map[string]string{
	"players":          "id",
	"transfers":        "id",
	"offers":           "id",
	"wishlists":        "id",
	"notifications":    "id",
	"transfer_windows": "id",
	"clubs":            "id",
}

// BulkRepo implements the admin batch delete endpoint.
type BulkRepo struct {
	db *sql.DB
}

func NewBulkRepo(db *sql.DB) *BulkRepo { return &BulkRepo{db: db} }

// AllowedTable reports whether a table may be bulk-deleted from.
func AllowedTable(table string) bool {
	_, ok := bulkTables[table]
	return ok
}

// Delete removes the given ids from an allow-listed table and
// returns the number of rows deleted.
func (r *BulkRepo) Delete(ctx context.Context, table string, ids []uint64) (int64, error) {
	col, ok := bulkTables[table]
	if !ok {
		return 0, ErrTableNotAllowed
	}
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := "DELETE FROM " + table + " WHERE " + col + " IN (" + strings.Join(placeholders, ",") + ")"
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
