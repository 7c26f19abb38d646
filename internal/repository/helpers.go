package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// existsByDNI checks whether a row of the given table already uses the DNI,
// optionally excluding one id. Both teachers and students key uniqueness on
// the national id when present.
func existsByDNI(ctx context.Context, db *sqlx.DB, table, dni, excludeID string) (bool, error) {
	if strings.TrimSpace(dni) == "" {
		return false, nil
	}
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE dni = $1", table)
	args := []interface{}{dni}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check %s dni: %w", table, err)
	}
	return true, nil
}
