package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tx is the subset of pgx.Tx used by repositories. Both pgx.Tx and
// *pgxpool.Pool satisfy it, so repositories work inside and outside an
// explicit transaction.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Insert builds an INSERT statement for the given columns with positional
// placeholders starting at $1.
func Insert(tableName string, fields []string, returning ...string) string {
	placeholders := make([]string, 0, len(fields))
	for i := range fields {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		tableName,
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
	)
	if len(returning) > 0 {
		q += " RETURNING " + strings.Join(returning, ", ")
	}
	return q
}

// BatchInsertQueryN builds a multi-row INSERT from a base statement like
// "INSERT INTO t (a, b) VALUES" and returns the full query plus the flattened
// argument list. Every row must have the same arity.
func BatchInsertQueryN(baseQuery string, rows [][]interface{}) (string, []interface{}) {
	if len(rows) == 0 {
		return baseQuery, nil
	}
	width := len(rows[0])
	values := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*width)
	for i, row := range rows {
		if len(row) != width {
			panic(fmt.Sprintf("repo: row %d has %d values, want %d", i, len(row), width))
		}
		placeholders := make([]string, 0, width)
		for j := range row {
			placeholders = append(placeholders, fmt.Sprintf("$%d", i*width+j+1))
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, row...)
	}
	return baseQuery + " " + strings.Join(values, ", "), args
}
