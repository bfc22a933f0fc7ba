// Package pgquery is the boundary-only query-execution facade: running a
// query's SQL text against a live connection and returning rows. It is
// deliberately thin — turning a row into a Go value is delegated to the
// driver's own row-scanning utilities (pgx.RowToStructByName, lib/pq's
// database/sql Scan), not reimplemented here, since general-purpose row
// marshaling is outside what this library is for.
package pgquery

import (
	"context"
	"fmt"
	"reflect"
)

// Query describes a record- or scalar-returning statement: its SQL text,
// its positional arguments, and the declared Go type of one result row.
// Registering one with pkg/pgregistry is what makes it eligible for static
// validation.
type Query[T any] struct {
	SQL  string
	Args []any
}

// ResultType reports the declared row type T via reflection, for use by
// pkg/expect during validation.
func (q Query[T]) ResultType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Execute describes a fire-and-forget statement with no declared result
// shape — an INSERT/UPDATE/DELETE whose row count, if any, the caller does
// not bind to a Go type.
type Execute struct {
	SQL  string
	Args []any
}

// Row is satisfied directly by both pgx.Row/pgx.Rows and *sql.Row/*sql.Rows —
// no adapter needed, since both drivers already expose Scan(dest ...any) error.
type Row interface {
	Scan(dest ...any) error
}

// Executor is the minimal interface pgquery needs from a database
// connection, satisfied by both a pgx and a database/sql-backed driver so
// callers can run queries against either stack. Static validation does not
// go through it: pkg/pgvalidate works on a *pgx.Conn directly.
type Executor interface {
	QueryOne(ctx context.Context, sql string, args []any) (Row, error)
	QueryAll(ctx context.Context, sql string, args []any, fn func(Row) error) error
	Execute(ctx context.Context, sql string, args []any) (rowsAffected int64, err error)
}

// ErrNoRows is the sentinel for a single-row fetch that matched zero rows.
// The executors in this package do not return it themselves: QueryOne hands
// back the driver's row, whose Scan reports the driver's own no-rows error.
var ErrNoRows = fmt.Errorf("pgquery: query returned no rows")
