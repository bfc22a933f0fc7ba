package pgquery

import (
	"context"
	"database/sql"

	// registers the "postgres" database/sql driver
	_ "github.com/lib/pq"
)

// DBAPIExecutor runs queries over a database/sql pool, for callers whose
// production stack already standardized on database/sql rather than pgx
// (lib/pq is this module's reference database/sql driver).
type DBAPIExecutor struct {
	DB *sql.DB
}

func NewDBAPIExecutor(db *sql.DB) *DBAPIExecutor {
	return &DBAPIExecutor{DB: db}
}

func (e *DBAPIExecutor) QueryOne(ctx context.Context, query string, args []any) (Row, error) {
	return e.DB.QueryRowContext(ctx, query, args...), nil
}

func (e *DBAPIExecutor) QueryAll(ctx context.Context, query string, args []any, fn func(Row) error) error {
	rows, err := e.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (e *DBAPIExecutor) Execute(ctx context.Context, query string, args []any) (int64, error) {
	res, err := e.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ Executor = (*DBAPIExecutor)(nil)
