package pgquery

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxExecutor runs queries over a pgx connection pool.
type PgxExecutor struct {
	Pool *pgxpool.Pool
}

func NewPgxExecutor(pool *pgxpool.Pool) *PgxExecutor {
	return &PgxExecutor{Pool: pool}
}

func (e *PgxExecutor) QueryOne(ctx context.Context, sql string, args []any) (Row, error) {
	row := e.Pool.QueryRow(ctx, sql, args...)
	return row, nil
}

func (e *PgxExecutor) QueryAll(ctx context.Context, sql string, args []any, fn func(Row) error) error {
	rows, err := e.Pool.Query(ctx, sql, args...)
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

func (e *PgxExecutor) Execute(ctx context.Context, sql string, args []any) (int64, error) {
	tag, err := e.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Executor = (*PgxExecutor)(nil)
