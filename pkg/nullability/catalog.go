// Package nullability resolves whether each output column of a prepared
// statement can return NULL, merging three sources in increasing priority:
// the catalog's declared not-null constraint, EXPLAIN's outer-join
// analysis, and the query author's own column-alias annotation.
//
// Grounded on the reference implementation's collect_catalog_nullability
// (_resolve.py) and collect_explain_nullability (_explain.py).
package nullability

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pgguard/pgguard/pkg/describe"
)

// Base is the catalog-derived nullability for one column, before any
// EXPLAIN or user-annotation overrides are applied.
type Base struct {
	Name     string
	Nullable bool
}

// CatalogBase looks up, for each column origin, whether pg_attribute
// records it as NOT NULL. Computed columns (table OID 0 — expressions,
// aggregates, literals) have no backing attribute and are conservatively
// treated as nullable.
func CatalogBase(ctx context.Context, conn *pgx.Conn, origins []describe.ColumnOrigin) ([]Base, error) {
	bases := make([]Base, 0, len(origins))
	for _, origin := range origins {
		if origin.IsComputed {
			bases = append(bases, Base{Name: origin.Name, Nullable: true})
			continue
		}

		var attnotnull bool
		err := conn.QueryRow(ctx,
			"SELECT attnotnull FROM pg_catalog.pg_attribute WHERE attrelid = $1 AND attnum = $2",
			origin.TableOID, origin.ColumnAttrNum,
		).Scan(&attnotnull)
		if err != nil {
			return nil, fmt.Errorf("pg_attribute lookup for column %q (relid %d, attnum %d): %w",
				origin.Name, origin.TableOID, origin.ColumnAttrNum, err)
		}
		bases = append(bases, Base{Name: origin.Name, Nullable: !attnotnull})
	}
	return bases, nil
}
