// Package pgvalidate orchestrates the full static-validation pipeline:
// describe the statement, resolve column nullability, extract the caller's
// declared expectation, and check one against the other.
//
// Grounded on the reference implementation's collect_errors (_validate.py).
package pgvalidate

import (
	"context"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pgguard/pgguard/pkg/describe"
	"github.com/pgguard/pgguard/pkg/expect"
	"github.com/pgguard/pgguard/pkg/nullability"
	"github.com/pgguard/pgguard/pkg/pgtype"
	"github.com/pgguard/pgguard/pkg/valcheck"
)

// nextStmtName returns a session-unique prepared-statement name. PostgreSQL
// identifiers can't contain hyphens unquoted, so the UUID's hyphens are
// stripped rather than quoting the whole name.
func nextStmtName() string {
	return "pgguard_validate_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CollectErrors runs the full pipeline against sql using conn and reports
// every way the statement's actual result shape disagrees with resultType.
// resultType of nil means the statement is fire-and-forget (an Execute, in
// the reference implementation's terms) and is described only far enough
// to confirm it prepares cleanly.
func CollectErrors(ctx context.Context, conn *pgx.Conn, catalog *pgtype.Catalog, sql string, resultType reflect.Type) ([]valcheck.Error, error) {
	stmtName := nextStmtName()
	positional := ToPositional(sql)

	// Deferred before Describe so a statement that PREPAREs but then fails
	// the type lookup is still deallocated.
	defer deallocate(ctx, conn, stmtName)
	desc, err := describe.Describe(ctx, conn, catalog, stmtName, positional)
	if err != nil {
		return nil, err
	}

	if resultType == nil {
		return nil, nil
	}

	base, err := nullability.CatalogBase(ctx, conn, desc.Origins)
	if err != nil {
		return nil, err
	}
	explainOverrides, err := nullability.Explain(ctx, conn, stmtName, desc.Columns)
	if err != nil {
		return nil, err
	}
	resolved := nullability.Resolve(desc.Columns, base, explainOverrides, desc.Overrides)

	shape := expect.Extract(resultType)

	if !shape.IsRecord() {
		return valcheck.CheckScalar(resolved, *shape.Scalar), nil
	}

	var errs []valcheck.Error
	for _, exp := range shape.Record {
		col, notFound := valcheck.FindColumn(resolved, exp.Name)
		if notFound != nil {
			errs = append(errs, notFound)
			continue
		}
		errs = append(errs, valcheck.CheckColumn(col, exp.Expectation)...)
	}
	return errs, nil
}

func deallocate(ctx context.Context, conn *pgx.Conn, stmtName string) {
	_ = conn.Deallocate(ctx, stmtName)
}
