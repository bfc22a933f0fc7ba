// Package describe implements the Describer: it PREPAREs a statement
// against a live connection and turns PostgreSQL's row description into the
// unresolved, pre-nullability shape of each output column.
//
// Grounded on the reference implementation's _describe.py. Where pg8000
// exposes prepared-statement column metadata as a dict per column, pgx's
// wire-protocol layer exposes it as pgconn.FieldDescription — this package
// adapts that shape into the same three parallel views the reference
// splits it into: unresolved columns (name + host type), column origins
// (table OID + attribute number, consumed by pkg/nullability), and
// name-annotation nullability overrides (the trailing "!"/"?" convention).
package describe

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgguard/pgguard/pkg/pgtype"
)

// UnresolvedColumn is a statement output column before nullability has been
// resolved: its final name (annotation suffix stripped) and its host type.
type UnresolvedColumn struct {
	Name string
	Host pgtype.Type
}

// ColumnOrigin identifies the catalog table/attribute a column's value was
// read from, or the zero table OID when the column is computed (an
// expression, an aggregate, a literal) rather than read directly off a
// table's row.
type ColumnOrigin struct {
	Name          string
	TableOID      uint32
	ColumnAttrNum int16
	IsComputed    bool
}

// NullabilityOverride pins a column's nullability, bypassing the catalog
// and EXPLAIN-derived defaults. It is produced here from the trailing "!"
// (force not-null) / "?" (force nullable) column-alias convention.
type NullabilityOverride struct {
	Name     string
	Nullable bool
}

// Result bundles everything the Describer produces for one statement. The
// statement named by StmtName is left open (PREPARE is not DEALLOCATEd) so
// that pkg/nullability's EXPLAIN walk can reference it by name; callers are
// responsible for deallocating it when done — see
// pkg/pgvalidate.CollectErrors.
type Result struct {
	StmtName  string
	Columns   []UnresolvedColumn
	Origins   []ColumnOrigin
	Overrides []NullabilityOverride
}

// splitAnnotation strips a trailing "!" (force not-null) or "?" (force
// nullable) from a column alias, returning the bare name and the override
// it implies, if any.
func splitAnnotation(rawName string) (name string, override *bool) {
	switch {
	case strings.HasSuffix(rawName, "!"):
		notNull := false
		return strings.TrimSuffix(rawName, "!"), &notNull
	case strings.HasSuffix(rawName, "?"):
		nullable := true
		return strings.TrimSuffix(rawName, "?"), &nullable
	default:
		return rawName, nil
	}
}

// Describe prepares sql under stmtName and describes its result columns.
// The catalog is used to map each column's reported type OID to a host Go
// type; an *pgtype.UnsupportedError aborts the whole describe (it is fatal,
// not a validation finding — pkg/pgvalidate propagates it as-is).
func Describe(ctx context.Context, conn *pgx.Conn, catalog *pgtype.Catalog, stmtName, sql string) (*Result, error) {
	sd, err := conn.Prepare(ctx, stmtName, sql)
	if err != nil {
		return nil, fmt.Errorf("prepare statement: %w", err)
	}

	res := &Result{StmtName: stmtName}
	for _, field := range sd.Fields {
		rawName := string(field.Name)
		name, override := splitAnnotation(rawName)

		host, err := catalog.Lookup(field.DataTypeOID, name)
		if err != nil {
			return nil, err
		}
		res.Columns = append(res.Columns, UnresolvedColumn{Name: name, Host: host})

		res.Origins = append(res.Origins, ColumnOrigin{
			Name:          name,
			TableOID:      uint32(field.TableOID),
			ColumnAttrNum: field.TableAttributeNumber,
			IsComputed:    field.TableOID == 0,
		})

		if override != nil {
			res.Overrides = append(res.Overrides, NullabilityOverride{Name: name, Nullable: *override})
		}
	}
	return res, nil
}
