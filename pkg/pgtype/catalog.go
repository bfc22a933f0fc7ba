// Package pgtype maps PostgreSQL type OIDs to host Go types.
//
// Grounded on the reference implementation's PG_TYPES table (fear_of_sql's
// _types.py): a flat, immutable OID -> host-type mapping for scalars and
// their one-dimensional array counterparts. Rather than hand-rolling OID
// magic numbers, the table keys off github.com/lib/pq/oid's named
// constants — lib/pq is already wired in this module as the database/sql
// driver backing pkg/pgquery, so its OID table is the natural source of
// truth here too.
package pgtype

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lib/pq/oid"
)

// Type is one entry of the catalog: a PostgreSQL type's canonical name and
// the Go type it is mapped to.
type Type struct {
	OID  uint32
	Name string
	Host reflect.Type
}

// UnsupportedError is raised (not returned in a ValidationError list) when a
// column's type OID has no entry in the catalog. It is fatal per spec: the
// caller cannot meaningfully validate a column whose type it cannot name.
type UnsupportedError struct {
	OID    uint32
	Column string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported PostgreSQL type OID %d for column %q", e.OID, e.Column)
}

// Catalog is the immutable OID -> Type table. The zero value is not useful;
// construct one with NewCatalog.
type Catalog struct {
	byOID map[uint32]Type
}

// NewCatalog builds the standard catalog of common PostgreSQL built-ins and
// their one-dimensional array forms. It is read-only from the moment it is
// returned; callers who need a different mapping build a new instance
// rather than mutating this one.
func NewCatalog() *Catalog {
	scalars := []Type{
		{uint32(oid.T_bool), "bool", reflect.TypeOf(false)},
		{uint32(oid.T_bytea), "bytea", reflect.TypeOf([]byte(nil))},
		{uint32(oid.T_char), "char", reflect.TypeOf("")},
		{uint32(oid.T_name), "name", reflect.TypeOf("")},
		{uint32(oid.T_int8), "int8", reflect.TypeOf(int64(0))},
		{uint32(oid.T_int2), "int2", reflect.TypeOf(int16(0))},
		{uint32(oid.T_int4), "int4", reflect.TypeOf(int32(0))},
		{uint32(oid.T_text), "text", reflect.TypeOf("")},
		{uint32(oid.T_oid), "oid", reflect.TypeOf(uint32(0))},
		{uint32(oid.T_json), "json", reflect.TypeOf((*any)(nil)).Elem()},
		{uint32(oid.T_float4), "float4", reflect.TypeOf(float32(0))},
		{uint32(oid.T_float8), "float8", reflect.TypeOf(float64(0))},
		{uint32(oid.T_money), "money", reflect.TypeOf("")},
		{uint32(oid.T_bpchar), "bpchar", reflect.TypeOf("")},
		{uint32(oid.T_varchar), "varchar", reflect.TypeOf("")},
		{uint32(oid.T_date), "date", reflect.TypeOf(pgtype.Date{})},
		{uint32(oid.T_time), "time", reflect.TypeOf(pgtype.Time{})},
		{uint32(oid.T_timestamp), "timestamp", reflect.TypeOf(pgtype.Timestamp{})},
		{uint32(oid.T_timestamptz), "timestamptz", reflect.TypeOf(pgtype.Timestamptz{})},
		{uint32(oid.T_interval), "interval", reflect.TypeOf(pgtype.Interval{})},
		{uint32(oid.T_numeric), "numeric", reflect.TypeOf(pgtype.Numeric{})},
		{uint32(oid.T_uuid), "uuid", reflect.TypeOf(uuid.UUID{})},
		{uint32(oid.T_jsonb), "jsonb", reflect.TypeOf((*any)(nil)).Elem()},
	}

	c := &Catalog{byOID: make(map[uint32]Type, len(scalars)*2)}
	for _, t := range scalars {
		c.byOID[t.OID] = t
		c.byOID[arrayOID(t.OID)] = Type{
			OID:  arrayOID(t.OID),
			Name: "_" + t.Name,
			Host: reflect.SliceOf(t.Host),
		}
	}
	return c
}

// arrayOID maps a scalar base-type OID to PostgreSQL's corresponding
// one-dimensional array OID. These pairings are fixed by PostgreSQL itself
// and mirror the reference implementation's explicit array entries.
func arrayOID(base uint32) uint32 {
	switch oid.Oid(base) {
	case oid.T_bool:
		return uint32(oid.T__bool)
	case oid.T_bytea:
		return uint32(oid.T__bytea)
	case oid.T_char:
		return uint32(oid.T__char)
	case oid.T_name:
		return uint32(oid.T__name)
	case oid.T_int8:
		return uint32(oid.T__int8)
	case oid.T_int2:
		return uint32(oid.T__int2)
	case oid.T_int4:
		return uint32(oid.T__int4)
	case oid.T_text:
		return uint32(oid.T__text)
	case oid.T_oid:
		return uint32(oid.T__oid)
	case oid.T_json:
		return uint32(oid.T__json)
	case oid.T_float4:
		return uint32(oid.T__float4)
	case oid.T_float8:
		return uint32(oid.T__float8)
	case oid.T_money:
		return uint32(oid.T__money)
	case oid.T_bpchar:
		return uint32(oid.T__bpchar)
	case oid.T_varchar:
		return uint32(oid.T__varchar)
	case oid.T_date:
		return uint32(oid.T__date)
	case oid.T_time:
		return uint32(oid.T__time)
	case oid.T_timestamp:
		return uint32(oid.T__timestamp)
	case oid.T_timestamptz:
		return uint32(oid.T__timestamptz)
	case oid.T_interval:
		return uint32(oid.T__interval)
	case oid.T_numeric:
		return uint32(oid.T__numeric)
	case oid.T_uuid:
		return uint32(oid.T__uuid)
	case oid.T_jsonb:
		return uint32(oid.T__jsonb)
	default:
		return 0
	}
}

// Lookup returns the Type registered for oid, or an *UnsupportedError naming
// column if there is none.
func (c *Catalog) Lookup(typeOID uint32, column string) (Type, error) {
	t, ok := c.byOID[typeOID]
	if !ok {
		return Type{}, &UnsupportedError{OID: typeOID, Column: column}
	}
	return t, nil
}
