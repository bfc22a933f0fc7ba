// Package expect is the Expectation Extractor: it turns a declared Go
// result shape — a struct for a record-returning query, any other type for
// a scalar-returning one — into the allowed-host-types-plus-nullable
// expectation pkg/valcheck checks resolved columns against.
//
// Grounded on the reference implementation's extract_expected (_resolve.py),
// which reads a dataclass's (or pydantic model's) field annotations and
// unwraps `X | None` unions into {allowed types, nullable}. Go has no
// runtime union types, so nullability is read off the field's *shape*
// instead: a pointer, a database/sql NullX wrapper, or a
// github.com/pivaldi/nullable generic wrapper all signal "this column may
// be NULL" the way `T | None` does in the reference implementation.
package expect

import (
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pgguard/pgguard/pkg/valcheck"
)

// ColumnExpectation pairs a declared struct field's column name with its
// extracted Expectation.
type ColumnExpectation struct {
	Name        string
	Expectation valcheck.Expectation
}

// Shape is the result of extraction: either a Record (one expectation per
// declared struct field) or a Scalar (a single expectation for a
// single-column result), mirroring the reference implementation's
// ExpectedColumn-list-vs-ExpectedScalar split.
type Shape struct {
	Record []ColumnExpectation
	Scalar *valcheck.Expectation
}

// IsRecord reports whether the shape came from a struct (as opposed to a
// bare scalar type).
func (s Shape) IsRecord() bool { return s.Record != nil }

// Of extracts the Shape declared by T. Call as expect.Of[MyRow]() at a
// query's registration site.
func Of[T any]() Shape {
	return Extract(reflect.TypeOf((*T)(nil)).Elem())
}

// Extract is the reflect.Type-driven core of Of, split out so callers that
// only have a reflect.Type (pkg/pgregistry, iterating over registered
// queries) don't need a type parameter to call it.
func Extract(t reflect.Type) Shape {
	if t.Kind() == reflect.Struct && !isScalarWrapperStruct(t) {
		fields := make([]ColumnExpectation, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			fields = append(fields, ColumnExpectation{
				Name:        columnName(f),
				Expectation: unwrapField(f.Type),
			})
		}
		return Shape{Record: fields}
	}

	exp := unwrapField(t)
	return Shape{Scalar: &exp}
}

// columnName reads a `db:"..."` struct tag if present, falling back to the
// field's own name.
func columnName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("db"); ok && tag != "" {
		return tag
	}
	return f.Name
}

// unwrapField determines a field's allowed host type and whether its shape
// signals nullability.
func unwrapField(t reflect.Type) valcheck.Expectation {
	if t.Kind() == reflect.Ptr {
		return valcheck.Expectation{Allowed: []reflect.Type{t.Elem()}, Nullable: true}
	}

	if host, ok := sqlNullHost(t); ok {
		return valcheck.Expectation{Allowed: []reflect.Type{host}, Nullable: true}
	}

	if host, ok := nullableOfHost(t); ok {
		return valcheck.Expectation{Allowed: []reflect.Type{host}, Nullable: true}
	}

	return valcheck.Expectation{Allowed: []reflect.Type{t}, Nullable: false}
}

// sqlNullHost maps a database/sql NullX wrapper to its underlying host
// type. It recognizes the standard library's own NullX family by name
// rather than an exhaustive type switch, since the set is closed and small.
func sqlNullHost(t reflect.Type) (reflect.Type, bool) {
	if t.PkgPath() != "database/sql" {
		return nil, false
	}
	switch t.Name() {
	case "NullString":
		return reflect.TypeOf(""), true
	case "NullInt64":
		return reflect.TypeOf(int64(0)), true
	case "NullInt32":
		return reflect.TypeOf(int32(0)), true
	case "NullInt16":
		return reflect.TypeOf(int16(0)), true
	case "NullByte":
		return reflect.TypeOf(byte(0)), true
	case "NullFloat64":
		return reflect.TypeOf(float64(0)), true
	case "NullBool":
		return reflect.TypeOf(false), true
	case "NullTime":
		return reflect.TypeOf(time.Time{}), true
	default:
		return nil, false
	}
}

// nullableOfHost recognizes a github.com/pivaldi/nullable.Of[T] field and
// recovers its type parameter T by reflecting on the wrapper's unexported
// "val *T" field, since reflect has no direct API for a generic type's
// instantiated arguments.
func nullableOfHost(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Struct || t.PkgPath() != "github.com/pivaldi/nullable" {
		return nil, false
	}
	if !strings.HasPrefix(t.Name(), "Of[") {
		return nil, false
	}
	valField, ok := t.FieldByName("val")
	if !ok || valField.Type.Kind() != reflect.Ptr {
		return nil, false
	}
	return valField.Type.Elem(), true
}

// isScalarWrapperStruct reports whether t is a struct that should be
// treated as a single scalar value rather than a multi-column record, even
// though its Kind is Struct.
func isScalarWrapperStruct(t reflect.Type) bool {
	switch {
	case t == reflect.TypeOf(time.Time{}):
		return true
	case t == reflect.TypeOf(uuid.UUID{}):
		return true
	case t == reflect.TypeOf(pgtype.Numeric{}),
		t == reflect.TypeOf(pgtype.Date{}),
		t == reflect.TypeOf(pgtype.Time{}),
		t == reflect.TypeOf(pgtype.Timestamp{}),
		t == reflect.TypeOf(pgtype.Timestamptz{}),
		t == reflect.TypeOf(pgtype.Interval{}):
		return true
	}
	if _, ok := sqlNullHost(t); ok {
		return true
	}
	if _, ok := nullableOfHost(t); ok {
		return true
	}
	return false
}
