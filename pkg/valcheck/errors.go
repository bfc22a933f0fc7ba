// Package valcheck defines the validation-error taxonomy produced by a
// failed static check, and the Checker that compares a resolved column
// against its declared expectation.
//
// Grounded on the reference implementation's _errors.py: a closed family of
// structured outcomes (column count mismatch, column missing, type
// mismatch, unexpected nullability) distinct from the fatal, propagating
// errors (unsupported type, wire errors) that abort validation entirely.
// Go has no exception hierarchy to subclass, so the family is expressed as
// a sealed interface: its unexported withContext method means only the
// structs in this package (ColumnCountMismatch, ColumnNotFound,
// TypeMismatch, Nullability) implement Error, and callers discriminate with
// a type switch.
package valcheck

import (
	"fmt"
	"reflect"
)

// Error is the sealed interface implemented by every static validation
// finding. Query and SQL are attached by the caller once the offending
// query is known; they are not set by the Checker itself.
type Error interface {
	error
	Query() string
	SQL() string
	withContext(query, sql string) Error
}

// WithContext returns a copy of err annotated with the query's registered
// name and its rendered SQL text, for use in log lines and CLI output.
func WithContext(err Error, query, sql string) Error {
	return err.withContext(query, sql)
}

type base struct {
	query string
	sql   string
}

func (b base) Query() string { return b.query }
func (b base) SQL() string   { return b.sql }

// ColumnCountMismatch reports that a scalar expectation was declared but
// the statement returned a different number of columns.
type ColumnCountMismatch struct {
	base
	Expected int
	Actual   int
}

func (e *ColumnCountMismatch) Error() string {
	return fmt.Sprintf("expected %d column(s), got %d", e.Expected, e.Actual)
}

func (e *ColumnCountMismatch) withContext(query, sql string) Error {
	c := *e
	c.base = base{query: query, sql: sql}
	return &c
}

// NewColumnCountMismatch builds a ColumnCountMismatch error.
func NewColumnCountMismatch(expected, actual int) *ColumnCountMismatch {
	return &ColumnCountMismatch{Expected: expected, Actual: actual}
}

// ColumnNotFound reports that a declared struct field has no corresponding
// column in the statement's row description.
type ColumnNotFound struct {
	base
	Column string
}

func (e *ColumnNotFound) Error() string {
	return fmt.Sprintf("column %q not found in query results", e.Column)
}

func (e *ColumnNotFound) withContext(query, sql string) Error {
	c := *e
	c.base = base{query: query, sql: sql}
	return &c
}

// NewColumnNotFound builds a ColumnNotFound error.
func NewColumnNotFound(column string) *ColumnNotFound {
	return &ColumnNotFound{Column: column}
}

// TypeMismatch reports that a column's resolved host type is not among the
// types the declared shape allows.
type TypeMismatch struct {
	base
	Column   string
	Expected []reflect.Type
	Actual   reflect.Type
}

func (e *TypeMismatch) Error() string {
	names := make([]string, len(e.Expected))
	for i, t := range e.Expected {
		names[i] = t.String()
	}
	return fmt.Sprintf("column %q: expected %v, got %s", e.Column, names, e.Actual)
}

func (e *TypeMismatch) withContext(query, sql string) Error {
	c := *e
	c.base = base{query: query, sql: sql}
	return &c
}

// NewTypeMismatch builds a TypeMismatch error.
func NewTypeMismatch(column string, expected []reflect.Type, actual reflect.Type) *TypeMismatch {
	return &TypeMismatch{Column: column, Expected: expected, Actual: actual}
}

// Nullability reports that a column can return NULL but its declared shape
// has no way to represent that (no *T, sql.NullT, or nullable.Of[T] form).
type Nullability struct {
	base
	Column string
}

func (e *Nullability) Error() string {
	return fmt.Sprintf("column %q is nullable but declared type does not allow it", e.Column)
}

func (e *Nullability) withContext(query, sql string) Error {
	c := *e
	c.base = base{query: query, sql: sql}
	return &c
}

// NewNullability builds a Nullability error.
func NewNullability(column string) *Nullability {
	return &Nullability{Column: column}
}
