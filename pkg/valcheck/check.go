package valcheck

import "reflect"

// ResolvedColumn is a statement output column after nullability resolution:
// its final host type and its final, merged nullable flag.
type ResolvedColumn struct {
	Name     string
	Type     reflect.Type
	Nullable bool
}

// Expectation is the Go realization of the reference implementation's
// union-typed "allowed types" set: since Go has no sum types, a declared
// shape's tolerance is expressed as an explicit list of acceptable host
// types plus a separate Nullable flag, mirroring the {allowed, nullable}
// pair the union unwraps to in the original design.
type Expectation struct {
	Allowed  []reflect.Type
	Nullable bool
}

func allows(allowed []reflect.Type, t reflect.Type) bool {
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

// CheckColumn compares a single resolved column against its expectation,
// returning both a type-mismatch and a nullability error when both apply.
func CheckColumn(col ResolvedColumn, exp Expectation) []Error {
	var errs []Error
	if !allows(exp.Allowed, col.Type) {
		errs = append(errs, NewTypeMismatch(col.Name, exp.Allowed, col.Type))
	}
	if col.Nullable && !exp.Nullable {
		errs = append(errs, NewNullability(col.Name))
	}
	return errs
}

// CheckScalar checks a single-column result against a scalar expectation,
// reporting a column-count mismatch if the statement did not return exactly
// one column.
func CheckScalar(resolved []ResolvedColumn, exp Expectation) []Error {
	if len(resolved) != 1 {
		return []Error{NewColumnCountMismatch(1, len(resolved))}
	}
	return CheckColumn(resolved[0], exp)
}

// FindColumn returns the resolved column named name, or a *ColumnNotFound
// error if no column by that name exists. Go has no NamedTuple|error-shaped
// return to match the reference implementation's pattern-matched result, so
// the not-found case is signaled by a non-nil pre-built error alongside a
// zero ResolvedColumn instead. Names are compared exactly (case-sensitive).
func FindColumn(resolved []ResolvedColumn, name string) (ResolvedColumn, *ColumnNotFound) {
	for _, col := range resolved {
		if col.Name == name {
			return col, nil
		}
	}
	return ResolvedColumn{}, NewColumnNotFound(name)
}
