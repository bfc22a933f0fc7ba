package nullability

import (
	"github.com/pgguard/pgguard/pkg/describe"
	"github.com/pgguard/pgguard/pkg/valcheck"
)

// Resolve merges catalog base nullability with EXPLAIN overrides and the
// query author's own annotation overrides, in that priority order —
// annotations win over EXPLAIN, EXPLAIN wins over the catalog base — and
// pairs the result with each column's host type to produce the
// fully-resolved columns the checker compares against a declared shape.
func Resolve(cols []describe.UnresolvedColumn, base []Base, explainOverrides []ExplainOverride, annotationOverrides []describe.NullabilityOverride) []valcheck.ResolvedColumn {
	nullMap := make(map[string]bool, len(base))
	for _, b := range base {
		nullMap[b.Name] = b.Nullable
	}
	for _, o := range explainOverrides {
		nullMap[o.Name] = o.Nullable
	}
	for _, o := range annotationOverrides {
		nullMap[o.Name] = o.Nullable
	}

	resolved := make([]valcheck.ResolvedColumn, len(cols))
	for i, col := range cols {
		resolved[i] = valcheck.ResolvedColumn{
			Name:     col.Name,
			Type:     col.Host.Host,
			Nullable: nullMap[col.Name],
		}
	}
	return resolved
}
