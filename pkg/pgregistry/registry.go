// Package pgregistry is the query registry: queries register themselves
// (their parameter contract and a builder that produces SQL text plus a
// declared result type) at package-init time, and ValidateAll later drives
// every registered query through pkg/pgvalidate using synthesized dummy
// arguments.
//
// Grounded on the reference implementation's FearOfSQL class (_validate.py)
// and, for the concurrency-safe map shape, the teacher's mutex-guarded
// registry pattern.
package pgregistry

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/pgguard/pgguard/internal/zaplog"
	"github.com/pgguard/pgguard/pkg/pgtype"
	"github.com/pgguard/pgguard/pkg/pgvalidate"
	"github.com/pgguard/pgguard/pkg/valcheck"
)

// Param names one positional argument a registered query's builder
// expects, and the Go type the builder wants it as. Go's reflect package
// cannot recover a closure's parameter names, so the contract is declared
// explicitly here instead of derived by inspecting Build.
type Param struct {
	Name string
	Type reflect.Type
}

// Builder turns a set of argument values, in Param order, into the SQL
// text to validate and the declared result row type (nil for a
// fire-and-forget statement).
type Builder func(args []any) (sql string, resultType reflect.Type)

// Entry is one registered query.
type Entry struct {
	Name   string
	Params []Param
	Build  Builder
}

// Registry is a concurrent-safe set of registered queries. The zero value
// is ready to use.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	byName  map[string]int
}

// Register adds a query to the registry. It panics on a duplicate name,
// since query names are also validation error keys and a silent shadow
// would hide real failures.
func (r *Registry) Register(name string, params []Param, build Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byName == nil {
		r.byName = make(map[string]int)
	}
	if _, exists := r.byName[name]; exists {
		panic(fmt.Sprintf("pgregistry: query %q already registered", name))
	}
	r.byName[name] = len(r.entries)
	r.entries = append(r.entries, Entry{Name: name, Params: params, Build: build})
}

// Snapshot returns a copy of the currently registered entries, safe to
// range over without holding the registry's lock.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Finding is one query's validation outcome: either it validated cleanly
// (Errors is empty) or it produced one or more structured findings. Only
// Survey (below) produces these; ValidateAll never builds one, since it
// stops at the first failing query.
type Finding struct {
	Query  string
	SQL    string
	Errors []valcheck.Error
}

// dummyArgs synthesizes one positional argument per entry.Params, in order.
func dummyArgs(entry Entry) ([]any, error) {
	args := make([]any, len(entry.Params))
	for i, p := range entry.Params {
		v, err := DummyValue(p.Type)
		if err != nil {
			return nil, fmt.Errorf("query %q, param %q: %w", entry.Name, p.Name, err)
		}
		args[i] = v
	}
	return args, nil
}

// ValidateAll runs every registered query's builder with synthesized dummy
// arguments and validates the resulting SQL against conn, one query at a
// time. It stops at the first query that produces any valcheck.Error,
// logging every error for that query and attaching the query's name and
// rendered SQL to the first one before returning it — matching the
// reference implementation's _validate loop, which raises rather than
// collecting findings across the whole registry. count is the number of
// queries that validated cleanly before the failure (or before the end of
// the registry, if every query passed).
func ValidateAll(ctx context.Context, conn *pgx.Conn, catalog *pgtype.Catalog, r *Registry, logger *zap.Logger) (int, error) {
	count := 0
	for _, entry := range r.Snapshot() {
		args, err := dummyArgs(entry)
		if err != nil {
			return count, err
		}

		sql, resultType := entry.Build(args)
		errs, err := pgvalidate.CollectErrors(ctx, conn, catalog, sql, resultType)
		if err != nil {
			return count, fmt.Errorf("query %q: %w", entry.Name, err)
		}

		if len(errs) > 0 {
			for _, e := range errs {
				logger.Warn("query failed validation",
					zaplog.Values(
						zap.String("query", entry.Name),
						zap.String("sql", sql),
						zap.String("error", e.Error()),
					),
				)
			}
			return count, valcheck.WithContext(errs[0], entry.Name, sql)
		}

		logger.Info("query validated", zaplog.Values(zap.String("query", entry.Name)))
		count++
	}
	return count, nil
}

// Survey is the dashboard's entry point, not the core library's: it runs
// every registered query to completion regardless of per-query failures
// and returns one Finding per query, so a caller displaying live results
// can see the whole registry's state rather than just the first failure.
// It does not stop the run and does not return a valcheck.Error; see
// DESIGN.md's Open Question on ValidateAll vs. Survey.
func Survey(ctx context.Context, conn *pgx.Conn, catalog *pgtype.Catalog, r *Registry, logger *zap.Logger) ([]Finding, error) {
	entries := r.Snapshot()
	findings := make([]Finding, 0, len(entries))
	for _, entry := range entries {
		args, err := dummyArgs(entry)
		if err != nil {
			return nil, err
		}

		sql, resultType := entry.Build(args)
		errs, err := pgvalidate.CollectErrors(ctx, conn, catalog, sql, resultType)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", entry.Name, err)
		}

		for i, e := range errs {
			errs[i] = valcheck.WithContext(e, entry.Name, sql)
		}

		if len(errs) == 0 {
			logger.Info("query validated", zaplog.Values(zap.String("query", entry.Name)))
		} else {
			logger.Warn("query failed validation",
				zaplog.Values(
					zap.String("query", entry.Name),
					zap.Int("error_count", len(errs)),
				),
			)
		}
		findings = append(findings, Finding{Query: entry.Name, SQL: sql, Errors: errs})
	}
	return findings, nil
}
