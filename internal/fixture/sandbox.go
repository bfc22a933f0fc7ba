package fixture

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

// Sandbox is a single test's connection to the shared PostgreSQL instance:
// a fresh, empty schema first on a search_path only this sandbox's
// connection uses, dropped on Close. Boot's migrations created the fixture
// tables in public, which follows on that search_path, so rows a test
// writes to those tables are shared with every other sandbox.
type Sandbox struct {
	Conn   *pgx.Conn
	Schema string
	Close  func()
}

// NewSandbox requires Boot to have already run (normally from a package's
// TestMain) and creates a fresh schema-scoped sandbox for one test.
func NewSandbox(t *testing.T) *Sandbox {
	t.Helper()
	if connString == "" {
		t.Fatal("fixture: Boot was not called (call fixture.Boot in TestMain)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgx.Connect(ctx, connString)
	if err != nil {
		t.Fatalf("fixture: open admin connection: %v", err)
	}

	schema := fmt.Sprintf("t_%x", time.Now().UnixNano())
	if _, err := admin.Exec(ctx, `CREATE SCHEMA "`+schema+`"`); err != nil {
		t.Fatalf("fixture: create schema %s: %v", schema, err)
	}

	sbxDSN := withSearchPath(connString, schema)
	conn, err := pgx.Connect(ctx, sbxDSN)
	if err != nil {
		t.Fatalf("fixture: open sandbox connection: %v", err)
	}

	sbx := &Sandbox{Conn: conn, Schema: schema}
	sbx.Close = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = admin.Exec(ctx, `DROP SCHEMA IF EXISTS "`+schema+`" CASCADE`)
		_ = conn.Close(ctx)
		_ = admin.Close(ctx)
	}
	t.Cleanup(sbx.Close)
	return sbx
}

func withSearchPath(base, schema string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("options", fmt.Sprintf("-csearch_path=%s,public", schema))
	u.RawQuery = q.Encode()
	return u.String()
}
