// Command pgguard connects to a PostgreSQL database and validates every
// query registered with pkg/pgregistry against it, reporting any mismatch
// between a query's declared result shape and what PostgreSQL actually
// returns.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/pgguard/pgguard/internal/dashboard"
	"github.com/pgguard/pgguard/internal/zaplog"
	"github.com/pgguard/pgguard/pkg/pgregistry"
	"github.com/pgguard/pgguard/pkg/pgtype"
)

func main() {
	dsn := flag.String("dsn", os.Getenv("PGGUARD_DSN"), "PostgreSQL connection string")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	serveDashboard := flag.String("dashboard", "", "if set, an address (e.g. :8090) to serve the validation dashboard on instead of exiting")
	timeout := flag.Duration("timeout", 30*time.Second, "timeout for the validation pass")
	flag.Parse()

	logger, err := zaplog.New(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pgguard: build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *dsn == "" {
		logger.Fatal("missing -dsn (or PGGUARD_DSN)")
	}

	if err := run(*dsn, *verbose, *serveDashboard, *timeout, logger); err != nil {
		logger.Fatal("pgguard run failed", zap.Error(err))
	}
}

func run(dsn string, verbose bool, dashboardAddr string, timeout time.Duration, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	catalog := pgtype.NewCatalog()
	registry := pgregistry.Registry{} // a fresh, empty registry: nothing in this command registers queries into it, so every run sees zero queries.

	if dashboardAddr != "" {
		// The dashboard wants every query's outcome to display, not just
		// the first failure, so it drives the registry through Survey
		// instead of the fail-fast ValidateAll this command otherwise uses.
		srv := dashboard.New(conn, catalog, &registry, logger)
		logger.Info("serving dashboard", zap.String("addr", dashboardAddr))
		return http.ListenAndServe(dashboardAddr, srv.Routes())
	}

	count, err := pgregistry.ValidateAll(ctx, conn, catalog, &registry, logger)
	if err != nil {
		return fmt.Errorf("%d queries validated before failure: %w", count, err)
	}
	logger.Info("validation complete", zap.Int("queries", count))
	return nil
}
