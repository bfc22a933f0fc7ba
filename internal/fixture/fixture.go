// Package fixture boots a real, throwaway PostgreSQL instance for
// integration tests and hands out schema-isolated sandboxes against it.
//
// Adapted from the teacher repo's pkg/fixgres: same testcontainers + goose
// + pgx boot-once pattern, repurposed to this module's own migrations
// (internal/fixture/migrations) and to returning *pgx.Conn sandboxes, since
// pkg/pgvalidate's PREPARE/EXPLAIN pipeline runs over the pgx wire
// protocol rather than database/sql.
package fixture

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type config struct {
	image    string
	dbName   string
	user     string
	password string
	gooseFS  fs.FS
}

// Option configures Boot.
type Option func(*config)

// WithImage overrides the PostgreSQL container image (default
// postgres:16-alpine).
func WithImage(image string) Option { return func(c *config) { c.image = image } }

var (
	once       sync.Once
	pg         *postgres.PostgresContainer
	mu         sync.Mutex
	connString string
	bootErr    error
)

// Boot starts (once, process-wide) a PostgreSQL container and applies the
// migrations in migFS via goose. Safe to call repeatedly; only the first
// call does any work.
func Boot(ctx context.Context, migFS fs.FS, opts ...Option) error {
	once.Do(func() {
		cfg := &config{
			image:    "docker.io/postgres:16-alpine",
			dbName:   "pgguard",
			user:     "postgres",
			password: "pgguard",
			gooseFS:  migFS,
		}
		for _, o := range opts {
			o(cfg)
		}

		container, err := postgres.Run(ctx,
			cfg.image,
			postgres.WithDatabase(cfg.dbName),
			postgres.WithUsername(cfg.user),
			postgres.WithPassword(cfg.password),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			bootErr = fmt.Errorf("start postgres container: %w", err)
			return
		}
		pg = container

		host, err := container.Host(ctx)
		if err != nil {
			bootErr = fmt.Errorf("container host: %w", err)
			return
		}
		port, err := container.MappedPort(ctx, "5432/tcp")
		if err != nil {
			bootErr = fmt.Errorf("container port: %w", err)
			return
		}
		connString = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.user, cfg.password, host, port.Port(), cfg.dbName,
		)

		db, err := sql.Open("pgx", connString)
		if err != nil {
			bootErr = fmt.Errorf("open migration connection: %w", err)
			return
		}
		defer db.Close()

		goose.SetBaseFS(cfg.gooseFS)
		if err := goose.SetDialect("postgres"); err != nil {
			bootErr = fmt.Errorf("set goose dialect: %w", err)
			return
		}
		if err := goose.Up(db, "migrations"); err != nil {
			bootErr = fmt.Errorf("run migrations: %w", err)
			return
		}
	})
	return bootErr
}

// Shutdown terminates the booted container, if any. Intended for a
// TestMain's deferred cleanup.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()
	if pg == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return pg.Terminate(ctx)
}
