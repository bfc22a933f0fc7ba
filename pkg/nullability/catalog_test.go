package nullability_test

import (
	"context"
	"testing"

	"github.com/pgguard/pgguard/pkg/describe"
	"github.com/pgguard/pgguard/pkg/nullability"
)

func TestCatalogBaseComputedColumnIsNullable(t *testing.T) {
	origins := []describe.ColumnOrigin{
		{Name: "count", TableOID: 0, ColumnAttrNum: 0, IsComputed: true},
	}

	// A computed column's origin carries no table OID to look up, so
	// CatalogBase never touches conn for it; nil is safe here.
	bases, err := nullability.CatalogBase(context.Background(), nil, origins)
	if err != nil {
		t.Fatalf("CatalogBase: %v", err)
	}
	if len(bases) != 1 {
		t.Fatalf("expected 1 base, got %d", len(bases))
	}
	if bases[0].Name != "count" || !bases[0].Nullable {
		t.Fatalf("expected computed column %q to be nullable by default, got %+v", "count", bases[0])
	}
}
