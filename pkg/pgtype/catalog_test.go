package pgtype

import (
	"reflect"
	"testing"

	"github.com/lib/pq/oid"
)

func TestLookupScalar(t *testing.T) {
	c := NewCatalog()

	ty, err := c.Lookup(uint32(oid.T_int4), "id")
	if err != nil {
		t.Fatalf("lookup int4: %v", err)
	}
	if ty.Name != "int4" {
		t.Errorf("got name %q, want int4", ty.Name)
	}
	if ty.Host.Kind() != reflect.Int32 {
		t.Errorf("got host kind %v, want int32", ty.Host.Kind())
	}
}

func TestLookupArray(t *testing.T) {
	c := NewCatalog()

	ty, err := c.Lookup(uint32(oid.T__text), "tags")
	if err != nil {
		t.Fatalf("lookup _text: %v", err)
	}
	if ty.Name != "_text" {
		t.Errorf("got name %q, want _text", ty.Name)
	}
	if ty.Host.Kind() != reflect.Slice || ty.Host.Elem().Kind() != reflect.String {
		t.Errorf("got host %v, want []string", ty.Host)
	}
}

func TestLookupUnsupported(t *testing.T) {
	c := NewCatalog()

	_, err := c.Lookup(999999, "mystery")
	if err == nil {
		t.Fatal("expected error for unknown OID")
	}
	var unsupported *UnsupportedError
	if !isUnsupported(err, &unsupported) {
		t.Fatalf("got %T, want *UnsupportedError", err)
	}
	if unsupported.Column != "mystery" {
		t.Errorf("got column %q, want mystery", unsupported.Column)
	}
}

func isUnsupported(err error, target **UnsupportedError) bool {
	u, ok := err.(*UnsupportedError)
	if !ok {
		return false
	}
	*target = u
	return true
}
