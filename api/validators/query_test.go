package validators

import (
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/maldonadorepuestos/backend/pkg/errors"
)

func TestParseQueryInt(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/products?page=3", nil)
	page, err := ParseQueryInt(r, "page", 1, 1, 1000)
	if err != nil || page != 3 {
		t.Fatalf("expected 3, got %d (%v)", page, err)
	}

	page, err = ParseQueryInt(r, "page_size", 12, 1, 100)
	if err != nil || page != 12 {
		t.Fatalf("expected default 12, got %d (%v)", page, err)
	}

	r = httptest.NewRequest("GET", "/products?page=abc", nil)
	if _, err := ParseQueryInt(r, "page", 1, 1, 1000); err == nil {
		t.Fatalf("expected error for non-numeric page")
	}

	r = httptest.NewRequest("GET", "/products?page=0", nil)
	if _, err := ParseQueryInt(r, "page", 1, 1, 1000); err == nil {
		t.Fatalf("expected range error")
	}
}

func TestParseQueryBool(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/products?in_stock=true", nil)
	got, err := ParseQueryBool(r, "in_stock")
	if err != nil || got == nil || !*got {
		t.Fatalf("expected true, got %v (%v)", got, err)
	}

	r = httptest.NewRequest("GET", "/products", nil)
	got, err = ParseQueryBool(r, "in_stock")
	if err != nil || got != nil {
		t.Fatalf("absent param should be nil, got %v (%v)", got, err)
	}

	r = httptest.NewRequest("GET", "/products?in_stock=si", nil)
	if _, err := ParseQueryBool(r, "in_stock"); err == nil {
		t.Fatalf("expected error for malformed bool")
	}
}

func TestParseQueryUUID(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/products?category=6f7c2f4e-6a2c-4f7e-9b0d-0a1b2c3d4e5f", nil)
	got, err := ParseQueryUUID(r, "category")
	if err != nil || got == nil {
		t.Fatalf("expected uuid, got %v (%v)", got, err)
	}

	r = httptest.NewRequest("GET", "/products?category=not-a-uuid", nil)
	_, err = ParseQueryUUID(r, "category")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryEnum(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/products?sort=price_asc", nil)
	got, err := ParseQueryEnum(r, "sort", "relevance", "relevance", "price_asc", "price_desc")
	if err != nil || got != "price_asc" {
		t.Fatalf("expected price_asc, got %q (%v)", got, err)
	}

	r = httptest.NewRequest("GET", "/products", nil)
	got, err = ParseQueryEnum(r, "sort", "relevance", "relevance", "price_asc")
	if err != nil || got != "relevance" {
		t.Fatalf("expected default, got %q (%v)", got, err)
	}

	r = httptest.NewRequest("GET", "/products?sort=random", nil)
	if _, err := ParseQueryEnum(r, "sort", "relevance", "relevance"); err == nil {
		t.Fatalf("expected error for unsupported sort")
	}
}
