package utils

import (
	"net/url"
	"strings"
	"testing"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestNewPageMiddle(t *testing.T) {
	u := mustURL(t, "/v1/professional-services?limit=10&offset=10&subcategory_id=3")
	p := NewPage(u, 10, 10, 35, nil)

	if p.TotalItems != 35 {
		t.Fatalf("TotalItems = %d, want 35", p.TotalItems)
	}
	if p.TotalPages != 4 {
		t.Fatalf("TotalPages = %d, want 4", p.TotalPages)
	}
	if p.NextPage == nil || !strings.Contains(*p.NextPage, "offset=20") {
		t.Fatalf("NextPage = %v, want offset=20", p.NextPage)
	}
	if p.PrevPage == nil || !strings.Contains(*p.PrevPage, "offset=0") {
		t.Fatalf("PrevPage = %v, want offset=0", p.PrevPage)
	}
	// Unrelated query params survive the rewrite.
	if !strings.Contains(*p.NextPage, "subcategory_id=3") {
		t.Fatalf("NextPage dropped filter param: %s", *p.NextPage)
	}
}

func TestNewPageFirst(t *testing.T) {
	u := mustURL(t, "/v1/professional-services")
	p := NewPage(u, 15, 0, 40, nil)
	if p.PrevPage != nil {
		t.Fatalf("PrevPage = %v, want nil on first page", *p.PrevPage)
	}
	if p.NextPage == nil {
		t.Fatal("NextPage = nil, want a link")
	}
}

func TestNewPageLast(t *testing.T) {
	u := mustURL(t, "/v1/professional-services?limit=15&offset=30")
	p := NewPage(u, 15, 30, 40, nil)
	if p.NextPage != nil {
		t.Fatalf("NextPage = %v, want nil on last page", *p.NextPage)
	}
	if p.PrevPage == nil {
		t.Fatal("PrevPage = nil, want a link")
	}
}

func TestNewPageEmpty(t *testing.T) {
	u := mustURL(t, "/v1/professional-services")
	p := NewPage(u, 15, 0, 0, nil)
	if p.TotalPages != 0 {
		t.Fatalf("TotalPages = %d, want 0", p.TotalPages)
	}
	if p.NextPage != nil || p.PrevPage != nil {
		t.Fatal("empty result must have no next/prev links")
	}
}
