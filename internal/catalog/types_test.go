package catalog

import "testing"

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name    string
		items   int
		perPage int
		want    int
	}{
		{name: "empty catalog", items: 0, perPage: 48, want: 1},
		{name: "exact multiple", items: 96, perPage: 48, want: 2},
		{name: "partial last page", items: 100, perPage: 48, want: 3},
		{name: "single item", items: 1, perPage: 48, want: 1},
		{name: "zero page size", items: 10, perPage: 0, want: 1},
		{name: "negative items", items: -5, perPage: 48, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalPages(tt.items, tt.perPage); got != tt.want {
				t.Fatalf("TotalPages(%d, %d) = %d, want %d", tt.items, tt.perPage, got, tt.want)
			}
		})
	}
}

func TestPaginationInfoNormalize(t *testing.T) {
	p := PaginationInfo{TotalItems: 49}.Normalize()
	if p.ItemsPerPage != DefaultItemsPerPage {
		t.Fatalf("ItemsPerPage = %d, want %d", p.ItemsPerPage, DefaultItemsPerPage)
	}
	if p.TotalPages != 2 {
		t.Fatalf("TotalPages = %d, want 2", p.TotalPages)
	}
}

func TestPagePath(t *testing.T) {
	if got := PagePath(3); got != "/json/page-3.json" {
		t.Fatalf("PagePath(3) = %q", got)
	}
	if got := PageFileName(12); got != "page-12.json" {
		t.Fatalf("PageFileName(12) = %q", got)
	}
}
