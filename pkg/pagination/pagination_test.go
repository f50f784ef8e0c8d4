package pagination

import "testing"

func TestNormalizeClampsBounds(t *testing.T) {
	t.Parallel()

	n := Params{Page: 0, PageSize: 0}.Normalize()
	if n.Page != 1 || n.PageSize != DefaultPageSize {
		t.Fatalf("unexpected defaults %+v", n)
	}

	n = Params{Page: 3, PageSize: 1000}.Normalize()
	if n.PageSize != MaxPageSize {
		t.Fatalf("page size should cap at %d, got %d", MaxPageSize, n.PageSize)
	}
}

func TestOffset(t *testing.T) {
	t.Parallel()

	if got := (Params{Page: 1, PageSize: 10}).Offset(); got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}
	if got := (Params{Page: 4, PageSize: 25}).Offset(); got != 75 {
		t.Fatalf("expected offset 75, got %d", got)
	}
}

func TestNewMetaRoundsPagesUp(t *testing.T) {
	t.Parallel()

	meta := NewMeta(Params{Page: 2, PageSize: 10}, 41)
	if meta.TotalPages != 5 {
		t.Fatalf("expected 5 pages, got %d", meta.TotalPages)
	}
	if meta.Total != 41 || meta.Page != 2 || meta.PageSize != 10 {
		t.Fatalf("unexpected meta %+v", meta)
	}
}
