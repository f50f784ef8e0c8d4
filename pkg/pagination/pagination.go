package pagination

const (
	// DefaultPageSize is the standard page size when none is provided.
	DefaultPageSize = 12
	// MaxPageSize caps how many rows any list query can request.
	MaxPageSize = 100
)

// Params holds page-based pagination inputs from controllers.
type Params struct {
	Page     int
	PageSize int
}

// Normalize clamps the params to sane bounds.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the SQL offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Meta describes one page of a larger result set.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta derives page metadata from a total row count.
func NewMeta(params Params, total int64) Meta {
	n := params.Normalize()
	pages := int((total + int64(n.PageSize) - 1) / int64(n.PageSize))
	return Meta{
		Total:      total,
		Page:       n.Page,
		PageSize:   n.PageSize,
		TotalPages: pages,
	}
}
