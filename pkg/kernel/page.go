package kernel

// Page is pagination metadata returned with every list endpoint.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"page_size"`
	Total  int `json:"total"`
	Pages  int `json:"pages"`
}

// Paginated wraps a page of items with its metadata.
type Paginated[T any] struct {
	Items []T  `json:"items"`
	Page  Page `json:"pagination"`
	Empty bool `json:"empty"`
}

// NewPaginated builds a Paginated result, computing the page count.
func NewPaginated[T any](items []T, page, size, total int) Paginated[T] {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	return Paginated[T]{
		Items: items,
		Page:  Page{Number: page, Size: size, Total: total, Pages: pages},
		Empty: len(items) == 0,
	}
}

func (p Paginated[T]) HasNext() bool     { return p.Page.Number < p.Page.Pages }
func (p Paginated[T]) HasPrevious() bool { return p.Page.Number > 1 }

// PaginationOptions is the sanitized page request used by repositories.
type PaginationOptions struct {
	Page     int
	PageSize int
}

// Normalize clamps the options to sane bounds (1-based page, max size 100).
func (o PaginationOptions) Normalize() PaginationOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = 20
	}
	if o.PageSize > 100 {
		o.PageSize = 100
	}
	return o
}

// Offset returns the SQL offset for the options.
func (o PaginationOptions) Offset() int {
	return (o.Page - 1) * o.PageSize
}
