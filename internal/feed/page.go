package feed

// PageInfo paging metadata of a PagedModel envelope
type PageInfo struct {
	Size          int   `json:"size"`
	Number        int   `json:"number"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// Page response envelope, accepts both {content, page:{...}} and the flat Spring Page layout
type Page[T any] struct {
	Content []T      `json:"content"`
	Page    PageInfo `json:"page"`

	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// NewPage build an envelope, used by list endpoints without paging
func NewPage[T any](content []T, number, size int, totalElements int64) Page[T] {
	return Page[T]{
		Content: content,
		Page: PageInfo{
			Size:          size,
			Number:        number,
			TotalElements: totalElements,
			TotalPages:    TotalPages(totalElements, size),
		},
	}
}

// Totals total pages and elements, computed from size when the server omits total pages
func (p Page[T]) Totals(size int) (int, int64) {
	elements, pages := p.Page.TotalElements, p.Page.TotalPages
	if elements == 0 && pages == 0 {
		elements, pages = p.TotalElements, p.TotalPages
	}
	if pages == 0 && elements > 0 {
		pages = TotalPages(elements, size)
	}
	return pages, elements
}

// TotalPages ceil(elements/size)
func TotalPages(elements int64, size int) int {
	if size <= 0 || elements <= 0 {
		return 0
	}
	return int((elements + int64(size) - 1) / int64(size))
}
