package dto

// Pagination is a generic pagination envelope for list results
// T is the element type of the Data slice
// Total represents the total number of items matching the filters (without pagination)
// Page is 1-based; PageSize is the requested page size
//
// Example: Pagination[PostDTO]
type Pagination[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	Total      int64 `json:"total"`
}

// PageOf slices an in-memory result set into a pagination envelope.
//
// page is 1-based; values below 1 are treated as 1. pageSize below 1 falls
// back to 20. A page past the end yields empty Data with Total/TotalPages
// intact rather than an error.
func PageOf[T any](page, pageSize int, items []T) Pagination[T] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	data := make([]T, 0, end-start)
	data = append(data, items[start:end]...)

	return Pagination[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Total:      int64(total),
	}
}
