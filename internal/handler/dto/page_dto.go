package dto

import "github.com/yourusername/talatrivia-api/internal/service"

// PageResponse представляет пагинированный список
type PageResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResponse преобразует элементы страницы сервиса через convert
func NewPageResponse[E any, T any](p service.Page[E], convert func(*E) T) PageResponse[T] {
	items := make([]T, len(p.Items))
	for i := range p.Items {
		items[i] = convert(&p.Items[i])
	}
	return PageResponse[T]{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: p.TotalPages,
	}
}
