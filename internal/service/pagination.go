package service

// Границы пагинации
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Pagination описывает запрошенную страницу списка
type Pagination struct {
	Page    int
	PerPage int
}

// NewPagination нормализует номер страницы и размер: значения вне диапазона
// заменяются на значения по умолчанию или ограничиваются MaxPerPage
func NewPagination(page, perPage int) Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Pagination{Page: page, PerPage: perPage}
}

// Offset возвращает смещение первой записи страницы
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page представляет страницу результатов
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// NewPage собирает страницу из элементов и общего количества
func NewPage[T any](items []T, total int64, p Pagination) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: pages,
	}
}
