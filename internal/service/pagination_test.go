package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		page, perPage int
		want          Pagination
		offset        int
	}{
		{0, 0, Pagination{Page: 1, PerPage: DefaultPerPage}, 0},
		{3, 20, Pagination{Page: 3, PerPage: 20}, 40},
		{-1, 1000, Pagination{Page: 1, PerPage: MaxPerPage}, 0},
	}
	for _, tt := range tests {
		p := NewPagination(tt.page, tt.perPage)
		assert.Equal(t, tt.want, p)
		assert.Equal(t, tt.offset, p.Offset())
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage[int](nil, 0, NewPagination(1, 10))
	assert.NotNil(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)

	page = NewPage([]int{1, 2}, 21, NewPagination(3, 10))
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.Page)
}
