package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateClamps(t *testing.T) {
	p := &PaginationParams{Page: -3, PerPage: 5000}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPerPage, p.PerPage)

	p = &PaginationParams{Page: 3}
	p.Validate()
	assert.Equal(t, DefaultPerPage, p.PerPage)
	assert.Equal(t, 50, p.Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 25, 51)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = NewPagination(1, 0, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
}

func TestNewPaginatedResultNeverNil(t *testing.T) {
	r := NewPaginatedResult[string](nil, NewPagination(1, 10, 0))
	assert.NotNil(t, r.Items)
}
