package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, int64(3), p.TotalPages)
	assert.Equal(t, int64(25), p.TotalItems)
	assert.True(t, p.HasMore)
	assert.Equal(t, 11, p.From)
	assert.Equal(t, 20, p.To)
}

func TestNewPaginationEmpty(t *testing.T) {
	p := NewPagination(1, 50, 0)
	assert.Equal(t, int64(0), p.TotalPages)
	assert.Equal(t, 0, p.From)
	assert.Equal(t, 0, p.To)
	assert.False(t, p.HasMore)
}

func TestNewPaginationClampsOutOfRangeInputs(t *testing.T) {
	p := NewPagination(0, 0, 5)
	require.NotNil(t, p)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.PageSize)
	assert.Equal(t, int64(5), p.TotalPages)
	assert.Equal(t, 1, p.From)
	assert.Equal(t, 1, p.To)
}
