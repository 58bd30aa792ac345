package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"blogread/dto"
)

func TestPageOf(t *testing.T) {
	items := make([]int, 12)
	for i := range items {
		items[i] = i + 1
	}

	page := dto.PageOf(2, 5, items)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.PageSize)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, []int{6, 7, 8, 9, 10}, page.Data)

	last := dto.PageOf(3, 5, items)
	assert.Equal(t, []int{11, 12}, last.Data)
}

func TestPageOfOutOfRange(t *testing.T) {
	items := []int{1, 2, 3}

	page := dto.PageOf(9, 2, items)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
}

func TestPageOfNormalizesBadInput(t *testing.T) {
	items := []int{1, 2, 3}

	page := dto.PageOf(0, -1, items)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, []int{1, 2, 3}, page.Data)
}

func TestPageOfEmpty(t *testing.T) {
	page := dto.PageOf(1, 10, []int{})
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 0, page.TotalPages)
}
