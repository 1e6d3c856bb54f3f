package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaging_Defaults(t *testing.T) {
	tests := []struct {
		name          string
		page, perPage int
		want          Paging
	}{
		{"zero values", 0, 0, Paging{Page: 1, PerPage: 25}},
		{"negative", -3, -1, Paging{Page: 1, PerPage: 25}},
		{"explicit", 4, 10, Paging{Page: 4, PerPage: 10}},
		{"too large", 1, 1000, Paging{Page: 1, PerPage: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPaging(tt.page, tt.perPage))
		})
	}
}

func TestPaging_Offset(t *testing.T) {
	assert.Equal(t, 0, NewPaging(1, 25).Offset())
	assert.Equal(t, 50, NewPaging(3, 25).Offset())
	assert.Equal(t, 90, NewPaging(10, 10).Offset())
}

func TestPaging_LastPage(t *testing.T) {
	p := NewPaging(1, 25)

	assert.Equal(t, 1, p.LastPage(0))
	assert.Equal(t, 1, p.LastPage(25))
	assert.Equal(t, 2, p.LastPage(26))
	assert.Equal(t, 4, p.LastPage(100))
}

func TestPaging_ClampAndNeighbours(t *testing.T) {
	p := NewPaging(9, 10).Clamp(35)
	assert.Equal(t, 4, p.Page)
	assert.Equal(t, 3, p.PrevPage())
	assert.Equal(t, 4, p.NextPage(35))

	first := NewPaging(1, 10)
	assert.Equal(t, 1, first.PrevPage())
	assert.Equal(t, 1, first.Clamp(0).Page)
}
