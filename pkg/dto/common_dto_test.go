package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMeta(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		want  int
	}{
		{"empty", 0, 0},
		{"exact", 12, 2},
		{"partial", 13, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewPaginationMeta(1, 6, tt.total)
			assert.Equal(t, tt.want, meta.TotalPages)
			assert.Equal(t, tt.total, meta.TotalItems)
		})
	}
}

func TestOffset(t *testing.T) {
	page, offset := Offset(0, 6)
	assert.Equal(t, 1, page)
	assert.Zero(t, offset)

	page, offset = Offset(3, 6)
	assert.Equal(t, 3, page)
	assert.Equal(t, 12, offset)
}
