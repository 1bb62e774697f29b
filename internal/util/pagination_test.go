package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-3", 1},
		{"2", 2},
		{"9223372036854775807", MaxPage},
		{"99999999999999999999", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePage(tt.in), "input %q", tt.in)
	}
}

func TestCalculate(t *testing.T) {
	offset, limit := Calculate(3, 12)
	assert.Equal(t, 24, offset)
	assert.Equal(t, 12, limit)

	offset, limit = Calculate(0, 0)
	assert.Equal(t, 0, offset)
	assert.Equal(t, ProductPageSize, limit)

	offset, limit = Calculate(math.MaxInt, ProductPageSize)
	assert.Equal(t, (MaxPage-1)*ProductPageSize, offset)
	assert.Equal(t, ProductPageSize, limit)
	assert.Positive(t, offset)

	_, limit = Calculate(1, math.MaxInt)
	assert.Equal(t, MaxPageSize, limit)
}

func TestPages(t *testing.T) {
	assert.Equal(t, 0, Pages(0, 12))
	assert.Equal(t, 1, Pages(12, 12))
	assert.Equal(t, 2, Pages(15, 12))
	assert.Equal(t, 0, Pages(5, 0))
}
