package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cell struct{ col, row int }

func (c cell) GetColumn() int { return c.col }
func (c cell) GetRow() int    { return c.row }

func TestCalculateTileBounds(t *testing.T) {
	bounds, err := CalculateTileBounds([]cell{{0, 0}, {2, -1}, {-3, 4}, {1, 1}})
	require.NoError(t, err)

	assert.Equal(t, TileBounds{MinCol: -3, MaxCol: 2, MinRow: -1, MaxRow: 4}, bounds)
	assert.Equal(t, 6, bounds.Cols())
	assert.Equal(t, 6, bounds.Rows())
	assert.True(t, bounds.Contains(0, 0))
	assert.True(t, bounds.Contains(-3, 4))
	assert.False(t, bounds.Contains(3, 0))
}

func TestCalculateTileBoundsEmpty(t *testing.T) {
	_, err := CalculateTileBounds([]cell{})
	assert.Error(t, err)
}
