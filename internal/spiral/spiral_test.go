package spiral

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFirstFive(t *testing.T) {
	offsets, err := Generate(5)
	require.NoError(t, err)

	assert.Equal(t, []GridOffset{
		{0, 0}, {1, 0}, {1, 1}, {0, 1}, {-1, 1},
	}, offsets)
}

func TestGenerateLengthAndUniqueness(t *testing.T) {
	for _, n := range []int{1, 2, 5, 7, 10, 50, 500, 2500} {
		offsets, err := Generate(n)
		require.NoError(t, err, "n=%d", n)
		require.Len(t, offsets, n)
		assert.Equal(t, GridOffset{}, offsets[0])

		seen := make(map[GridOffset]bool, n)
		for _, o := range offsets {
			assert.False(t, seen[o], "n=%d: %s repeated", n, o)
			seen[o] = true
		}
	}
}

func TestGenerateFillsSquares(t *testing.T) {
	offsets, err := Generate(21 * 21)
	require.NoError(t, err)

	for ring := 1; ring <= 10; ring++ {
		side := 2*ring + 1
		for _, o := range offsets[:side*side] {
			assert.LessOrEqual(t, abs(o.DX), ring, "ring %d: %s", ring, o)
			assert.LessOrEqual(t, abs(o.DY), ring, "ring %d: %s", ring, o)
		}
	}
}

func TestGenerateUnitSteps(t *testing.T) {
	offsets, err := Generate(300)
	require.NoError(t, err)

	for i := 1; i < len(offsets); i++ {
		d := abs(offsets[i].DX-offsets[i-1].DX) + abs(offsets[i].DY-offsets[i-1].DY)
		assert.Equal(t, 1, d, "step %d: %s -> %s", i, offsets[i-1], offsets[i])
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(137)
	require.NoError(t, err)
	b, err := Generate(137)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// A shorter run is a prefix of a longer one.
	c, err := Generate(40)
	require.NoError(t, err)
	assert.Equal(t, a[:40], c)
}

func TestGenerateRejectsNonPositive(t *testing.T) {
	for _, n := range []int{0, -3} {
		_, err := Generate(n)
		assert.Error(t, err)
	}
}

func TestGenerateRestartBudget(t *testing.T) {
	// Walks right then back left onto the origin on the second ring.
	backAndForth := func(k int) (int, int, int) {
		if k%2 == 0 {
			return -1, 0, 1
		}
		return 1, 0, 1
	}

	offsets, err := generate(10, backAndForth)
	assert.Nil(t, offsets)

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, 10, genErr.Requested)
	assert.Equal(t, MaxRestarts+1, genErr.Attempts)
	assert.Equal(t, GridOffset{}, genErr.Duplicate)
}

func TestGenerateSingleRingNeverChecked(t *testing.T) {
	backAndForth := func(k int) (int, int, int) {
		if k%2 == 0 {
			return -1, 0, 1
		}
		return 1, 0, 1
	}

	// The bad ring is never reached.
	offsets, err := generate(2, backAndForth)
	require.NoError(t, err)
	assert.Equal(t, []GridOffset{{0, 0}, {1, 0}}, offsets)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
