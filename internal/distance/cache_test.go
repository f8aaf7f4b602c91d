package distance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMatrixNormalization(t *testing.T) {
	subjects := []string{"u4pruy", "u4pruv", "u33dc0"}
	candidates := []string{"u4pruy", "9q8yyk", "u33dc1", "u4pruy"}

	m := BuildMatrix(subjects, candidates, 6)

	rows, cols := m.Shape()
	require.Equal(t, 3, rows)
	require.Equal(t, 3, cols, "duplicate candidate prefixes collapse into one column")

	minScore, maxScore := 1.0, 0.0
	for i := 0; i < rows; i++ {
		for _, v := range m.Row(i) {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
			if v < minScore {
				minScore = v
			}
			if v > maxScore {
				maxScore = v
			}
		}
	}
	assert.InDelta(t, 0.0, minScore, 1e-12, "the farthest pair scores 0")
	assert.Equal(t, 1.0, maxScore, "co-located cells score 1")

	same, err := m.Get("u4pruy", "u4pruy")
	require.NoError(t, err)
	assert.Equal(t, 1.0, same)

	neighbour, err := m.Get("u4pruv", "u4pruy")
	require.NoError(t, err)
	far, err := m.Get("u4pruv", "9q8yyk")
	require.NoError(t, err)
	assert.Greater(t, neighbour, far, "closer cells get a higher score")
}

func TestBuildMatrixPrecisionTruncation(t *testing.T) {
	m := BuildMatrix([]string{"u4pruy", "u4przz"}, []string{"u4pabc", "9q8yyk"}, 3)

	rows, cols := m.Shape()
	assert.Equal(t, 1, rows, "both subjects share the u4p cell")
	assert.Equal(t, 2, cols)

	v, err := m.Get("u4p", "u4p")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestBuildMatrixDegenerate(t *testing.T) {
	m := BuildMatrix([]string{"u4pruy", "u4pruv"}, []string{"u4pruk"}, 4)

	rows, cols := m.Shape()
	require.Equal(t, 1, rows)
	require.Equal(t, 1, cols)
	assert.Equal(t, 0.0, m.At(0, 0), "zero span keeps the raw distance")
}

func TestBuildCache(t *testing.T) {
	subjects := []string{"u4pruy", "9q8yyk"}
	candidates := []string{"u4pruy", "9q8yyz"}

	c, err := Build(context.Background(), subjects, candidates, []int{6, 2, 4})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, c.Precisions())

	m, ok := c.Matrix(2)
	require.True(t, ok)
	v, err := m.Get("9q", "9q")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, ok = c.Matrix(5)
	assert.False(t, ok)
}

func TestBuildCacheCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, []string{"u4pruy"}, []string{"u4pruy"}, []int{1})
	assert.ErrorIs(t, err, context.Canceled)
}
