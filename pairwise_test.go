package distances

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var squareCorners = []float64{
	0, 0,
	1, 0,
	0, 1,
	5, 5,
}

func TestCondensedSize(t *testing.T) {
	tests := []struct {
		m    int
		want int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{4, 6},
		{100, 4950},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CondensedSize(tt.m), "m=%d", tt.m)
	}
}

func TestCondensedIndex_MatchesPairOrder(t *testing.T) {
	m := 7
	pos := 0
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			assert.Equal(t, pos, CondensedIndex(i, j, m))
			assert.Equal(t, pos, CondensedIndex(j, i, m))
			pos++
		}
	}
}

func TestDistanceMatrix_HandComputed(t *testing.T) {
	ps := mustPointSet(t, squareCorners, 4, 2)
	got, err := DistanceMatrix(ps, All())
	require.NoError(t, err)

	want := []float64{1, 1, math.Sqrt(50), math.Sqrt(2), math.Sqrt(41), math.Sqrt(41)}
	assert.InDeltaSlice(t, want, got, floatTol)
}

func TestDistanceMatrix_Subset(t *testing.T) {
	ps := mustPointSet(t, squareCorners, 4, 2)
	got, err := DistanceMatrix(ps, Indices(3, 0))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{math.Sqrt(50)}, got, floatTol)
}

func TestDistanceMatrix_SmallSelections(t *testing.T) {
	ps := mustPointSet(t, squareCorners, 4, 2)

	got, err := DistanceMatrix(ps, Indices(2))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = DistanceMatrix(ps, Indices())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDistanceMatrix_FullEqualsExplicitAll(t *testing.T) {
	n, dims := 40, 3
	ps := mustPointSet(t, generateFlatData(n, dims, 9), n, dims)

	full, err := DistanceMatrix(ps, All())
	require.NoError(t, err)
	explicit, err := DistanceMatrix(ps, Indices(All().Materialize(n)...))
	require.NoError(t, err)
	assert.Equal(t, full, explicit)
	assert.Len(t, full, CondensedSize(n))
}

func TestDistanceMatrix_DuplicateIndices(t *testing.T) {
	ps := mustPointSet(t, squareCorners, 4, 2)
	got, err := DistanceMatrix(ps, Indices(1, 1, 3))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 0.0, got[0])
	assert.InDelta(t, got[1], got[2], floatTol)
}

func TestDistanceMatrix_OutOfBounds(t *testing.T) {
	ps := mustPointSet(t, squareCorners, 4, 2)
	_, err := DistanceMatrix(ps, Indices(0, 4))
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
}

func TestSquareForm_Symmetric(t *testing.T) {
	n, dims := 25, 4
	ps := mustPointSet(t, generateFlatData(n, dims, 10), n, dims)
	condensed, err := DistanceMatrix(ps, All())
	require.NoError(t, err)

	sq, err := SquareForm(condensed, n)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		assert.Equal(t, 0.0, sq.At(i, i))
		for j := 0; j < n; j++ {
			assert.Equal(t, sq.At(i, j), sq.At(j, i))
			if i != j {
				assert.Equal(t, condensed[CondensedIndex(i, j, n)], sq.At(i, j))
				assert.InDelta(t, ps.Distance(i, j), sq.At(i, j), floatTol)
			}
		}
	}
}

func TestSquareForm_BadLength(t *testing.T) {
	_, err := SquareForm([]float64{1, 2}, 3)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

// --- CrossDistances tests ---

func TestCrossDistances_RowMajor(t *testing.T) {
	ps := mustPointSet(t, squareCorners, 4, 2)
	got, err := CrossDistances(ps, Indices(0, 3), Indices(1, 2, 3))
	require.NoError(t, err)

	want := []float64{
		1, 1, math.Sqrt(50),
		math.Sqrt(41), math.Sqrt(41), 0,
	}
	assert.InDeltaSlice(t, want, got, floatTol)
}

func TestCrossDistances_MatchesCondensed(t *testing.T) {
	n, dims := 15, 2
	ps := mustPointSet(t, generateFlatData(n, dims, 15), n, dims)
	condensed, err := DistanceMatrix(ps, All())
	require.NoError(t, err)
	cross, err := CrossDistances(ps, All(), All())
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				assert.Equal(t, 0.0, cross[i*n+j])
				continue
			}
			assert.Equal(t, condensed[CondensedIndex(i, j, n)], cross[i*n+j])
		}
	}
}

func TestCrossDistances_OutOfBounds(t *testing.T) {
	ps := mustPointSet(t, squareCorners, 4, 2)
	_, err := CrossDistances(ps, Indices(-1), All())
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	_, err = CrossDistances(ps, All(), Indices(9))
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
}
