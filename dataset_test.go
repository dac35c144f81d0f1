package distances

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func mustDataset(t testing.TB, data []float64, n, dims int, opts DatasetOptions) *Dataset {
	t.Helper()
	d, err := NewDataset(data, n, dims, opts)
	require.NoError(t, err)
	return d
}

// quadForm returns sqrt((x-y) M (x-y)').
func quadForm(m mat.Matrix, x, y []float64) float64 {
	diff := make([]float64, len(x))
	for i := range x {
		diff[i] = x[i] - y[i]
	}
	v := mat.NewVecDense(len(diff), diff)
	return math.Sqrt(mat.Inner(v, m, v))
}

// --- Construction tests ---

func TestNewDataset_Plain(t *testing.T) {
	d := mustDataset(t, squareCorners, 4, 2, DatasetOptions{})
	require.NoError(t, d.Validate())
	assert.True(t, IsValid(d))
	assert.Equal(t, 4, d.NumDataPoints())
	assert.Equal(t, 2, d.NumDimensions())
	assert.Nil(t, d.IDs())
	assert.True(t, mat.Equal(identity(2), d.Normalization()))
	assert.True(t, mat.Equal(identity(2), d.Weights()))
	assert.Same(t, &squareCorners[0], &d.PointSet().Data()[0], "untransformed data is borrowed")
}

func TestNewDataset_Invalid(t *testing.T) {
	_, err := NewDataset([]float64{1, 2, 3}, 2, 2, DatasetOptions{})
	assert.ErrorIs(t, err, ErrInvalidPointSet)

	_, err = NewDataset(squareCorners, 4, 2, DatasetOptions{IDs: []string{"a"}})
	assert.ErrorIs(t, err, ErrInvalidDataset)

	_, err = NewDataset(squareCorners, 4, 2, DatasetOptions{Weights: []float64{1}})
	assert.ErrorIs(t, err, ErrInvalidDataset)

	_, err = NewDataset(squareCorners, 4, 2, DatasetOptions{Weights: []float64{1, -1}})
	assert.ErrorIs(t, err, ErrInvalidDataset)

	_, err = NewDataset(squareCorners, 4, 2, DatasetOptions{NormalizationMatrix: identity(3)})
	assert.ErrorIs(t, err, ErrInvalidDataset)

	_, err = NewDataset(squareCorners, 4, 2, DatasetOptions{Normalize: "zscore"})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewDataset([]float64{1, 2}, 1, 2, DatasetOptions{Normalize: NormalizeMahalanobize})
	assert.ErrorIs(t, err, ErrInvalidDataset)

	_, err = NewDataset(squareCorners, 4, 2, DatasetOptions{Engine: Options{LeafSize: -1}})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestNewDataset_ConstantColumn(t *testing.T) {
	// The second dimension has zero variance and drops out.
	data := []float64{0, 1, 1, 1, 2, 1, 3, 1}
	wantVar := stat.Variance([]float64{0, 1, 2, 3}, nil)

	for _, norm := range []Normalization{NormalizeStudentize, NormalizeMahalanobize} {
		t.Run(string(norm), func(t *testing.T) {
			d := mustDataset(t, data, 4, 2, DatasetOptions{Normalize: norm})
			assert.Equal(t, 0.0, d.Normalization().At(1, 1))
			got, err := d.DistanceMatrix([]int{1, 2, 4})
			require.NoError(t, err)
			step := 1 / math.Sqrt(wantVar)
			assert.InDeltaSlice(t, []float64{step, 3 * step, 2 * step}, got, 1e-9)
		})
	}
}

func TestNewDataset_SingularNormalization(t *testing.T) {
	// Collinear points have a singular covariance matrix; distances are
	// measured along the line, one unit per standard deviation.
	data := []float64{0, 0, 1, 1, 2, 2}
	d := mustDataset(t, data, 3, 2, DatasetOptions{Normalize: NormalizeMahalanobize})
	got, err := d.DistanceMatrix(nil)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2, 1}, got, 1e-9)

	indefinite := mat.NewSymDense(2, []float64{
		1, 0,
		0, -1,
	})
	_, err = NewDataset(data, 3, 2, DatasetOptions{NormalizationMatrix: indefinite})
	assert.ErrorIs(t, err, ErrInvalidDataset)
}

func TestDataset_ValidateCatchesCorruption(t *testing.T) {
	d := mustDataset(t, squareCorners, 4, 2, DatasetOptions{IDs: []string{"a", "b", "c", "d"}})
	d.ids = d.ids[:2]
	assert.ErrorIs(t, d.Validate(), ErrInvalidDataset)
	assert.False(t, IsValid(d))

	var nilDataset *Dataset
	assert.False(t, IsValid(nilDataset))
}

// --- Normalization tests ---

func TestNewDataset_Weights(t *testing.T) {
	d := mustDataset(t, squareCorners, 4, 2, DatasetOptions{Weights: []float64{4, 1}})
	got, err := d.DistanceMatrix([]int{1, 2, 3})
	require.NoError(t, err)
	// Dimension 1 is stretched by sqrt(4) = 2.
	assert.InDeltaSlice(t, []float64{2, 1, math.Sqrt(5)}, got, 1e-9)
	assert.NotSame(t, &squareCorners[0], &d.PointSet().Data()[0])
}

func TestNewDataset_Studentize(t *testing.T) {
	n, dims := 30, 3
	data := generateFlatData(n, dims, 50)
	d := mustDataset(t, data, n, dims, DatasetOptions{Normalize: NormalizeStudentize})

	x := mat.NewDense(n, dims, data)
	col := make([]float64, n)
	for j := 0; j < dims; j++ {
		mat.Col(col, j, x)
		assert.InDelta(t, stat.Variance(col, nil), d.Normalization().At(j, j), 1e-9)
	}
	assert.Equal(t, 0.0, d.Normalization().At(0, 1))

	want := mat.NewDiagDense(dims, nil)
	for j := 0; j < dims; j++ {
		want.SetDiag(j, 1/d.Normalization().At(j, j))
	}
	for _, pair := range [][2]int{{0, 1}, {4, 17}, {29, 3}} {
		i, j := pair[0], pair[1]
		assert.InDelta(t,
			quadForm(want, data[i*dims:(i+1)*dims], data[j*dims:(j+1)*dims]),
			d.PointSet().Distance(i, j), 1e-9)
	}
}

func TestNewDataset_Mahalanobize(t *testing.T) {
	n, dims := 40, 3
	data := generateFlatData(n, dims, 51)
	d := mustDataset(t, data, n, dims, DatasetOptions{Normalize: NormalizeMahalanobize})

	var inv mat.Dense
	require.NoError(t, inv.Inverse(d.Normalization()))
	for _, pair := range [][2]int{{0, 1}, {7, 22}, {39, 12}} {
		i, j := pair[0], pair[1]
		assert.InDelta(t,
			quadForm(&inv, data[i*dims:(i+1)*dims], data[j*dims:(j+1)*dims]),
			d.PointSet().Distance(i, j), 1e-8)
	}
}

func TestNewDataset_CustomMatrices(t *testing.T) {
	norm := mat.NewSymDense(2, []float64{
		2, 0.5,
		0.5, 1,
	})
	weights := mat.NewSymDense(2, []float64{
		1, 0,
		0, 3,
	})
	data := generateFlatData(10, 2, 52)
	d := mustDataset(t, data, 10, 2, DatasetOptions{
		NormalizationMatrix: norm,
		WeightMatrix:        weights,
		Normalize:           NormalizeStudentize, // ignored
	})
	assert.True(t, mat.Equal(norm, d.Normalization()))
	assert.True(t, mat.Equal(weights, d.Weights()))

	// M = N^-1/2 W N^-1/2.
	ninv, err := inverseSqrt(norm)
	require.NoError(t, err)
	var tmp, m mat.Dense
	tmp.Mul(ninv, weights)
	m.Mul(&tmp, ninv)
	for i := 0; i < 10; i++ {
		for j := i + 1; j < 10; j++ {
			assert.InDelta(t,
				quadForm(&m, data[i*2:i*2+2], data[j*2:j*2+2]),
				d.PointSet().Distance(i, j), 1e-8)
		}
	}
}

func TestNewDataset_ZeroWeightDropsDimension(t *testing.T) {
	data := []float64{
		0, 0,
		0, 9,
		3, 0,
	}
	d := mustDataset(t, data, 3, 2, DatasetOptions{Weights: []float64{1, 0}})
	got, err := d.DistanceMatrix(nil)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 3, 3}, got, 1e-9)
}

func TestParseNormalization(t *testing.T) {
	for _, s := range []string{"", "none", "mahalanobize", "studentize"} {
		_, err := ParseNormalization(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseNormalization("whiten")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

// --- 1-based API tests ---

func TestDataset_DistanceMatrix(t *testing.T) {
	d := mustDataset(t, squareCorners, 4, 2, DatasetOptions{})

	all, err := d.DistanceMatrix(nil)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1, math.Sqrt(50), math.Sqrt(2), math.Sqrt(41), math.Sqrt(41)}, all, floatTol)

	sub, err := d.DistanceMatrix([]int{2, 3})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{math.Sqrt(2)}, sub, floatTol)
}

func TestDataset_BoundsRejection(t *testing.T) {
	d := mustDataset(t, squareCorners, 4, 2, DatasetOptions{})
	n := d.NumDataPoints()

	for _, bad := range [][]int{{0}, {n + 1}, {1, 0, n + 1}} {
		_, err := d.DistanceMatrix(bad)
		assert.ErrorIs(t, err, ErrIndexOutOfBounds)
		_, err = d.DistanceColumns(bad, nil)
		assert.ErrorIs(t, err, ErrIndexOutOfBounds)
		_, err = d.DistanceColumns([]int{1}, bad)
		assert.ErrorIs(t, err, ErrIndexOutOfBounds)
		_, err = d.MaxDistanceSearch(bad, nil)
		assert.ErrorIs(t, err, ErrIndexOutOfBounds)
		_, err = d.MaxDistanceSearch(nil, bad)
		assert.ErrorIs(t, err, ErrIndexOutOfBounds)
		_, err = d.NearestNeighborSearch(1, bad, nil)
		assert.ErrorIs(t, err, ErrIndexOutOfBounds)
		_, err = d.NearestNeighborSearch(1, nil, bad)
		assert.ErrorIs(t, err, ErrIndexOutOfBounds)
		_, err = d.Labels(bad)
		assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	}
	assert.Equal(t, 0, d.Engine().OpenIndices())
}

func TestDataset_BoundsErrorNamesSelection(t *testing.T) {
	d := mustDataset(t, squareCorners, 4, 2, DatasetOptions{})
	_, err := d.NearestNeighborSearch(1, nil, []int{5})
	var ie *IndexError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "search_indices", ie.Name)
	assert.Equal(t, 5, ie.Value)
}

func TestDataset_DistanceColumns(t *testing.T) {
	d := mustDataset(t, squareCorners, 4, 2, DatasetOptions{})

	m, err := d.DistanceColumns([]int{1, 4}, nil)
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 0.0, m.At(0, 0))
	assert.InDelta(t, math.Sqrt(50), m.At(0, 1), floatTol)
	assert.InDelta(t, math.Sqrt(41), m.At(2, 1), floatTol)
	assert.Equal(t, 0.0, m.At(3, 1))

	m, err = d.DistanceColumns([]int{2}, []int{3})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(2), m.At(0, 0), floatTol)

	_, err = d.DistanceColumns(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	m, err = d.DistanceColumns([]int{}, nil)
	require.NoError(t, err)
	assert.True(t, m.IsEmpty())
}

func TestDataset_MaxDistanceSearch(t *testing.T) {
	d := mustDataset(t, squareCorners, 4, 2, DatasetOptions{})
	res, err := d.MaxDistanceSearch(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4, 4, 1}, res.Indices)

	res, err = d.MaxDistanceSearch([]int{4}, []int{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, res.Indices)
	assert.InDelta(t, math.Sqrt(41), res.Distances[0], floatTol)

	_, err = d.MaxDistanceSearch(nil, []int{})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestDataset_NearestNeighborSearch(t *testing.T) {
	d := mustDataset(t, squareCorners, 4, 2, DatasetOptions{})

	res, err := d.NearestNeighborSearch(1, nil, []int{2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, res.Queries)
	// Points 2 and 3 tie at distance 1 from point 1.
	assert.Contains(t, []int{2, 3}, res.NeighborsOf(0)[0])
	assert.Equal(t, []float64{1}, res.DistancesOf(0))
	assert.Equal(t, 2, res.NeighborsOf(1)[0])
	assert.Equal(t, 3, res.NeighborsOf(2)[0])
	assert.Equal(t, 4, res.NeighborsOf(3)[0])
	assert.Equal(t, 0, d.Engine().OpenIndices(), "index is closed after the search")
}

func TestDataset_NearestNeighborSearch_Radius(t *testing.T) {
	d := mustDataset(t, squareCorners, 4, 2, DatasetOptions{})

	res, err := d.NearestNeighborSearch(2, nil, nil, WithRadius(1.5))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, res.Queries)

	_, err = d.NearestNeighborSearch(2, nil, nil, WithRadius(0))
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = d.NearestNeighborSearch(5, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.Equal(t, 0, d.Engine().OpenIndices())
}

// --- Labels tests ---

func TestDataset_Labels(t *testing.T) {
	d := mustDataset(t, squareCorners, 4, 2, DatasetOptions{})
	got, err := d.Labels(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, got)

	withIDs := mustDataset(t, squareCorners, 4, 2, DatasetOptions{IDs: []string{"a", "b", "c", "d"}})
	got, err = withIDs.Labels([]int{4, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a", "a"}, got)
}
