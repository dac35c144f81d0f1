package distances

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CondensedSize returns the length of the condensed distance vector for m
// points: m*(m-1)/2, or 0 when m < 2.
func CondensedSize(m int) int {
	if m < 2 {
		return 0
	}
	return m * (m - 1) / 2
}

// CondensedIndex returns the position of the pair (i, j), i != j, in the
// condensed vector of m points. The pair order is (0,1), (0,2), ...,
// (0,m-1), (1,2), ... as produced by DistanceMatrix.
func CondensedIndex(i, j, m int) int {
	if i > j {
		i, j = j, i
	}
	return i*m - i*(i+1)/2 + (j - i - 1)
}

// DistanceMatrix computes the condensed Euclidean distance matrix of the
// selected points. For the selection order s_0, s_1, ..., the output holds
// d(s_i, s_j) for every i < j, outer loop over i ascending and inner loop
// over j ascending. With All() this is the full matrix of the set.
//
// The result has CondensedSize(m) entries for m selected points.
func DistanceMatrix(ps *PointSet, sel Selection) ([]float64, error) {
	if err := sel.validate("point_indices", ps.n); err != nil {
		return nil, err
	}
	m := sel.Len(ps.n)
	if m > 1 {
		if _, err := checkAlloc(m, (m-1)/2+1); err != nil {
			return nil, err
		}
	}

	out := make([]float64, CondensedSize(m))
	pos := 0
	for i := 0; i < m; i++ {
		pi := ps.Point(sel.At(i))
		for j := i + 1; j < m; j++ {
			out[pos] = math.Sqrt(SquaredEuclidean(pi, ps.Point(sel.At(j))))
			pos++
		}
	}
	return out, nil
}

// CrossDistances computes the dense len(rows) x len(cols) matrix of
// distances between every selected row point and every selected column
// point, in row-major order. Rows and columns may overlap or repeat.
func CrossDistances(ps *PointSet, rows, cols Selection) ([]float64, error) {
	if err := rows.validate("row_indices", ps.n); err != nil {
		return nil, err
	}
	if err := cols.validate("column_indices", ps.n); err != nil {
		return nil, err
	}
	nr, nc := rows.Len(ps.n), cols.Len(ps.n)
	size, err := checkAlloc(nr, nc)
	if err != nil {
		return nil, err
	}

	out := make([]float64, size)
	pos := 0
	for r := 0; r < nr; r++ {
		pr := ps.Point(rows.At(r))
		for c := 0; c < nc; c++ {
			out[pos] = math.Sqrt(SquaredEuclidean(pr, ps.Point(cols.At(c))))
			pos++
		}
	}
	return out, nil
}

// SquareForm expands a condensed distance vector of m points into a
// symmetric m x m matrix with a zero diagonal.
func SquareForm(condensed []float64, m int) (*mat.SymDense, error) {
	if m < 0 || len(condensed) != CondensedSize(m) {
		return nil, fmt.Errorf("%w: condensed vector of length %d does not describe %d points",
			ErrInvalidParameter, len(condensed), m)
	}
	if m == 0 {
		return &mat.SymDense{}, nil
	}
	sym := mat.NewSymDense(m, nil)
	pos := 0
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			sym.SetSym(i, j, condensed[pos])
			pos++
		}
	}
	return sym, nil
}
