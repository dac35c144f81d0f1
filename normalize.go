package distances

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Normalization names a built-in normalization of the coordinate space.
type Normalization string

const (
	// NormalizeNone leaves coordinates unscaled (identity matrix).
	NormalizeNone Normalization = "none"
	// NormalizeMahalanobize normalizes by the sample covariance matrix.
	NormalizeMahalanobize Normalization = "mahalanobize"
	// NormalizeStudentize normalizes by the diagonal of the sample
	// covariance matrix, i.e. scales each dimension by its variance.
	NormalizeStudentize Normalization = "studentize"
)

// eigenTol is the relative tolerance below which an eigenvalue is treated
// as zero.
const eigenTol = 1e-12

// normalizationMatrix returns the dims x dims normalization matrix for the
// built-in kind.
func normalizationMatrix(kind Normalization, x *mat.Dense) (*mat.SymDense, error) {
	n, dims := x.Dims()
	switch kind {
	case NormalizeNone, "":
		return identity(dims), nil
	case NormalizeMahalanobize:
		if n < 2 {
			return nil, fmt.Errorf("%w: %s needs at least 2 points, got %d", ErrInvalidDataset, kind, n)
		}
		cov := mat.NewSymDense(dims, nil)
		stat.CovarianceMatrix(cov, x, nil)
		return cov, nil
	case NormalizeStudentize:
		if n < 2 {
			return nil, fmt.Errorf("%w: %s needs at least 2 points, got %d", ErrInvalidDataset, kind, n)
		}
		diag := mat.NewSymDense(dims, nil)
		col := make([]float64, n)
		for j := 0; j < dims; j++ {
			mat.Col(col, j, x)
			diag.SetSym(j, j, stat.Variance(col, nil))
		}
		return diag, nil
	}
	return nil, fmt.Errorf("%w: unknown normalization %q", ErrInvalidParameter, kind)
}

// ParseNormalization converts a name into a Normalization.
func ParseNormalization(s string) (Normalization, error) {
	switch Normalization(s) {
	case "", NormalizeNone:
		return NormalizeNone, nil
	case NormalizeMahalanobize, NormalizeStudentize:
		return Normalization(s), nil
	}
	return "", fmt.Errorf("%w: unknown normalization %q", ErrInvalidParameter, s)
}

// weightMatrix turns a weight vector into a diagonal matrix. Weights must
// be non-negative and finite.
func weightMatrix(w []float64, dims int) (*mat.SymDense, error) {
	if len(w) != dims {
		return nil, fmt.Errorf("%w: %d weights for %d dimensions", ErrInvalidDataset, len(w), dims)
	}
	if floats.HasNaN(w) || floats.Min(w) < 0 || math.IsInf(floats.Max(w), 1) {
		return nil, fmt.Errorf("%w: weights must be finite and non-negative", ErrInvalidDataset)
	}
	m := mat.NewSymDense(dims, nil)
	for j, v := range w {
		m.SetSym(j, j, v)
	}
	return m, nil
}

func identity(dims int) *mat.SymDense {
	m := mat.NewSymDense(dims, nil)
	for j := 0; j < dims; j++ {
		m.SetSym(j, j, 1)
	}
	return m
}

// inverseSqrt returns the pseudo-inverse square root of a symmetric
// positive semidefinite N. Eigenvalues within eigenTol of zero, relative to
// the largest magnitude, map to zero scale, so directions without variance
// drop out of the distance.
func inverseSqrt(norm mat.Symmetric) (*mat.Dense, error) {
	var eig mat.EigenSym
	if !eig.Factorize(norm, true) {
		return nil, fmt.Errorf("%w: normalization matrix eigendecomposition failed", ErrInvalidDataset)
	}
	vals := eig.Values(nil)
	tol := eigenTol * math.Max(math.Abs(floats.Max(vals)), math.Abs(floats.Min(vals)))
	for i, v := range vals {
		switch {
		case v < -tol:
			return nil, fmt.Errorf("%w: normalization matrix is not positive semidefinite", ErrInvalidDataset)
		case v <= tol:
			vals[i] = 0
		default:
			vals[i] = 1 / math.Sqrt(v)
		}
	}
	return fromEigen(&eig, vals), nil
}

// sqrtFactor returns L with L L' = m for a symmetric positive semidefinite
// m. Small negative eigenvalues from rounding are clamped to zero.
func sqrtFactor(m mat.Symmetric) (*mat.Dense, error) {
	var eig mat.EigenSym
	if !eig.Factorize(m, true) {
		return nil, fmt.Errorf("%w: weight matrix eigendecomposition failed", ErrInvalidDataset)
	}
	vals := eig.Values(nil)
	scale := math.Max(math.Abs(floats.Max(vals)), 1)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	dims := len(vals)
	l := mat.NewDense(dims, dims, nil)
	for j, v := range vals {
		if v < -eigenTol*scale {
			return nil, fmt.Errorf("%w: weight matrix is not positive semidefinite", ErrInvalidDataset)
		}
		s := math.Sqrt(math.Max(v, 0))
		for i := 0; i < dims; i++ {
			l.Set(i, j, vecs.At(i, j)*s)
		}
	}
	return l, nil
}

// fromEigen rebuilds V diag(vals) V' from a factorized EigenSym.
func fromEigen(eig *mat.EigenSym, vals []float64) *mat.Dense {
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	var scaled mat.Dense
	scaled.Mul(&vecs, mat.NewDiagDense(len(vals), vals))
	var out mat.Dense
	out.Mul(&scaled, vecs.T())
	return &out
}

// transformFactor returns L such that for row vectors x and y,
// |xL - yL|^2 = (x-y) N^-1/2 W N^-1/2 (x-y)'.
func transformFactor(norm, weights mat.Symmetric) (*mat.Dense, error) {
	ninv, err := inverseSqrt(norm)
	if err != nil {
		return nil, err
	}
	var tmp, m mat.Dense
	tmp.Mul(ninv, weights)
	m.Mul(&tmp, ninv)

	// Symmetrize to drop rounding asymmetry before factoring.
	dims, _ := m.Dims()
	sym := mat.NewSymDense(dims, nil)
	for i := 0; i < dims; i++ {
		for j := i; j < dims; j++ {
			sym.SetSym(i, j, (m.At(i, j)+m.At(j, i))/2)
		}
	}
	return sqrtFactor(sym)
}
