package distances

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DatasetOptions configures NewDataset.
type DatasetOptions struct {
	// IDs optionally labels each point. When set it must have one entry
	// per point.
	IDs []string

	// Normalize selects a built-in normalization. Ignored when
	// NormalizationMatrix is set. Default: NormalizeNone.
	Normalize Normalization

	// NormalizationMatrix is a custom dims x dims positive semidefinite
	// normalization matrix. Directions with zero eigenvalue are ignored.
	NormalizationMatrix mat.Symmetric

	// Weights weights each dimension. Ignored when WeightMatrix is set.
	Weights []float64

	// WeightMatrix is a custom dims x dims positive semidefinite weight
	// matrix.
	WeightMatrix mat.Symmetric

	// Engine configures the spatial indices built by nearest neighbor
	// searches.
	Engine Options
}

// Dataset is a distance object: a point set together with the
// normalization and weighting it was built with, optional point ids, and
// an engine for index-backed queries. Its methods use 1-based indices.
//
// Distances between points are
//
//	sqrt((x - y) N^-1/2 W N^-1/2 (x - y)')
//
// where N is the normalization matrix and W the weight matrix. The
// coordinates are transformed once at construction so that every query
// runs plain Euclidean distance.
type Dataset struct {
	points        *PointSet
	ids           []string
	normalization *mat.SymDense
	weights       *mat.SymDense
	engine        *Engine
}

// NewDataset builds a Dataset from n points of dims coordinates stored
// row-major in data. When no normalization or weighting is requested data
// is borrowed as is; otherwise a transformed copy is made and data is not
// retained.
func NewDataset(data []float64, n, dims int, opts DatasetOptions) (*Dataset, error) {
	raw, err := NewPointSet(data, n, dims)
	if err != nil {
		return nil, err
	}
	if opts.IDs != nil && len(opts.IDs) != n {
		return nil, fmt.Errorf("%w: %d ids for %d points", ErrInvalidDataset, len(opts.IDs), n)
	}
	engine, err := NewEngine(opts.Engine)
	if err != nil {
		return nil, err
	}

	d := &Dataset{ids: opts.IDs, engine: engine}

	transform := opts.NormalizationMatrix != nil || opts.WeightMatrix != nil || opts.Weights != nil ||
		(opts.Normalize != "" && opts.Normalize != NormalizeNone)
	if !transform {
		d.points = raw
		d.normalization = identity(dims)
		d.weights = identity(dims)
		return d, nil
	}

	var x *mat.Dense
	if n > 0 {
		x = mat.NewDense(n, dims, data)
	}

	switch {
	case opts.NormalizationMatrix != nil:
		if r := opts.NormalizationMatrix.SymmetricDim(); r != dims {
			return nil, fmt.Errorf("%w: normalization matrix is %dx%d, want %dx%d", ErrInvalidDataset, r, r, dims, dims)
		}
		d.normalization = mat.NewSymDense(dims, nil)
		d.normalization.CopySym(opts.NormalizationMatrix)
	case x == nil:
		return nil, fmt.Errorf("%w: cannot normalize an empty point set", ErrInvalidDataset)
	default:
		if d.normalization, err = normalizationMatrix(opts.Normalize, x); err != nil {
			return nil, err
		}
	}

	switch {
	case opts.WeightMatrix != nil:
		if r := opts.WeightMatrix.SymmetricDim(); r != dims {
			return nil, fmt.Errorf("%w: weight matrix is %dx%d, want %dx%d", ErrInvalidDataset, r, r, dims, dims)
		}
		d.weights = mat.NewSymDense(dims, nil)
		d.weights.CopySym(opts.WeightMatrix)
	case opts.Weights != nil:
		if d.weights, err = weightMatrix(opts.Weights, dims); err != nil {
			return nil, err
		}
	default:
		d.weights = identity(dims)
	}

	factor, err := transformFactor(d.normalization, d.weights)
	if err != nil {
		return nil, err
	}

	transformed := make([]float64, n*dims)
	if n > 0 {
		y := mat.NewDense(n, dims, transformed)
		y.Mul(x, factor)
	}
	if d.points, err = NewPointSet(transformed, n, dims); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the structural invariants of the distance object: the
// coordinate buffer shape, the id vector length, and the shapes of the
// normalization and weight matrices.
func (d *Dataset) Validate() error {
	if d == nil || d.points == nil {
		return fmt.Errorf("%w: no point set", ErrInvalidDataset)
	}
	n, dims := d.points.n, d.points.dims
	if dims < 1 || n < 0 || len(d.points.data) != n*dims {
		return fmt.Errorf("%w: coordinate buffer does not match %d x %d", ErrInvalidDataset, n, dims)
	}
	if d.ids != nil && len(d.ids) != n {
		return fmt.Errorf("%w: %d ids for %d points", ErrInvalidDataset, len(d.ids), n)
	}
	if d.normalization == nil || d.normalization.SymmetricDim() != dims {
		return fmt.Errorf("%w: normalization matrix shape", ErrInvalidDataset)
	}
	if d.weights == nil || d.weights.SymmetricDim() != dims {
		return fmt.Errorf("%w: weight matrix shape", ErrInvalidDataset)
	}
	if d.engine == nil {
		return fmt.Errorf("%w: no engine", ErrInvalidDataset)
	}
	return nil
}

// IsValid reports whether d is a structurally valid distance object.
func IsValid(d *Dataset) bool { return d.Validate() == nil }

// NumDataPoints returns the number of points in the dataset.
func (d *Dataset) NumDataPoints() int { return d.points.n }

// NumDimensions returns the dimensionality of the dataset.
func (d *Dataset) NumDimensions() int { return d.points.dims }

// PointSet returns the (possibly transformed) points queries run over.
func (d *Dataset) PointSet() *PointSet { return d.points }

// IDs returns the point ids, or nil if the dataset has none.
func (d *Dataset) IDs() []string { return d.ids }

// Normalization returns the normalization matrix.
func (d *Dataset) Normalization() mat.Symmetric { return d.normalization }

// Weights returns the weight matrix.
func (d *Dataset) Weights() mat.Symmetric { return d.weights }

// Engine returns the engine used for index-backed searches.
func (d *Dataset) Engine() *Engine { return d.engine }
