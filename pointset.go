package distances

import "fmt"

// PointSet is a read-only view over a caller-owned coordinate buffer of n
// points in dims dimensions. Coordinates of point i occupy
// data[i*dims : (i+1)*dims].
//
// The buffer is borrowed, never copied. It must stay unmodified for as long
// as the PointSet, or any Index or FarthestScanner built from it, is in use.
type PointSet struct {
	data []float64
	n    int
	dims int
}

// NewPointSet wraps data as a point set of n points with dims coordinates
// each. len(data) must equal n*dims. NaN coordinates are accepted; any
// distance involving them is NaN.
func NewPointSet(data []float64, n, dims int) (*PointSet, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative point count %d", ErrInvalidPointSet, n)
	}
	if dims < 1 {
		return nil, fmt.Errorf("%w: dimensionality must be >= 1, got %d", ErrInvalidPointSet, dims)
	}
	size, err := checkAlloc(n, dims)
	if err != nil {
		return nil, err
	}
	if len(data) != size {
		return nil, fmt.Errorf("%w: buffer has %d values, want %d (%d points x %d dims)",
			ErrInvalidPointSet, len(data), size, n, dims)
	}
	return &PointSet{data: data, n: n, dims: dims}, nil
}

// NumPoints returns the number of points in the set.
func (p *PointSet) NumPoints() int { return p.n }

// NumDimensions returns the dimensionality of each point.
func (p *PointSet) NumDimensions() int { return p.dims }

// Point returns the coordinates of point i. The returned slice aliases the
// underlying buffer and must not be modified.
func (p *PointSet) Point(i int) []float64 {
	return p.data[i*p.dims : (i+1)*p.dims : (i+1)*p.dims]
}

// Data returns the borrowed coordinate buffer.
func (p *PointSet) Data() []float64 { return p.data }
