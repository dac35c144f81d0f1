package distances

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// The Dataset methods below take and return 1-based point indices. A nil
// index vector selects every point in natural order.

// DistanceMatrix returns the condensed distance matrix of the selected
// points: for m points, m*(m-1)/2 values in pair order (1,2), (1,3), ...,
// (1,m), (2,3), ... of the selection.
func (d *Dataset) DistanceMatrix(indices []int) ([]float64, error) {
	sel, err := translateIndices("point_indices", indices, d.points.n)
	if err != nil {
		return nil, err
	}
	return DistanceMatrix(d.points, sel)
}

// DistanceColumns returns the len(rows) x len(columns) matrix of distances
// between the row points and the column points. columns is required; rows
// may be nil to use every point.
func (d *Dataset) DistanceColumns(columns, rows []int) (*mat.Dense, error) {
	if columns == nil {
		return nil, &ParameterError{Name: "column_indices", Reason: "required"}
	}
	colSel, err := translateIndices("column_indices", columns, d.points.n)
	if err != nil {
		return nil, err
	}
	rowSel, err := translateIndices("row_indices", rows, d.points.n)
	if err != nil {
		return nil, err
	}
	flat, err := CrossDistances(d.points, rowSel, colSel)
	if err != nil {
		return nil, err
	}
	nr, nc := rowSel.Len(d.points.n), colSel.Len(d.points.n)
	if nr == 0 || nc == 0 {
		return &mat.Dense{}, nil
	}
	return mat.NewDense(nr, nc, flat), nil
}

// MaxDistanceSearch finds, for each query point, the farthest point among
// the search points. Ties go to the last search point at the maximum
// distance. Returned indices are 1-based.
func (d *Dataset) MaxDistanceSearch(query, search []int) (*FarthestResult, error) {
	qSel, err := translateIndices("query_indices", query, d.points.n)
	if err != nil {
		return nil, err
	}
	sSel, err := translateIndices("search_indices", search, d.points.n)
	if err != nil {
		return nil, err
	}
	scanner, err := NewFarthestScanner(d.points, sSel)
	if err != nil {
		return nil, err
	}
	scanner.WithLogger(d.engine.opts.Logger).WithMetrics(d.engine.opts.Metrics)
	res, err := scanner.Scan(qSel)
	if err != nil {
		return nil, err
	}
	toExternal(res.Indices)
	return res, nil
}

// SearchOption modifies a nearest neighbor search.
type SearchOption func(*searchConfig)

type searchConfig struct {
	radius    float64
	hasRadius bool
}

// WithRadius restricts the search to neighbors within radius. Queries with
// fewer than k neighbors within radius are dropped from the result.
func WithRadius(radius float64) SearchOption {
	return func(c *searchConfig) {
		c.radius = radius
		c.hasRadius = true
	}
}

// NearestNeighborSearch finds the k nearest search points of each query
// point. It opens an index over the search points, runs the queries and
// closes the index again. Returned indices, both Queries and Neighbors,
// are 1-based.
func (d *Dataset) NearestNeighborSearch(k int, query, search []int, opts ...SearchOption) (res *NeighborResult, err error) {
	var cfg searchConfig
	for _, o := range opts {
		o(&cfg)
	}

	qSel, err := translateIndices("query_indices", query, d.points.n)
	if err != nil {
		return nil, err
	}
	sSel, err := translateIndices("search_indices", search, d.points.n)
	if err != nil {
		return nil, err
	}

	idx, err := d.engine.Open(d.points, sSel)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := idx.Close(); cerr != nil {
			res = nil
			err = errors.Join(err, cerr)
		}
	}()

	if cfg.hasRadius {
		res, err = idx.SearchRadius(qSel, k, cfg.radius)
	} else {
		res, err = idx.Search(qSel, k)
	}
	if err != nil {
		return nil, err
	}
	toExternal(res.Queries)
	toExternal(res.Neighbors)
	return res, nil
}

// toExternal converts 0-based indices to 1-based in place.
func toExternal(idx []int) {
	for i := range idx {
		idx[i]++
	}
}
