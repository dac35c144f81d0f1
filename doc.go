// Package distances answers exact Euclidean distance queries over a fixed
// set of points: pairwise distance matrices, farthest-point lookups, and
// k-nearest-neighbor searches with an optional radius constraint.
//
// Points live in a caller-owned, row-major buffer wrapped by a PointSet;
// nothing in the package copies coordinates. Queries and search sets are
// chosen with a Selection, either All() or an explicit list of 0-based
// indices.
//
// Basic usage:
//
//	ps, err := distances.NewPointSet(data, n, dims)
//	condensed, err := distances.DistanceMatrix(ps, distances.All())
//
//	engine, err := distances.NewEngine(distances.DefaultOptions())
//	idx, err := engine.Open(ps, distances.All())
//	defer idx.Close()
//	res, err := idx.Search(distances.Indices(0, 5), 3)
//	// res.NeighborsOf(0) are the 3 points nearest to point 0, nearest first
//
// Radius-constrained search drops queries that have fewer than k
// neighbors within the radius; res.Queries tells which queries survived:
//
//	res, err := idx.SearchRadius(distances.All(), 3, 0.5)
//
// # Distance objects
//
// Dataset wraps a PointSet with optional point ids, normalization
// (Mahalanobis or per-dimension variance) and dimension weights, and
// exposes the same operations with 1-based indices:
//
//	ds, err := distances.NewDataset(data, n, dims, distances.DatasetOptions{
//		Normalize: distances.NormalizeStudentize,
//	})
//	res, err := ds.NearestNeighborSearch(2, nil, nil, distances.WithRadius(1.5))
//
// # Tie-breaking
//
// Farthest-point scans report the last search point at the maximum
// distance. k-NN results at equal distance follow tree traversal order,
// which is deterministic for a given search selection and Options.
package distances
