package distances

import "math"

// SquaredEuclidean returns the squared Euclidean distance between a and b.
// Both slices must have the same length.
//
// Squared distance is the reduced distance used everywhere inside the
// package: trees prune and rank in squared space and only the values handed
// back to callers are passed through sqrt.
func SquaredEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Euclidean returns the Euclidean (L2) distance between a and b.
func Euclidean(a, b []float64) float64 {
	return math.Sqrt(SquaredEuclidean(a, b))
}

// SquaredDistance returns the squared Euclidean distance between points i
// and j of the set. Indices are not bounds-checked beyond what slicing does;
// callers validate selections up front.
func (p *PointSet) SquaredDistance(i, j int) float64 {
	return SquaredEuclidean(p.Point(i), p.Point(j))
}

// Distance returns the Euclidean distance between points i and j.
func (p *PointSet) Distance(i, j int) float64 {
	return math.Sqrt(p.SquaredDistance(i, j))
}

// distToRdist converts a distance to squared (reduced) space.
func distToRdist(d float64) float64 { return d * d }

// rdistToDist converts a squared distance back to a distance.
func rdistToDist(r float64) float64 { return math.Sqrt(r) }
