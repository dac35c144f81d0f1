package distances

import (
	"math"
	"time"
)

// FarthestResult holds, for each query point, the index of the farthest
// search point and its distance.
type FarthestResult struct {
	Indices   []int
	Distances []float64
}

// FarthestScanner finds farthest points by linear scan over a fixed search
// set. No index is built: exact farthest-point search has no sublinear
// general-dimension solution, so every query costs O(|search|).
type FarthestScanner struct {
	ps      *PointSet
	search  Selection
	logger  *Logger
	metrics *Metrics
}

// NewFarthestScanner prepares a scanner over the points of ps selected by
// search. The selection is retained; ps must outlive the scanner.
func NewFarthestScanner(ps *PointSet, search Selection) (*FarthestScanner, error) {
	if err := search.validate("search_indices", ps.n); err != nil {
		return nil, err
	}
	if search.Len(ps.n) == 0 {
		return nil, &ParameterError{Name: "search_indices", Reason: "search set is empty"}
	}
	return &FarthestScanner{ps: ps, search: search, logger: NoopLogger()}, nil
}

// WithLogger sets the logger used by Scan.
func (s *FarthestScanner) WithLogger(l *Logger) *FarthestScanner {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithMetrics sets the metrics updated by Scan.
func (s *FarthestScanner) WithMetrics(m *Metrics) *FarthestScanner {
	s.metrics = m
	return s
}

// Scan returns the farthest search point for each query point. The running
// maximum is replaced whenever a distance is >= it, so when several search
// points tie at the maximum the last one in search order is reported.
func (s *FarthestScanner) Scan(query Selection) (*FarthestResult, error) {
	start := time.Now()
	ns := s.search.Len(s.ps.n)
	if err := query.validate("query_indices", s.ps.n); err != nil {
		s.logger.WithCount(len(query.idx)).LogScan(ns, err)
		return nil, err
	}
	nq := query.Len(s.ps.n)

	res := &FarthestResult{
		Indices:   make([]int, nq),
		Distances: make([]float64, nq),
	}
	for q := 0; q < nq; q++ {
		qp := s.ps.Point(query.At(q))
		maxDist := -1.0
		maxIdx := s.search.At(0)
		for j := 0; j < ns; j++ {
			cand := s.search.At(j)
			if d := Euclidean(qp, s.ps.Point(cand)); d >= maxDist {
				maxDist = d
				maxIdx = cand
			}
		}
		if maxDist < 0 {
			// Every candidate distance was NaN.
			maxDist = math.NaN()
		}
		res.Indices[q] = maxIdx
		res.Distances[q] = maxDist
	}

	s.metrics.observe("farthest", nq, 0, start)
	s.logger.WithCount(nq).LogScan(ns, nil)
	return res, nil
}

// FarthestPoints is a one-shot NewFarthestScanner followed by Scan.
func FarthestPoints(ps *PointSet, query, search Selection) (*FarthestResult, error) {
	s, err := NewFarthestScanner(ps, search)
	if err != nil {
		return nil, err
	}
	return s.Scan(query)
}
