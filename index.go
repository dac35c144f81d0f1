package distances

import (
	"math"
	"sync"
	"time"
)

// Index answers exact k-nearest-neighbor queries against a fixed search
// set. Create it with Engine.Open and release it with Close.
//
// Queries may run concurrently with each other. Close waits for running
// queries to finish; queries issued after Close fail with ErrIndexClosed.
type Index struct {
	engine *Engine
	ps     *PointSet
	global []int // tree-local id -> PointSet index
	full   bool  // search set is every point, so global[i] == i
	tree   searchTree
	logger *Logger

	mu     sync.RWMutex
	closed bool
}

// NeighborResult holds the outcome of a k-NN query batch.
//
// Queries lists the PointSet indices of the ok queries in input order.
// Neighbors and Distances are packed with K entries per ok query, nearest
// first: block i, Neighbors[i*K:(i+1)*K], belongs to Queries[i].
type NeighborResult struct {
	K         int
	Queries   []int
	Neighbors []int
	Distances []float64
}

// NumOK returns the number of ok queries.
func (r *NeighborResult) NumOK() int { return len(r.Queries) }

// NeighborsOf returns the neighbor indices of the i-th ok query.
func (r *NeighborResult) NeighborsOf(i int) []int {
	return r.Neighbors[i*r.K : (i+1)*r.K]
}

// DistancesOf returns the neighbor distances of the i-th ok query.
func (r *NeighborResult) DistancesOf(i int) []float64 {
	return r.Distances[i*r.K : (i+1)*r.K]
}

// NumSearchPoints returns the size of the search set.
func (x *Index) NumSearchPoints() int { return len(x.global) }

// Tree returns the kind of tree backing the index.
func (x *Index) Tree() TreeKind { return x.engine.opts.Tree }

// Search returns the k nearest search-set points of every query point, in
// ascending distance. Query points are drawn from the whole PointSet and
// need not be in the search set. Every query is ok.
//
// Points at equal distance are ordered by tree traversal, which is
// deterministic for a given search selection and options.
//
// k must satisfy 1 <= k <= NumSearchPoints().
func (x *Index) Search(query Selection, k int) (*NeighborResult, error) {
	return x.search("knn", query, k, math.Inf(1))
}

// SearchRadius is Search restricted to neighbors within radius of the
// query. Points exactly at distance radius count as within. A query is ok
// only if at least k search points lie within radius; other queries are
// left out of the result entirely, and the remaining ones keep their input
// order.
//
// radius must be > 0 and k must satisfy 1 <= k <= NumSearchPoints().
func (x *Index) SearchRadius(query Selection, k int, radius float64) (*NeighborResult, error) {
	if !(radius > 0) {
		err := &ParameterError{Name: "radius", Reason: "must be > 0"}
		x.logger.WithK(k).LogSearch(0, 0, radius, err)
		return nil, err
	}
	return x.search("knn_radius", query, k, distToRdist(radius))
}

func (x *Index) search(op string, query Selection, k int, bound float64) (*NeighborResult, error) {
	start := time.Now()
	radius := 0.0
	if !math.IsInf(bound, 1) {
		radius = rdistToDist(bound)
	}

	log := x.logger.WithK(k)

	x.mu.RLock()
	defer x.mu.RUnlock()

	res, err := x.searchLocked(query, k, bound)
	if err != nil {
		log.LogSearch(query.Len(x.ps.n), 0, radius, err)
		return nil, err
	}
	nq := query.Len(x.ps.n)
	x.engine.opts.Metrics.observe(op, nq, nq-res.NumOK(), start)
	log.LogSearch(nq, res.NumOK(), radius, nil)
	return res, nil
}

func (x *Index) searchLocked(query Selection, k int, bound float64) (*NeighborResult, error) {
	if x.closed {
		return nil, ErrIndexClosed
	}
	if k < 1 || k > len(x.global) {
		return nil, &ParameterError{Name: "k", Reason: "must be in [1, size of search set]"}
	}
	if err := query.validate("query_indices", x.ps.n); err != nil {
		return nil, err
	}
	nq := query.Len(x.ps.n)
	size, err := checkAlloc(nq, k)
	if err != nil {
		return nil, err
	}

	res := &NeighborResult{
		K:         k,
		Queries:   make([]int, 0, nq),
		Neighbors: make([]int, size),
		Distances: make([]float64, size),
	}

	h := x.engine.getHeap()
	defer x.engine.putHeap(h)

	write := 0
	for q := 0; q < nq; q++ {
		qi := query.At(q)
		x.tree.search(x.ps.Point(qi), k, bound, h)
		if h.Len() < k {
			// Radius mode only: too few neighbors within the radius.
			*h = (*h)[:0]
			continue
		}
		nn := res.Neighbors[write : write+k]
		dd := res.Distances[write : write+k]
		h.drain(nn, dd)
		for i := range nn {
			if !x.full {
				nn[i] = x.global[nn[i]]
			}
			dd[i] = rdistToDist(dd[i])
		}
		res.Queries = append(res.Queries, qi)
		write += k
	}
	res.Neighbors = res.Neighbors[:write]
	res.Distances = res.Distances[:write]
	return res, nil
}

// Close releases the tree and decrements the engine's open count. It
// waits for in-flight queries. Closing twice returns ErrIndexClosed.
// If the engine count is found inconsistent the tree is still released
// and ErrCounterInconsistent is returned.
func (x *Index) Close() error {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return ErrIndexClosed
	}
	x.closed = true
	x.tree = nil
	x.global = nil
	x.mu.Unlock()

	open, err := x.engine.release()
	x.logger.LogClose(open, err)
	return err
}
