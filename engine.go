package distances

import (
	"fmt"
	"sync"
)

// Engine builds spatial indices and keeps count of how many are open.
// When the last open index is closed the engine drops its shared scratch
// buffers; they are recreated on the next Open.
//
// An Engine is safe for concurrent use. The count is the only state shared
// between indices, and it is guarded by the engine's mutex.
type Engine struct {
	opts Options

	mu      sync.Mutex
	open    int
	scratch *sync.Pool // nil while no index is open
}

// NewEngine returns an engine configured by opts. Zero-valued fields take
// their defaults.
func NewEngine(opts Options) (*Engine, error) {
	applyDefaults(&opts)
	if err := validateOptions(&opts); err != nil {
		return nil, err
	}
	return &Engine{opts: opts}, nil
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options { return e.opts }

// OpenIndices returns the number of indices opened by e and not yet closed.
func (e *Engine) OpenIndices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// Open builds an index over the points of ps selected by search. The index
// refers to ps rows in place; ps must outlive it. The selection is copied.
//
// Fails with ErrIndexOutOfBounds if search refers to a point outside ps,
// ErrInvalidParameter if it is empty, and ErrAllocation if the tree could
// not be sized. A failed Open leaves the open count unchanged.
func (e *Engine) Open(ps *PointSet, search Selection) (*Index, error) {
	log := e.opts.Logger.WithDimension(ps.dims)
	idx, err := e.build(ps, search, log)
	if err != nil {
		log.LogOpen(e.opts.Tree, search.Len(ps.n), e.OpenIndices(), err)
		return nil, err
	}

	e.mu.Lock()
	e.open++
	open := e.open
	if e.scratch == nil {
		e.scratch = &sync.Pool{New: func() any { return new(knnHeap) }}
	}
	e.mu.Unlock()

	e.opts.Metrics.setOpen(open)
	log.LogOpen(e.opts.Tree, idx.tree.NumPoints(), open, nil)
	return idx, nil
}

func (e *Engine) build(ps *PointSet, search Selection, log *Logger) (idx *Index, err error) {
	if err := search.validate("search_indices", ps.n); err != nil {
		return nil, err
	}
	m := search.Len(ps.n)
	if m == 0 {
		return nil, &ParameterError{Name: "search_indices", Reason: "search set is empty"}
	}
	if _, err := checkAlloc(m, ps.dims+4); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			idx = nil
			err = fmt.Errorf("%w: building %s tree over %d points: %v", ErrAllocation, e.opts.Tree, m, r)
		}
	}()

	global := search.Materialize(ps.n)
	points := make([][]float64, m)
	for i, g := range global {
		points[i] = ps.Point(g)
	}

	var tree searchTree
	switch e.opts.Tree {
	case TreeBall:
		tree = NewBallTree(points, ps.dims, e.opts.LeafSize)
	default:
		tree = NewKDTree(points, ps.dims, e.opts.LeafSize)
	}

	return &Index{
		engine: e,
		ps:     ps,
		global: global,
		full:   search.IsAll(),
		tree:   tree,
		logger: log,
	}, nil
}

// release decrements the open count. It reports ErrCounterInconsistent if
// the count was already zero, leaving it at zero.
func (e *Engine) release() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if e.open > 0 {
		e.open--
	} else {
		err = fmt.Errorf("%w: close with %d open indices", ErrCounterInconsistent, e.open)
	}
	if e.open == 0 {
		e.scratch = nil
	}
	e.opts.Metrics.setOpen(e.open)
	return e.open, err
}

// getHeap returns a scratch heap from the engine pool, or a fresh one if
// the pool has been dropped.
func (e *Engine) getHeap() *knnHeap {
	e.mu.Lock()
	pool := e.scratch
	e.mu.Unlock()
	if pool == nil {
		return new(knnHeap)
	}
	h := pool.Get().(*knnHeap)
	*h = (*h)[:0]
	return h
}

func (e *Engine) putHeap(h *knnHeap) {
	e.mu.Lock()
	pool := e.scratch
	e.mu.Unlock()
	if pool != nil {
		pool.Put(h)
	}
}
