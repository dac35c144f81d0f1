package distances

import (
	"container/heap"
	"math"
)

// TreeKind selects the space-partitioning structure built by an Index.
type TreeKind string

const (
	// TreeKD is an axis-aligned KD-tree split at the median of the widest
	// dimension. Pruning uses exact point-to-box distances.
	TreeKD TreeKind = "kd"
	// TreeBall is a ball tree; pruning uses point-to-ball distances. It
	// tends to prune better than TreeKD as dimensionality grows.
	TreeBall TreeKind = "ball"
)

// NodeData describes a single node in a spatial tree.
type NodeData struct {
	IdxStart, IdxEnd int
	IsLeaf           bool
	Radius           float64 // ball tree radius; 0 for KD-tree
}

// searchTree is implemented by KDTree and BallTree. Point identities inside
// a tree are local: position p refers to the p-th point the tree was built
// over, which is the p-th entry of the index's search selection.
type searchTree interface {
	// search collects, into h, up to k nearest points whose squared
	// distance to query is <= bound. With bound = +Inf this is plain k-NN.
	search(query []float64, k int, bound float64, h *knnHeap)

	NumPoints() int
	NumNodes() int
	IdxArray() []int
	NodeDataArray() []NodeData
}

// treeMaxNodes returns an upper bound on the number of nodes needed for an
// array-form binary tree with n points and the given leaf size.
func treeMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	// Depth of tree: ceil(log2(ceil(n/leafSize))) + 1.
	// Number of nodes in a complete binary tree of depth d = 2^(d+1) - 1.
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	v := 1
	for v < leaves {
		v *= 2
		depth++
	}
	return (1 << (depth + 1)) - 1
}

// collectNodes returns the initialized nodes reachable from the root, in
// node-id order.
func collectNodes(nodes []NodeData) []NodeData {
	out := make([]NodeData, 0, len(nodes))
	for id, nd := range nodes {
		if id == 0 || nd.IdxEnd > nd.IdxStart {
			out = append(out, nd)
		}
	}
	return out
}

// rankDist orders distances for the heap. NaN ranks with +Inf so it never
// displaces a numeric distance.
func rankDist(d float64) float64 {
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}

// admit offers a candidate to the bounded heap. Until the heap holds k
// entries a candidate is admitted when d <= bound; afterwards it must rank
// strictly below the current k-th best, so among equal distances the first
// one visited is kept. An infinite bound admits everything, NaN distances
// included, so plain k-NN always yields k results.
func admit(h *knnHeap, k int, local int, d, bound float64) {
	if h.Len() < k {
		if math.IsInf(bound, 1) || d <= bound {
			h.push(knnItem{index: local, dist: d})
		}
		return
	}
	if rankDist(d) < rankDist(h.top().dist) {
		h.replaceTop(knnItem{index: local, dist: d})
	}
}

// canContribute reports whether a subtree whose squared distance lower
// bound is rdist may still hold a point that admit would accept. A NaN
// lower bound prunes nothing.
func canContribute(h *knnHeap, k int, rdist, bound float64) bool {
	if math.IsNaN(rdist) {
		rdist = 0
	}
	if h.Len() < k {
		return math.IsInf(bound, 1) || rdist <= bound
	}
	return rdist < math.Min(rankDist(h.top().dist), bound)
}

// --- max-heap for KNN queries ---

type knnItem struct {
	index int     // tree-local point id
	dist  float64 // squared distance
}

// knnHeap is a max-heap of knnItem (largest distance on top) used as a
// bounded priority queue for KNN queries.
type knnHeap []knnItem

func (h knnHeap) Len() int            { return len(h) }
func (h knnHeap) Less(i, j int) bool  { return rankDist(h[i].dist) > rankDist(h[j].dist) } // max-heap
func (h knnHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *knnHeap) Push(x interface{}) { *h = append(*h, x.(knnItem)) }
func (h *knnHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (h knnHeap) top() knnItem { return h[0] }

func (h *knnHeap) push(it knnItem) { heap.Push(h, it) }

func (h *knnHeap) replaceTop(it knnItem) {
	(*h)[0] = it
	heap.Fix(h, 0)
}

// drain pops every item into idx/dist in ascending distance order, NaN
// last, and leaves the heap empty.
func (h *knnHeap) drain(idx []int, dist []float64) {
	for i := h.Len() - 1; i >= 0; i-- {
		it := heap.Pop(h).(knnItem)
		idx[i] = it.index
		dist[i] = it.dist
	}
}
