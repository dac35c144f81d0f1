package distances

import (
	"math"
	"sort"
)

// KDTree is a KD-tree over a list of borrowed point rows. It never copies
// coordinates: points[p] aliases the caller's buffer, and tree order is
// kept in a separate permutation of local point ids.
//
// The tree is stored as a binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - node bounds are stored as min/max per dimension per node
type KDTree struct {
	points   [][]float64 // local id -> borrowed coordinates
	n        int         // number of points
	dims     int         // dimensionality
	leafSize int
	idxArray []int      // permutation: tree-order position -> local id
	nodes    []NodeData // one entry per tree node
	// nodeBoundsMin[node*dims + j] = min value of feature j in node
	nodeBoundsMin []float64
	// nodeBoundsMax[node*dims + j] = max value of feature j in node
	nodeBoundsMax []float64
	numNodes      int
}

// NewKDTree builds a KD-tree over points, each of length dims. leafSize
// controls the max points per leaf node. Duplicate coordinates are fine:
// the median split always makes progress because it splits by count.
func NewKDTree(points [][]float64, dims, leafSize int) *KDTree {
	if leafSize < 1 {
		leafSize = 1
	}
	n := len(points)

	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := treeMaxNodes(n, leafSize)

	t := &KDTree{
		points:        points,
		n:             n,
		dims:          dims,
		leafSize:      leafSize,
		idxArray:      idxArray,
		nodes:         make([]NodeData, maxNodes),
		nodeBoundsMin: make([]float64, maxNodes*dims),
		nodeBoundsMax: make([]float64, maxNodes*dims),
	}

	if n > 0 {
		t.buildNode(0, 0, n)
	}

	return t
}

// buildNode recursively builds the tree for points in idxArray[start:end].
func (t *KDTree) buildNode(nodeID, start, end int) {
	// Grow arrays if needed (shouldn't happen with the upper bound).
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, NodeData{})
		t.nodeBoundsMin = append(t.nodeBoundsMin, make([]float64, t.dims)...)
		t.nodeBoundsMax = append(t.nodeBoundsMax, make([]float64, t.dims)...)
	}
	t.numNodes++

	t.computeNodeBounds(nodeID, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: true}
		return
	}

	// Find dimension with greatest spread.
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < t.dims; d++ {
		spread := t.nodeBoundsMax[nodeID*t.dims+d] - t.nodeBoundsMin[nodeID*t.dims+d]
		if spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}

	// Sort by the split dimension and split at the median.
	t.sortByDimension(start, end, splitDim)
	mid := start + count/2

	t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: false}

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// computeNodeBounds computes min/max per dimension for points idxArray[start:end].
// NaN coordinates fail both comparisons and leave the bounds untouched.
func (t *KDTree) computeNodeBounds(nodeID, start, end int) {
	base := nodeID * t.dims
	for d := 0; d < t.dims; d++ {
		t.nodeBoundsMin[base+d] = math.Inf(1)
		t.nodeBoundsMax[base+d] = math.Inf(-1)
	}
	for i := start; i < end; i++ {
		pt := t.points[t.idxArray[i]]
		for d := 0; d < t.dims; d++ {
			v := pt[d]
			if v < t.nodeBoundsMin[base+d] {
				t.nodeBoundsMin[base+d] = v
			}
			if v > t.nodeBoundsMax[base+d] {
				t.nodeBoundsMax[base+d] = v
			}
		}
	}
}

// sortByDimension sorts idxArray[start:end] by the given dimension. The
// sort is stable so equal coordinates keep search-selection order and the
// resulting tree is a deterministic function of the input.
func (t *KDTree) sortByDimension(start, end, dim int) {
	sub := t.idxArray[start:end]
	points := t.points
	sort.SliceStable(sub, func(i, j int) bool {
		return points[sub[i]][dim] < points[sub[j]][dim]
	})
}

func (t *KDTree) NumPoints() int            { return t.n }
func (t *KDTree) NumNodes() int             { return t.numNodes }
func (t *KDTree) IdxArray() []int           { return t.idxArray }
func (t *KDTree) NodeDataArray() []NodeData { return collectNodes(t.nodes) }

func (t *KDTree) search(query []float64, k int, bound float64, h *knnHeap) {
	if t.n == 0 {
		return
	}
	if !canContribute(h, k, t.minRdistPoint(0, query), bound) {
		return
	}
	t.knnSearch(0, query, k, bound, h)
}

// knnSearch performs a single-tree KNN traversal using a max-heap of size k.
func (t *KDTree) knnSearch(nodeID int, query []float64, k int, bound float64, h *knnHeap) {
	node := t.nodes[nodeID]

	if node.IsLeaf {
		for i := node.IdxStart; i < node.IdxEnd; i++ {
			local := t.idxArray[i]
			admit(h, k, local, SquaredEuclidean(query, t.points[local]), bound)
		}
		return
	}

	// Determine which child to visit first (nearer child first).
	left := 2*nodeID + 1
	right := 2*nodeID + 2

	leftRdist := t.minRdistPoint(left, query)
	rightRdist := t.minRdistPoint(right, query)

	nearChild, farChild := left, right
	nearRdist, farRdist := leftRdist, rightRdist
	if rightRdist < leftRdist {
		nearChild, farChild = right, left
		nearRdist, farRdist = rightRdist, leftRdist
	}

	if canContribute(h, k, nearRdist, bound) {
		t.knnSearch(nearChild, query, k, bound, h)
	}

	// Prune far child if its lower bound exceeds the current k-th distance.
	if canContribute(h, k, farRdist, bound) {
		t.knnSearch(farChild, query, k, bound, h)
	}
}

// minRdistPoint returns a lower bound in squared-distance space on the
// distance between a point and any point in the given node.
func (t *KDTree) minRdistPoint(node int, point []float64) float64 {
	base := node * t.dims
	var rdist float64
	for j := 0; j < t.dims; j++ {
		lo := t.nodeBoundsMin[base+j]
		hi := t.nodeBoundsMax[base+j]
		var d float64
		if point[j] < lo {
			d = lo - point[j]
		} else if point[j] > hi {
			d = point[j] - hi
		}
		rdist += d * d
	}
	return rdist
}
