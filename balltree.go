package distances

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// BallTree is a ball tree over a list of borrowed point rows. Each node
// stores a centroid and radius defining an enclosing ball for its points.
//
// The tree is stored as a binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - centroids[node*dims .. (node+1)*dims) is the centroid of node
type BallTree struct {
	points    [][]float64 // local id -> borrowed coordinates
	n         int         // number of points
	dims      int         // dimensionality
	leafSize  int
	idxArray  []int      // permutation: tree-order position -> local id
	nodes     []NodeData // one entry per tree node; Radius is used
	centroids []float64
	numNodes  int
}

// NewBallTree builds a ball tree over points, each of length dims.
// leafSize controls the max points per leaf node.
func NewBallTree(points [][]float64, dims, leafSize int) *BallTree {
	if leafSize < 1 {
		leafSize = 1
	}
	n := len(points)

	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := treeMaxNodes(n, leafSize)
	t := &BallTree{
		points:    points,
		n:         n,
		dims:      dims,
		leafSize:  leafSize,
		idxArray:  idxArray,
		nodes:     make([]NodeData, maxNodes),
		centroids: make([]float64, maxNodes*dims),
	}

	if n > 0 {
		t.buildNode(0, 0, n)
	}

	return t
}

// buildNode recursively builds the ball tree for points in idxArray[start:end].
func (t *BallTree) buildNode(nodeID, start, end int) {
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, NodeData{})
		t.centroids = append(t.centroids, make([]float64, t.dims)...)
	}
	t.numNodes++

	t.computeCentroid(nodeID, start, end)

	// Radius: max distance from centroid to any point in this node. NaN
	// distances fail the comparison and are skipped.
	centroid := t.centroids[nodeID*t.dims : (nodeID+1)*t.dims]
	var radius float64
	for i := start; i < end; i++ {
		if d := Euclidean(centroid, t.points[t.idxArray[i]]); d > radius {
			radius = d
		}
	}

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: true, Radius: radius}
		return
	}

	t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: false, Radius: radius}

	// Split at the median of the dimension with the greatest spread.
	splitDim := t.findSpreadDim(start, end)
	t.sortByDim(start, end, splitDim)
	mid := start + count/2

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// computeCentroid computes the mean of points idxArray[start:end] and stores
// it in the centroids array. Points with a NaN coordinate are left out: their
// distance to any query is NaN, which never competes with a numeric one.
func (t *BallTree) computeCentroid(nodeID, start, end int) {
	centroid := t.centroids[nodeID*t.dims : (nodeID+1)*t.dims]
	for d := range centroid {
		centroid[d] = 0
	}
	count := 0
	for i := start; i < end; i++ {
		pt := t.points[t.idxArray[i]]
		if floats.HasNaN(pt) {
			continue
		}
		floats.Add(centroid, pt)
		count++
	}
	if count > 0 {
		floats.Scale(1/float64(count), centroid)
	}
}

// findSpreadDim returns the dimension with the greatest spread among
// points in idxArray[start:end].
func (t *BallTree) findSpreadDim(start, end int) int {
	bestDim := 0
	bestSpread := -1.0
	for d := 0; d < t.dims; d++ {
		minVal := math.Inf(1)
		maxVal := math.Inf(-1)
		for i := start; i < end; i++ {
			v := t.points[t.idxArray[i]][d]
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
		if spread := maxVal - minVal; spread > bestSpread {
			bestSpread = spread
			bestDim = d
		}
	}
	return bestDim
}

// sortByDim stably sorts idxArray[start:end] by the given dimension.
func (t *BallTree) sortByDim(start, end, dim int) {
	sub := t.idxArray[start:end]
	points := t.points
	sort.SliceStable(sub, func(i, j int) bool {
		return points[sub[i]][dim] < points[sub[j]][dim]
	})
}

func (t *BallTree) NumPoints() int            { return t.n }
func (t *BallTree) NumNodes() int             { return t.numNodes }
func (t *BallTree) IdxArray() []int           { return t.idxArray }
func (t *BallTree) NodeDataArray() []NodeData { return collectNodes(t.nodes) }

func (t *BallTree) search(query []float64, k int, bound float64, h *knnHeap) {
	if t.n == 0 {
		return
	}
	if !canContribute(h, k, t.minRdistPoint(0, query), bound) {
		return
	}
	t.knnSearch(0, query, k, bound, h)
}

// knnSearch performs a single-tree KNN traversal for the ball tree.
func (t *BallTree) knnSearch(nodeID int, query []float64, k int, bound float64, h *knnHeap) {
	node := t.nodes[nodeID]

	if node.IsLeaf {
		for i := node.IdxStart; i < node.IdxEnd; i++ {
			local := t.idxArray[i]
			admit(h, k, local, SquaredEuclidean(query, t.points[local]), bound)
		}
		return
	}

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
	if canContribute(h, k, farRdist, bound) {
		t.knnSearch(farChild, query, k, bound, h)
	}
}

// minRdistPoint returns a lower bound in squared-distance space on the
// distance between a point and any NaN-free point in the given node:
// max(0, |point - centroid| - radius)^2.
func (t *BallTree) minRdistPoint(node int, point []float64) float64 {
	centroid := t.centroids[node*t.dims : (node+1)*t.dims]
	radius := t.nodes[node].Radius
	d := Euclidean(point, centroid)
	// Loosen by a relative slack so rounding in the centroid and radius can
	// never push the bound above a true squared distance.
	gap := d - radius - ballSlack*(d+radius)
	if gap < 0 {
		gap = 0
	}
	return distToRdist(gap)
}

const ballSlack = 1e-9
