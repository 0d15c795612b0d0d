// Package quadtree implements an angular index over a set of direction
// vectors on the unit sphere, used by the max-range estimator to find the
// points whose rays point in roughly the same direction as a given point's
// own ray. Despite the name, the index is not a four-way tree: it is
// built as a binary space partition, recursing on whichever axis has the
// widest spread of directions at that node, the way the octree package
// recurses on whichever octant a point falls into.
package quadtree

import (
	"math"
	"sort"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
)

// NodeType mirrors the internal/leaf distinction the octree package uses.
type NodeType uint8

const (
	internalNode = NodeType(iota)
	leafNode
)

// leafCapacity bounds how many directions a leaf holds before it is split.
const leafCapacity = 8

type node struct {
	nodeType NodeType

	// center and halfAngle bound every direction under this node within a
	// cone: no contained direction is more than halfAngle from center.
	center    r3.Vector
	halfAngle float64

	// leaf fields
	indices []int
	dirs    []r3.Vector

	// internal fields
	left, right *node
}

// Index answers "which of my input directions point within alpha of dir?"
// without scanning every direction, by pruning subtrees whose bounding cone
// cannot reach within alpha of dir.
type Index struct {
	logger golog.Logger
	root   *node
}

// New builds an angular index over dirs, which need not be normalized.
// Indices into the returned results refer to positions in dirs.
func New(logger golog.Logger, dirs []r3.Vector) *Index {
	normalized := make([]r3.Vector, len(dirs))
	indices := make([]int, len(dirs))
	for i, d := range dirs {
		normalized[i] = d.Normalize()
		indices[i] = i
	}
	return &Index{logger: logger, root: build(indices, normalized)}
}

func build(indices []int, dirs []r3.Vector) *node {
	n := &node{}
	n.center, n.halfAngle = boundingCone(dirs)

	if len(indices) <= leafCapacity {
		n.nodeType = leafNode
		n.indices = indices
		n.dirs = dirs
		return n
	}

	axis := widestAxis(dirs)
	type pair struct {
		idx int
		dir r3.Vector
	}
	pairs := make([]pair, len(indices))
	for i := range indices {
		pairs[i] = pair{indices[i], dirs[i]}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return component(pairs[i].dir, axis) < component(pairs[j].dir, axis)
	})
	mid := len(pairs) / 2
	leftIdx := make([]int, mid)
	leftDirs := make([]r3.Vector, mid)
	rightIdx := make([]int, len(pairs)-mid)
	rightDirs := make([]r3.Vector, len(pairs)-mid)
	for i, p := range pairs[:mid] {
		leftIdx[i], leftDirs[i] = p.idx, p.dir
	}
	for i, p := range pairs[mid:] {
		rightIdx[i], rightDirs[i] = p.idx, p.dir
	}

	n.nodeType = internalNode
	n.left = build(leftIdx, leftDirs)
	n.right = build(rightIdx, rightDirs)
	return n
}

func component(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func widestAxis(dirs []r3.Vector) int {
	var minV, maxV r3.Vector
	minV = r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	maxV = r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, d := range dirs {
		minV = r3.Vector{X: math.Min(minV.X, d.X), Y: math.Min(minV.Y, d.Y), Z: math.Min(minV.Z, d.Z)}
		maxV = r3.Vector{X: math.Max(maxV.X, d.X), Y: math.Max(maxV.Y, d.Y), Z: math.Max(maxV.Z, d.Z)}
	}
	spread := maxV.Sub(minV)
	if spread.X >= spread.Y && spread.X >= spread.Z {
		return 0
	}
	if spread.Y >= spread.Z {
		return 1
	}
	return 2
}

// boundingCone returns a center direction and the half-angle of the
// smallest cone (centered on that direction) containing every dir.
func boundingCone(dirs []r3.Vector) (r3.Vector, float64) {
	sum := r3.Vector{}
	for _, d := range dirs {
		sum = sum.Add(d)
	}
	if sum.Norm() == 0 {
		sum = r3.Vector{X: 1}
	}
	center := sum.Normalize()

	maxAngle := 0.0
	for _, d := range dirs {
		a := angleBetween(center, d)
		if a > maxAngle {
			maxAngle = a
		}
	}
	return center, maxAngle
}

func angleBetween(a, b r3.Vector) float64 {
	cos := a.Dot(b) / (a.Norm() * b.Norm())
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// Search returns the indices of every input direction within angular
// distance alpha (radians) of dir.
func (idx *Index) Search(dir r3.Vector, alpha float64) []int {
	if idx.root == nil {
		return nil
	}
	dir = dir.Normalize()
	var out []int
	searchNode(idx.root, dir, alpha, &out)
	return out
}

func searchNode(n *node, dir r3.Vector, alpha float64, out *[]int) {
	if angleBetween(n.center, dir)-n.halfAngle > alpha {
		return
	}
	if n.nodeType == leafNode {
		for i, d := range n.dirs {
			if angleBetween(d, dir) <= alpha {
				*out = append(*out, n.indices[i])
			}
		}
		return
	}
	searchNode(n.left, dir, alpha, out)
	searchNode(n.right, dir, alpha, out)
}
