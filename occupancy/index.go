// Package occupancy maps voxels to the set of scan indices whose points
// fall inside them. It is the shared, read-after-build data structure that
// the ray walker's visitor consults while carving.
package occupancy

import (
	"sort"

	"github.com/dynacarve/peopleremover/voxel"
)

// scanSet is a small ordered set of scan indices, backed by a sorted slice.
// Scan counts per voxel are typically tiny (a handful of passes through the
// same cell), so a sorted slice beats a map on both memory and the window
// lookups in ContainsAny.
type scanSet struct {
	indices []int
}

func (s *scanSet) insert(i int) {
	pos := sort.SearchInts(s.indices, i)
	if pos < len(s.indices) && s.indices[pos] == i {
		return
	}
	s.indices = append(s.indices, 0)
	copy(s.indices[pos+1:], s.indices[pos:])
	s.indices[pos] = i
}

// containsAny reports whether the set has any element in [lo, hi].
func (s *scanSet) containsAny(lo, hi int) bool {
	pos := sort.SearchInts(s.indices, lo)
	return pos < len(s.indices) && s.indices[pos] <= hi
}

// Slice returns a copy of the set's members in ascending order.
func (s *scanSet) Slice() []int {
	out := make([]int, len(s.indices))
	copy(out, s.indices)
	return out
}

// Index is a mapping Voxel -> ordered set of scan indices, built once from
// all input points and read-only afterward. It mirrors the VoxelGrid map
// that the pointcloud package's voxel grid keys by VoxelCoords, except the
// value here is the set of contributing scans rather than the points
// themselves.
type Index struct {
	voxels map[voxel.Coord]*scanSet
}

// New returns an empty occupancy Index.
func New() *Index {
	return &Index{voxels: make(map[voxel.Coord]*scanSet)}
}

// Insert records that scanIndex contributed a point to v. Inserting the
// same (v, scanIndex) pair twice is a no-op.
func (idx *Index) Insert(v voxel.Coord, scanIndex int) {
	s, ok := idx.voxels[v]
	if !ok {
		s = &scanSet{}
		idx.voxels[v] = s
	}
	s.insert(scanIndex)
}

// Lookup returns the set of scan indices that contributed a point to v, and
// whether v is present at all. A voxel that was never inserted is absent,
// not an empty set.
func (idx *Index) Lookup(v voxel.Coord) ([]int, bool) {
	s, ok := idx.voxels[v]
	if !ok {
		return nil, false
	}
	return s.Slice(), true
}

// ContainsAny reports whether v is present in the index and its scan set
// intersects the inclusive window [lo, hi]. If v is absent, the second
// return is false and the first is meaningless.
func (idx *Index) ContainsAny(v voxel.Coord, lo, hi int) (bool, bool) {
	s, ok := idx.voxels[v]
	if !ok {
		return false, false
	}
	return s.containsAny(lo, hi), true
}

// Len returns the number of distinct occupied voxels.
func (idx *Index) Len() int {
	return len(idx.voxels)
}
