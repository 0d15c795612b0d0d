// Package voxel provides the discretization of continuous 3D space into
// cubic cells, and the Euclidean (floor-toward-negative-infinity) division
// and modulo that discretization depends on.
package voxel

import (
	"math"

	"github.com/golang/geo/r3"
)

// Coord identifies a single cubic cell on a grid of edge length Size. Two
// Coords are equal iff all three components are equal; Coord is comparable
// and safe to use as a map key, mirroring VoxelCoords in the pointcloud
// package this is modeled on.
type Coord struct {
	X, Y, Z int64
}

// Less gives Coord a total lexicographic order, used when a deterministic
// iteration order over a set of voxels is required (e.g. in tests).
func (c Coord) Less(o Coord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.Z < o.Z
}

// FloorDiv64 returns the mathematical floor of a/b as an int64. Unlike Go's
// built-in integer division (and unlike C's), this always rounds toward
// negative infinity, so FloorDiv64(-0.5, 1) == -1, not 0.
func FloorDiv64(a, b float64) int64 {
	return int64(math.Floor(a / b))
}

// EuclidMod returns the remainder of a/b with the same sign as b (Euclidean
// modulo), as opposed to math.Mod which carries the sign of a.
func EuclidMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// Cell discretizes a point into the voxel that contains it, using
// mathematical floor division on each axis.
func Cell(p r3.Vector, size float64) Coord {
	return Coord{
		X: FloorDiv64(p.X, size),
		Y: FloorDiv64(p.Y, size),
		Z: FloorDiv64(p.Z, size),
	}
}

// Diagonal returns the voxel-diagonal constant d = size*sqrt(3), the
// characteristic length scale used by the range filter and the angular and
// max-range computations.
func Diagonal(size float64) float64 {
	return size * math.Sqrt(3)
}
