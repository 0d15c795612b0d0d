package raywalk

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/dynacarve/peopleremover/voxel"
)

func collect(start, end r3.Vector, size float64) []voxel.Coord {
	var got []voxel.Coord
	Walk(start, end, size, func(c voxel.Coord) Outcome {
		got = append(got, c)
		return OutcomeContinue
	})
	return got
}

func TestDegenerateRayVisitsStartOnce(t *testing.T) {
	p := r3.Vector{X: 1.5, Y: 1.5, Z: 1.5}
	got := collect(p, p, 1)
	test.That(t, got, test.ShouldResemble, []voxel.Coord{{X: 1, Y: 1, Z: 1}})
}

func TestAxisAlignedRayVisitsEveryCellInBetween(t *testing.T) {
	start := r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}
	end := r3.Vector{X: 3.5, Y: 0.5, Z: 0.5}
	got := collect(start, end, 1)
	test.That(t, got, test.ShouldResemble, []voxel.Coord{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 2, Y: 0, Z: 0},
		{X: 3, Y: 0, Z: 0},
	})
}

func TestWalkTerminatesAtEndpointVoxel(t *testing.T) {
	start := r3.Vector{X: 0.1, Y: 0.1, Z: 0.1}
	end := r3.Vector{X: 2.9, Y: 2.9, Z: 2.9}
	got := collect(start, end, 1)
	last := got[len(got)-1]
	test.That(t, last, test.ShouldResemble, voxel.Coord{X: 2, Y: 2, Z: 2})
}

func TestWalkIsSymmetricAcrossNegativeCoordinates(t *testing.T) {
	start := r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}
	end := r3.Vector{X: 3.5, Y: 3.5, Z: 3.5}
	fwd := collect(start, end, 1)

	startNeg := r3.Vector{X: -0.5, Y: -0.5, Z: -0.5}
	endNeg := r3.Vector{X: -3.5, Y: -3.5, Z: -3.5}
	back := collect(startNeg, endNeg, 1)

	test.That(t, len(back), test.ShouldEqual, len(fwd))
	for i, c := range fwd {
		mirrored := voxel.Coord{X: -c.X - 1, Y: -c.Y - 1, Z: -c.Z - 1}
		test.That(t, back[i], test.ShouldResemble, mirrored)
	}
}

func TestWalkStopsWhenVisitorReturnsStop(t *testing.T) {
	start := r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}
	end := r3.Vector{X: 9.5, Y: 0.5, Z: 0.5}
	count := 0
	Walk(start, end, 1, func(c voxel.Coord) Outcome {
		count++
		if count == 3 {
			return OutcomeStop
		}
		return OutcomeContinue
	})
	test.That(t, count, test.ShouldEqual, 3)
}

func TestDiagonalWalkCoversMixedSignCorners(t *testing.T) {
	start := r3.Vector{X: 0.5, Y: 2.5, Z: 0.5}
	end := r3.Vector{X: 2.5, Y: 0.5, Z: 0.5}
	got := collect(start, end, 1)
	test.That(t, got[0], test.ShouldResemble, voxel.Coord{X: 0, Y: 2, Z: 0})
	last := got[len(got)-1]
	test.That(t, last, test.ShouldResemble, voxel.Coord{X: 2, Y: 0, Z: 0})
	seen := map[voxel.Coord]bool{}
	for _, c := range got {
		seen[c] = true
	}
	test.That(t, len(seen), test.ShouldEqual, len(got))
}
