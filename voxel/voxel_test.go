package voxel

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestFloorDivIsMathematicalFloor(t *testing.T) {
	cases := []struct {
		x, v float64
		want int64
	}{
		{0, 10, 0},
		{9.999, 10, 0},
		{10, 10, 1},
		{-0.5, 1, -1},
		{-1, 10, -1},
		{-10, 10, -1},
		{-10.0001, 10, -2},
	}
	for _, c := range cases {
		test.That(t, FloorDiv64(c.x, c.v), test.ShouldEqual, c.want)
	}
}

func TestFloorDivRemainderInUnitInterval(t *testing.T) {
	xs := []float64{-123.456, -10, -0.001, 0, 0.001, 10, 123.456}
	v := 7.0
	for _, x := range xs {
		cell := FloorDiv64(x, v)
		rem := x/v - float64(cell)
		test.That(t, rem, test.ShouldBeGreaterThanOrEqualTo, 0.0)
		test.That(t, rem, test.ShouldBeLessThan, 1.0)
	}
}

func TestEuclidModSignMatchesDivisor(t *testing.T) {
	test.That(t, EuclidMod(-1, 10), test.ShouldEqual, 9.0)
	test.That(t, EuclidMod(1, 10), test.ShouldEqual, 1.0)
	test.That(t, EuclidMod(-10, 10), test.ShouldEqual, 0.0)
}

func TestCellMirrorsAcrossOrigin(t *testing.T) {
	p := r3.Vector{X: 25, Y: 0, Z: 0}
	m := r3.Vector{X: -25, Y: 0, Z: 0}
	c := Cell(p, 10)
	cm := Cell(m, 10)
	test.That(t, c, test.ShouldResemble, Coord{X: 2, Y: 0, Z: 0})
	test.That(t, cm, test.ShouldResemble, Coord{X: -3, Y: 0, Z: 0})
}

func TestDiagonal(t *testing.T) {
	d := Diagonal(1)
	test.That(t, d, test.ShouldAlmostEqual, 1.7320508075688772)
}
