// Package raywalk implements the 3D-DDA (Amanatides-Woo) voxel traversal:
// given a line segment from start to end, it enumerates, in order, every
// voxel the segment crosses.
package raywalk

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/dynacarve/peopleremover/voxel"
)

// Outcome is the visitor's verdict on a visited voxel.
type Outcome int

const (
	// OutcomeContinue tells the walker to proceed to the next voxel.
	OutcomeContinue Outcome = iota
	// OutcomeStop tells the walker to halt traversal immediately.
	OutcomeStop
)

// VisitFunc is called once per voxel the walk enumerates, in near-to-far
// order. Its return value short-circuits the walk when OutcomeStop.
type VisitFunc func(voxel.Coord) Outcome

// axisState tracks one of the three spatial axes' progress through the DDA
// loop. tMax is reconstructed each step from tMaxStart + mult*tDelta rather
// than accumulated, to avoid floating-point drift over long rays.
type axisState struct {
	step      int64
	tDelta    float64
	tMax      float64
	tMaxStart float64
	maxMult   int64
	mult      int64
	startCell int64
	curCell   int64
}

func newAxisState(startScalar, endScalar float64, startCell, endCell int64, size float64) axisState {
	a := axisState{startCell: startCell, curCell: startCell}
	dir := endScalar - startScalar
	if dir == 0 {
		a.step = 0
		a.tDelta = 0
		a.tMax = math.Inf(1)
		a.maxMult = math.MaxInt64
		a.tMaxStart = a.tMax
		return a
	}
	if dir > 0 {
		a.step = 1
	} else {
		a.step = -1
	}
	a.tDelta = float64(a.step) * size / dir
	a.tMax = a.tDelta * (1 - voxel.EuclidMod(float64(a.step)*(startScalar/size), 1))
	a.maxMult = (endCell - startCell) * a.step
	// Corner correction: a segment boundary that lands exactly on the start
	// coordinate, walked in the negative direction, is attributed to the
	// voxel on the far side of that boundary.
	if a.step == -1 && a.tMax == a.tDelta && startCell != endCell {
		a.curCell--
		a.startCell--
		a.maxMult--
	}
	a.tMaxStart = a.tMax
	return a
}

func (a *axisState) step_(minT float64) bool {
	if a.tMax != minT {
		return false
	}
	a.mult++
	a.curCell = a.startCell + a.mult*a.step
	a.tMax = a.tMaxStart + float64(a.mult)*a.tDelta
	return true
}

// gracedBound reports whether the axis's grace voxel, stepped this
// iteration, is beyond the segment's bounds; it also advances the voxel's
// coordinate by one on negatively-stepped axes (the "graced" diagonal
// voxel), matching the corner-repair rule literally.
func (a *axisState) gracedBound(coord *int64) bool {
	if a.step < 0 {
		if a.mult > a.maxMult+1 {
			return true
		}
		*coord++
	} else if a.mult > a.maxMult {
		return true
	}
	return false
}

// Walk enumerates every voxel the open segment (start, end] crosses, in the
// order it enters them, inclusive of the voxel containing start and the
// voxel containing end. A degenerate ray (start == end) visits the start
// voxel once; see DESIGN.md for why this departs from the algorithm's
// origin, which returns without visiting anything in that case.
func Walk(start, end r3.Vector, size float64, visit VisitFunc) {
	startCell := voxel.Cell(start, size)
	endCell := voxel.Cell(end, size)

	dir := end.Sub(start)
	if dir.X == 0 && dir.Y == 0 && dir.Z == 0 {
		visit(startCell)
		return
	}

	if visit(startCell) == OutcomeStop {
		return
	}
	if startCell == endCell {
		return
	}

	ax := newAxisState(start.X, end.X, startCell.X, endCell.X, size)
	ay := newAxisState(start.Y, end.Y, startCell.Y, endCell.Y, size)
	az := newAxisState(start.Z, end.Z, startCell.Z, endCell.Z, size)

	cur := voxel.Coord{X: ax.curCell, Y: ay.curCell, Z: az.curCell}
	if cur != startCell {
		if visit(cur) == OutcomeStop {
			return
		}
	}
	if cur == endCell {
		return
	}

	mixedSign := (ax.step == 1 || ay.step == 1 || az.step == 1) &&
		(ax.step == -1 || ay.step == -1 || az.step == -1)

	for {
		minT := math.Min(math.Min(ax.tMax, ay.tMax), az.tMax)
		steppedX := ax.step_(minT)
		steppedY := ay.step_(minT)
		steppedZ := az.step_(minT)

		if mixedSign && ((steppedX && steppedY) || (steppedY && steppedZ) || (steppedX && steppedZ)) {
			add := voxel.Coord{X: ax.curCell, Y: ay.curCell, Z: az.curCell}
			outOfBounds := false
			if steppedX && ax.gracedBound(&add.X) {
				outOfBounds = true
			}
			if steppedY && ay.gracedBound(&add.Y) {
				outOfBounds = true
			}
			if steppedZ && az.gracedBound(&add.Z) {
				outOfBounds = true
			}
			if outOfBounds {
				break
			}
			if visit(add) == OutcomeStop {
				break
			}
		}

		if steppedX && ax.mult > ax.maxMult {
			break
		}
		if steppedY && ay.mult > ay.maxMult {
			break
		}
		if steppedZ && az.mult > az.maxMult {
			break
		}

		cur = voxel.Coord{X: ax.curCell, Y: ay.curCell, Z: az.curCell}
		if visit(cur) == OutcomeStop {
			break
		}
	}
}
