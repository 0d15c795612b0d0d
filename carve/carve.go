// Package carve implements the sliding-window visitor policy and the
// fork/join orchestration that drives the ray walker over every scan,
// producing the set of voxels to treat as transiently occupied.
package carve

import (
	"sync"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"github.com/dynacarve/peopleremover/internal/parallel"
	"github.com/dynacarve/peopleremover/maxrange"
	"github.com/dynacarve/peopleremover/occupancy"
	"github.com/dynacarve/peopleremover/raywalk"
	"github.com/dynacarve/peopleremover/voxel"
)

// Scan is the minimal view of a registered laser scan the carving pipeline
// needs: a scanner position and the world-frame points it saw, paired with
// the same points in the scanner-local frame (used by the
// max-range estimator, which operates purely on local geometry).
type Scan struct {
	Index   int
	Scanner r3.Vector
	World   []r3.Vector
	Local   []r3.Vector
}

// BuildOccupancyIndex inserts every scan's world-frame points into a fresh
// occupancy index keyed by voxel.
func BuildOccupancyIndex(scans []Scan, voxelSize float64) *occupancy.Index {
	idx := occupancy.New()
	for _, s := range scans {
		for _, p := range s.World {
			idx.Insert(voxel.Cell(p, voxelSize), s.Index)
		}
	}
	return idx
}

// EstimateMaxRanges runs the max-range estimator over every scan in
// parallel; each scan's Local points and its own angular index are owned
// exclusively by the goroutine processing it, so no locking is needed
// until the results are assembled below.
func EstimateMaxRanges(
	scans []Scan,
	method maxrange.Method,
	normalMethod maxrange.NormalMethod,
	voxelSize, fuzz float64,
	jobs int,
	logger golog.Logger,
) ([][]float64, error) {
	ranges := make([][]float64, len(scans))
	errs := make([]error, len(scans))

	parallel.ForEachScan(len(scans), jobs, func(i int) {
		r, err := maxrange.Estimate(method, normalMethod, scans[i].Local, voxelSize, fuzz, logger)
		ranges[i] = r
		errs[i] = err
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return ranges, nil
}

// slidingWindowVisitor implements spec.md §4.6: a voxel absent from the
// occupancy index is skipped without marking; a voxel present but owned
// only by scans outside [i-diff, i+diff] is marked free and the walk
// continues; a voxel owned by any scan inside the window halts the walk.
type slidingWindowVisitor struct {
	index     *occupancy.Index
	scanIndex int
	diff      int
	free      map[voxel.Coord]struct{}
}

func newSlidingWindowVisitor(index *occupancy.Index, scanIndex, diff int) *slidingWindowVisitor {
	return &slidingWindowVisitor{
		index:     index,
		scanIndex: scanIndex,
		diff:      diff,
		free:      make(map[voxel.Coord]struct{}),
	}
}

func (v *slidingWindowVisitor) visit(c voxel.Coord) raywalk.Outcome {
	lo := v.scanIndex - v.diff
	if lo < 0 {
		lo = 0
	}
	hi := v.scanIndex + v.diff

	inWindow, present := v.index.ContainsAny(c, lo, hi)
	if !present {
		return raywalk.OutcomeContinue
	}
	if inWindow {
		return raywalk.OutcomeStop
	}
	v.free[c] = struct{}{}
	return raywalk.OutcomeContinue
}

// Carve walks every ray for every scan, truncating rays at their estimated
// max range, and returns the union of every scan's freed voxels.
func Carve(scans []Scan, index *occupancy.Index, ranges [][]float64, voxelSize float64, diff, jobs int) map[voxel.Coord]struct{} {
	freeVoxels := make(map[voxel.Coord]struct{})
	var mu sync.Mutex

	parallel.ForEachScan(len(scans), jobs, func(i int) {
		s := scans[i]
		v := newSlidingWindowVisitor(index, s.Index, diff)

		for j, p := range s.World {
			end := truncate(s.Scanner, p, s.Local[j].Norm(), ranges[i][j])
			raywalk.Walk(s.Scanner, end, voxelSize, v.visit)
		}

		mu.Lock()
		for c := range v.free {
			freeVoxels[c] = struct{}{}
		}
		mu.Unlock()
	})

	return freeVoxels
}

// truncate shortens the ray from scanner to p so that it ends at distance
// maxRange along the same direction, unless maxRange is infinite or would
// extend the ray (it never can, per the max-range estimator's invariant
// maxRange <= localDistance, but clamping here keeps Carve robust to a
// maxrange.Method that doesn't enforce it).
func truncate(scanner, p r3.Vector, localDistance, maxRange float64) r3.Vector {
	if maxRange >= localDistance {
		return p
	}
	direction := p.Sub(scanner)
	if localDistance == 0 {
		return p
	}
	return scanner.Add(direction.Mul(maxRange / localDistance))
}

// Classify marks each scan's world points dynamic iff their voxel is in
// freeVoxels.
func Classify(scans []Scan, freeVoxels map[voxel.Coord]struct{}, voxelSize float64) [][]bool {
	result := make([][]bool, len(scans))
	for i, s := range scans {
		dynamic := make([]bool, len(s.World))
		for j, p := range s.World {
			_, dynamic[j] = freeVoxels[voxel.Cell(p, voxelSize)]
		}
		result[i] = dynamic
	}
	return result
}
