// Package maxrange estimates, for each point in a scan, the distance along
// its scanner ray past which ray walking must stop. Truncating rays at the
// local surface (rather than at the point itself) keeps carving from eating
// into real geometry that happens to lie just beyond a point return.
package maxrange

import (
	"math"
	"sort"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/dynacarve/peopleremover/quadtree"
	"github.com/dynacarve/peopleremover/voxel"
)

// Method selects how the maximum ray range is determined.
type Method int

const (
	// MethodNone disables truncation: every range is +Inf, so each ray is
	// walked all the way to its point.
	MethodNone Method = iota
	// MethodNormals truncates each ray at its point's estimated local
	// surface, per NormalMethod.
	MethodNormals
)

// NormalMethod selects how a point's local surface normal is estimated.
// Only NormalAngle is implemented; the rest are declared to match the
// external interface and make Estimate return an UnsupportedModeError if
// selected.
type NormalMethod int

const (
	NormalAngle NormalMethod = iota
	NormalKNearest
	NormalRange
	NormalKNearestGlobal
	NormalRangeGlobal
)

func (m NormalMethod) String() string {
	switch m {
	case NormalAngle:
		return "angle"
	case NormalKNearest:
		return "knearest"
	case NormalRange:
		return "range"
	case NormalKNearestGlobal:
		return "knearest-global"
	case NormalRangeGlobal:
		return "range-global"
	default:
		return "unknown"
	}
}

// UnsupportedModeError reports that a declared but unimplemented
// NormalMethod was requested.
type UnsupportedModeError struct {
	Mode string
}

func (e *UnsupportedModeError) Error() string {
	return "max-range: unsupported normal method: " + e.Mode
}

// GeometryInvariantError reports a configuration that violates one of the
// estimator's geometric invariants closely enough that continuing would
// silently corrupt results (a point too close to the scanner, or a plane
// intersection that lands beyond the point that produced it).
type GeometryInvariantError struct {
	Msg string
}

func (e *GeometryInvariantError) Error() string {
	return "max-range: geometry invariant violated: " + e.Msg
}

// Estimate computes R_j for every point in a single scan's scanner-local
// coordinates (the scanner is assumed to sit at the origin of this frame).
// voxelSize is the carving voxel's edge length; fuzz is the surface
// thickness tolerance added to the stop-plane offset.
func Estimate(
	method Method,
	normalMethod NormalMethod,
	points []r3.Vector,
	voxelSize, fuzz float64,
	logger golog.Logger,
) ([]float64, error) {
	ranges := make([]float64, len(points))
	for i := range ranges {
		ranges[i] = math.Inf(1)
	}

	if method == MethodNone {
		return ranges, nil
	}

	if normalMethod != NormalAngle {
		return nil, &UnsupportedModeError{Mode: normalMethod.String()}
	}
	if len(points) == 0 {
		return ranges, nil
	}

	diagonal := voxel.Diagonal(voxelSize)

	distances := make([]float64, len(points))
	order := make([]int, len(points))
	for i, p := range points {
		distances[i] = p.Norm()
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	logger.Debug("building spherical angular index")
	qtree := quadtree.New(logger, points)

	for _, j := range order {
		if !math.IsInf(ranges[j], 1) {
			continue
		}
		dj := distances[j]
		if dj < diagonal {
			return nil, &GeometryInvariantError{Msg: "point closer to the scanner than the voxel diagonal would shadow every other point"}
		}

		pHat := points[j].Mul(1 / dj)
		alpha := 2 * math.Asin(diagonal/(dj-diagonal))

		neighborIdx := qtree.Search(pHat, alpha)
		neighbors := make([]r3.Vector, len(neighborIdx))
		for k, idx := range neighborIdx {
			neighbors[k] = points[idx]
		}

		normal := estimateNormal(neighbors)
		if normal.Dot(pHat) >= 0 {
			normal = normal.Mul(-1)
		}

		base := points[j].Add(normal.Mul(diagonal + fuzz))
		dividend := base.Dot(normal)
		divisor := pHat.Dot(normal)

		if divisor == 0 {
			ranges[j] = 0
		} else {
			r := dividend / divisor
			if r > dj {
				return nil, &GeometryInvariantError{Msg: "stop-plane intersection lies beyond the point that produced it"}
			}
			if r < 0 {
				r = 0
			}
			ranges[j] = r
		}

		for _, k := range neighborIdx {
			qHat := points[k].Mul(1 / distances[k])
			divisor := qHat.Dot(normal)
			if divisor == 0 {
				continue
			}
			d := dividend / divisor
			if d > distances[k] {
				continue
			}
			if d < 0 {
				d = 0
			}
			if d < ranges[k] {
				ranges[k] = d
			}
		}
	}

	return ranges, nil
}

// estimateNormal returns the smallest-eigenvalue eigenvector of the
// covariance of neighbors, a unit-length estimate of the local surface's
// normal direction (sign unresolved; the caller orients it toward the
// scanner).
func estimateNormal(neighbors []r3.Vector) r3.Vector {
	if len(neighbors) == 0 {
		return r3.Vector{Z: 1}
	}

	centroid := r3.Vector{}
	for _, p := range neighbors {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1 / float64(len(neighbors)))

	var cxx, cxy, cxz, cyy, cyz, czz float64
	for _, p := range neighbors {
		d := p.Sub(centroid)
		cxx += d.X * d.X
		cxy += d.X * d.Y
		cxz += d.X * d.Z
		cyy += d.Y * d.Y
		cyz += d.Y * d.Z
		czz += d.Z * d.Z
	}

	cov := mat.NewSymDense(3, []float64{
		cxx, cxy, cxz,
		cxy, cyy, cyz,
		cxz, cyz, czz,
	})

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return r3.Vector{Z: 1}
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	minIdx := 0
	for i := 1; i < len(values); i++ {
		if values[i] < values[minIdx] {
			minIdx = i
		}
	}

	n := r3.Vector{X: vectors.At(0, minIdx), Y: vectors.At(1, minIdx), Z: vectors.At(2, minIdx)}
	if n.Norm() == 0 {
		return r3.Vector{Z: 1}
	}
	return n.Normalize()
}
