// Package scanio loads registered laser scans from disk: one LAS file of
// scanner-local points plus one pose line per scan, producing the
// world-frame points the carving engine walks rays between.
package scanio

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/edaniels/golog"
	"github.com/edaniels/lidario"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/dynacarve/peopleremover/spatialmath"
	"github.com/dynacarve/peopleremover/voxel"
)

// IngestError reports a fatal problem discovered while loading scans: no
// scans found in range, or mismatched per-point arrays.
type IngestError struct {
	Msg string
}

func (e *IngestError) Error() string {
	return "scanio: " + e.Msg
}

// ScanSlice is one laser scan: its index, scanner position, and parallel
// world-frame / scanner-local point arrays. World[j] is always the pose
// transform of Local[j].
type ScanSlice struct {
	Index   int
	Scanner r3.Vector
	Pose    spatialmath.Pose
	World   []r3.Vector
	Local   []r3.Vector
	Reflect []float64
}

// LoadDirectory reads scan<NNN>.las / scan<NNN>.pose pairs from dir for
// every index in [start, end] (end == -1 means "to the last scan found"),
// range-filters points closer than v*sqrt(3) to the scanner before any
// transform, and composes each scan's pose to produce world-frame points.
func LoadDirectory(dir string, start, end int, voxelSize float64, logger golog.Logger) ([]ScanSlice, error) {
	indices, err := discoverIndices(dir)
	if err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return nil, &IngestError{Msg: "no scans found in " + dir}
	}

	minRange := voxel.Diagonal(voxelSize)

	var slices []ScanSlice
	for _, i := range indices {
		if i < start {
			continue
		}
		if end != -1 && i > end {
			continue
		}

		pose, err := loadPose(filepath.Join(dir, fmt.Sprintf("scan%03d.pose", i)))
		if err != nil {
			return nil, err
		}

		local, reflect, err := loadLAS(filepath.Join(dir, fmt.Sprintf("scan%03d.las", i)), logger)
		if err != nil {
			return nil, err
		}

		slice, err := composeScan(i, pose, local, reflect, minRange)
		if err != nil {
			return nil, err
		}
		slices = append(slices, slice)
	}

	if len(slices) == 0 {
		return nil, &IngestError{Msg: "no scans found in requested range"}
	}
	return slices, nil
}

// composeScan applies the minimum-range filter and the pose transform, in
// that order, to build one scan's world/local point arrays.
func composeScan(index int, pose spatialmath.Pose, local []r3.Vector, reflect []float64, minRange float64) (ScanSlice, error) {
	if reflect != nil && len(reflect) != len(local) {
		return ScanSlice{}, &IngestError{Msg: fmt.Sprintf("scan %03d: %d points but %d reflectance values", index, len(local), len(reflect))}
	}

	filteredLocal := make([]r3.Vector, 0, len(local))
	var filteredReflect []float64
	if reflect != nil {
		filteredReflect = make([]float64, 0, len(reflect))
	}
	for j, p := range local {
		if p.Norm() < minRange {
			continue
		}
		filteredLocal = append(filteredLocal, p)
		if reflect != nil {
			filteredReflect = append(filteredReflect, reflect[j])
		}
	}

	world := make([]r3.Vector, len(filteredLocal))
	for j, p := range filteredLocal {
		world[j] = pose.Transform(p)
	}

	return ScanSlice{
		Index:   index,
		Scanner: pose.Point(),
		Pose:    pose,
		World:   world,
		Local:   filteredLocal,
		Reflect: filteredReflect,
	}, nil
}

func discoverIndices(dir string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading scan directory %q", dir)
	}
	var indices []int
	for _, e := range entries {
		var i int
		if _, err := fmt.Sscanf(e.Name(), "scan%03d.las", &i); err == nil {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)
	return indices, nil
}

func loadLAS(path string, logger golog.Logger) ([]r3.Vector, []float64, error) {
	lf, err := lidario.NewLasFile(path, "r")
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening %q", path)
	}
	defer func() {
		if cerr := lf.Close(); cerr != nil {
			logger.Warnw("closing LAS file", "path", path, "error", cerr)
		}
	}()

	points := make([]r3.Vector, lf.Header.NumberPoints)
	for i := 0; i < lf.Header.NumberPoints; i++ {
		p, err := lf.LasPoint(i)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "reading point %d from %q", i, path)
		}
		data := p.PointData()
		points[i] = r3.Vector{X: data.X, Y: data.Y, Z: data.Z}
	}
	// The optional reflectance parallel array is part of the core's declared
	// interface but is not exercised by carving itself; this ingest layer
	// reads only X/Y/Z from each LAS point and leaves it nil.
	return points, nil, nil
}

// loadPose reads a single "x y z qw qx qy qz" line describing a scan's
// rigid transform from scanner-local to world coordinates.
func loadPose(path string) (spatialmath.Pose, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening pose file %q", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, &IngestError{Msg: "empty pose file: " + path}
	}
	var x, y, z, qw, qx, qy, qz float64
	if _, err := fmt.Sscan(scanner.Text(), &x, &y, &z, &qw, &qx, &qy, &qz); err != nil {
		return nil, errors.Wrapf(err, "parsing pose file %q", path)
	}

	return spatialmath.NewPose(
		r3.Vector{X: x, Y: y, Z: z},
		spatialmath.NewOrientationFromQuat(qw, qx, qy, qz),
	), nil
}
