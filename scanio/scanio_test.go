package scanio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/dynacarve/peopleremover/spatialmath"
)

func TestComposeScanFiltersCloseRangeBeforeTransform(t *testing.T) {
	pose := spatialmath.NewPoseFromPoint(r3.Vector{X: 100, Y: 0, Z: 0})
	local := []r3.Vector{
		{X: 0.01, Y: 0, Z: 0}, // inside the min-range sphere, must be dropped
		{X: 5, Y: 0, Z: 0},
	}
	slice, err := composeScan(3, pose, local, nil, 1.0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(slice.Local), test.ShouldEqual, 1)
	test.That(t, slice.Local[0], test.ShouldResemble, r3.Vector{X: 5, Y: 0, Z: 0})
	test.That(t, slice.World[0], test.ShouldResemble, r3.Vector{X: 105, Y: 0, Z: 0})
	test.That(t, slice.Scanner, test.ShouldResemble, r3.Vector{X: 100, Y: 0, Z: 0})
	test.That(t, slice.Index, test.ShouldEqual, 3)
}

func TestComposeScanRejectsMismatchedReflectanceLength(t *testing.T) {
	pose := spatialmath.NewZeroPose()
	local := []r3.Vector{{X: 5, Y: 0, Z: 0}, {X: 6, Y: 0, Z: 0}}
	_, err := composeScan(0, pose, local, []float64{1}, 0.1)
	test.That(t, err, test.ShouldNotBeNil)
	var target *IngestError
	test.That(t, asIngestError(err, &target), test.ShouldBeTrue)
}

func asIngestError(err error, target **IngestError) bool {
	v, ok := err.(*IngestError)
	if ok {
		*target = v
	}
	return ok
}

func TestDiscoverIndicesSortsAndIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"scan002.las", "scan000.las", "scan001.las", "notascan.txt"} {
		test.That(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644), test.ShouldBeNil)
	}
	indices, err := discoverIndices(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, indices, test.ShouldResemble, []int{0, 1, 2})
}

func TestLoadPoseParsesPositionAndOrientation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan000.pose")
	test.That(t, os.WriteFile(path, []byte("1 2 3 1 0 0 0\n"), 0o644), test.ShouldBeNil)

	pose, err := loadPose(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point(), test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
}

func TestLoadDirectoryReportsEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadDirectory(dir, 0, -1, 1.0, nil)
	test.That(t, err, test.ShouldNotBeNil)
}
