package config

import (
	"testing"

	"go.viam.com/test"

	"github.com/dynacarve/peopleremover/maxrange"
)

func validArgs() Arguments {
	return Arguments{
		Dir:                "/scans",
		Start:              0,
		End:                -1,
		VoxelSize:          0.1,
		Diff:               2,
		Fuzz:               0.01,
		MaxRangeMethod:     "normals",
		NormalMethod:       "angle",
		NoSubvoxelAccuracy: true,
		Jobs:               4,
	}
}

func TestNewAcceptsValidArguments(t *testing.T) {
	cfg, err := New(validArgs())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.MaxRangeMethod, test.ShouldEqual, maxrange.MethodNormals)
	test.That(t, cfg.NormalMethod, test.ShouldEqual, maxrange.NormalAngle)
	test.That(t, cfg.MaskDir, test.ShouldEqual, "/scans/pplremover")
}

func TestNewRejectsNonPositiveVoxelSize(t *testing.T) {
	args := validArgs()
	args.VoxelSize = 0
	_, err := New(args)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewRejectsNegativeDiff(t *testing.T) {
	args := validArgs()
	args.Diff = -1
	_, err := New(args)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewRejectsEndBeforeStart(t *testing.T) {
	args := validArgs()
	args.Start = 5
	args.End = 2
	_, err := New(args)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewAllowsEndOfNegativeOneRegardlessOfStart(t *testing.T) {
	args := validArgs()
	args.Start = 5
	args.End = -1
	_, err := New(args)
	test.That(t, err, test.ShouldBeNil)
}

func TestNewRejectsUnknownMaxRangeMethod(t *testing.T) {
	args := validArgs()
	args.MaxRangeMethod = "bogus"
	_, err := New(args)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewRejectsUnknownNormalMethod(t *testing.T) {
	args := validArgs()
	args.NormalMethod = "bogus"
	_, err := New(args)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewRejectsSubvoxelAccuracyRefinement(t *testing.T) {
	args := validArgs()
	args.NoSubvoxelAccuracy = false
	_, err := New(args)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewRejectsZeroJobs(t *testing.T) {
	args := validArgs()
	args.Jobs = 0
	_, err := New(args)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewRespectsExplicitMaskDir(t *testing.T) {
	args := validArgs()
	args.MaskDir = "/custom/masks"
	cfg, err := New(args)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.MaskDir, test.ShouldEqual, "/custom/masks")
}
