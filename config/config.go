// Package config validates the command-line configuration for a carving
// run before any scan I/O or geometry work begins.
package config

import (
	"flag"
	"strconv"

	"github.com/dynacarve/peopleremover/maxrange"
)

// floatFlag lets a float64-valued option flow through utils.ParseFlags,
// which only switches on Bool/String/Int struct-tag kinds natively. Any
// type implementing flag.Value is instead dispatched through flagSet.Var,
// so this is the mechanism the teacher's own flag.Value config types
// (config.Component, config.Service) rely on for everything outside that
// fixed set of kinds.
type floatFlag float64

// Ensure floatFlag conforms to flag.Value.
var _ flag.Value = (*floatFlag)(nil)

func (f *floatFlag) String() string {
	return strconv.FormatFloat(float64(*f), 'g', -1, 64)
}

func (f *floatFlag) Set(val string) error {
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return err
	}
	*f = floatFlag(v)
	return nil
}

// ConfigError reports a configuration problem caught at parse/validate
// time: an unknown enum string, a negative or inconsistent range, or a
// value outside its documented domain.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Msg
}

// Config is the validated, typed form of the command line's Arguments: the
// full set of options the spec's external interface recognizes.
type Config struct {
	Dir     string
	MaskDir string

	Start int
	End   int // -1 means "to the last scan found"

	VoxelSize float64
	Diff      int
	Fuzz      float64

	MaxRangeMethod     maxrange.Method
	NormalMethod       maxrange.NormalMethod
	NormalKNearest     int
	NoSubvoxelAccuracy bool

	Jobs int
}

func parseMaxRangeMethod(s string) (maxrange.Method, error) {
	switch s {
	case "none":
		return maxrange.MethodNone, nil
	case "normals":
		return maxrange.MethodNormals, nil
	case "1nearest":
		return 0, &ConfigError{Msg: "maxrange-method \"1nearest\" is declared but not implemented by this core"}
	default:
		return 0, &ConfigError{Msg: "unknown maxrange-method: " + s}
	}
}

func parseNormalMethod(s string) (maxrange.NormalMethod, error) {
	switch s {
	case "angle":
		return maxrange.NormalAngle, nil
	case "knearest":
		return maxrange.NormalKNearest, nil
	case "range":
		return maxrange.NormalRange, nil
	case "knearest-global":
		return maxrange.NormalKNearestGlobal, nil
	case "range-global":
		return maxrange.NormalRangeGlobal, nil
	default:
		return 0, &ConfigError{Msg: "unknown normal-method: " + s}
	}
}

// Arguments is the struct ParseFlags populates directly from the command
// line; New validates it into a Config.
type Arguments struct {
	Dir                string    `flag:"0,required,usage=directory of scan###.las/scan###.pose files"`
	Start              int       `flag:"start,default=0,usage=inclusive start scan index"`
	End                int       `flag:"end,default=-1,usage=inclusive end scan index (-1 means to the last scan found)"`
	VoxelSize          floatFlag `flag:"voxel-size,usage=edge length of the cubic carving voxel, must be > 0"`
	Diff               int       `flag:"diff,default=0,usage=sliding-window half-width in scan indices"`
	Fuzz               floatFlag `flag:"fuzz,usage=surface-thickness tolerance added to the stop-plane offset"`
	MaxRangeMethod     string    `flag:"maxrange-method,default=none,usage=none|normals|1nearest"`
	NormalMethod       string    `flag:"normal-method,default=angle,usage=knearest|range|angle|knearest-global|range-global"`
	NormalKNearest     int       `flag:"normal-knearest,default=40,usage=neighbour count for knearest normal-method variants"`
	NoSubvoxelAccuracy bool      `flag:"no-subvoxel-accuracy,default=true,usage=must be true; sub-voxel accuracy refinement is not implemented"`
	Jobs               int       `flag:"jobs,default=1,usage=parallel worker count"`
	MaskDir            string    `flag:"maskdir,default=,usage=output directory for per-scan masks (default: <dir>/pplremover)"`
}

// New validates a parsed Arguments struct into a Config, or returns the
// first ConfigError it finds.
func New(args Arguments) (Config, error) {
	if args.VoxelSize <= 0 {
		return Config{}, &ConfigError{Msg: "voxel-size must be > 0"}
	}
	if args.Diff < 0 {
		return Config{}, &ConfigError{Msg: "diff must be >= 0"}
	}
	if args.Fuzz < 0 {
		return Config{}, &ConfigError{Msg: "fuzz must be >= 0"}
	}
	if args.Start < 0 {
		return Config{}, &ConfigError{Msg: "start must be >= 0"}
	}
	if args.End != -1 && args.End < args.Start {
		return Config{}, &ConfigError{Msg: "end must be -1 or >= start"}
	}
	if args.Jobs <= 0 {
		return Config{}, &ConfigError{Msg: "jobs must be >= 1"}
	}
	if !args.NoSubvoxelAccuracy {
		return Config{}, &ConfigError{Msg: "no-subvoxel-accuracy=false is not implemented by this core"}
	}

	maxRangeMethod, err := parseMaxRangeMethod(args.MaxRangeMethod)
	if err != nil {
		return Config{}, err
	}
	normalMethod, err := parseNormalMethod(args.NormalMethod)
	if err != nil {
		return Config{}, err
	}

	maskDir := args.MaskDir
	if maskDir == "" {
		maskDir = args.Dir + "/pplremover"
	}

	return Config{
		Dir:                args.Dir,
		MaskDir:            maskDir,
		Start:              args.Start,
		End:                args.End,
		VoxelSize:          float64(args.VoxelSize),
		Diff:               args.Diff,
		Fuzz:               float64(args.Fuzz),
		MaxRangeMethod:     maxRangeMethod,
		NormalMethod:       normalMethod,
		NormalKNearest:     args.NormalKNearest,
		NoSubvoxelAccuracy: args.NoSubvoxelAccuracy,
		Jobs:               args.Jobs,
	}, nil
}
