// Command dynacarve removes dynamic-object returns from a sequence of
// registered laser scans by carving out voxels that line-of-sight rays
// from other scan positions saw through.
package main

import (
	"context"
	"os"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/dynacarve/peopleremover/carve"
	"github.com/dynacarve/peopleremover/config"
	"github.com/dynacarve/peopleremover/output"
	"github.com/dynacarve/peopleremover/scanio"
)

var logger = golog.NewDevelopmentLogger("dynacarve")

func main() {
	if err := mainWithArgs(context.Background(), os.Args, logger); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func mainWithArgs(ctx context.Context, rawArgs []string, logger golog.Logger) error {
	var args config.Arguments
	if err := utils.ParseFlags(rawArgs, &args); err != nil {
		return err
	}

	cfg, err := config.New(args)
	if err != nil {
		return err
	}

	return run(ctx, cfg, logger)
}

func run(ctx context.Context, cfg config.Config, logger golog.Logger) error {
	logger.Infow("loading scans", "dir", cfg.Dir)
	scans, err := scanio.LoadDirectory(cfg.Dir, cfg.Start, cfg.End, cfg.VoxelSize, logger)
	if err != nil {
		return err
	}
	logger.Infow("loaded scans", "count", len(scans))

	carveScans := make([]carve.Scan, len(scans))
	for i, s := range scans {
		carveScans[i] = carve.Scan{
			Index:   s.Index,
			Scanner: s.Scanner,
			World:   s.World,
			Local:   s.Local,
		}
	}

	logger.Info("building occupancy index")
	index := carve.BuildOccupancyIndex(carveScans, cfg.VoxelSize)

	logger.Info("estimating max ranges")
	ranges, err := carve.EstimateMaxRanges(
		carveScans, cfg.MaxRangeMethod, cfg.NormalMethod, cfg.VoxelSize, cfg.Fuzz, cfg.Jobs, logger,
	)
	if err != nil {
		return err
	}

	logger.Info("walking voxels")
	free := carve.Carve(carveScans, index, ranges, cfg.VoxelSize, cfg.Diff, cfg.Jobs)
	logger.Infow("finished carving", "freedVoxels", len(free))

	dynamic := carve.Classify(carveScans, free, cfg.VoxelSize)

	results := make([]output.ScanResult, len(scans))
	for i, s := range scans {
		results[i] = output.ScanResult{
			Index:   s.Index,
			Points:  s.World,
			Dynamic: dynamic[i],
		}
	}

	logger.Infow("writing point clouds", "dir", cfg.Dir)
	pcErr := output.WritePointClouds(cfg.Dir, results)

	logger.Infow("writing masks", "dir", cfg.MaskDir)
	maskErr := output.WriteMasks(cfg.MaskDir, results)

	return multierr.Combine(pcErr, maskErr)
}
