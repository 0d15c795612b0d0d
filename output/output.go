// Package output writes the carving engine's classification results: two
// consolidated point clouds (static/dynamic) and one binary mask file per
// scan.
package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/geo/r3"
)

// OutputError reports a failure creating the mask directory or writing a
// result file.
type OutputError struct {
	Msg string
	Err error
}

func (e *OutputError) Error() string {
	return "output: " + e.Msg + ": " + e.Err.Error()
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// ScanResult is one scan's classified points: Dynamic[j] is true iff
// Points[j] was classified dynamic.
type ScanResult struct {
	Index   int
	Points  []r3.Vector
	Dynamic []bool
}

// WritePointClouds writes scan000.3d (static points) and scan001.3d
// (dynamic points) into dir, one "x y z r" line per point, in scan order.
// Floats are printed with Go's %x verb: lossless hexadecimal floating
// point, the language's native equivalent of the C99 %a conversion the
// source this is grounded on relies on for the same reason.
func WritePointClouds(dir string, results []ScanResult) error {
	staticFile, err := os.Create(filepath.Join(dir, "scan000.3d"))
	if err != nil {
		return &OutputError{Msg: "creating scan000.3d", Err: err}
	}
	defer staticFile.Close()
	dynamicFile, err := os.Create(filepath.Join(dir, "scan001.3d"))
	if err != nil {
		return &OutputError{Msg: "creating scan001.3d", Err: err}
	}
	defer dynamicFile.Close()

	staticW := bufio.NewWriter(staticFile)
	dynamicW := bufio.NewWriter(dynamicFile)

	for _, r := range results {
		for j, p := range r.Points {
			w := staticW
			if r.Dynamic[j] {
				w = dynamicW
			}
			if _, err := fmt.Fprintf(w, "%x %x %x %x\n", p.X, p.Y, p.Z, 0.0); err != nil {
				return &OutputError{Msg: "writing point cloud", Err: err}
			}
		}
	}

	if err := staticW.Flush(); err != nil {
		return &OutputError{Msg: "flushing scan000.3d", Err: err}
	}
	if err := dynamicW.Flush(); err != nil {
		return &OutputError{Msg: "flushing scan001.3d", Err: err}
	}
	return nil
}

// WriteMasks writes one scan<NNN>.mask file per scan into maskdir, one line
// per input point, "0" for static and "1" for dynamic, in input order.
func WriteMasks(maskdir string, results []ScanResult) error {
	if err := os.MkdirAll(maskdir, 0o755); err != nil {
		return &OutputError{Msg: "creating mask directory " + maskdir, Err: err}
	}

	for _, r := range results {
		path := filepath.Join(maskdir, fmt.Sprintf("scan%03d.mask", r.Index))
		f, err := os.Create(path)
		if err != nil {
			return &OutputError{Msg: "creating " + path, Err: err}
		}

		w := bufio.NewWriter(f)
		for _, dynamic := range r.Dynamic {
			line := "0\n"
			if dynamic {
				line = "1\n"
			}
			if _, err := w.WriteString(line); err != nil {
				f.Close()
				return &OutputError{Msg: "writing " + path, Err: err}
			}
		}
		if err := w.Flush(); err != nil {
			f.Close()
			return &OutputError{Msg: "flushing " + path, Err: err}
		}
		if err := f.Close(); err != nil {
			return &OutputError{Msg: "closing " + path, Err: err}
		}
	}
	return nil
}
