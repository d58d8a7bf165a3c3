package bundler

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/recolude/bundler-recordings/internal/monitoring"
)

// BundleFileName is the file the batch job leaves in its output directory.
const BundleFileName = "bundle.out"

// ErrOutputNotEmpty is returned by PrepareOutputDir under FailIfNotEmpty.
var ErrOutputNotEmpty = errors.New("output directory is not empty")

// OverwritePolicy decides what PrepareOutputDir does with existing content.
type OverwritePolicy int

const (
	// FailIfNotEmpty refuses to touch a directory that already has entries.
	FailIfNotEmpty OverwritePolicy = iota
	// ClearContents removes every entry of the directory, keeping the
	// directory itself.
	ClearContents
)

// PrepareOutputDir leaves dir existing and empty, or fails.
func PrepareOutputDir(dir string, policy OverwritePolicy) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(os.MkdirAll(dir, 0o755), "bundler: creating %s", dir)
	}
	if err != nil {
		return errors.Wrapf(err, "bundler: reading %s", dir)
	}
	if len(entries) == 0 {
		return nil
	}

	switch policy {
	case ClearContents:
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				return errors.Wrapf(err, "bundler: clearing %s", path)
			}
		}
		return nil
	default:
		return errors.Wrapf(ErrOutputNotEmpty, "bundler: %s has %d entries", dir, len(entries))
	}
}

// Job describes one reconstruction.
type Job struct {
	ImageDir   string
	OutputDir  string
	Intrinsics Intrinsics
	Distortion []float64
	ImageSize  ImageSize
}

// Runner drives the external RunBundler.sh batch job.
type Runner struct {
	// Script is the path of RunBundler.sh.
	Script string
	Policy OverwritePolicy
	Stdout io.Writer
	Stderr io.Writer
}

// Run prepares the output directory, writes cam_params.txt into it, runs the
// script and returns the path of the bundle file it produced. Cancelling ctx
// kills the script.
func (r *Runner) Run(ctx context.Context, job Job) (string, error) {
	imageDir, err := filepath.Abs(job.ImageDir)
	if err != nil {
		return "", errors.Wrapf(err, "bundler: resolving %s", job.ImageDir)
	}
	outputDir, err := filepath.Abs(job.OutputDir)
	if err != nil {
		return "", errors.Wrapf(err, "bundler: resolving %s", job.OutputDir)
	}

	if err := PrepareOutputDir(outputDir, r.Policy); err != nil {
		return "", err
	}
	if err := writeCameraParamsFile(filepath.Join(outputDir, CameraParamsName), job); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, r.Script, imageDir, outputDir)
	cmd.Dir = outputDir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	monitoring.Logf("running %s on %s", r.Script, imageDir)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", errors.Wrapf(ctxErr, "bundler: %s interrupted", r.Script)
		}
		return "", errors.Wrapf(err, "bundler: running %s", r.Script)
	}

	bundlePath := filepath.Join(outputDir, BundleFileName)
	if _, err := os.Stat(bundlePath); err != nil {
		return "", &FileNotFoundError{Path: bundlePath, Err: err}
	}
	monitoring.Logf("bundle written to %s", bundlePath)
	return bundlePath, nil
}

func writeCameraParamsFile(path string, job Job) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "bundler: creating %s", path)
	}
	if err := WriteCameraParams(f, job.Intrinsics, job.Distortion, job.ImageSize); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "bundler: closing %s", path)
}
