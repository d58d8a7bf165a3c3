package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"

	rapio "github.com/recolude/rap/format/io"
	"github.com/urfave/cli/v2"

	"github.com/recolude/bundler-recordings/bundler"
	"github.com/recolude/bundler-recordings/config"
	"github.com/recolude/bundler-recordings/internal/monitoring"
	"github.com/recolude/bundler-recordings/recording"
)

var bundleFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "bundle",
		Usage:    "path to bundler output file (bundle.out)",
		Required: true,
	},
	&cli.IntFlag{
		Name:  "width",
		Usage: "image width in pixels, used to move observations to the top-left origin",
	},
	&cli.IntFlag{
		Name:  "height",
		Usage: "image height in pixels",
	},
	&cli.StringFlag{
		Name:  "calibration",
		Usage: "calibration yaml to take the image size from",
	},
	&cli.BoolFlag{
		Name:  "no-list",
		Usage: "do not require list.txt next to the bundle file",
	},
}

func decodeOptions(c *cli.Context) (bundler.Options, error) {
	opts := bundler.Options{
		ImageSize:      bundler.ImageSize{Width: c.Int("width"), Height: c.Int("height")},
		SkipImageNames: c.Bool("no-list"),
		SkipPoints:     c.Bool("no-points"),
	}
	if path := c.String("calibration"); path != "" && !c.IsSet("width") && !c.IsSet("height") {
		calibration, err := config.Load(path)
		if err != nil {
			return opts, err
		}
		opts.ImageSize = calibration.ImageSize()
	}
	return opts, nil
}

func load(c *cli.Context) (*bundler.Reconstruction, bundler.Options, error) {
	opts, err := decodeOptions(c)
	if err != nil {
		return nil, opts, err
	}
	rec, err := bundler.Load(c.String("bundle"), opts)
	if err != nil {
		return nil, opts, err
	}
	monitoring.Logf("decoded %d cameras, %d points, %d observations",
		rec.Header.NumImages, rec.Header.NumPoints, rec.Scene.NumObservations())
	return rec, opts, nil
}

func decodeAction(c *cli.Context) error {
	rec, _, err := load(c)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func rapAction(c *cli.Context) error {
	rec, opts, err := load(c)
	if err != nil {
		return err
	}

	var extra []rapio.Binary
	if meshPath := c.String("mesh"); meshPath != "" {
		mesh, err := recording.MeshBinary(meshPath, c.Float64("mesh-scale"))
		if err != nil {
			return err
		}
		extra = append(extra, mesh)
	}

	rapRecording, err := recording.FromBundle(rec, opts.ImageSize, extra...)
	if err != nil {
		return err
	}

	f, err := os.Create(c.String("out"))
	if err != nil {
		return err
	}
	defer f.Close()

	return recording.Write(f, rapRecording)
}

func paramsAction(c *cli.Context) error {
	calibration, err := config.Load(c.String("calibration"))
	if err != nil {
		return err
	}
	in, err := calibration.CameraIntrinsics()
	if err != nil {
		return err
	}

	f, err := os.Create(c.String("out"))
	if err != nil {
		return err
	}
	defer f.Close()

	return bundler.WriteCameraParams(f, in, calibration.Distortion, calibration.ImageSize())
}

func runAction(c *cli.Context) error {
	calibration, err := config.Load(c.String("calibration"))
	if err != nil {
		return err
	}
	job, err := calibration.Job(c.String("images"), c.String("out"))
	if err != nil {
		return err
	}

	policy := bundler.FailIfNotEmpty
	if c.Bool("overwrite") {
		policy = bundler.ClearContents
	}
	runner := &bundler.Runner{
		Script: c.String("script"),
		Policy: policy,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	bundlePath, err := runner.Run(ctx, job)
	if err != nil {
		return err
	}

	rec, err := bundler.Load(bundlePath, bundler.Options{ImageSize: job.ImageSize})
	if err != nil {
		return err
	}
	registered := 0
	for _, pose := range rec.Poses {
		if pose.Registered() {
			registered++
		}
	}
	fmt.Printf("%s: %d of %d cameras registered, %d points\n",
		bundlePath, registered, rec.Header.NumImages, rec.Header.NumPoints)
	return nil
}

func main() {
	app := &cli.App{
		Name:  "Bundler Recordings",
		Usage: "Decodes Bundler structure from motion output and converts it to RAP",
		Commands: []*cli.Command{
			{
				Name:  "decode",
				Usage: "decode bundle.out to json",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "path to json file, stdout when empty",
					},
					&cli.BoolFlag{
						Name:  "no-points",
						Usage: "decode only the header and camera poses",
					},
				}, bundleFlags...),
				Action: decodeAction,
			},
			{
				Name:  "rap",
				Usage: "convert bundle.out to a rap recording",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "out",
						Usage:    "path to rap file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "mesh",
						Usage: "optional ply file to embed alongside the sparse points",
					},
					&cli.Float64Flag{
						Name:  "mesh-scale",
						Usage: "uniform scale applied to the embedded mesh",
						Value: 1,
					},
				}, bundleFlags...),
				Action: rapAction,
			},
			{
				Name:  "params",
				Usage: "write bundler's cam_params.txt from a calibration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "calibration",
						Usage:    "path to calibration yaml",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "path to cam_params.txt",
						Value: bundler.CameraParamsName,
					},
				},
				Action: paramsAction,
			},
			{
				Name:  "run",
				Usage: "run RunBundler.sh on a directory of images",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "calibration",
						Usage:    "path to calibration yaml",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "images",
						Usage:    "directory of jpg images",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "out",
						Usage:    "output directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "script",
						Usage: "path to RunBundler.sh",
						Value: "RunBundler.sh",
					},
					&cli.BoolFlag{
						Name:  "overwrite",
						Usage: "clear a non-empty output directory instead of failing",
					},
				},
				Action: runAction,
			},
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
