// Package config loads the camera calibration a reconstruction is run with.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/recolude/bundler-recordings/bundler"
)

const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// Calibration describes the single camera every image was taken with.
type Calibration struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Intrinsics is either [fx fy cx cy] or a row-major 3x3 camera matrix.
	Intrinsics []float64 `yaml:"intrinsics"`
	// Distortion holds up to five Bouguet coefficients, k1 k2 p1 p2 k3.
	Distortion []float64 `yaml:"distortion"`
}

// Load reads a calibration file, fills defaults and validates it.
func Load(path string) (*Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: reading %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML calibration data.
func Parse(data []byte) (*Calibration, error) {
	var c Calibration
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "config: decoding calibration")
	}
	if c.Width == 0 && c.Height == 0 {
		c.Width, c.Height = DefaultWidth, DefaultHeight
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Calibration) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("config: image size must be positive, got %dx%d", c.Width, c.Height)
	}
	if _, err := c.CameraIntrinsics(); err != nil {
		return errors.Wrap(err, "config: intrinsics")
	}
	if _, err := c.PaddedDistortion(); err != nil {
		return errors.Wrap(err, "config: distortion")
	}
	return nil
}

func (c *Calibration) ImageSize() bundler.ImageSize {
	return bundler.ImageSize{Width: c.Width, Height: c.Height}
}

func (c *Calibration) CameraIntrinsics() (bundler.Intrinsics, error) {
	return bundler.IntrinsicsFromParams(c.Intrinsics)
}

func (c *Calibration) PaddedDistortion() ([]float64, error) {
	return bundler.PadDistortion(c.Distortion)
}

// Job builds a reconstruction job for the images in imageDir.
func (c *Calibration) Job(imageDir, outputDir string) (bundler.Job, error) {
	in, err := c.CameraIntrinsics()
	if err != nil {
		return bundler.Job{}, err
	}
	dist, err := c.PaddedDistortion()
	if err != nil {
		return bundler.Job{}, err
	}
	return bundler.Job{
		ImageDir:   imageDir,
		OutputDir:  outputDir,
		Intrinsics: in,
		Distortion: dist,
		ImageSize:  c.ImageSize(),
	}, nil
}
