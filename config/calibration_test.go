package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recolude/bundler-recordings/bundler"
)

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := Parse([]byte("intrinsics: [525, 525, 319.5, 239.5]\n"))
		require.NoError(t, err)
		assert.Equal(t, bundler.ImageSize{Width: DefaultWidth, Height: DefaultHeight}, c.ImageSize())

		dist, err := c.PaddedDistortion()
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0, 0, 0, 0}, dist)
	})

	t.Run("camera matrix", func(t *testing.T) {
		c, err := Parse([]byte(`
width: 1280
height: 720
intrinsics: [1000, 0, 640, 0, 1001, 360, 0, 0, 1]
distortion: [0.1, -0.05]
`))
		require.NoError(t, err)
		in, err := c.CameraIntrinsics()
		require.NoError(t, err)
		assert.Equal(t, bundler.Intrinsics{Fx: 1000, Fy: 1001, Cx: 640, Cy: 360}, in)

		job, err := c.Job("images", "out")
		require.NoError(t, err)
		assert.Equal(t, bundler.Job{
			ImageDir:   "images",
			OutputDir:  "out",
			Intrinsics: in,
			Distortion: []float64{0.1, -0.05, 0, 0, 0},
			ImageSize:  bundler.ImageSize{Width: 1280, Height: 720},
		}, job)
	})

	for name, doc := range map[string]string{
		"missing intrinsics": "width: 640\nheight: 480\n",
		"bad intrinsics":     "intrinsics: [1, 2, 3]\n",
		"long distortion":    "intrinsics: [1, 1, 0, 0]\ndistortion: [1, 2, 3, 4, 5, 6]\n",
		"negative size":      "width: -1\nheight: 480\nintrinsics: [1, 1, 0, 0]\n",
		"not yaml":           "intrinsics: [1, 2\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.yaml")
	require.NoError(t, os.WriteFile(path, []byte("intrinsics: [500, 500, 320, 240]\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{500, 500, 320, 240}, c.Intrinsics)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
