package recording

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/EliCDavis/polyform/formats/ply"
	"github.com/EliCDavis/polyform/modeling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/recolude/bundler-recordings/bundler"
)

const sampleBundle = `# Bundle file v0.3
3 2
500 0 0
1 0 0
0 1 0
0 0 1
0 0 -2
0 0 0
0 0 0
0 0 0
0 0 0
0 0 0
510 0 0
0 0 1
0 1 0
-1 0 0
1 2 3
0.5 1.5 -2.5
255 0 51
2 0 4 10 5 2 9 -1 1
-1 -2 -3
0 0 0
1 2 8 0 0
`

func decodeSample(t *testing.T, images []string) *bundler.Reconstruction {
	t.Helper()
	result, err := bundler.Decode(strings.NewReader(sampleBundle), bundler.Options{ImageSize: bundler.ImageSize{Width: 640, Height: 480}})
	require.NoError(t, err)
	return &bundler.Reconstruction{BundleResult: result, Images: images}
}

func rotX(deg float64) *mat.Dense {
	c, s := math.Cos(deg*math.Pi/180), math.Sin(deg*math.Pi/180)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, -s, 0, s, c})
}

func rotY(deg float64) *mat.Dense {
	c, s := math.Cos(deg*math.Pi/180), math.Sin(deg*math.Pi/180)
	return mat.NewDense(3, 3, []float64{c, 0, s, 0, 1, 0, -s, 0, c})
}

func rotZ(deg float64) *mat.Dense {
	c, s := math.Cos(deg*math.Pi/180), math.Sin(deg*math.Pi/180)
	return mat.NewDense(3, 3, []float64{c, -s, 0, s, c, 0, 0, 0, 1})
}

func TestEulerZXY(t *testing.T) {
	for _, tc := range []struct{ x, y, z float64 }{
		{0, 0, 0},
		{20, 30, 10},
		{-45, 120, -170},
		{89, -10, 5},
	} {
		var yx, r mat.Dense
		yx.Mul(rotY(tc.y), rotX(tc.x))
		r.Mul(&yx, rotZ(tc.z))

		x, y, z := eulerZXY(&r)
		assert.InDelta(t, tc.x, x, 1e-9)
		assert.InDelta(t, tc.y, y, 1e-9)
		assert.InDelta(t, tc.z, z, 1e-9)
	}
}

func TestEulerZXYGimbalLock(t *testing.T) {
	var r mat.Dense
	r.Mul(rotY(25), rotX(90))

	x, y, z := eulerZXY(&r)
	assert.InDelta(t, 90, x, 1e-6)
	assert.InDelta(t, 25, y, 1e-6)
	assert.Equal(t, 0.0, z)
}

func TestCaptureTimes(t *testing.T) {
	t.Run("frame numbers", func(t *testing.T) {
		rec := decodeSample(t, []string{"img_0010.jpg", "img_0020.jpg", "img_0015.jpg"})
		assert.Equal(t, []float64{10, 20, 15}, captureTimes(rec))
	})

	t.Run("duplicate frame numbers", func(t *testing.T) {
		rec := decodeSample(t, []string{"a1.jpg", "b1.jpg", "c2.jpg"})
		assert.Equal(t, []float64{0, 1, 2}, captureTimes(rec))
	})

	t.Run("names without numbers", func(t *testing.T) {
		rec := decodeSample(t, []string{"left.jpg", "right.jpg", "top.jpg"})
		assert.Equal(t, []float64{0, 1, 2}, captureTimes(rec))
	})

	t.Run("no names", func(t *testing.T) {
		assert.Equal(t, []float64{0, 1, 2}, captureTimes(decodeSample(t, nil)))
	})
}

func TestCameraSamples(t *testing.T) {
	rec := decodeSample(t, []string{"img_1.jpg", "img_2.jpg", "img_3.jpg"})
	samples := cameraSamples(rec)

	require.Len(t, samples, 2, "the all-zero camera is skipped")
	assert.Equal(t, 0, samples[0].index)
	assert.Equal(t, 2, samples[1].index)
	assert.Equal(t, "img_3.jpg", samples[1].name)
	assert.Equal(t, 3.0, samples[1].time)

	// identity rotation, t = (0, 0, -2): camera sits at z = 2 in both spaces
	first := samples[0]
	assert.InDelta(t, 0, first.position.X(), 1e-12)
	assert.InDelta(t, 0, first.position.Y(), 1e-12)
	assert.InDelta(t, 2, first.position.Z(), 1e-12)
	assert.Equal(t, 1, first.observations)
	assert.Equal(t, 2, samples[1].observations)

	// the third camera's centre is -Rᵀt with y flipped
	center := rec.Poses[2].Center()
	assert.InDelta(t, center[0], samples[1].position.X(), 1e-12)
	assert.InDelta(t, -center[1], samples[1].position.Y(), 1e-12)
	assert.InDelta(t, center[2], samples[1].position.Z(), 1e-12)
}

func TestPointCloudPLY(t *testing.T) {
	rec := decodeSample(t, nil)

	data, err := pointCloudPLY(&rec.Scene)
	require.NoError(t, err)

	mesh, err := ply.ReadMesh(bytes.NewReader(data))
	require.NoError(t, err)

	positions := mesh.View().Float3Data[modeling.PositionAttribute]
	require.Len(t, positions, 2)
	assert.InDelta(t, 0.5, positions[0].X(), 1e-5)
	assert.InDelta(t, -1.5, positions[0].Y(), 1e-5)
	assert.InDelta(t, -2.5, positions[0].Z(), 1e-5)
}

func TestFromBundleAndWrite(t *testing.T) {
	rec := decodeSample(t, []string{"img_1.jpg", "img_2.jpg", "img_3.jpg"})

	recording, err := FromBundle(rec, bundler.ImageSize{Width: 640, Height: 480})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, recording))
	assert.NotZero(t, buf.Len())
}
