package recording

import (
	"math"

	"github.com/EliCDavis/vector/vector3"
	"gonum.org/v1/gonum/mat"
)

// Recordings are played back in a left-handed, Y-up world. Bundler's world
// is right-handed, so every position and orientation is reflected through
// the XZ plane on the way in.
var flipY = mat.NewDiagDense(3, []float64{1, -1, 1})

func toRecordingSpace(p [3]float64) vector3.Float64 {
	return vector3.New(p[0], -p[1], p[2])
}

// orientation returns the camera-to-world rotation of a world-to-camera
// matrix, expressed in recording space.
func orientation(worldToCamera mat.Matrix) *mat.Dense {
	var flipped, r mat.Dense
	flipped.Mul(flipY, worldToCamera.T())
	r.Mul(&flipped, flipY)
	return &r
}

// eulerZXY returns the angles in degrees of r = Ry(y)·Rx(x)·Rz(z), the order
// rotations are applied in by the recording format.
func eulerZXY(r mat.Matrix) (x, y, z float64) {
	sx := math.Max(-1, math.Min(1, -r.At(1, 2)))
	x = math.Asin(sx)
	if math.Abs(sx) < 1-1e-9 {
		y = math.Atan2(r.At(0, 2), r.At(2, 2))
		z = math.Atan2(r.At(1, 0), r.At(1, 1))
	} else {
		// gimbal lock, only y+z (or y-z) is defined
		y = math.Atan2(-r.At(2, 0), r.At(0, 0))
		z = 0
	}
	return degrees(x), degrees(y), degrees(z)
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
