package bundler

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// angles closer than this to 0 are treated as the identity rotation
	identityTolerance = 1e-12
	// angles closer than this to pi use the symmetric-part extraction
	halfTurnTolerance = 1e-3
)

// mirror converts Bundler's camera frame (looking down -Z, Y up) into a
// right-handed frame looking down +Z with Y down.
var mirror = mat.NewDiagDense(3, []float64{1, -1, -1})

// MirrorTransform returns M·R and M·T with M = diag(1, -1, -1). M is its own
// inverse, so applying it twice gives back R and T.
func MirrorTransform(r mat.Matrix, t mat.Vector) (*mat.Dense, *mat.VecDense) {
	var rm mat.Dense
	rm.Mul(mirror, r)
	var tm mat.VecDense
	tm.MulVec(mirror, t)
	return &rm, &tm
}

// AxisAngle converts a 3x3 rotation matrix into a rotation vector whose
// direction is the rotation axis and whose norm is the angle in [0, pi].
func AxisAngle(r mat.Matrix) [3]float64 {
	trace := r.At(0, 0) + r.At(1, 1) + r.At(2, 2)
	cosTheta := math.Max(-1, math.Min(1, (trace-1)/2))
	theta := math.Acos(cosTheta)

	// 2·sinθ·axis
	skew := [3]float64{
		r.At(2, 1) - r.At(1, 2),
		r.At(0, 2) - r.At(2, 0),
		r.At(1, 0) - r.At(0, 1),
	}

	switch {
	case theta < identityTolerance:
		return [3]float64{}
	case math.Pi-theta < halfTurnTolerance:
		return halfTurnAxis(r, cosTheta, skew, theta)
	}

	scale := theta / (2 * math.Sin(theta))
	return [3]float64{skew[0] * scale, skew[1] * scale, skew[2] * scale}
}

// halfTurnAxis recovers the axis when sinθ is too small for the skew part to
// be trusted. The symmetric part of R is cosθ·I + (1-cosθ)·a·aᵀ, so the column
// with the largest diagonal entry of a·aᵀ is the best conditioned multiple of
// a. The skew part still carries the sign.
func halfTurnAxis(r mat.Matrix, cosTheta float64, skew [3]float64, theta float64) [3]float64 {
	var outer [3][3]float64
	k := 1 - cosTheta
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sym := (r.At(i, j) + r.At(j, i)) / 2
			if i == j {
				sym -= cosTheta
			}
			outer[i][j] = sym / k
		}
	}

	dominant := 0
	for i := 1; i < 3; i++ {
		if outer[i][i] > outer[dominant][dominant] {
			dominant = i
		}
	}

	axis := [3]float64{outer[0][dominant], outer[1][dominant], outer[2][dominant]}
	norm := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if norm == 0 {
		return [3]float64{}
	}
	if axis[0]*skew[0]+axis[1]*skew[1]+axis[2]*skew[2] < 0 {
		norm = -norm
	}
	s := theta / norm
	return [3]float64{axis[0] * s, axis[1] * s, axis[2] * s}
}

// Rodrigues builds the rotation matrix of rotation vector v.
func Rodrigues(v [3]float64) *mat.Dense {
	theta := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	r := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	if theta == 0 {
		return r
	}
	x, y, z := v[0]/theta, v[1]/theta, v[2]/theta
	c, s := math.Cos(theta), math.Sin(theta)
	cross := mat.NewDense(3, 3, []float64{
		0, -z, y,
		z, 0, -x,
		-y, x, 0,
	})
	outer := mat.NewDense(3, 3, []float64{
		x * x, x * y, x * z,
		y * x, y * y, y * z,
		z * x, z * y, z * z,
	})

	r.Scale(c, r)
	cross.Scale(s, cross)
	outer.Scale(1-c, outer)
	r.Add(r, cross)
	r.Add(r, outer)
	return r
}
