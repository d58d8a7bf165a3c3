package bundler

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// CameraParamsName is the intrinsics file RunBundler.sh expects in the
// output directory.
const CameraParamsName = "cam_params.txt"

// distortionTerms is the Bouguet toolbox layout: k1 k2 p1 p2 k3.
const distortionTerms = 5

// Intrinsics are pinhole parameters in pixels with the principal point
// measured from the top-left corner.
type Intrinsics struct {
	Fx float64
	Fy float64
	Cx float64
	Cy float64
}

// IntrinsicsFromMatrix reads fx, fy, cx and cy out of a 3x3 camera matrix.
func IntrinsicsFromMatrix(k mat.Matrix) (Intrinsics, error) {
	if r, c := k.Dims(); r != 3 || c != 3 {
		return Intrinsics{}, errors.Errorf("bundler: camera matrix must be 3x3, got %dx%d", r, c)
	}
	return Intrinsics{Fx: k.At(0, 0), Fy: k.At(1, 1), Cx: k.At(0, 2), Cy: k.At(1, 2)}, nil
}

// IntrinsicsFromParams accepts either [fx fy cx cy] or a row-major 3x3
// camera matrix.
func IntrinsicsFromParams(params []float64) (Intrinsics, error) {
	switch len(params) {
	case 4:
		return Intrinsics{Fx: params[0], Fy: params[1], Cx: params[2], Cy: params[3]}, nil
	case 9:
		return IntrinsicsFromMatrix(mat.NewDense(3, 3, params))
	default:
		return Intrinsics{}, errors.Errorf("bundler: expected 4 or 9 intrinsic parameters, got %d", len(params))
	}
}

// PadDistortion returns the five distortion terms, filling missing trailing
// terms with zero.
func PadDistortion(dist []float64) ([]float64, error) {
	if len(dist) > distortionTerms {
		return nil, errors.Errorf("bundler: expected at most %d distortion terms, got %d", distortionTerms, len(dist))
	}
	padded := make([]float64, distortionTerms)
	copy(padded, dist)
	return padded, nil
}

// WriteCameraParams writes cam_params.txt. Bundler measures the principal
// point from the image centre with Y up, so it is re-centred on the way out.
func WriteCameraParams(w io.Writer, in Intrinsics, dist []float64, size ImageSize) error {
	padded, err := PadDistortion(dist)
	if err != nil {
		return err
	}
	cx := in.Cx - float64(size.Width)/2
	cy := float64(size.Height)/2 - in.Cy

	_, err = fmt.Fprintf(w, "1\n%.9f 0 %.9f 0 %.9f %.9f 0 0 1\n%.9f %.9f %.9f %.9f %.9f\n",
		in.Fx, cx, in.Fy, cy,
		padded[0], padded[1], padded[2], padded[3], padded[4],
	)
	return errors.Wrap(err, "bundler: writing camera params")
}
