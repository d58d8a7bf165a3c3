package bundler

import (
	"gonum.org/v1/gonum/mat"
)

// recordLine reads the next line of record index, reporting the end of the
// input as a truncated record.
func (d *decoder) recordLine(kind RecordKind, index int) (string, error) {
	text, ok, err := d.next()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &TruncatedRecordError{Record: kind, Index: index}
	}
	return text, nil
}

func (d *decoder) triple(kind RecordKind, index int) ([3]float64, error) {
	text, err := d.recordLine(kind, index)
	if err != nil {
		return [3]float64{}, err
	}
	return parseTriple(text, d.line, kind, index)
}

// camera decodes one five line camera block:
//
//	<f> <k1> <k2>
//	<R row 0>
//	<R row 1>
//	<R row 2>
//	<t>
func (d *decoder) camera(index int) (CameraPose, error) {
	// focal length and radial distortion estimate, not part of the pose
	if _, err := d.triple(CameraRecord, index); err != nil {
		return CameraPose{}, err
	}

	r := mat.NewDense(3, 3, nil)
	for row := 0; row < 3; row++ {
		values, err := d.triple(CameraRecord, index)
		if err != nil {
			return CameraPose{}, err
		}
		r.SetRow(row, values[:])
	}
	t, err := d.triple(CameraRecord, index)
	if err != nil {
		return CameraPose{}, err
	}

	rm, tm := MirrorTransform(r, mat.NewVecDense(3, t[:]))
	return CameraPose{
		Rotation:    AxisAngle(rm),
		Translation: [3]float64{tm.AtVec(0), tm.AtVec(1), tm.AtVec(2)},
	}, nil
}
