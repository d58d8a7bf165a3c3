package recording

import (
	"bytes"

	"github.com/EliCDavis/polyform/formats/ply"
	"github.com/EliCDavis/polyform/modeling"
	"github.com/EliCDavis/vector/vector3"
	rapio "github.com/recolude/rap/format/io"
	"github.com/recolude/rap/format/metadata"

	"github.com/recolude/bundler-recordings/bundler"
)

func pointCloudPLY(scene *bundler.Scene) ([]byte, error) {
	positionData := make([]vector3.Float64, 0, len(scene.Points))
	colorData := make([]vector3.Float64, 0, len(scene.Points))

	for _, p := range scene.Points {
		positionData = append(positionData, toRecordingSpace(p.Position))
		colorData = append(colorData, vector3.New(float64(p.Color.R), float64(p.Color.G), float64(p.Color.B)).DivByConstant(255.))
	}

	pc := modeling.NewPointCloud(
		map[string][]vector3.Vector[float64]{
			modeling.PositionAttribute: positionData,
			modeling.ColorAttribute:    colorData,
		},
		nil,
		nil,
		nil,
	)

	buf := bytes.Buffer{}
	if err := ply.WriteBinary(&buf, pc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PointsToCloudBinary stores the sparse scene as a colored PLY point cloud.
func PointsToCloudBinary(scene *bundler.Scene) (rapio.Binary, error) {
	data, err := pointCloudPLY(scene)
	if err != nil {
		return rapio.Binary{}, err
	}
	return rapio.NewBinary("points.ply", data, metadata.NewBlock(map[string]metadata.Property{
		"points":       metadata.NewIntProperty(len(scene.Points)),
		"observations": metadata.NewIntProperty(scene.NumObservations()),
	})), nil
}
