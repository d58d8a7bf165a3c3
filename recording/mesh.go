package recording

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/EliCDavis/polyform/formats/ply"
	"github.com/EliCDavis/polyform/modeling"
	"github.com/EliCDavis/vector/vector3"
	rapio "github.com/recolude/rap/format/io"
	"github.com/recolude/rap/format/metadata"
)

// MeshBinary loads a PLY file produced alongside the reconstruction (for
// example a dense PMVS cloud) and moves it into recording space, scaled
// uniformly by scale.
func MeshBinary(plyFile string, scale float64) (rapio.Binary, error) {
	plyFileHandle, err := os.Open(plyFile)
	if err != nil {
		return rapio.Binary{}, err
	}
	defer plyFileHandle.Close()

	mesh, err := ply.ReadMesh(plyFileHandle)
	if err != nil {
		return rapio.Binary{}, err
	}

	// the Y reflection into recording space is folded into the scale
	spaceScale := vector3.New(scale, -scale, scale)
	indices := mesh.View().Indices

	var parsedMesh modeling.Mesh
	switch mesh.Topology() {
	case modeling.PointTopology:
		view := mesh.View()
		parsedMesh = modeling.NewPointCloud(map[string][]vector3.Vector[float64]{
			modeling.PositionAttribute: view.Float3Data[modeling.PositionAttribute],
			modeling.ColorAttribute:    view.Float3Data[modeling.ColorAttribute],
		}, nil, nil, nil).
			Scale(vector3.Zero[float64](), spaceScale)

	case modeling.TriangleTopology:
		// a reflection turns every triangle inside out
		parsedMesh = mesh.
			CopyFloat3Attribute(*mesh, modeling.PositionAttribute).
			CopyFloat3Attribute(*mesh, modeling.NormalAttribute).
			Scale(vector3.Zero[float64](), spaceScale).
			FlipTriWinding()

	default:
		return rapio.Binary{}, fmt.Errorf("unimplemented topology: %d", mesh.Topology())
	}

	meshData := bytes.Buffer{}
	err = ply.WriteBinary(&meshData, parsedMesh)
	return rapio.NewBinary(filepath.Base(plyFile), meshData.Bytes(), metadata.NewBlock(map[string]metadata.Property{
		"points": metadata.NewIntProperty(len(indices)),
	})), err
}
