package bundler

import (
	"gonum.org/v1/gonum/mat"
)

// Header holds the image and point counts declared by a bundle file.
type Header struct {
	NumImages int `json:"numImages"`
	NumPoints int `json:"numPoints"`
}

// CameraPose is a world-to-camera transform, x = K[R|t]X, in a right-handed
// camera frame looking down +Z with image Y pointing down.
type CameraPose struct {
	// Rotation is an axis-angle vector.
	Rotation    [3]float64 `json:"rotation"`
	Translation [3]float64 `json:"translation"`
}

// Vector returns the pose as [r1 r2 r3 t1 t2 t3].
func (p CameraPose) Vector() [6]float64 {
	return [6]float64{
		p.Rotation[0], p.Rotation[1], p.Rotation[2],
		p.Translation[0], p.Translation[1], p.Translation[2],
	}
}

// Matrix rebuilds the world-to-camera rotation matrix.
func (p CameraPose) Matrix() *mat.Dense {
	return Rodrigues(p.Rotation)
}

// Center returns the camera position in world coordinates, -Rᵀt.
func (p CameraPose) Center() [3]float64 {
	var c mat.VecDense
	c.MulVec(p.Matrix().T(), mat.NewVecDense(3, p.Translation[:]))
	return [3]float64{-c.AtVec(0), -c.AtVec(1), -c.AtVec(2)}
}

// Registered reports whether Bundler solved this camera. Cameras it could
// not add to the reconstruction are written out as all-zero blocks.
func (p CameraPose) Registered() bool {
	return p.Rotation != [3]float64{} || p.Translation != [3]float64{}
}

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Pixel is an image position with the origin at the top-left corner, X to
// the right and Y down.
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Observation is one 2D measurement of a scene point.
type Observation struct {
	// View is the zero-based camera index.
	View int `json:"view"`
	// Key is the SIFT key index within that image.
	Key   int   `json:"key"`
	Pixel Pixel `json:"pixel"`
}

type ScenePoint struct {
	Position     [3]float64    `json:"position"`
	Color        Color         `json:"color"`
	Observations []Observation `json:"observations"`
}

type viewKey struct {
	point int
	view  int
}

// Scene owns every reconstructed point. Observations of all points share one
// backing array and are indexed sparsely by (point, view), so unobserved
// pairs cost nothing and can never be mistaken for a pixel at the origin.
type Scene struct {
	Points []ScenePoint `json:"points"`

	arena []Observation
	index map[viewKey]int
}

// Observation returns the measurement of point in view, if there is one.
// When a file lists the same view twice for a point, the last entry wins.
func (s *Scene) Observation(point, view int) (Observation, bool) {
	i, ok := s.index[viewKey{point: point, view: view}]
	if !ok {
		return Observation{}, false
	}
	return s.arena[i], true
}

// reslice points every ScenePoint at the final arena; appends made while
// decoding may have moved it. The capacity is capped so that appending to one
// point's observations cannot overwrite the next point's.
func (s *Scene) reslice() {
	start := 0
	for i := range s.Points {
		end := start + len(s.Points[i].Observations)
		s.Points[i].Observations = s.arena[start:end:end]
		start = end
	}
}

// NumObservations returns the total number of 2D measurements.
func (s *Scene) NumObservations() int {
	return len(s.arena)
}

// ViewCounts returns, for each of numImages cameras, how many points it sees.
func (s *Scene) ViewCounts(numImages int) []int {
	counts := make([]int, numImages)
	for _, o := range s.arena {
		if o.View < numImages {
			counts[o.View]++
		}
	}
	return counts
}

// BundleResult is the complete, immutable decode of one bundle file.
type BundleResult struct {
	Header Header       `json:"header"`
	Poses  []CameraPose `json:"poses"`
	Scene  Scene        `json:"scene"`
}

// Reconstruction pairs a decoded bundle with the image names from list.txt.
// Images[i] is the image of Poses[i].
type Reconstruction struct {
	*BundleResult
	Images []string `json:"images"`
}
