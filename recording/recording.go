// Package recording turns a decoded Bundler reconstruction into a RAP
// recording: the camera path as position, rotation and event captures, and
// the sparse scene as a PLY point cloud binary.
package recording

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"

	"github.com/EliCDavis/vector/vector3"
	"github.com/recolude/rap/format"
	"github.com/recolude/rap/format/collection/euler"
	"github.com/recolude/rap/format/collection/event"
	"github.com/recolude/rap/format/collection/position"
	"github.com/recolude/rap/format/encoding"
	eulEnc "github.com/recolude/rap/format/encoding/euler"
	eventEnc "github.com/recolude/rap/format/encoding/event"
	posEnc "github.com/recolude/rap/format/encoding/position"
	rapio "github.com/recolude/rap/format/io"
	"github.com/recolude/rap/format/metadata"

	"github.com/recolude/bundler-recordings/bundler"
)

var frameNumber = regexp.MustCompile("[0-9]+")

// cameraSample is one registered camera, already in recording space.
type cameraSample struct {
	index        int
	name         string
	time         float64
	position     vector3.Float64
	rotation     [3]float64
	observations int
}

type SortPositionByTime []position.Capture

func (a SortPositionByTime) Len() int           { return len(a) }
func (a SortPositionByTime) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a SortPositionByTime) Less(i, j int) bool { return a[i].Time() < a[j].Time() }

type SortRotationByTime []euler.Capture

func (a SortRotationByTime) Len() int           { return len(a) }
func (a SortRotationByTime) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a SortRotationByTime) Less(i, j int) bool { return a[i].Time() < a[j].Time() }

type SortEventByTime []event.Capture

func (a SortEventByTime) Len() int           { return len(a) }
func (a SortEventByTime) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a SortEventByTime) Less(i, j int) bool { return a[i].Time() < a[j].Time() }

func imageName(rec *bundler.Reconstruction, index int) string {
	if index < len(rec.Images) {
		return rec.Images[index]
	}
	return fmt.Sprintf("camera %d", index)
}

// captureTimes uses the frame number embedded in each image name when every
// name has a distinct one, and the camera index otherwise.
func captureTimes(rec *bundler.Reconstruction) []float64 {
	times := make([]float64, len(rec.Poses))
	seen := make(map[int]bool, len(rec.Poses))
	fromNames := len(rec.Images) == len(rec.Poses)
	for i := range rec.Poses {
		times[i] = float64(i)
		if !fromNames {
			continue
		}
		frame, err := strconv.Atoi(frameNumber.FindString(rec.Images[i]))
		if err != nil || seen[frame] {
			fromNames = false
			continue
		}
		seen[frame] = true
		times[i] = float64(frame)
	}
	if !fromNames {
		for i := range times {
			times[i] = float64(i)
		}
	}
	return times
}

func cameraSamples(rec *bundler.Reconstruction) []cameraSample {
	times := captureTimes(rec)
	views := rec.Scene.ViewCounts(rec.Header.NumImages)

	samples := make([]cameraSample, 0, len(rec.Poses))
	for i, pose := range rec.Poses {
		if !pose.Registered() {
			continue
		}
		x, y, z := eulerZXY(orientation(pose.Matrix()))
		samples = append(samples, cameraSample{
			index:        i,
			name:         imageName(rec, i),
			time:         times[i],
			position:     toRecordingSpace(pose.Center()),
			rotation:     [3]float64{x, y, z},
			observations: views[i],
		})
	}
	return samples
}

func camerasToSubject(rec *bundler.Reconstruction, size bundler.ImageSize) format.Recording {
	samples := cameraSamples(rec)

	positionCaptures := make([]position.Capture, 0, len(samples))
	rotationCaptures := make([]euler.Capture, 0, len(samples))
	eventCaptures := make([]event.Capture, 0, len(samples))

	for _, s := range samples {
		positionCaptures = append(positionCaptures, position.NewCapture(s.time, s.position.X(), s.position.Y(), s.position.Z()))
		rotationCaptures = append(rotationCaptures, euler.NewEulerZXYCapture(s.time, s.rotation[0], s.rotation[1], s.rotation[2]))
		eventCaptures = append(eventCaptures, event.NewCapture(s.time, s.name, metadata.NewBlock(map[string]metadata.Property{
			"Image Index":  metadata.NewIntProperty(s.index),
			"Observations": metadata.NewIntProperty(s.observations),
		})))
	}

	sort.Sort(SortPositionByTime(positionCaptures))
	sort.Sort(SortRotationByTime(rotationCaptures))
	sort.Sort(SortEventByTime(eventCaptures))

	return format.NewRecording(
		"camera",
		"Camera",
		[]format.CaptureCollection{
			position.NewCollection("Position", positionCaptures),
			euler.NewCollection("Rotation", rotationCaptures),
			event.NewCollection("Custom Event", eventCaptures),
		},
		nil,
		metadata.NewBlock(map[string]metadata.Property{
			"Projection Type": metadata.NewStringProperty("perspective"),
			"Width":           metadata.NewIntProperty(size.Width),
			"Height":          metadata.NewIntProperty(size.Height),
		}),
		[]format.Binary{},
		[]format.BinaryReference{},
	)
}

// FromBundle builds the recording of a reconstruction. Extra binaries, such
// as a dense mesh, are attached next to the sparse point cloud.
func FromBundle(rec *bundler.Reconstruction, size bundler.ImageSize, extra ...rapio.Binary) (format.Recording, error) {
	cloud, err := PointsToCloudBinary(&rec.Scene)
	if err != nil {
		return nil, err
	}

	binaries := []format.Binary{cloud}
	for _, b := range extra {
		binaries = append(binaries, b)
	}

	registered := 0
	for _, pose := range rec.Poses {
		if pose.Registered() {
			registered++
		}
	}

	return format.NewRecording(
		"bundler",
		"Bundler",
		[]format.CaptureCollection{},
		[]format.Recording{camerasToSubject(rec, size)},
		metadata.NewBlock(map[string]metadata.Property{
			"cameras":      metadata.NewIntProperty(rec.Header.NumImages),
			"registered":   metadata.NewIntProperty(registered),
			"points":       metadata.NewIntProperty(rec.Header.NumPoints),
			"observations": metadata.NewIntProperty(rec.Scene.NumObservations()),
		}),
		binaries,
		[]format.BinaryReference{},
	), nil
}

// Write encodes rec as a RAP file.
func Write(w io.Writer, rec format.Recording) error {
	rapWriter := rapio.NewWriter(
		[]encoding.Encoder{
			posEnc.NewEncoder(posEnc.Oct24),
			eulEnc.NewEncoder(eulEnc.Raw16),
			eventEnc.NewEncoder(),
		},
		true,
		w,
		rapio.BST16,
	)
	_, err := rapWriter.Write(rec)
	return err
}
