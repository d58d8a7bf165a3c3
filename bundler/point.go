package bundler

import (
	"math"
	"strconv"
	"strings"
)

// point decodes one three line point record and appends it to scene:
//
//	<x> <y> <z>
//	<r> <g> <b>
//	<n> (<view> <key> <dx> <dy>){n}
func (d *decoder) point(scene *Scene, index, numImages int) error {
	position, err := d.triple(PointRecord, index)
	if err != nil {
		return err
	}

	rgb, err := d.triple(PointRecord, index)
	if err != nil {
		return err
	}
	color, err := toColor(rgb, d.line)
	if err != nil {
		return err
	}

	text, err := d.recordLine(PointRecord, index)
	if err != nil {
		return err
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return &DimensionMismatchError{Record: PointRecord, Index: index, Line: d.line, Expected: 1}
	}
	numViews, err := parseIndex(fields[0], d.line)
	if err != nil {
		return err
	}
	if groups := len(fields) - 1; groups%4 != 0 || groups/4 != numViews {
		return &DimensionMismatchError{
			Record:   PointRecord,
			Index:    index,
			Line:     d.line,
			Expected: observationTokens(numViews),
			Actual:   len(fields),
		}
	}

	start := len(scene.arena)
	for j := 0; j < numViews; j++ {
		o, err := d.observation(fields[1+4*j:5+4*j], index, numImages)
		if err != nil {
			return err
		}
		scene.index[viewKey{point: index, view: o.View}] = len(scene.arena)
		scene.arena = append(scene.arena, o)
	}

	scene.Points = append(scene.Points, ScenePoint{
		Position:     position,
		Color:        color,
		Observations: scene.arena[start:len(scene.arena):len(scene.arena)],
	})
	return nil
}

// observationTokens is the token count of an observation line with n views,
// saturating at math.MaxInt.
func observationTokens(n int) int {
	if n > (math.MaxInt-1)/4 {
		return math.MaxInt
	}
	return 1 + 4*n
}

func (d *decoder) observation(group []string, point, numImages int) (Observation, error) {
	view, err := parseIndex(group[0], d.line)
	if err != nil {
		return Observation{}, err
	}
	if view >= numImages {
		return Observation{}, &IndexOutOfRangeError{Point: point, View: view, NumImages: numImages}
	}
	key, err := parseIndex(group[1], d.line)
	if err != nil {
		return Observation{}, err
	}

	var offset [2]float64
	for i, field := range group[2:] {
		if offset[i], err = parseFloat(field, d.line); err != nil {
			return Observation{}, err
		}
	}

	return Observation{
		View:  view,
		Key:   key,
		Pixel: d.opts.ImageSize.pixel(offset[0], offset[1]),
	}, nil
}

// pixel moves a Bundler image coordinate (origin at the image centre, Y up)
// to the top-left origin with Y down. This is the same Y flip the mirror
// applies to camera poses, so decoded pixels are projections through decoded
// poses.
func (s ImageSize) pixel(dx, dy float64) Pixel {
	return Pixel{
		X: dx + float64(s.Width)/2,
		Y: float64(s.Height)/2 - dy,
	}
}

func toColor(rgb [3]float64, lineNo int) (Color, error) {
	var c [3]uint8
	for i, v := range rgb {
		if v < 0 || v > 255 {
			return Color{}, &MalformedNumberError{
				Line:  lineNo,
				Token: strconv.FormatFloat(v, 'g', -1, 64),
				Err:   errColorRange,
			}
		}
		c[i] = uint8(v)
	}
	return Color{R: c[0], G: c[1], B: c[2]}, nil
}
