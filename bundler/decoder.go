// Package bundler decodes the bundle.out file written by the Bundler
// structure-from-motion system into camera poses and a sparse scene, and
// wraps the surrounding Bundler workflow (cam_params.txt, list.txt, running
// the batch job).
package bundler

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ImageSize is the size in pixels shared by every image of a reconstruction.
type ImageSize struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

type Options struct {
	// ImageSize moves observations from Bundler's centre origin to the top
	// left corner. A zero size leaves them centre-relative, Y down.
	ImageSize ImageSize

	// SkipImageNames lets Load succeed without a list.txt.
	SkipImageNames bool

	// SkipPoints stops after the camera blocks. The header still reports the
	// declared point count but the scene is left empty and point records are
	// neither read nor validated.
	SkipPoints bool
}

type decoder struct {
	r    *bufio.Reader
	line int
	opts Options
}

// next returns the next line without its terminator. ok is false at the end
// of the input.
func (d *decoder) next() (string, bool, error) {
	text, err := d.r.ReadString('\n')
	if err == io.EOF {
		if text == "" {
			return "", false, nil
		}
	} else if err != nil {
		return "", false, errors.Wrapf(err, "bundler: reading line %d", d.line+1)
	}
	d.line++
	return strings.TrimRight(text, "\r\n"), true, nil
}

// Decode reads a complete bundle file. It either returns every camera and
// point the header declares or an error; there are no partial results.
func Decode(r io.Reader, opts Options) (*BundleResult, error) {
	d := &decoder{r: bufio.NewReader(r), opts: opts}

	header, err := d.header()
	if err != nil {
		return nil, err
	}

	poses := make([]CameraPose, 0, capacityHint(header.NumImages))
	for i := 0; i < header.NumImages; i++ {
		pose, err := d.camera(i)
		if err != nil {
			return nil, err
		}
		poses = append(poses, pose)
	}

	scene := Scene{index: make(map[viewKey]int)}
	if opts.SkipPoints {
		return &BundleResult{Header: header, Poses: poses, Scene: scene}, nil
	}

	scene.Points = make([]ScenePoint, 0, capacityHint(header.NumPoints))
	for i := 0; i < header.NumPoints; i++ {
		if err := d.point(&scene, i, header.NumImages); err != nil {
			return nil, err
		}
	}
	scene.reslice()

	return &BundleResult{Header: header, Poses: poses, Scene: scene}, nil
}

// capacityHint bounds up-front allocations so that a corrupt header cannot
// reserve more memory than the records that follow it.
func capacityHint(n int) int {
	const maxHint = 1 << 16
	if n > maxHint {
		return maxHint
	}
	return n
}

func (d *decoder) header() (Header, error) {
	if _, ok, err := d.next(); err != nil {
		return Header{}, err
	} else if !ok {
		return Header{}, &MalformedHeaderError{Line: 1, Reason: "missing banner"}
	}

	text, ok, err := d.next()
	if err != nil {
		return Header{}, err
	}
	if !ok {
		return Header{}, &MalformedHeaderError{Line: 2, Reason: "missing image and point counts"}
	}

	fields := strings.Fields(text)
	if len(fields) != 2 {
		return Header{}, &MalformedHeaderError{Line: d.line, Text: text, Reason: "expected 2 counts"}
	}
	var counts [2]int
	for i, field := range fields {
		v, err := parseIndex(field, d.line)
		if err != nil {
			return Header{}, &MalformedHeaderError{Line: d.line, Text: text, Reason: err.Error()}
		}
		counts[i] = v
	}
	return Header{NumImages: counts[0], NumPoints: counts[1]}, nil
}

// ReadFile decodes the bundle file at path.
func ReadFile(path string, opts Options) (*BundleResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &FileNotFoundError{Path: path, Err: err}
		}
		return nil, errors.Wrapf(err, "bundler: opening %s", path)
	}
	defer f.Close()
	return Decode(f, opts)
}
