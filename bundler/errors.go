package bundler

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the decoder matches exactly one of
// these through errors.Is.
var (
	ErrFileNotFound      = errors.New("bundle file not found")
	ErrMalformedHeader   = errors.New("malformed header")
	ErrMalformedNumber   = errors.New("malformed number")
	ErrTruncatedRecord   = errors.New("truncated record")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrIndexOutOfRange   = errors.New("index out of range")
)

var (
	errNegative   = errors.New("value must not be negative")
	errColorRange = errors.New("color component outside [0, 255]")
	errNonFinite  = errors.New("value is not finite")
)

// RecordKind names the kind of record a decode error was raised in.
type RecordKind int

const (
	HeaderRecord RecordKind = iota
	CameraRecord
	PointRecord
	NameListRecord
)

func (k RecordKind) String() string {
	switch k {
	case HeaderRecord:
		return "header"
	case CameraRecord:
		return "camera"
	case PointRecord:
		return "point"
	case NameListRecord:
		return "image list"
	default:
		return fmt.Sprintf("record(%d)", int(k))
	}
}

type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("bundler: %s: %v", e.Path, ErrFileNotFound)
}

func (e *FileNotFoundError) Unwrap() []error { return []error{ErrFileNotFound, e.Err} }

// MalformedHeaderError reports a banner or count line that could not be read.
type MalformedHeaderError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("bundler: line %d: %v: %s (%q)", e.Line, ErrMalformedHeader, e.Reason, e.Text)
}

func (e *MalformedHeaderError) Unwrap() error { return ErrMalformedHeader }

// MalformedNumberError reports a token that is not a number of the expected
// type, or a value outside its allowed range.
type MalformedNumberError struct {
	Line  int
	Token string
	Err   error
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("bundler: line %d: %v %q: %v", e.Line, ErrMalformedNumber, e.Token, e.Err)
}

func (e *MalformedNumberError) Unwrap() []error { return []error{ErrMalformedNumber, e.Err} }

// TruncatedRecordError reports an input that ended inside camera or point
// record Index.
type TruncatedRecordError struct {
	Record RecordKind
	Index  int
}

func (e *TruncatedRecordError) Error() string {
	return fmt.Sprintf("bundler: %v: %s %d", ErrTruncatedRecord, e.Record, e.Index)
}

func (e *TruncatedRecordError) Unwrap() error { return ErrTruncatedRecord }

// DimensionMismatchError reports a line whose token count differs from what
// the grammar requires.
type DimensionMismatchError struct {
	Record   RecordKind
	Index    int
	Line     int
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	if e.Record == NameListRecord {
		return fmt.Sprintf("bundler: %v in %s: expected %d names, got %d",
			ErrDimensionMismatch, e.Record, e.Expected, e.Actual)
	}
	return fmt.Sprintf("bundler: line %d: %v in %s %d: expected %d values, got %d",
		e.Line, ErrDimensionMismatch, e.Record, e.Index, e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// IndexOutOfRangeError reports an observation that references a camera the
// header does not declare.
type IndexOutOfRangeError struct {
	Point     int
	View      int
	NumImages int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("bundler: %v: point %d observed in view %d, only %d images",
		ErrIndexOutOfRange, e.Point, e.View, e.NumImages)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrIndexOutOfRange }
