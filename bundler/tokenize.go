package bundler

import (
	"math"
	"strconv"
	"strings"
)

func parseFloat(field string, lineNo int) (float64, error) {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, &MalformedNumberError{Line: lineNo, Token: field, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &MalformedNumberError{Line: lineNo, Token: field, Err: errNonFinite}
	}
	return v, nil
}

func parseFloats(line string, lineNo int) ([]float64, error) {
	fields := strings.Fields(line)
	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := parseFloat(field, lineNo)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func parseInt(field string, lineNo int) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, &MalformedNumberError{Line: lineNo, Token: field, Err: err}
	}
	return v, nil
}

// parseIndex parses a non-negative integer token.
func parseIndex(field string, lineNo int) (int, error) {
	v, err := parseInt(field, lineNo)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, &MalformedNumberError{Line: lineNo, Token: field, Err: errNegative}
	}
	return v, nil
}

// parseTriple parses a line that must hold exactly three floats.
func parseTriple(line string, lineNo int, record RecordKind, index int) ([3]float64, error) {
	var out [3]float64
	values, err := parseFloats(line, lineNo)
	if err != nil {
		return out, err
	}
	if len(values) != 3 {
		return out, &DimensionMismatchError{
			Record:   record,
			Index:    index,
			Line:     lineNo,
			Expected: 3,
			Actual:   len(values),
		}
	}
	copy(out[:], values)
	return out, nil
}
