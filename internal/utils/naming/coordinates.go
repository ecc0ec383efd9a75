package naming

import (
	"math"
	"strconv"
	"strings"
)

// coordinateDigits is the number of significant digits written for a coordinate.
// Existing tile sets were named with 12 significant digits, e.g. 37.7792471625.
const coordinateDigits = 12

// FormatCoordinate renders a latitude or longitude for use in a tile filename:
// shortest form with 12 significant digits, and a trailing ".0" for integral values.
func FormatCoordinate(coord float64) string {
	if math.IsNaN(coord) {
		return "nan"
	}
	if math.IsInf(coord, 1) {
		return "inf"
	}
	if math.IsInf(coord, -1) {
		return "-inf"
	}

	s := strconv.FormatFloat(coord, 'g', coordinateDigits, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// ParseCoordinate is the inverse of FormatCoordinate.
func ParseCoordinate(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
