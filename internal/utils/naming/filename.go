package naming

import (
	"fmt"
	"regexp"
	"strconv"
)

// Directory names for cropped training samples
const (
	PositiveSamplesDir = "positive_samples"
	NegativeSamplesDir = "negative_samples"
)

// TileName holds the fields encoded in a tile filename.
type TileName struct {
	DX   int
	DY   int
	Lat  float64
	Lng  float64
	Zoom int
}

var tileFilenameRe = regexp.MustCompile(`^img(-?\d+)_(-?\d+)_([^_]+)_([^_]+)_zoom(-?\d+)\.png$`)

// GenerateTileFilename creates the filename for a tile
// Format: img{dx}_{dy}_{lat}_{lng}_zoom{zoom}.png
// Annotation and crop tooling parse this pattern back, so it must not change.
func GenerateTileFilename(dx, dy int, lat, lng float64, zoom int) string {
	return fmt.Sprintf("img%d_%d_%s_%s_zoom%d.png",
		dx, dy, FormatCoordinate(lat), FormatCoordinate(lng), zoom)
}

// Filename returns the tile filename for n.
func (n TileName) Filename() string {
	return GenerateTileFilename(n.DX, n.DY, n.Lat, n.Lng, n.Zoom)
}

// ParseTileFilename recovers the offsets, coordinate and zoom from a tile filename.
func ParseTileFilename(name string) (TileName, error) {
	m := tileFilenameRe.FindStringSubmatch(name)
	if m == nil {
		return TileName{}, fmt.Errorf("not a tile filename: %q", name)
	}

	var (
		tn  TileName
		err error
	)
	if tn.DX, err = strconv.Atoi(m[1]); err != nil {
		return TileName{}, fmt.Errorf("failed to parse x offset in %q: %w", name, err)
	}
	if tn.DY, err = strconv.Atoi(m[2]); err != nil {
		return TileName{}, fmt.Errorf("failed to parse y offset in %q: %w", name, err)
	}
	if tn.Lat, err = ParseCoordinate(m[3]); err != nil {
		return TileName{}, fmt.Errorf("failed to parse latitude in %q: %w", name, err)
	}
	if tn.Lng, err = ParseCoordinate(m[4]); err != nil {
		return TileName{}, fmt.Errorf("failed to parse longitude in %q: %w", name, err)
	}
	if tn.Zoom, err = strconv.Atoi(m[5]); err != nil {
		return TileName{}, fmt.Errorf("failed to parse zoom in %q: %w", name, err)
	}
	return tn, nil
}

// GenerateSampleFilename creates the filename of the n-th cropped sample.
func GenerateSampleFilename(n int) string {
	return strconv.Itoa(n) + ".png"
}
