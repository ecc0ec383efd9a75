package plan

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagery-dataset/internal/mercator"
	"imagery-dataset/internal/spiral"
	"imagery-dataset/internal/utils/naming"
)

func lasVegas() mercator.Config {
	return mercator.Config{
		CenterLat: 36.1699390,
		CenterLng: -115.1398269,
		Zoom:      17,
		Scale:     2,
		ImageSize: 640,
		Overlap:   0.1,
	}
}

func TestBuildFollowsSpiral(t *testing.T) {
	entries, err := Build(lasVegas(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	want := []spiral.GridOffset{{DX: 0, DY: 0}, {DX: 1, DY: 0}, {DX: 1, DY: 1}, {DX: 0, DY: 1}, {DX: -1, DY: 1}}
	for i, e := range entries {
		assert.Equal(t, want[i], e.Offset)
	}
}

func TestBuildFilenames(t *testing.T) {
	cfg := lasVegas()
	entries, err := Build(cfg, 50)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, e := range entries {
		assert.False(t, seen[e.Filename], "duplicate filename %s", e.Filename)
		seen[e.Filename] = true

		tn, err := naming.ParseTileFilename(e.Filename)
		require.NoError(t, err)
		assert.Equal(t, e.Offset.DX, tn.DX)
		assert.Equal(t, e.Offset.DY, tn.DY)
		assert.Equal(t, 18, tn.Zoom)
		assert.InDelta(t, e.Coordinate.Lat, tn.Lat, 1e-9)
		assert.InDelta(t, e.Coordinate.Lng, tn.Lng, 1e-9)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	a, err := Build(lasVegas(), 200)
	require.NoError(t, err)
	b, err := Build(lasVegas(), 200)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildOriginIsCenter(t *testing.T) {
	cfg := lasVegas()
	entries, err := Build(cfg, 1)
	require.NoError(t, err)

	// Tile (0,0) sits at pixel dim/2, half a pixel past the zero-indexed center
	// (dim/2 - 0.5), so it is about 2.7e-6 degrees off at zoom 18. 1e-6 is too tight.
	assert.InDelta(t, cfg.CenterLat, entries[0].Coordinate.Lat, 1e-5)
	assert.InDelta(t, cfg.CenterLng, entries[0].Coordinate.Lng, 1e-5)
}

func TestBuildInvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*mercator.Config)
		maxTiles int
		field    string
	}{
		{"zero tiles", func(c *mercator.Config) {}, 0, "max_tiles"},
		{"negative tiles", func(c *mercator.Config) {}, -1, "max_tiles"},
		{"zero image size", func(c *mercator.Config) { c.ImageSize = 0 }, 10, "image_size"},
		{"negative scale", func(c *mercator.Config) { c.Scale = -2 }, 10, "scale"},
		{"overlap of one", func(c *mercator.Config) { c.Overlap = 1 }, 10, "image_overlap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := lasVegas()
			tt.mutate(&cfg)

			entries, err := Build(cfg, tt.maxTiles)
			assert.Nil(t, entries)

			var cfgErr *mercator.InvalidConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestBuildFromSteps(t *testing.T) {
	cross := []spiral.GridOffset{{DX: 0, DY: 0}, {DX: 1, DY: 0}, {DX: 0, DY: 1}, {DX: -1, DY: 0}, {DX: 0, DY: -1}}
	entries, err := BuildFromSteps(lasVegas(), cross)
	require.NoError(t, err)
	require.Len(t, entries, len(cross))

	spiralEntries, err := Build(lasVegas(), 2)
	require.NoError(t, err)

	for i, e := range entries {
		assert.Equal(t, cross[i], e.Offset)
	}
	// Same offset, same config: same filename regardless of how the plan was made.
	assert.Equal(t, spiralEntries[1].Filename, entries[1].Filename)

	_, err = BuildFromSteps(lasVegas(), nil)
	var cfgErr *mercator.InvalidConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "step_coords", cfgErr.Field)
}

func TestSummarize(t *testing.T) {
	cfg := lasVegas()
	entries, err := Build(cfg, 9)
	require.NoError(t, err)

	s, err := Summarize(entries, cfg)
	require.NoError(t, err)

	assert.Equal(t, 9, s.Tiles)
	assert.Equal(t, 18.0, s.EffectiveZoom)
	assert.Equal(t, 3, s.Bounds.Cols())
	assert.Equal(t, 3, s.Bounds.Rows())

	mpp := mercator.MetersPerPixel(cfg.CenterLat, cfg)
	assert.InEpsilon(t, cfg.PixelStep()*mpp, s.StepMeters, 0.01)
	assert.InEpsilon(t, cfg.Dim()*mpp, s.ImageMeters, 1e-9)

	// Corners are the farthest tiles of a full 3x3 ring.
	assert.Equal(t, 1, abs(s.Farthest.DX))
	assert.Equal(t, 1, abs(s.Farthest.DY))
	assert.Greater(t, s.CoverageRadiusMeters, s.StepMeters)
	assert.Less(t, s.CoverageRadiusMeters, 2*s.StepMeters)

	_, err = Summarize(nil, cfg)
	assert.Error(t, err)
}

func TestFeatureCollection(t *testing.T) {
	cfg := lasVegas()
	entries, err := Build(cfg, 4)
	require.NoError(t, err)

	fc := FeatureCollection(entries, cfg)
	require.Len(t, fc.Features, 4)

	for i, f := range fc.Features {
		poly, ok := f.Geometry.(orb.Polygon)
		require.True(t, ok)
		require.Len(t, poly, 1)
		ring := poly[0]
		require.Len(t, ring, 5)
		assert.True(t, ring.Closed())

		center := orb.Point{entries[i].Coordinate.Lng, entries[i].Coordinate.Lat}
		assert.True(t, poly.Bound().Contains(center))
		assert.Equal(t, entries[i].Filename, f.Properties["filename"])
		assert.Equal(t, i, f.Properties["order"])
	}

	// Overlapping neighbors: the east edge of tile 0 is past the west edge of tile 1.
	b0 := fc.Features[0].Geometry.Bound()
	b1 := fc.Features[1].Geometry.Bound()
	assert.Greater(t, b0.Max.Lon(), b1.Min.Lon())

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	decoded, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Len(t, decoded.Features, 4)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
