package plan

import (
	"fmt"

	"github.com/golang/geo/s2"
	"github.com/samber/lo"

	"imagery-dataset/internal/common"
	"imagery-dataset/internal/mercator"
	"imagery-dataset/internal/spiral"
)

// EarthRadiusMeters is the mean Earth radius
const EarthRadiusMeters = 6371008.8

// Summary describes the ground covered by a plan.
type Summary struct {
	Tiles                int               `json:"tiles"`
	EffectiveZoom        float64           `json:"effective_zoom"`
	Bounds               common.TileBounds `json:"bounds"`
	ImageMeters          float64           `json:"image_meters"`
	StepMeters           float64           `json:"step_meters"`
	CoverageRadiusMeters float64           `json:"coverage_radius_meters"`
	Farthest             spiral.GridOffset `json:"farthest"`
}

// Summarize computes grid bounds and ground distances for entries.
func Summarize(entries []Entry, cfg mercator.Config) (Summary, error) {
	offsets := lo.Map(entries, func(e Entry, _ int) spiral.GridOffset {
		return e.Offset
	})
	bounds, err := common.CalculateTileBounds(offsets)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to calculate plan bounds: %w", err)
	}

	center := s2.LatLngFromDegrees(cfg.CenterLat, cfg.CenterLng)
	distance := func(e Entry) float64 {
		p := s2.LatLngFromDegrees(e.Coordinate.Lat, e.Coordinate.Lng)
		return center.Distance(p).Radians() * EarthRadiusMeters
	}

	farthest := lo.MaxBy(entries, func(a, b Entry) bool {
		return distance(a) > distance(b)
	})

	origin := mercator.TileCenter(spiral.GridOffset{}, cfg)
	east := mercator.TileCenter(spiral.GridOffset{DX: 1}, cfg)
	step := s2.LatLngFromDegrees(origin.Lat, origin.Lng).
		Distance(s2.LatLngFromDegrees(east.Lat, east.Lng)).Radians() * EarthRadiusMeters

	return Summary{
		Tiles:                len(entries),
		EffectiveZoom:        cfg.EffectiveZoom(),
		Bounds:               bounds,
		ImageMeters:          mercator.MetersPerPixel(cfg.CenterLat, cfg) * cfg.Dim(),
		StepMeters:           step,
		CoverageRadiusMeters: distance(farthest),
		Farthest:             farthest.Offset,
	}, nil
}
