// Package plan turns a projection configuration into the ordered list of tiles a
// collection run fetches.
package plan

import (
	"fmt"

	"imagery-dataset/internal/mercator"
	"imagery-dataset/internal/spiral"
	"imagery-dataset/internal/utils/naming"
)

// Entry is one tile of a collection plan.
type Entry struct {
	Filename   string                  `json:"filename"`
	Coordinate mercator.TileCoordinate `json:"coordinate"`
	Offset     spiral.GridOffset       `json:"offset"`
}

// Build returns maxTiles entries in spiral order around the configured center.
// It performs no I/O.
func Build(cfg mercator.Config, maxTiles int) ([]Entry, error) {
	if maxTiles < 1 {
		return nil, &mercator.InvalidConfigError{Field: "max_tiles", Value: maxTiles, Reason: "must be positive"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	offsets, err := spiral.Generate(maxTiles)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tile offsets: %w", err)
	}

	return resolve(cfg, offsets), nil
}

// BuildFromSteps resolves a caller-provided list of offsets instead of the spiral,
// preserving its order.
func BuildFromSteps(cfg mercator.Config, steps []spiral.GridOffset) ([]Entry, error) {
	if len(steps) == 0 {
		return nil, &mercator.InvalidConfigError{Field: "step_coords", Value: steps, Reason: "must not be empty"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return resolve(cfg, steps), nil
}

func resolve(cfg mercator.Config, offsets []spiral.GridOffset) []Entry {
	zoom := int(cfg.EffectiveZoom())

	entries := make([]Entry, 0, len(offsets))
	for _, offset := range offsets {
		coord := mercator.TileCenter(offset, cfg)
		entries = append(entries, Entry{
			Filename:   naming.GenerateTileFilename(offset.DX, offset.DY, coord.Lat, coord.Lng, zoom),
			Coordinate: coord,
			Offset:     offset,
		})
	}
	return entries
}
