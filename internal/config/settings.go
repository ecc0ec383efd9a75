package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"

	"imagery-dataset/internal/mercator"
	"imagery-dataset/internal/spiral"
)

// Environment variables holding credentials. Credentials are never read from or
// written to settings files.
const (
	EnvAPIKey      = "GOOGLE_MAPS_API_KEY"
	EnvPostHogKey  = "POSTHOG_KEY"
	EnvPostHogHost = "POSTHOG_HOST"
)

// CollectorSettings holds the options of a collection run
type CollectorSettings struct {
	// Center of the first tile, decimal degrees
	Latitude  float64 `json:"latitude" toml:"latitude"`
	Longitude float64 `json:"longitude" toml:"longitude"`

	// Tile grid
	MaxTiles     int     `json:"max_tiles" toml:"max_tiles"`
	Zoom         int     `json:"zoom" toml:"zoom"`
	ImageSize    int     `json:"image_size" toml:"image_size"`
	Scale        float64 `json:"scale" toml:"scale"`
	ImageOverlap float64 `json:"image_overlap" toml:"image_overlap"`
	StepCoords   [][]int `json:"step_coords,omitempty" toml:"step_coords,omitempty"` // replaces the spiral when set

	// Storage
	SaveDir string `json:"save_dir" toml:"save_dir"`

	// Download settings
	Workers int `json:"workers" toml:"workers"`

	// Side length of cropped regions of interest
	ROISize int `json:"roi_size" toml:"roi_size"`

	APIKey      string `json:"-" toml:"-"`
	PostHogKey  string `json:"-" toml:"-"`
	PostHogHost string `json:"-" toml:"-"`
}

// DefaultSettings returns default collector settings
func DefaultSettings() *CollectorSettings {
	return &CollectorSettings{
		Latitude:     36.1699390347, // Las Vegas, NV
		Longitude:    -115.139826918,
		MaxTiles:     2500,
		Zoom:         17,
		ImageSize:    640,
		Scale:        2, // free tier limit
		ImageOverlap: 0.1,
		SaveDir:      "images",
		Workers:      10,
		ROISize:      48,
	}
}

// LoadSettings loads settings from path over the defaults. Values missing from the
// file keep their defaults. Files ending in .toml are read as TOML, anything else as
// JSON. An empty path returns the defaults. Credentials come from the environment.
func LoadSettings(path string) (*CollectorSettings, error) {
	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}

		if isTOML(path) {
			err = toml.Unmarshal(data, settings)
		} else {
			err = json.Unmarshal(data, settings)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
		}
	}

	settings.APIKey = os.Getenv(EnvAPIKey)
	settings.PostHogKey = os.Getenv(EnvPostHogKey)
	settings.PostHogHost = os.Getenv(EnvPostHogHost)

	return settings, nil
}

// SaveSettings saves settings to path, creating its directory if needed
func SaveSettings(path string, settings *CollectorSettings) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(settings)
	} else {
		data, err = json.MarshalIndent(settings, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Projection returns the projection part of the settings
func (s *CollectorSettings) Projection() mercator.Config {
	return mercator.Config{
		CenterLat: s.Latitude,
		CenterLng: s.Longitude,
		Zoom:      s.Zoom,
		Scale:     s.Scale,
		ImageSize: s.ImageSize,
		Overlap:   s.ImageOverlap,
	}
}

// Steps returns the step_coords override, or nil when the spiral should be used.
// Pairs that are not [dx, dy] are rejected by Validate.
func (s *CollectorSettings) Steps() []spiral.GridOffset {
	if len(s.StepCoords) == 0 {
		return nil
	}
	steps := make([]spiral.GridOffset, 0, len(s.StepCoords))
	for _, p := range s.StepCoords {
		if len(p) != 2 {
			continue
		}
		steps = append(steps, spiral.GridOffset{DX: p[0], DY: p[1]})
	}
	return steps
}

// Validate checks everything a collection run needs before any work starts
func (s *CollectorSettings) Validate() error {
	if math.IsNaN(s.Latitude) || math.Abs(s.Latitude) > mercator.MaxLat {
		return &mercator.InvalidConfigError{Field: "latitude", Value: s.Latitude,
			Reason: fmt.Sprintf("must be within [-%f, %f]", mercator.MaxLat, mercator.MaxLat)}
	}
	if math.IsNaN(s.Longitude) || math.Abs(s.Longitude) > 180 {
		return &mercator.InvalidConfigError{Field: "longitude", Value: s.Longitude, Reason: "must be within [-180, 180]"}
	}
	if s.Zoom > mercator.MaxZoom {
		return &mercator.InvalidConfigError{Field: "zoom", Value: s.Zoom,
			Reason: fmt.Sprintf("must be at most %d", mercator.MaxZoom)}
	}
	for _, p := range s.StepCoords {
		if len(p) != 2 {
			return &mercator.InvalidConfigError{Field: "step_coords", Value: p, Reason: "each step must be a [dx, dy] pair"}
		}
	}
	if len(s.StepCoords) == 0 && s.MaxTiles <= 0 {
		return &mercator.InvalidConfigError{Field: "max_tiles", Value: s.MaxTiles, Reason: "must be positive"}
	}
	if s.Workers <= 0 {
		return &mercator.InvalidConfigError{Field: "workers", Value: s.Workers, Reason: "must be positive"}
	}
	if s.ROISize <= 0 {
		return &mercator.InvalidConfigError{Field: "roi_size", Value: s.ROISize, Reason: "must be positive"}
	}
	cfg := s.Projection()
	if err := cfg.Validate(); err != nil {
		return err
	}
	// A step under one pixel puts every tile on the same spot.
	if cfg.PixelStep() < 1 {
		return &mercator.InvalidConfigError{Field: "image_overlap", Value: s.ImageOverlap,
			Reason: fmt.Sprintf("leaves a step of %.0f pixels between tiles", cfg.PixelStep())}
	}
	return nil
}
