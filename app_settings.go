package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"imagery-dataset/internal/config"
)

// ===================
// Settings Management
// ===================

// GetSettings returns a copy of the current settings
func (a *App) GetSettings() *config.CollectorSettings {
	a.mu.Lock()
	defer a.mu.Unlock()

	settingsCopy := *a.settings
	return &settingsCopy
}

// SaveSettings validates settings and writes them to path
func (a *App) SaveSettings(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.settings.Validate(); err != nil {
		return err
	}
	if err := config.SaveSettings(path, a.settings); err != nil {
		return err
	}

	log.Printf("[App] Settings saved to %s", path)
	return nil
}

// ===================
// Command-line overrides
// ===================

// settingsFlags registers the collector options on a flag set. Only flags given on
// the command line override the loaded settings.
type settingsFlags struct {
	fs         *flag.FlagSet
	configPath string

	lat, lng         float64
	maxTiles, zoom   int
	imageSize        int
	scale, overlap   float64
	steps            string
	saveDir          string
	workers, roiSize int
}

func bindSettingsFlags(fs *flag.FlagSet) *settingsFlags {
	f := &settingsFlags{fs: fs}
	def := config.DefaultSettings()

	fs.StringVar(&f.configPath, "config", "", "settings file (.json or .toml)")
	fs.Float64Var(&f.lat, "lat", def.Latitude, "latitude of the first tile center")
	fs.Float64Var(&f.lng, "lng", def.Longitude, "longitude of the first tile center")
	fs.IntVar(&f.maxTiles, "tiles", def.MaxTiles, "number of tiles to plan")
	fs.IntVar(&f.zoom, "zoom", def.Zoom, "static maps zoom level")
	fs.IntVar(&f.imageSize, "size", def.ImageSize, "requested image side length in pixels")
	fs.Float64Var(&f.scale, "scale", def.Scale, "static maps scale factor")
	fs.Float64Var(&f.overlap, "overlap", def.ImageOverlap, "fraction of overlap between adjacent tiles")
	fs.StringVar(&f.steps, "steps", "", "explicit offsets instead of the spiral, e.g. \"0,0;1,0;1,1\"")
	fs.StringVar(&f.saveDir, "save-dir", def.SaveDir, "directory for fetched images")
	fs.IntVar(&f.workers, "workers", def.Workers, "concurrent downloads")
	fs.IntVar(&f.roiSize, "dims", def.ROISize, "side length of labeled regions")
	return f
}

// load reads the settings file, if any, and applies the flags that were set.
func (f *settingsFlags) load() (*config.CollectorSettings, error) {
	settings, err := config.LoadSettings(f.configPath)
	if err != nil {
		return nil, err
	}

	var applyErr error
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "lat":
			settings.Latitude = f.lat
		case "lng":
			settings.Longitude = f.lng
		case "tiles":
			settings.MaxTiles = f.maxTiles
		case "zoom":
			settings.Zoom = f.zoom
		case "size":
			settings.ImageSize = f.imageSize
		case "scale":
			settings.Scale = f.scale
		case "overlap":
			settings.ImageOverlap = f.overlap
		case "steps":
			steps, err := parseSteps(f.steps)
			if err != nil {
				applyErr = err
				return
			}
			settings.StepCoords = steps
		case "save-dir":
			settings.SaveDir = f.saveDir
		case "workers":
			settings.Workers = f.workers
		case "dims":
			settings.ROISize = f.roiSize
		}
	})
	if applyErr != nil {
		return nil, applyErr
	}
	return settings, nil
}

// parseSteps parses "dx,dy;dx,dy;..."
func parseSteps(s string) ([][]int, error) {
	var steps [][]int
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid step %q: expected dx,dy", pair)
		}
		dx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid step %q: %w", pair, err)
		}
		dy, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid step %q: %w", pair, err)
		}
		steps = append(steps, []int{dx, dy})
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("no steps in %q", s)
	}
	return steps, nil
}
