package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"

	"imagery-dataset/internal/annotation"
	"imagery-dataset/internal/cache"
	"imagery-dataset/internal/common"
	"imagery-dataset/internal/config"
	"imagery-dataset/internal/downloads"
	"imagery-dataset/internal/plan"
	"imagery-dataset/internal/roi"
	"imagery-dataset/internal/staticmaps"
	"imagery-dataset/internal/telemetry"
)

// Linker flags
var (
	AppVersion string = "0.0.0-dev"
)

// App wires the collector settings to the plan, fetch, annotate and crop stages
type App struct {
	settings *config.CollectorSettings
	tracker  telemetry.Tracker
	mu       sync.Mutex

	// Overrides the static maps endpoint, used by tests
	baseURL string
}

// NewApp creates a new App for settings
func NewApp(settings *config.CollectorSettings) *App {
	return &App{
		settings: settings,
		tracker:  telemetry.New(settings.PostHogKey, settings.PostHogHost),
	}
}

// TrackEvent sends an event to PostHog
func (a *App) TrackEvent(event string, props map[string]interface{}) {
	if props == nil {
		props = map[string]interface{}{}
	}
	props["version"] = AppVersion
	a.tracker.Track(event, props)
}

// Shutdown cleans up resources
func (a *App) Shutdown() {
	if err := a.tracker.Close(); err != nil {
		log.Printf("[App] Failed to flush telemetry: %v", err)
	}
}

// client returns a static maps client for the current settings
func (a *App) client() *staticmaps.Client {
	c := staticmaps.NewClient(a.settings.Projection(), a.settings.APIKey)
	if a.baseURL != "" {
		c.SetBaseURL(a.baseURL)
	}
	return c
}

// Plan resolves the tiles of the configured run. Nothing is fetched.
func (a *App) Plan() ([]plan.Entry, error) {
	if err := a.settings.Validate(); err != nil {
		return nil, err
	}

	cfg := a.settings.Projection()
	var (
		entries []plan.Entry
		err     error
	)
	if steps := a.settings.Steps(); steps != nil {
		entries, err = plan.BuildFromSteps(cfg, steps)
	} else {
		entries, err = plan.Build(cfg, a.settings.MaxTiles)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("[App] Planned %d tiles around %.6f, %.6f at effective zoom %.0f",
		len(entries), cfg.CenterLat, cfg.CenterLng, cfg.EffectiveZoom())
	a.TrackEvent("plan_built", map[string]interface{}{
		"tiles":      len(entries),
		"zoom":       cfg.Zoom,
		"scale":      cfg.Scale,
		"image_size": cfg.ImageSize,
		"custom":     a.settings.Steps() != nil,
	})
	return entries, nil
}

// TileURL returns the request URL of e without credentials
func (a *App) TileURL(e plan.Entry) string {
	return a.client().TileURL(e)
}

// Fetch downloads the planned tiles into the save directory, skipping files
// that are already there.
func (a *App) Fetch(ctx context.Context, entries []plan.Entry) (*downloads.Report, error) {
	if a.settings.APIKey == "" {
		log.Printf("[App] %s is not set, requests are unauthenticated", config.EnvAPIKey)
	}

	store, err := cache.NewTileStore(a.settings.SaveDir)
	if err != nil {
		return nil, err
	}
	log.Printf("[App] Saving %s tiles to %s (run %s)", common.DisplayNameStaticMaps, store.Dir(), store.RunID())

	lastBucket := -1
	d := downloads.NewDownloader(
		a.client(),
		store,
		func(p downloads.DownloadProgress) {
			if bucket := p.Percent / 10; bucket != lastBucket {
				lastBucket = bucket
				log.Printf("[Download] %s (%d%%)", p.Status, p.Percent)
			}
		},
		func(message string) { log.Printf("[Download] %s", message) },
		a.TrackEvent,
		a.settings.Workers,
	)
	return d.Download(ctx, entries)
}

// Images lists the tile images in dir without modifying it
func (a *App) Images(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	return cache.ListTiles(dir)
}

// Annotate labels the images not already covered by seen, reading commands from in.
// The returned records are the new ones followed by seen.
func (a *App) Annotate(in io.Reader, images []string, seen []annotation.Record, rng *rand.Rand) ([]annotation.Record, error) {
	pending := annotation.Pending(images, annotation.SeenFiles(seen), rng)
	log.Printf("[App] %d of %d images to label", len(pending), len(images))

	records, err := annotation.Run(in, pending, annotation.NewSession(a.settings.ROISize))
	if err != nil {
		return nil, fmt.Errorf("annotation stopped: %w", err)
	}
	return append(records, seen...), nil
}

// Crop cuts the labeled regions out of the images in imagesDir and writes them
// under outDir, numbering samples from startNum.
func (a *App) Crop(records []annotation.Record, imagesDir, outDir string, startNum int) ([]roi.Result, error) {
	images, err := cache.NewImageCache(cache.DefaultImageCacheSize)
	if err != nil {
		return nil, err
	}
	cropper, err := roi.NewCropper(imagesDir, outDir, a.settings.ROISize, startNum, images)
	if err != nil {
		return nil, err
	}

	results, err := cropper.Crop(records)
	if err != nil {
		return results, err
	}

	written := cropper.NextNum - startNum
	_, hits, misses := images.Stats()
	log.Printf("[App] Wrote %d samples from %d records (image cache: %d hits, %d misses)",
		written, len(records), hits, misses)
	a.TrackEvent("rois_cropped", map[string]interface{}{
		"records": len(records),
		"samples": written,
		"size":    a.settings.ROISize,
	})
	return results, nil
}
