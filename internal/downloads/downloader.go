package downloads

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"imagery-dataset/internal/common"
	"imagery-dataset/internal/plan"
)

// TileFetcher downloads the image bytes for one plan entry
type TileFetcher interface {
	FetchTile(ctx context.Context, e plan.Entry) ([]byte, error)
}

// TileStore persists fetched images
type TileStore interface {
	Exists(filename string) bool
	Put(e plan.Entry, data []byte) (path string, size int64, err error)
	SaveIndex() error
}

// Report summarizes one batch
type Report struct {
	Fetched int
	Skipped int
	Total   int
	Results []common.TileDownloadResult
}

// Downloader fetches the tiles of a plan into a store
type Downloader struct {
	fetcher            TileFetcher
	store              TileStore
	progressCallback   func(DownloadProgress)
	logCallback        func(string)
	trackEventCallback func(string, map[string]interface{})
	maxWorkers         int

	mu sync.Mutex
}

// NewDownloader creates a new downloader with injected dependencies
func NewDownloader(
	fetcher TileFetcher,
	store TileStore,
	progressCallback func(DownloadProgress),
	logCallback func(string),
	trackEventCallback func(string, map[string]interface{}),
	maxWorkers int,
) *Downloader {
	if maxWorkers <= 0 {
		maxWorkers = DefaultWorkers
	}

	return &Downloader{
		fetcher:            fetcher,
		store:              store,
		progressCallback:   progressCallback,
		logCallback:        logCallback,
		trackEventCallback: trackEventCallback,
		maxWorkers:         maxWorkers,
	}
}

// emitLog emits a log message if callback is set
func (d *Downloader) emitLog(message string) {
	if d.logCallback != nil {
		d.logCallback(message)
	}
}

// emitProgress emits download progress if callback is set
func (d *Downloader) emitProgress(progress DownloadProgress) {
	if d.progressCallback != nil {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.progressCallback(progress)
	}
}

// trackEvent tracks an analytics event if callback is set
func (d *Downloader) trackEvent(event string, properties map[string]interface{}) {
	if d.trackEventCallback != nil {
		d.trackEventCallback(event, properties)
	}
}

// Download fetches every entry whose file is not already in the store. The first
// fetch or write error cancels the remaining work and is returned together with
// the partial report.
func (d *Downloader) Download(ctx context.Context, entries []plan.Entry) (*Report, error) {
	total := len(entries)
	report := &Report{
		Total:   total,
		Results: make([]common.TileDownloadResult, total),
	}
	if total == 0 {
		return report, nil
	}

	d.emitLog(fmt.Sprintf("Downloading %d tiles with %d workers...", total, d.maxWorkers))

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(d.maxWorkers))

	var fetched, skipped int64
	var failed atomic.Bool
	progress := func() {
		f := atomic.LoadInt64(&fetched)
		s := atomic.LoadInt64(&skipped)
		done := int(f + s)
		d.emitProgress(DownloadProgress{
			Downloaded: int(f),
			Skipped:    int(s),
			Total:      total,
			Percent:    done * 100 / total,
			Status:     fmt.Sprintf("Downloading %d/%d tiles", done, total),
		})
	}

	for i, e := range entries {
		if d.store.Exists(e.Filename) {
			report.Results[i] = common.TileDownloadResult{Filename: e.Filename, Skipped: true, Index: i}
			atomic.AddInt64(&skipped, 1)
			progress()
			continue
		}

		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		if failed.Load() {
			sem.Release(1)
			break
		}

		g.Go(func() error {
			defer sem.Release(1)

			result := common.TileDownloadResult{Filename: e.Filename, Index: i}
			data, err := d.fetcher.FetchTile(gctx, e)
			if err != nil {
				result.Error = err
				report.Results[i] = result
				failed.Store(true)
				return fmt.Errorf("failed to download %s: %w", e.Filename, err)
			}

			path, size, err := d.store.Put(e, data)
			if err != nil {
				result.Error = err
				report.Results[i] = result
				failed.Store(true)
				return fmt.Errorf("failed to save %s: %w", e.Filename, err)
			}

			result.Path = path
			result.Size = size
			report.Results[i] = result
			atomic.AddInt64(&fetched, 1)
			progress()
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	report.Fetched = int(atomic.LoadInt64(&fetched))
	report.Skipped = int(atomic.LoadInt64(&skipped))

	if saveErr := d.store.SaveIndex(); saveErr != nil {
		d.emitLog(fmt.Sprintf("Failed to save tile index: %v", saveErr))
		if err == nil {
			err = fmt.Errorf("failed to save tile index: %w", saveErr)
		}
	}

	d.emitLog(fmt.Sprintf("Processed %d/%d tiles (%d fetched, %d already present)",
		report.Fetched+report.Skipped, total, report.Fetched, report.Skipped))

	d.trackEvent("download_complete", map[string]interface{}{
		"source":  common.ProviderStaticMaps,
		"total":   total,
		"fetched": report.Fetched,
		"skipped": report.Skipped,
		"failed":  err != nil,
	})

	if err != nil {
		return report, err
	}

	d.emitProgress(DownloadProgress{
		Downloaded: report.Fetched,
		Skipped:    report.Skipped,
		Total:      total,
		Percent:    100,
		Status:     "Complete",
	})
	return report, nil
}
