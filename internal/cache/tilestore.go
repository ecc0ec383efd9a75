package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"imagery-dataset/internal/downloads"
	"imagery-dataset/internal/plan"
	"imagery-dataset/internal/utils/naming"
)

// IndexFilename is the manifest written next to the fetched images
const IndexFilename = "tiles_index.json"

// TileStore keeps fetched images in a flat directory under their planned filenames
// and records where each one came from in a JSON manifest.
type TileStore struct {
	baseDir string
	runID   string
	mu      sync.RWMutex
	index   map[string]*TileRecord
}

// TileRecord stores information about a fetched image
type TileRecord struct {
	Filename  string    `json:"filename"`
	DX        int       `json:"dx"`
	DY        int       `json:"dy"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Zoom      int       `json:"zoom"`
	Size      int64     `json:"size"`
	FetchedAt time.Time `json:"fetchedAt"`
	RunID     string    `json:"runId,omitempty"`
}

// NewTileStore opens the store at baseDir, creating it when needed.
// Manifest: baseDir/tiles_index.json
func NewTileStore(baseDir string) (*TileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}

	s := &TileStore{
		baseDir: baseDir,
		runID:   uuid.NewString(),
		index:   make(map[string]*TileRecord),
	}

	if err := s.loadIndex(); err != nil {
		// If the manifest can't be loaded, rebuild it from the images on disk
		if err := s.rebuildIndex(); err != nil {
			return nil, fmt.Errorf("failed to initialize tile store: %w", err)
		}
	}

	return s, nil
}

// RunID identifies the records written by this process
func (s *TileStore) RunID() string {
	return s.runID
}

// Dir returns the base directory of the store
func (s *TileStore) Dir() string {
	return s.baseDir
}

// Path returns the on-disk location of filename
func (s *TileStore) Path(filename string) string {
	return filepath.Join(s.baseDir, filename)
}

// Exists reports whether filename is already on disk
func (s *TileStore) Exists(filename string) bool {
	info, err := os.Stat(s.Path(filename))
	return err == nil && !info.IsDir()
}

// Put writes the image for e, replacing any previous file atomically
func (s *TileStore) Put(e plan.Entry, data []byte) (string, int64, error) {
	path := s.Path(e.Filename)
	if err := downloads.ValidateCachePath(s.baseDir, path); err != nil {
		return "", 0, err
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return "", 0, fmt.Errorf("failed to write image: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return "", 0, fmt.Errorf("failed to rename image file: %w", err)
	}

	size := int64(len(data))
	zoom := 0
	if name, err := naming.ParseTileFilename(e.Filename); err == nil {
		zoom = name.Zoom
	}

	s.mu.Lock()
	s.index[e.Filename] = &TileRecord{
		Filename:  e.Filename,
		DX:        e.Offset.DX,
		DY:        e.Offset.DY,
		Lat:       e.Coordinate.Lat,
		Lng:       e.Coordinate.Lng,
		Zoom:      zoom,
		Size:      size,
		FetchedAt: time.Now().UTC(),
		RunID:     s.runID,
	}
	s.mu.Unlock()

	return path, size, nil
}

// Record returns the manifest entry for filename
func (s *TileStore) Record(filename string) (TileRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.index[filename]
	if !ok {
		return TileRecord{}, false
	}
	return *rec, true
}

// Filenames lists the recorded images in name order
func (s *TileStore) Filenames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.index))
	for name := range s.index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns store statistics
func (s *TileStore) Stats() (entries int, sizeBytes int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.index {
		sizeBytes += rec.Size
	}
	return len(s.index), sizeBytes
}

// loadIndex loads the manifest from disk
func (s *TileStore) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(s.baseDir, IndexFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("manifest not found")
		}
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	var index map[string]*TileRecord
	if err := json.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}
	if index == nil {
		index = make(map[string]*TileRecord)
	}

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()
	return nil
}

// SaveIndex writes the manifest to disk
func (s *TileStore) SaveIndex() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.index, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	// Write to temp file first, then rename (atomic operation)
	indexPath := filepath.Join(s.baseDir, IndexFilename)
	tempPath := indexPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tempPath, indexPath); err != nil {
		return fmt.Errorf("failed to rename manifest file: %w", err)
	}
	return nil
}

// rebuildIndex rebuilds the manifest by scanning the save directory for tile images
func (s *TileStore) rebuildIndex() error {
	index, err := scanTiles(s.baseDir)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()

	return s.SaveIndex()
}

// ListTiles returns the tile images in dir in name order. It never writes to dir.
func ListTiles(dir string) ([]string, error) {
	index, err := scanTiles(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// scanTiles builds records for the files in dir that follow the tile naming pattern
func scanTiles(dir string) (map[string]*TileRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan save directory: %w", err)
	}

	index := make(map[string]*TileRecord)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, err := naming.ParseTileFilename(entry.Name())
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		index[entry.Name()] = &TileRecord{
			Filename:  entry.Name(),
			DX:        name.DX,
			DY:        name.DY,
			Lat:       name.Lat,
			Lng:       name.Lng,
			Zoom:      name.Zoom,
			Size:      info.Size(),
			FetchedAt: info.ModTime().UTC(),
		}
	}
	return index, nil
}
