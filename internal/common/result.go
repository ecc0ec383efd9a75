package common

// TileDownloadResult represents the outcome of fetching a single planned tile
type TileDownloadResult struct {
	// Filename is the planned tile filename
	Filename string

	// Path is where the tile is stored on disk
	Path string

	// Size is the number of bytes written, zero when skipped
	Size int64

	// Skipped is set when the file already existed
	Skipped bool

	// Error contains any error that occurred during download
	Error error

	// Index preserves the plan order for concurrent downloads
	Index int
}
