package downloads

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DownloadProgress tracks the progress of a download operation
type DownloadProgress struct {
	Downloaded int    `json:"downloaded"`
	Skipped    int    `json:"skipped"`
	Total      int    `json:"total"`
	Percent    int    `json:"percent"`
	Status     string `json:"status"`
}

const (
	DefaultWorkers = 10 // Default number of concurrent download workers
)

// ValidateCachePath validates that a file path is within the cache directory
// This prevents path traversal attacks from malicious input
func ValidateCachePath(cacheDir, filePath string) error {
	if cacheDir == "" || filePath == "" {
		return fmt.Errorf("cache directory or file path is empty")
	}

	absCacheDir, err := filepath.Abs(cacheDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for cache directory: %w", err)
	}

	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for file: %w", err)
	}

	relPath, err := filepath.Rel(absCacheDir, absFilePath)
	if err != nil {
		return fmt.Errorf("failed to get relative path: %w", err)
	}

	if relPath == "." || strings.HasPrefix(relPath, "..") {
		return fmt.Errorf("path traversal attempt detected: %s is outside cache directory %s", filePath, cacheDir)
	}

	return nil
}
