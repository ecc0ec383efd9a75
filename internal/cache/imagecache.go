package cache

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultImageCacheSize bounds the decoded images kept in memory. A 1280x1280 RGBA
// tile is about 6.5 MB.
const DefaultImageCacheSize = 16

// ImageCache provides LRU caching of decoded images keyed by path
type ImageCache struct {
	lru    *lru.Cache[string, image.Image]
	hits   int64
	misses int64
}

// NewImageCache creates a cache holding at most size decoded images
func NewImageCache(size int) (*ImageCache, error) {
	if size <= 0 {
		size = DefaultImageCacheSize
	}
	l, err := lru.New[string, image.Image](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}
	return &ImageCache{lru: l}, nil
}

// Load returns the decoded image at path, reading it from disk on a miss
func (c *ImageCache) Load(path string) (image.Image, error) {
	if img, ok := c.lru.Get(path); ok {
		atomic.AddInt64(&c.hits, 1)
		return img, nil
	}
	atomic.AddInt64(&c.misses, 1)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	c.lru.Add(path, img)
	return img, nil
}

// Stats returns cache statistics
func (c *ImageCache) Stats() (entries int, hits, misses int64) {
	return c.lru.Len(), atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Purge drops every cached image
func (c *ImageCache) Purge() {
	c.lru.Purge()
}
