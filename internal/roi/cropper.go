package roi

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"imagery-dataset/internal/annotation"
	"imagery-dataset/internal/cache"
	"imagery-dataset/internal/utils/naming"
)

// DefaultSize is the side length of a sample cut from a tile
const DefaultSize = 48

// Result is an annotation record with the written sample paths keyed by "(x, y)".
type Result struct {
	annotation.Record
	PositiveROIs map[string]string `json:"positive_roi_arrs,omitempty"`
	NegativeROIs map[string]string `json:"negative_roi_arrs,omitempty"`
}

// Cropper cuts labeled regions out of tile images and writes them as numbered
// training samples.
type Cropper struct {
	ImagesDir string
	OutDir    string
	Width     int
	Height    int
	NextNum   int

	images *cache.ImageCache
}

// NewCropper checks both directories and creates the sample directories under outDir.
// An empty directory means the working directory.
func NewCropper(imagesDir, outDir string, size, startNum int, images *cache.ImageCache) (*Cropper, error) {
	if size <= 0 {
		size = DefaultSize
	}
	for _, dir := range []string{imagesDir, outDir} {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("can't find directory: %s", dir)
		}
	}
	for _, sub := range []string{naming.PositiveSamplesDir, naming.NegativeSamplesDir} {
		if err := os.MkdirAll(filepath.Join(outDir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create sample directory: %w", err)
		}
	}

	if images == nil {
		var err error
		if images, err = cache.NewImageCache(0); err != nil {
			return nil, err
		}
	}

	return &Cropper{
		ImagesDir: imagesDir,
		OutDir:    outDir,
		Width:     size,
		Height:    size,
		NextNum:   startNum,
		images:    images,
	}, nil
}

// Crop writes one sample per point that lies far enough from the image edge and
// returns one result per record. Samples are numbered from NextNum, which is
// advanced past the last file written.
func (c *Cropper) Crop(records []annotation.Record) ([]Result, error) {
	results := make([]Result, 0, len(records))
	for _, rec := range records {
		img, err := c.images.Load(filepath.Join(c.ImagesDir, rec.ImgFile))
		if err != nil {
			return results, err
		}

		res := Result{Record: rec}
		if res.PositiveROIs, err = c.cropPoints(img, rec.PositivePoints, naming.PositiveSamplesDir); err != nil {
			return results, err
		}
		if res.NegativeROIs, err = c.cropPoints(img, rec.NegativePoints, naming.NegativeSamplesDir); err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (c *Cropper) cropPoints(img image.Image, points []annotation.Point, subdir string) (map[string]string, error) {
	var written map[string]string
	for _, p := range points {
		roi, ok := Extract(img, p, c.Width, c.Height)
		if !ok {
			log.Printf("[ROI] Skipping %s: too close to the edge", p.Key())
			continue
		}

		path := filepath.Join(c.OutDir, subdir, naming.GenerateSampleFilename(c.NextNum))
		if err := writePNG(path, roi); err != nil {
			return written, err
		}
		c.NextNum++

		if written == nil {
			written = make(map[string]string)
		}
		written[p.Key()] = path
	}
	return written, nil
}

// Extract copies the width x height region centered on p. It reports false when the
// region would cross the image edge. Odd sizes are rounded down to even.
func Extract(img image.Image, p annotation.Point, width, height int) (image.Image, bool) {
	halfW, halfH := width/2, height/2
	b := img.Bounds()
	col, row := p.X(), p.Y()

	if row < halfH || col < halfW || row+halfH > b.Dy() || col+halfW > b.Dx() {
		return nil, false
	}

	src := image.Rect(col-halfW, row-halfH, col+halfW, row+halfH).Add(b.Min)
	dst := image.NewRGBA(image.Rect(0, 0, 2*halfW, 2*halfH))
	draw.Copy(dst, image.Point{}, img, src, draw.Src, nil)
	return dst, true
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create sample: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode sample: %w", err)
	}
	return f.Close()
}
