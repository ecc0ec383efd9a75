package mercator

import (
	"fmt"
	"math"

	"imagery-dataset/internal/spiral"
)

// Limits for static map requests
const (
	MinZoom = 0
	MaxZoom = 21

	// Web Mercator latitude limit. The projection itself is defined on the open
	// interval (-90, 90); the log-tangent term diverges near the poles.
	MaxLat = 85.051129
)

// InvalidConfigError reports a configuration value outside its valid domain.
type InvalidConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// Config describes the static map images a collection run requests: the center of
// the first image, the nominal zoom, the API scale factor and the requested image
// side length. Saved images are Scale*ImageSize pixels on a side.
type Config struct {
	CenterLat float64 `json:"latitude"`
	CenterLng float64 `json:"longitude"`
	Zoom      int     `json:"zoom"`
	Scale     float64 `json:"scale"`
	ImageSize int     `json:"image_size"`
	Overlap   float64 `json:"image_overlap"`
}

// Validate checks the configuration. Latitude is not range-checked here; see
// PixelToLatLng for the valid domain.
func (c Config) Validate() error {
	if c.ImageSize <= 0 {
		return &InvalidConfigError{Field: "image_size", Value: c.ImageSize, Reason: "must be positive"}
	}
	if !(c.Scale > 0) || math.IsInf(c.Scale, 0) {
		return &InvalidConfigError{Field: "scale", Value: c.Scale, Reason: "must be a positive number"}
	}
	if c.Zoom < MinZoom {
		return &InvalidConfigError{Field: "zoom", Value: c.Zoom, Reason: fmt.Sprintf("must be at least %d", MinZoom)}
	}
	if !(c.Overlap >= 0 && c.Overlap < 1) {
		return &InvalidConfigError{Field: "image_overlap", Value: c.Overlap, Reason: "must be in [0, 1)"}
	}
	return nil
}

// EffectiveZoom is the nominal zoom adjusted for the scale factor: scale 2 doubles the
// pixel density, which is the same as one more zoom level.
func (c Config) EffectiveZoom() float64 {
	return float64(c.Zoom) + math.Log2(c.Scale)
}

// Dim returns the side length in pixels of a saved image.
func (c Config) Dim() float64 {
	return c.Scale * float64(c.ImageSize)
}

// PixelStep returns the pixel distance between the centers of adjacent tiles.
func (c Config) PixelStep() float64 {
	return math.Floor((1.0 - c.Overlap) * c.Scale * float64(c.ImageSize))
}

// scaleFactor is the number of pixels per radian of longitude at the effective zoom.
func (c Config) scaleFactor() float64 {
	return 128.0 * math.Pow(2, c.EffectiveZoom()) / math.Pi
}

// centerPixel is the zero-indexed center of an even-sized image, half a pixel before dim/2.
func (c Config) centerPixel() float64 {
	return math.Floor(c.Dim()/2.0) - 0.5
}

// centerAbs returns the absolute Web Mercator pixel position of the configured center.
func (c Config) centerAbs(scaleFact float64) (x, y float64) {
	x = scaleFact * math.Pi * ((c.CenterLng / 180.0) + 1.0)
	yTerm := math.Pi - math.Log(math.Tan(math.Pi*(0.25+c.CenterLat/360.0)))
	y = scaleFact * yTerm
	return x, y
}

// PixelToLatLng returns the latitude and longitude of pixel (px, py) on an image
// centered on the configured coordinate.
//
// Valid for center latitudes in (-90, 90) and finite longitudes; latitudes near the
// poles make the Mercator term diverge.
func PixelToLatLng(px, py float64, cfg Config) (lat, lng float64) {
	scaleFact := cfg.scaleFactor()
	center := cfg.centerPixel()
	centerAbsX, centerAbsY := cfg.centerAbs(scaleFact)

	absX := centerAbsX + (px - center)
	absY := centerAbsY + (py - center)

	expTerm := math.Exp(math.Pi - (absY / scaleFact))
	lat = 180.0 / math.Pi * (2.0*math.Atan(expTerm) - (math.Pi / 2.0))
	lng = 180.0 / math.Pi * ((absX / scaleFact) - math.Pi)
	return lat, lng
}

// LatLngToPixel is the forward projection: the pixel position of (lat, lng) on an
// image centered on the configured coordinate. Pixels may fall outside the image.
func LatLngToPixel(lat, lng float64, cfg Config) (px, py float64) {
	scaleFact := cfg.scaleFactor()
	center := cfg.centerPixel()
	centerAbsX, centerAbsY := cfg.centerAbs(scaleFact)

	absX := scaleFact * math.Pi * ((lng / 180.0) + 1.0)
	absY := scaleFact * (math.Pi - math.Log(math.Tan(math.Pi*(0.25+lat/360.0))))

	px = center + (absX - centerAbsX)
	py = center + (absY - centerAbsY)
	return px, py
}

// TileCoordinate is the resolved center of one tile of the grid.
type TileCoordinate struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	PixelX float64 `json:"pixel_x"`
	PixelY float64 `json:"pixel_y"`
}

// TilePixel returns the pixel position, relative to the first image, of the center of
// the tile at offset.
func TilePixel(offset spiral.GridOffset, cfg Config) (px, py float64) {
	half := cfg.Dim() / 2.0
	step := cfg.PixelStep()
	return half + float64(offset.DX)*step, half + float64(offset.DY)*step
}

// TileCenter resolves the real-world center of the tile at offset.
func TileCenter(offset spiral.GridOffset, cfg Config) TileCoordinate {
	px, py := TilePixel(offset, cfg)
	lat, lng := PixelToLatLng(px, py, cfg)
	return TileCoordinate{Lat: lat, Lng: lng, PixelX: px, PixelY: py}
}

// MetersPerPixel returns the approximate ground resolution at latitude lat.
func MetersPerPixel(lat float64, cfg Config) float64 {
	const equator = 40075016.685578
	return equator * math.Cos(lat*math.Pi/180.0) / (256.0 * math.Pow(2, cfg.EffectiveZoom()))
}
