package plan

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"imagery-dataset/internal/mercator"
)

// Footprint returns the ground area covered by the saved image of e.
func Footprint(e Entry, cfg mercator.Config) orb.Polygon {
	half := cfg.Dim() / 2.0
	corner := func(dx, dy float64) orb.Point {
		lat, lng := mercator.PixelToLatLng(e.Coordinate.PixelX+dx, e.Coordinate.PixelY+dy, cfg)
		return orb.Point{lng, lat}
	}

	// Pixel y grows southward.
	sw := corner(-half, half)
	se := corner(half, half)
	ne := corner(half, -half)
	nw := corner(-half, -half)

	return orb.Polygon{orb.Ring{sw, se, ne, nw, sw}}
}

// FeatureCollection exports the plan as GeoJSON: one footprint polygon per tile,
// with the filename, offsets, center and plan order as properties.
func FeatureCollection(entries []Entry, cfg mercator.Config) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, e := range entries {
		f := geojson.NewFeature(Footprint(e, cfg))
		f.Properties["order"] = i
		f.Properties["filename"] = e.Filename
		f.Properties["dx"] = e.Offset.DX
		f.Properties["dy"] = e.Offset.DY
		f.Properties["lat"] = e.Coordinate.Lat
		f.Properties["lng"] = e.Coordinate.Lng
		fc.Append(f)
	}
	return fc
}
