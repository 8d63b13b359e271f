package canvas

import (
	"math"

	"github.com/paulmach/orb"
)

// Bounds represents a geographic bounding box in WGS-84 coordinates.
//
// Coordinates are in decimal degrees. A valid Bounds has MinLon <= MaxLon and
// MinLat <= MaxLat.
type Bounds struct {
	MinLon float64 // Western edge
	MinLat float64 // Southern edge
	MaxLon float64 // Eastern edge
	MaxLat float64 // Northern edge
}

// Contains returns true if the point (lon, lat) is within the bounds.
// All four edges are inclusive.
func (b Bounds) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon &&
		lat >= b.MinLat && lat <= b.MaxLat
}

// Intersects returns true if the given bounds intersects with this bounds.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxLon < b.MinLon ||
		other.MinLon > b.MaxLon ||
		other.MaxLat < b.MinLat ||
		other.MinLat > b.MaxLat)
}

// Union returns the smallest bounds covering both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		MinLon: math.Min(b.MinLon, other.MinLon),
		MinLat: math.Min(b.MinLat, other.MinLat),
		MaxLon: math.Max(b.MaxLon, other.MaxLon),
		MaxLat: math.Max(b.MaxLat, other.MaxLat),
	}
}

// Expand returns a new Bounds expanded by the given margin in all directions.
//
// Margin is in decimal degrees.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinLon: b.MinLon - margin,
		MinLat: b.MinLat - margin,
		MaxLon: b.MaxLon + margin,
		MaxLat: b.MaxLat + margin,
	}
}

// Valid reports whether min <= max on both axes and no edge is NaN.
func (b Bounds) Valid() bool {
	for _, v := range [4]float64{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat} {
		if math.IsNaN(v) {
			return false
		}
	}
	return b.MinLon <= b.MaxLon && b.MinLat <= b.MaxLat
}

// envelope returns the axis-aligned bounds of the given points.
func envelope(points ...LatLng) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}

	b := Bounds{
		MinLon: points[0].Lng, MaxLon: points[0].Lng,
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
	}
	for _, p := range points[1:] {
		b.MinLon = math.Min(b.MinLon, p.Lng)
		b.MaxLon = math.Max(b.MaxLon, p.Lng)
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
	}
	return b
}

// boundsFromOrb converts an orb bound ([lon, lat] min/max) into Bounds.
func boundsFromOrb(ob orb.Bound) Bounds {
	return Bounds{
		MinLon: ob.Min.Lon(),
		MinLat: ob.Min.Lat(),
		MaxLon: ob.Max.Lon(),
		MaxLat: ob.Max.Lat(),
	}
}

// LatLng is a geographic position in the map engine's latitude-first order.
//
// Feature geometry is stored in GeoJSON order ([lon, lat]); ToLatLng and Point
// are the only places where the axes are swapped.
type LatLng struct {
	Lat float64
	Lng float64
}

// ToLatLng converts a GeoJSON-ordered point into a LatLng.
func ToLatLng(p orb.Point) LatLng {
	return LatLng{Lat: p[1], Lng: p[0]}
}

// Point converts the position back into a GeoJSON-ordered orb.Point.
func (ll LatLng) Point() orb.Point {
	return orb.Point{ll.Lng, ll.Lat}
}

// Pixel is a position in container (render surface) pixel space.
// X grows to the right, Y grows downwards.
type Pixel struct {
	X float64
	Y float64
}

// Add returns p translated by q.
func (p Pixel) Add(q Pixel) Pixel { return Pixel{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p translated by -q.
func (p Pixel) Sub(q Pixel) Pixel { return Pixel{X: p.X - q.X, Y: p.Y - q.Y} }

// Floor rounds both coordinates down to whole pixels.
func (p Pixel) Floor() Pixel { return Pixel{X: math.Floor(p.X), Y: math.Floor(p.Y)} }
