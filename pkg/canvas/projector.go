package canvas

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Projector converts between container pixels and geographic positions for
// the map's current zoom, center and rotation. It is provided by the hosting
// map widget; this package never computes map projections on its own behalf.
type Projector interface {
	PixelToGeo(p Pixel) LatLng
	GeoToPixel(ll LatLng) Pixel
}

// Readier is implemented by projectors that can report whether the map is
// mounted and has a usable view. Projectors without it are assumed ready.
type Readier interface {
	Ready() bool
}

func projectorReady(p Projector) bool {
	if p == nil {
		return false
	}
	if r, ok := p.(Readier); ok {
		return r.Ready()
	}
	return true
}

// Viewport is the visible area of the render surface in container pixels.
type Viewport struct {
	Min Pixel
	Max Pixel

	// BoxRange is the extent of the view in meters as reported by the map
	// widget. Zero means unknown and disables box range limits.
	BoxRange float64
}

// Corners returns the four corners of the viewport rectangle.
func (v Viewport) Corners() [4]Pixel {
	return [4]Pixel{
		{X: v.Min.X, Y: v.Min.Y},
		{X: v.Max.X, Y: v.Min.Y},
		{X: v.Min.X, Y: v.Max.Y},
		{X: v.Max.X, Y: v.Max.Y},
	}
}

// Width returns the viewport width in pixels.
func (v Viewport) Width() float64 { return math.Abs(v.Max.X - v.Min.X) }

// Height returns the viewport height in pixels.
func (v Viewport) Height() float64 { return math.Abs(v.Max.Y - v.Min.Y) }

// ComputeGeoBBox returns the geographic bounding box visible through vp.
//
// All four corners are converted, not only two opposite ones: rotated or tilted
// views do not keep the rectangle axis-aligned in geographic space, and the
// envelope of the diagonal alone would miss parts of the visible area.
func ComputeGeoBBox(vp Viewport, p Projector) (Bounds, error) {
	if !projectorReady(p) {
		return Bounds{}, ErrProjectorUnavailable
	}

	corners := vp.Corners()
	geo := make([]LatLng, 0, len(corners))
	for _, c := range corners {
		ll := p.PixelToGeo(c)
		if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) {
			return Bounds{}, fmt.Errorf("project corner (%.1f, %.1f): %w", c.X, c.Y, ErrProjectorUnavailable)
		}
		geo = append(geo, ll)
	}
	return envelope(geo...), nil
}

// ViewportFromBounds derives the pixel viewport from a geographic bounds
// object produced by the map widget, by projecting its north-east and
// south-west corners.
func ViewportFromBounds(b Bounds, p Projector) (Viewport, error) {
	if !projectorReady(p) {
		return Viewport{}, ErrProjectorUnavailable
	}

	ne := p.GeoToPixel(LatLng{Lat: b.MaxLat, Lng: b.MaxLon})
	sw := p.GeoToPixel(LatLng{Lat: b.MinLat, Lng: b.MinLon})
	return Viewport{
		Min: Pixel{X: math.Min(ne.X, sw.X), Y: math.Min(ne.Y, sw.Y)},
		Max: Pixel{X: math.Max(ne.X, sw.X), Y: math.Max(ne.Y, sw.Y)},
	}, nil
}

// Web Mercator constants (EPSG:3857).
const (
	earthRadius        = 6378137.0
	earthCircumference = 2 * math.Pi * earthRadius
	maxMercatorLat     = 85.05112878
	tileSize           = 256.0
)

// MercatorProjector is a Web Mercator Projector for a container of a given
// size, used by the command line renderer and in tests. Interactive hosts
// pass their own map engine's projector instead.
type MercatorProjector struct {
	Center  LatLng
	Zoom    float64
	Size    Pixel   // container width (X) and height (Y)
	Bearing float64 // map rotation in degrees, clockwise
}

// Ready implements Readier.
func (m *MercatorProjector) Ready() bool {
	return m != nil && m.Size.X > 0 && m.Size.Y > 0 && !math.IsNaN(m.Zoom)
}

func (m *MercatorProjector) scale() float64 {
	return tileSize * math.Pow(2, m.Zoom) / earthCircumference
}

// world returns the position in global pixel space at the current zoom.
func (m *MercatorProjector) world(ll LatLng) Pixel {
	ll.Lat = math.Max(-maxMercatorLat, math.Min(maxMercatorLat, ll.Lat))
	merc := project.WGS84.ToMercator(ll.Point())
	s := m.scale()
	return Pixel{
		X: (merc.X() + earthCircumference/2) * s,
		Y: (earthCircumference/2 - merc.Y()) * s,
	}
}

func (m *MercatorProjector) unworld(p Pixel) LatLng {
	s := m.scale()
	merc := orb.Point{p.X/s - earthCircumference/2, earthCircumference/2 - p.Y/s}
	return ToLatLng(project.Mercator.ToWGS84(merc))
}

// GeoToPixel implements Projector.
func (m *MercatorProjector) GeoToPixel(ll LatLng) Pixel {
	d := m.world(ll).Sub(m.world(m.Center))
	r := rotate(d, -m.Bearing)
	return Pixel{X: m.Size.X/2 + r.X, Y: m.Size.Y/2 + r.Y}
}

// PixelToGeo implements Projector.
func (m *MercatorProjector) PixelToGeo(p Pixel) LatLng {
	d := rotate(Pixel{X: p.X - m.Size.X/2, Y: p.Y - m.Size.Y/2}, m.Bearing)
	return m.unworld(m.world(m.Center).Add(d))
}

// Viewport returns the full container viewport with its box range.
func (m *MercatorProjector) Viewport() Viewport {
	metersPerPixel := math.Cos(m.Center.Lat*math.Pi/180) / m.scale()
	return Viewport{
		Max:      m.Size,
		BoxRange: math.Min(m.Size.X, m.Size.Y) * metersPerPixel,
	}
}

func rotate(p Pixel, degrees float64) Pixel {
	if degrees == 0 {
		return p
	}
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Pixel{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}
