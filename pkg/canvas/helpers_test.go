package canvas

import (
	"image"
	"io"
	"log/slog"
	"math"

	"github.com/paulmach/orb"
)

// linearProjector maps degrees to pixels with a fixed scale, north up.
// origin is the geographic position of pixel (0, 0).
type linearProjector struct {
	origin LatLng
	scale  float64 // pixels per degree
}

func (p linearProjector) GeoToPixel(ll LatLng) Pixel {
	return Pixel{
		X: (ll.Lng - p.origin.Lng) * p.scale,
		Y: (p.origin.Lat - ll.Lat) * p.scale,
	}
}

func (p linearProjector) PixelToGeo(px Pixel) LatLng {
	return LatLng{
		Lat: p.origin.Lat - px.Y/p.scale,
		Lng: p.origin.Lng + px.X/p.scale,
	}
}

// testProjector puts (lon 10, lat 20) at pixel (10, 10).
var testProjector = linearProjector{origin: LatLng{Lat: 21, Lng: 9}, scale: 10}

type unreadyProjector struct{ linearProjector }

func (unreadyProjector) Ready() bool { return false }

type nanProjector struct{ linearProjector }

func (nanProjector) PixelToGeo(Pixel) LatLng { return LatLng{Lat: math.NaN(), Lng: math.NaN()} }

func pointFeature(id string, lon, lat float64, props map[string]interface{}) Feature {
	return Feature{ID: StringID(id), Geometry: orb.Point{lon, lat}, Properties: props}
}

func squarePolygon(minLon, minLat, side float64) orb.Polygon {
	return orb.Polygon{{
		{minLon, minLat},
		{minLon + side, minLat},
		{minLon + side, minLat + side},
		{minLon, minLat + side},
		{minLon, minLat},
	}}
}

// sizedRules sizes symbols from the "size" property and fills them with the
// color named by the "color" property.
func sizedRules() StyleRules {
	return StyleRules{
		Base: Style{Shape: Ptr(ShapeCircle)},
		AttributeStyles: []AttributeStyle{
			{Property: "size", Scale: &AttributeScale{Target: ScaleSize}},
			{Property: "color", Values: map[string]Style{
				"red":   {Fill: MustColor("#ff0000")},
				"blue":  {Fill: MustColor("#0000ff")},
				"green": {Fill: MustColor("#00ff00")},
			}},
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fids(prepared []*PreparedFeature) []string {
	out := make([]string, len(prepared))
	for i, pf := range prepared {
		out[i] = pf.FID.String()
	}
	return out
}

func isRed(img *image.RGBA, x, y int) bool {
	c := img.RGBAAt(x, y)
	return c.R > 200 && c.G < 50 && c.B < 50
}

func isBlue(img *image.RGBA, x, y int) bool {
	c := img.RGBAAt(x, y)
	return c.B > 200 && c.R < 50 && c.G < 50
}

func isTransparent(img *image.RGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return false
		}
	}
	return true
}
