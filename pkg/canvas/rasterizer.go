package canvas

import (
	"fmt"
	"image"
	"math"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/featurecanvas/internal/raster"
)

// RasterState is the phase of the rasterizer's draw cycle.
type RasterState int

const (
	StateIdle RasterState = iota
	StateClearing
	StateDrawing
)

// String returns the state name.
func (s RasterState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateClearing:
		return "clearing"
	case StateDrawing:
		return "drawing"
	default:
		return "unknown"
	}
}

// Pass selects which paints and geometry a draw cycle uses.
type Pass int

const (
	// PassArea draws feature geometry with the area paints.
	PassArea Pass = iota
	// PassDiagram draws proportional symbols at feature centroids.
	PassDiagram
)

// DrawStats reports the outcome of one draw cycle.
type DrawStats struct {
	Drawn   int     // features that produced pixels
	Hidden  int     // features whose paint is fully transparent
	Skipped int     // features with malformed geometry
	Errors  []error // one entry per skipped feature
}

// RasterizerOptions configures a Rasterizer.
type RasterizerOptions struct {
	// PointAsMarker draws points whose paint names an icon as that icon
	// instead of a circle or square.
	PointAsMarker bool

	// Icons maps icon names to SVG sources.
	Icons map[string][]byte

	// IconCacheBytes bounds the memory of rasterized icons (0 = 32 MiB).
	IconCacheBytes int64
}

// Rasterizer draws prepared features onto a pixel canvas.
//
// Every Draw clears the whole canvas and redraws the given features once, in
// the order given: later features cover earlier ones. Vertex and symbol
// positions are floor-rounded to whole pixels so shapes do not shimmer as the
// map pans by fractions of a pixel.
//
// A Rasterizer is not safe for concurrent use.
type Rasterizer struct {
	canvas        *raster.Canvas
	icons         *raster.IconSet
	pointAsMarker bool
	state         RasterState
	hovered       map[FeatureID]bool
}

// NewRasterizer allocates a rasterizer with a transparent canvas.
func NewRasterizer(width, height int, opts RasterizerOptions) (*Rasterizer, error) {
	if width <= 0 || height <= 0 {
		return nil, &ErrInvalidOptions{Field: "size", Reason: fmt.Sprintf("%dx%d is empty", width, height)}
	}

	r := &Rasterizer{
		canvas:        raster.New(width, height),
		pointAsMarker: opts.PointAsMarker,
	}
	if len(opts.Icons) > 0 {
		icons, err := raster.NewIconSet(opts.Icons, opts.IconCacheBytes)
		if err != nil {
			return nil, err
		}
		r.icons = icons
	}
	return r, nil
}

// Image returns the canvas pixel buffer.
func (r *Rasterizer) Image() *image.RGBA {
	return r.canvas.Image()
}

// State returns the current draw cycle phase.
func (r *Rasterizer) State() RasterState {
	return r.state
}

// Resize changes the canvas size. The content is lost when the size changes.
func (r *Rasterizer) Resize(width, height int) {
	r.canvas.Resize(width, height)
}

// SetHovered sets the features drawn with their hovered paints.
func (r *Rasterizer) SetHovered(ids map[FeatureID]bool) {
	r.hovered = ids
}

// Clear empties the canvas.
func (r *Rasterizer) Clear() {
	r.state = StateClearing
	r.canvas.Clear()
	r.state = StateIdle
}

// Close releases cached icons.
func (r *Rasterizer) Close() {
	r.icons.Close()
}

// Draw clears the canvas and draws features in order.
//
// Features with malformed geometry are skipped and reported in the returned
// stats; they never abort the cycle. When the projector is unavailable the
// cycle is skipped entirely and the canvas is left untouched.
func (r *Rasterizer) Draw(features []*PreparedFeature, p Projector, pass Pass) (DrawStats, error) {
	var stats DrawStats
	if !projectorReady(p) {
		return stats, ErrProjectorUnavailable
	}

	r.state = StateClearing
	r.canvas.Clear()

	r.state = StateDrawing
	defer func() { r.state = StateIdle }()

	for _, pf := range features {
		var err error
		var drawn bool
		switch pass {
		case PassDiagram:
			drawn, err = r.drawDiagram(pf, p)
		default:
			drawn, err = r.drawArea(pf, p)
		}

		switch {
		case err != nil:
			stats.Skipped++
			stats.Errors = append(stats.Errors, fmt.Errorf("feature %q: %w", pf.FID.String(), err))
		case drawn:
			stats.Drawn++
		default:
			stats.Hidden++
		}
	}
	return stats, nil
}

func (r *Rasterizer) paintFor(v Variants, pf *PreparedFeature) Paint {
	return v.Pick(pf.Selected, r.hovered[pf.FID])
}

func (r *Rasterizer) drawDiagram(pf *PreparedFeature, p Projector) (bool, error) {
	if pf.Diagram == nil {
		return false, nil
	}
	if err := validatePoint(pf.Centroid); err != nil {
		return false, err
	}

	paint := r.paintFor(*pf.Diagram, pf)
	if !paint.Visible() || paint.Radius <= 0 {
		return false, nil
	}
	r.drawSymbol(pf.Centroid, paint, p)
	return true, nil
}

func (r *Rasterizer) drawArea(pf *PreparedFeature, p Projector) (bool, error) {
	if err := ValidateGeometry(pf.Feature.Geometry); err != nil {
		return false, err
	}

	paint := r.paintFor(pf.Area, pf)
	if !paint.Visible() {
		return false, nil
	}

	switch g := pf.Feature.Geometry.(type) {
	case orb.Point:
		if paint.Radius <= 0 {
			return false, nil
		}
		r.drawSymbol(g, paint, p)
	case orb.MultiPoint:
		if paint.Radius <= 0 {
			return false, nil
		}
		for _, pt := range g {
			r.drawSymbol(pt, paint, p)
		}
	case orb.LineString:
		r.canvas.Polyline([][]raster.Point{projectPath(g, p)}, toRasterPaint(paint))
	case orb.MultiLineString:
		lines := make([][]raster.Point, 0, len(g))
		for _, ls := range g {
			lines = append(lines, projectPath(ls, p))
		}
		r.canvas.Polyline(lines, toRasterPaint(paint))
	case orb.Polygon:
		r.drawPolygon(g, paint, p)
	case orb.MultiPolygon:
		for _, poly := range g {
			r.drawPolygon(poly, paint, p)
		}
	}
	return true, nil
}

func (r *Rasterizer) drawPolygon(poly orb.Polygon, paint Paint, p Projector) {
	rings := make([][]raster.Point, 0, len(poly))
	for _, ring := range poly {
		rings = append(rings, projectPath(ring, p))
	}
	r.canvas.Polygon(rings, toRasterPaint(paint))
}

// drawSymbol draws a point symbol: an icon, a square of side 2×radius, or a
// circle, centered on the floor-rounded pixel position.
func (r *Rasterizer) drawSymbol(pt orb.Point, paint Paint, p Projector) {
	c := p.GeoToPixel(ToLatLng(pt)).Floor()

	if r.pointAsMarker && paint.Icon != "" && r.icons.Has(paint.Icon) {
		size := int(math.Max(1, math.Round(2*paint.Radius)))
		if img, err := r.icons.Render(paint.Icon, size); err == nil {
			r.canvas.DrawImage(img, int(c.X), int(c.Y))
			return
		}
	}

	rp := toRasterPaint(paint)
	if paint.Shape == ShapeSquare {
		a := 2 * paint.Radius
		r.canvas.Rect(c.X-a/2, c.Y-a/2, c.X+a/2, c.Y+a/2, rp)
		return
	}
	r.canvas.Circle(c.X, c.Y, paint.Radius, rp)
}

func projectPath[T ~[]orb.Point](path T, p Projector) []raster.Point {
	out := make([]raster.Point, len(path))
	for i, pt := range path {
		px := p.GeoToPixel(ToLatLng(pt)).Floor()
		out[i] = raster.Point{X: px.X, Y: px.Y}
	}
	return out
}

func toRasterPaint(p Paint) raster.Paint {
	rp := raster.Paint{}
	if p.HasFill() {
		rp.Fill = p.FillRGBA()
	}
	if p.HasStroke() {
		rp.Stroke = p.StrokeRGBA()
		rp.StrokeWidth = p.StrokeWidth
	}
	return rp
}
