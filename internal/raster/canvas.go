// Package raster draws filled and stroked shapes onto an RGBA pixel buffer.
//
// It is the pixel backend of the feature canvas: callers hand it shapes that
// are already in container pixel coordinates, and it only knows about paths
// and colors.
package raster

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// Point is a position in pixel space.
type Point struct {
	X, Y float64
}

// Paint describes how a shape is filled and outlined. Colors carry their
// final opacity in the alpha channel; a zero alpha or zero width channel is
// not drawn.
type Paint struct {
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
}

func (p Paint) hasFill() bool   { return p.Fill.A > 0 }
func (p Paint) hasStroke() bool { return p.Stroke.A > 0 && p.StrokeWidth > 0 }

// Canvas is a pixel buffer with a reusable rasterizer.
//
// A Canvas is not safe for concurrent use.
type Canvas struct {
	img     *image.RGBA
	scanner *rasterx.ScannerGV
	filler  *rasterx.Filler
	stroker *rasterx.Stroker
}

// New allocates a transparent canvas of the given size.
func New(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// Resize replaces the pixel buffer when the size changed.
func (c *Canvas) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if c.img != nil && c.img.Bounds().Dx() == width && c.img.Bounds().Dy() == height {
		return
	}

	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	c.scanner = rasterx.NewScannerGV(width, height, c.img, c.img.Bounds())
	c.filler = rasterx.NewFiller(width, height, c.scanner)
	c.stroker = rasterx.NewStroker(width, height, c.scanner)
}

// Image returns the underlying pixel buffer.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Size returns the canvas width and height.
func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear resets every pixel to transparent.
func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// Circle draws a circle centered at (cx, cy).
func (c *Canvas) Circle(cx, cy, r float64, p Paint) {
	if r <= 0 {
		return
	}
	c.shape(p, func(a rasterx.Adder) {
		rasterx.AddCircle(cx, cy, r, a)
	})
}

// Rect draws an axis-aligned rectangle.
func (c *Canvas) Rect(minX, minY, maxX, maxY float64, p Paint) {
	if maxX <= minX || maxY <= minY {
		return
	}
	c.shape(p, func(a rasterx.Adder) {
		rasterx.AddRect(minX, minY, maxX, maxY, 0, a)
	})
}

// Polygon draws all rings as a single path. The first ring is the outer
// boundary and the rest are holes. The scanner only fills with the nonzero
// rule, so every hole is traced against the winding of the outer ring.
func (c *Canvas) Polygon(rings [][]Point, p Paint) {
	if len(rings) == 0 {
		return
	}
	outer := signedArea(rings[0])
	c.shape(p, func(a rasterx.Adder) {
		for i, ring := range rings {
			if i > 0 && sameWinding(outer, signedArea(ring)) {
				addPathReversed(a, ring)
				continue
			}
			addPath(a, ring, true)
		}
	})
}

// Polyline strokes open paths. Polylines have no fill.
func (c *Canvas) Polyline(lines [][]Point, p Paint) {
	if !p.hasStroke() {
		return
	}
	c.stroke(p, func(a rasterx.Adder) {
		for _, line := range lines {
			addPath(a, line, false)
		}
	})
}

// DrawImage composites img centered at (cx, cy) over the canvas.
func (c *Canvas) DrawImage(img image.Image, cx, cy int) {
	b := img.Bounds()
	origin := image.Pt(cx-b.Dx()/2, cy-b.Dy()/2)
	draw.Draw(c.img, image.Rectangle{Min: origin, Max: origin.Add(b.Size())}, img, b.Min, draw.Over)
}

// shape fills and then outlines the path built by trace.
func (c *Canvas) shape(p Paint, trace func(rasterx.Adder)) {
	if p.hasFill() {
		c.filler.Clear()
		c.filler.SetColor(p.Fill)
		trace(c.filler)
		c.filler.Draw()
	}
	if p.hasStroke() {
		c.stroke(p, trace)
	}
}

func (c *Canvas) stroke(p Paint, trace func(rasterx.Adder)) {
	c.stroker.Clear()
	c.stroker.SetWinding(true)
	c.stroker.SetStroke(
		fixed.Int26_6(p.StrokeWidth*64),
		fixed.Int26_6(4*64),
		rasterx.ButtCap, rasterx.ButtCap,
		rasterx.RoundGap,
		rasterx.Round,
	)
	c.stroker.SetColor(p.Stroke)
	trace(c.stroker)
	c.stroker.Draw()
}

func addPath(a rasterx.Adder, pts []Point, closed bool) {
	if len(pts) < 2 {
		return
	}
	a.Start(rasterx.ToFixedP(pts[0].X, pts[0].Y))
	for _, pt := range pts[1:] {
		a.Line(rasterx.ToFixedP(pt.X, pt.Y))
	}
	a.Stop(closed)
}

func addPathReversed(a rasterx.Adder, pts []Point) {
	rev := make([]Point, len(pts))
	for i, pt := range pts {
		rev[len(pts)-1-i] = pt
	}
	addPath(a, rev, true)
}

// signedArea is the shoelace area of ring. Its sign gives the winding.
func signedArea(ring []Point) float64 {
	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return sum / 2
}

func sameWinding(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
