package canvas

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func newTestRasterizer(t *testing.T) *Rasterizer {
	t.Helper()
	r, err := NewRasterizer(20, 20, RasterizerOptions{})
	if err != nil {
		t.Fatalf("NewRasterizer failed: %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

// Two points at the same position: the larger one is drawn first and the
// smaller one stays visible on top of it.
func TestRasterizerSmallerOnTop(t *testing.T) {
	r := newTestRasterizer(t)

	prepared := prepareSized(t, []Feature{
		pointFeature("a", 10, 20, map[string]interface{}{"size": 4.0, "color": "red"}),
		pointFeature("b", 10, 20, map[string]interface{}{"size": 8.0, "color": "blue"}),
	})
	ordered := Order(prepared)

	stats, err := r.Draw(ordered, testProjector, PassArea)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if stats.Drawn != 2 {
		t.Errorf("Expected 2 drawn features, got %+v", stats)
	}
	if r.State() != StateIdle {
		t.Errorf("Expected idle state after draw, got %s", r.State())
	}

	img := r.Image()
	if !isRed(img, 10, 10) {
		t.Errorf("Expected a (red) on top at the center, got %v", img.RGBAAt(10, 10))
	}
	if !isBlue(img, 16, 10) {
		t.Errorf("Expected b (blue) around a, got %v", img.RGBAAt(16, 10))
	}
	if img.RGBAAt(0, 0).A != 0 {
		t.Errorf("Expected transparent corner, got %v", img.RGBAAt(0, 0))
	}
}

func TestRasterizerClearsBetweenCycles(t *testing.T) {
	r := newTestRasterizer(t)

	prepared := prepareSized(t, []Feature{
		pointFeature("a", 10, 20, map[string]interface{}{"size": 4.0, "color": "red"}),
	})
	if _, err := r.Draw(prepared, testProjector, PassArea); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	if _, err := r.Draw(nil, testProjector, PassArea); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if !isTransparent(r.Image()) {
		t.Error("Expected empty draw to leave a transparent canvas")
	}
}

func TestRasterizerSkipsMalformed(t *testing.T) {
	r := newTestRasterizer(t)

	rules := StyleRules{Base: Style{Size: Ptr(3.0), Fill: MustColor("#ff0000"), OutlineColor: MustColor("#000000"), OutlineWidth: Ptr(1.0)}}
	features := []Feature{
		pointFeature("ok", 10, 20, nil),
		{ID: StringID("short"), Geometry: orb.LineString{{10, 20}}},
		{ID: StringID("ring"), Geometry: orb.Polygon{{{9, 19}, {10, 20}}}},
		{ID: StringID("line"), Geometry: orb.LineString{{9, 19}, {11, 21}}},
		{ID: StringID("nan"), Geometry: orb.Polygon{{{9, 19}, {11, 19}, {11, math.NaN()}, {9, 19}}}},
		{ID: StringID("inf"), Geometry: orb.LineString{{9, 19}, {math.Inf(1), 21}}},
	}
	ptrs := make([]*Feature, len(features))
	for i := range features {
		ptrs[i] = &features[i]
	}

	stats, err := r.Draw(Prepare(ptrs, rules, nil, PrepareOptions{}), testProjector, PassArea)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if stats.Drawn != 2 || stats.Skipped != 4 || len(stats.Errors) != 4 {
		t.Errorf("Expected 2 drawn and 4 skipped, got %+v", stats)
	}

	var geomErr *ErrInvalidGeometry
	if !errors.As(stats.Errors[0], &geomErr) {
		t.Errorf("Expected *ErrInvalidGeometry, got %T", stats.Errors[0])
	}
}

func TestRasterizerUnavailableProjector(t *testing.T) {
	r := newTestRasterizer(t)

	prepared := prepareSized(t, []Feature{
		pointFeature("a", 10, 20, map[string]interface{}{"size": 4.0, "color": "red"}),
	})
	if _, err := r.Draw(prepared, testProjector, PassArea); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	_, err := r.Draw(prepared, unreadyProjector{testProjector}, PassArea)
	if !errors.Is(err, ErrProjectorUnavailable) {
		t.Fatalf("Expected ErrProjectorUnavailable, got %v", err)
	}
	if !isRed(r.Image(), 10, 10) {
		t.Error("Expected skipped cycle to leave the canvas untouched")
	}
}

func TestRasterizerDiagramPass(t *testing.T) {
	r := newTestRasterizer(t)

	rules := StyleRules{Base: Style{DiagramSize: Ptr(3.0), DiagramFill: MustColor("#0000ff")}}
	features := []Feature{
		{ID: StringID("region"), Geometry: squarePolygon(9.8, 19.8, 0.4)},
		{ID: StringID("plain"), Geometry: squarePolygon(9.1, 19.1, 0.2)},
	}
	ptrs := []*Feature{&features[0], &features[1]}
	prepared := Prepare(ptrs, rules, nil, PrepareOptions{Mode: ModeDiagram})

	stats, err := r.Draw(prepared, testProjector, PassDiagram)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if stats.Drawn != 2 {
		t.Errorf("Expected 2 diagram symbols, got %+v", stats)
	}
	if !isBlue(r.Image(), 10, 10) {
		t.Errorf("Expected diagram symbol at the centroid, got %v", r.Image().RGBAAt(10, 10))
	}

	// No diagram styles configured: nothing is drawn.
	prepared = Prepare(ptrs, StyleRules{Base: Style{Fill: MustColor("#ff0000")}}, nil, PrepareOptions{Mode: ModeDiagram})
	stats, err = r.Draw(prepared, testProjector, PassDiagram)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if stats.Drawn != 0 || stats.Hidden != 2 {
		t.Errorf("Expected 2 hidden symbols, got %+v", stats)
	}
	if !isTransparent(r.Image()) {
		t.Error("Expected unstyled diagrams to render as nothing")
	}
}

func TestRasterizerSquareAndPolygon(t *testing.T) {
	r := newTestRasterizer(t)

	rules := StyleRules{Base: Style{Shape: Ptr(ShapeSquare), Size: Ptr(2.0), Fill: MustColor("#ff0000")}}
	features := []Feature{
		{ID: StringID("area"), Geometry: squarePolygon(9.0, 19.0, 0.5), Properties: nil},
		pointFeature("sq", 10, 20, nil),
	}
	ptrs := []*Feature{&features[0], &features[1]}

	if _, err := r.Draw(Prepare(ptrs, rules, nil, PrepareOptions{}), testProjector, PassArea); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	img := r.Image()
	// Polygon covers pixels x 0..5, y 15..20.
	if !isRed(img, 2, 17) {
		t.Errorf("Expected polygon fill, got %v", img.RGBAAt(2, 17))
	}
	// Square of side 4 centered at (10, 10).
	if !isRed(img, 11, 11) {
		t.Errorf("Expected square symbol fill, got %v", img.RGBAAt(11, 11))
	}
	if img.RGBAAt(13, 13).A != 0 {
		t.Errorf("Expected nothing outside the square, got %v", img.RGBAAt(13, 13))
	}
}

func TestRasterizerPolygonHoles(t *testing.T) {
	outer := squarePolygon(9, 19, 2)[0]

	tests := []struct {
		name string
		hole orb.Ring
	}{
		{"hole wound like the outer ring", squarePolygon(9.5, 19.5, 1)[0]},
		{"hole wound against the outer ring", func() orb.Ring {
			h := squarePolygon(9.5, 19.5, 1)[0].Clone()
			h.Reverse()
			return h
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRasterizer(t)
			features := []Feature{{ID: StringID("donut"), Geometry: orb.Polygon{outer, tt.hole}}}

			prepared := Prepare([]*Feature{&features[0]}, StyleRules{Base: Style{Fill: MustColor("#ff0000")}}, nil, PrepareOptions{})
			if _, err := r.Draw(prepared, testProjector, PassArea); err != nil {
				t.Fatalf("Draw failed: %v", err)
			}

			img := r.Image()
			// Outer ring covers the whole canvas, the hole pixels 5..15.
			if !isRed(img, 2, 2) {
				t.Errorf("Expected outer ring fill, got %v", img.RGBAAt(2, 2))
			}
			if img.RGBAAt(10, 10).A != 0 {
				t.Errorf("Expected hole to stay transparent, got %v", img.RGBAAt(10, 10))
			}
		})
	}
}

func TestNewRasterizerInvalidSize(t *testing.T) {
	_, err := NewRasterizer(0, 10, RasterizerOptions{})
	var optErr *ErrInvalidOptions
	if !errors.As(err, &optErr) {
		t.Errorf("Expected *ErrInvalidOptions, got %v", err)
	}
}
