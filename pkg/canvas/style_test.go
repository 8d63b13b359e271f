package canvas

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matryer/is"
)

func TestMergeStyle(t *testing.T) {
	is := is.New(t)

	base := Style{Size: Ptr(4.0), Fill: MustColor("#3388ff"), OutlineWidth: Ptr(1.0)}
	override := Style{Size: Ptr(8.0), OutlineColor: MustColor("#ff0000")}

	got := MergeStyle(base, override)

	is.Equal(*got.Size, 8.0)                       // override wins
	is.Equal(got.Fill.String(), "#3388ff")         // unset override inherits
	is.Equal(*got.OutlineWidth, 1.0)               // unset override inherits
	is.Equal(got.OutlineColor.String(), "#ff0000") // new field added
	is.Equal(*base.Size, 4.0)                      // base untouched
	is.True(base.OutlineColor == nil)
}

// Resolving with empty override layers yields the base paint in every variant.
func TestResolveBaseRoundTrip(t *testing.T) {
	rules := StyleRules{
		Base: Style{
			Size:           Ptr(5.0),
			Fill:           MustColor("#00ff00"),
			FillOpacity:    Ptr(0.5),
			OutlineColor:   MustColor("#000000"),
			OutlineWidth:   Ptr(2.0),
			OutlineOpacity: Ptr(0.25),
		},
		Hovered:         &Style{},
		Selected:        &Style{},
		SelectedHovered: &Style{},
	}
	f := pointFeature("a", 10, 20, nil)
	group := &SelectionGroup{Key: "g", Keys: []FeatureID{StringID("a")}}

	res := Resolve(&f, rules, group, ModeArea)

	want := AreaPaint(rules.Base)
	for name, got := range map[string]Paint{
		"default":         res.Area.Default,
		"hovered":         res.Area.Hovered,
		"selected":        *res.Area.Selected,
		"selectedHovered": *res.Area.SelectedHovered,
	} {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s paint mismatch (-want +got):\n%s", name, diff)
		}
	}
	if res.Diagram != nil {
		t.Error("Expected no diagram paints in area mode")
	}
}

func TestSymbolRadius(t *testing.T) {
	is := is.New(t)

	p := DiagramPaint(Style{DiagramVolume: Ptr(math.Pi)})
	is.True(math.Abs(p.Radius-1) < 1e-9) // equal-area circle

	p = DiagramPaint(Style{DiagramSize: Ptr(3.0), DiagramVolume: Ptr(math.Pi)})
	is.Equal(p.Radius, 3.0) // size beats volume

	p = AreaPaint(Style{Volume: Ptr(4 * math.Pi)})
	is.True(math.Abs(p.Radius-2) < 1e-9)

	p = AreaPaint(Style{})
	is.Equal(p.Radius, 0.0)
}

// Unconfigured channels render as nothing, not as a default look.
func TestDiagramPaintTransparentChannels(t *testing.T) {
	is := is.New(t)

	p := DiagramPaint(Style{DiagramSize: Ptr(10.0)})
	is.Equal(p.FillOpacity, 0.0)
	is.Equal(p.FillColor, color.NRGBA{})
	is.Equal(p.StrokeWidth, 0.0)
	is.Equal(p.StrokeOpacity, 0.0)
	is.True(!p.Visible())

	// Outline color without width is still no outline.
	p = DiagramPaint(Style{DiagramOutlineColor: MustColor("#ff0000")})
	is.True(!p.HasStroke())

	p = DiagramPaint(Style{DiagramFill: MustColor("#ff0000")})
	is.True(p.HasFill())
	is.Equal(p.FillOpacity, 1.0)
}

func TestSelectionFirstGroupWins(t *testing.T) {
	is := is.New(t)

	selection := SelectionSet{
		{Key: "first", Keys: []FeatureID{StringID("a")}, Style: &Style{OutlineColor: MustColor("#111111"), OutlineWidth: Ptr(1.0)}},
		{Key: "second", Keys: []FeatureID{StringID("a"), StringID("b")}, Style: &Style{OutlineColor: MustColor("#222222"), OutlineWidth: Ptr(1.0)}},
	}

	is.Equal(selection.Find(StringID("a")).Key, "first")
	is.Equal(selection.Find(StringID("b")).Key, "second")
	is.True(selection.Find(StringID("c")) == nil)
	is.True(selection.Find(FeatureID{}) == nil)

	f := pointFeature("a", 10, 20, nil)
	prepared := Prepare([]*Feature{&f}, DefaultStyleRules(), selection, PrepareOptions{})
	is.Equal(len(prepared), 1)
	is.True(prepared[0].Selected)
	is.Equal(prepared[0].Group, "first")
	is.Equal(prepared[0].Area.Selected.StrokeColor, MustColor("#111111").NRGBA)
}

func TestResolveVariantPrecedence(t *testing.T) {
	is := is.New(t)

	rules := DefaultStyleRules()
	rules.Selected = &Style{OutlineColor: MustColor("#00ff00"), OutlineWidth: Ptr(2.0)}
	f := pointFeature("a", 10, 20, nil)

	// Rules override the package default.
	res := Resolve(&f, rules, &SelectionGroup{Key: "g"}, ModeArea)
	is.Equal(res.Area.Selected.StrokeColor, MustColor("#00ff00").NRGBA)

	// Group style overrides the rules.
	group := &SelectionGroup{Key: "g", Style: &Style{OutlineColor: MustColor("#0000ff"), OutlineWidth: Ptr(2.0)}}
	res = Resolve(&f, rules, group, ModeArea)
	is.Equal(res.Area.Selected.StrokeColor, MustColor("#0000ff").NRGBA)

	// Hovered falls back to the default hovered style.
	is.Equal(res.Area.Hovered.StrokeColor, DefaultHoveredStyle.OutlineColor.NRGBA)

	// Unselected features carry no selected variants.
	res = Resolve(&f, rules, nil, ModeArea)
	is.True(res.Area.Selected == nil)
	is.Equal(res.Area.Pick(true, false), res.Area.Default)
}

func TestVariantsPick(t *testing.T) {
	is := is.New(t)

	v := Variants{
		Default:         Paint{Radius: 1},
		Hovered:         Paint{Radius: 2},
		Selected:        &Paint{Radius: 3},
		SelectedHovered: &Paint{Radius: 4},
	}
	is.Equal(v.Pick(false, false).Radius, 1.0)
	is.Equal(v.Pick(false, true).Radius, 2.0)
	is.Equal(v.Pick(true, false).Radius, 3.0)
	is.Equal(v.Pick(true, true).Radius, 4.0)
}

func TestAttributeStyles(t *testing.T) {
	is := is.New(t)

	rules := StyleRules{
		Base: Style{Fill: MustColor("#888888")},
		AttributeStyles: []AttributeStyle{
			{Property: "kind", Values: map[string]Style{"harbor": {Fill: MustColor("#0000ff")}}},
			{Property: "population", Scale: &AttributeScale{
				Target: ScaleDiagramSize, InputMin: 0, InputMax: 1000, OutputMin: 2, OutputMax: 12,
			}},
		},
	}

	harbor := pointFeature("h", 0, 0, map[string]interface{}{"kind": "harbor", "population": 500.0})
	res := Resolve(&harbor, rules, nil, ModeDiagram)
	is.Equal(res.Area.Default.FillColor, MustColor("#0000ff").NRGBA)
	is.Equal(res.Diagram.Default.Radius, 7.0)

	town := pointFeature("t", 0, 0, map[string]interface{}{"kind": "town", "population": 5000})
	res = Resolve(&town, rules, nil, ModeDiagram)
	is.Equal(res.Area.Default.FillColor, MustColor("#888888").NRGBA)
	is.Equal(res.Diagram.Default.Radius, 12.0) // clamped
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		err  bool
	}{
		{"#ff0000", color.NRGBA{R: 255, A: 255}, false},
		{"#0f0", color.NRGBA{G: 255, A: 255}, false},
		{"00000080", color.NRGBA{A: 128}, false},
		{"#12345", color.NRGBA{}, true},
		{"#gggggg", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.err {
				t.Fatalf("ParseColor(%q) error = %v, want error %v", tt.in, err, tt.err)
			}
			if got.NRGBA != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got.NRGBA, tt.want)
			}
		})
	}
}

func TestParseStyleRules(t *testing.T) {
	is := is.New(t)

	data := []byte(`
rules:
  base:
    shape: square
    size: 6
    fill: "#3388ff"
    fillOpacity: 0.5
  attributeStyles:
    - property: kind
      values:
        harbor:
          fill: "#0000ff"
  selected:
    outlineColor: "#ff0000"
    outlineWidth: 2
selection:
  - key: highlighted
    keys: [a, 42]
    style:
      outlineColor: "#00ff00"
      outlineWidth: 3
`)

	rules, selection, err := ParseStyleRules(data)
	is.NoErr(err)

	is.Equal(*rules.Base.Shape, ShapeSquare)
	is.Equal(*rules.Base.Size, 6.0)
	is.Equal(rules.Base.Fill.String(), "#3388ff")
	is.Equal(len(rules.AttributeStyles), 1)
	is.Equal(rules.Selected.OutlineColor.String(), "#ff0000")

	is.Equal(len(selection), 1)
	is.Equal(selection[0].Keys, []FeatureID{StringID("a"), IntID(42)})
	is.True(selection.Find(IntID(42)) != nil)
	is.Equal(selection.Find(StringID("a")).Style.OutlineColor.String(), "#00ff00")
}

func TestParseStyleRulesErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown field", "rules:\n  base:\n    colour: red\n"},
		{"bad color", "rules:\n  base:\n    fill: nope\n"},
		{"bad shape", "rules:\n  base:\n    shape: hexagon\n"},
		{"missing property", "rules:\n  attributeStyles:\n    - values: {}\n"},
		{"bad scale target", "rules:\n  attributeStyles:\n    - property: p\n      scale: {target: width}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ParseStyleRules([]byte(tt.data)); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
		})
	}

	_, _, err := ParseStyleRules([]byte("rules:\n  base:\n    shape: hexagon\n"))
	var optErr *ErrInvalidOptions
	if !errors.As(err, &optErr) {
		t.Errorf("Expected *ErrInvalidOptions, got %T", err)
	}
}
