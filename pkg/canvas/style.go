package canvas

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// Shape is the symbol drawn for point features.
type Shape string

const (
	ShapeCircle Shape = "circle"
	ShapeSquare Shape = "square"
)

// Style is a declarative, possibly partial style layer.
//
// Every field is optional: a nil field is "unset" and inherits from the layer
// below when styles are merged (see MergeStyle). Fields prefixed with Diagram
// apply to the proportional symbol drawn in diagram mode; the others apply to
// the feature geometry itself.
type Style struct {
	Shape  *Shape   `yaml:"shape,omitempty"`
	Size   *float64 `yaml:"size,omitempty"`
	Volume *float64 `yaml:"volume,omitempty"`
	Icon   *string  `yaml:"icon,omitempty"`

	Fill           *Color   `yaml:"fill,omitempty"`
	FillOpacity    *float64 `yaml:"fillOpacity,omitempty"`
	OutlineColor   *Color   `yaml:"outlineColor,omitempty"`
	OutlineWidth   *float64 `yaml:"outlineWidth,omitempty"`
	OutlineOpacity *float64 `yaml:"outlineOpacity,omitempty"`

	DiagramFill           *Color   `yaml:"diagramFill,omitempty"`
	DiagramFillOpacity    *float64 `yaml:"diagramFillOpacity,omitempty"`
	DiagramOutlineColor   *Color   `yaml:"diagramOutlineColor,omitempty"`
	DiagramOutlineWidth   *float64 `yaml:"diagramOutlineWidth,omitempty"`
	DiagramOutlineOpacity *float64 `yaml:"diagramOutlineOpacity,omitempty"`
	DiagramSize           *float64 `yaml:"diagramSize,omitempty"`
	DiagramVolume         *float64 `yaml:"diagramVolume,omitempty"`
}

// MergeStyle returns base with every field that is set in override replacing
// the corresponding field of base. Unset override fields inherit from base.
// Neither argument is modified.
func MergeStyle(base, override Style) Style {
	out := base
	mergeField(&out.Shape, override.Shape)
	mergeField(&out.Size, override.Size)
	mergeField(&out.Volume, override.Volume)
	mergeField(&out.Icon, override.Icon)
	mergeField(&out.Fill, override.Fill)
	mergeField(&out.FillOpacity, override.FillOpacity)
	mergeField(&out.OutlineColor, override.OutlineColor)
	mergeField(&out.OutlineWidth, override.OutlineWidth)
	mergeField(&out.OutlineOpacity, override.OutlineOpacity)
	mergeField(&out.DiagramFill, override.DiagramFill)
	mergeField(&out.DiagramFillOpacity, override.DiagramFillOpacity)
	mergeField(&out.DiagramOutlineColor, override.DiagramOutlineColor)
	mergeField(&out.DiagramOutlineWidth, override.DiagramOutlineWidth)
	mergeField(&out.DiagramOutlineOpacity, override.DiagramOutlineOpacity)
	mergeField(&out.DiagramSize, override.DiagramSize)
	mergeField(&out.DiagramVolume, override.DiagramVolume)
	return out
}

func mergeField[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// Ptr returns a pointer to v. It keeps style literals short:
//
//	canvas.Style{Size: canvas.Ptr(4.0), Fill: canvas.MustColor("#ff0000")}
func Ptr[T any](v T) *T {
	return &v
}

// Color is an opaque RGB(A) color parsed from #rgb, #rrggbb or #rrggbbaa.
type Color struct {
	color.NRGBA
}

// ParseColor parses a hex color string.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}}, nil
}

// MustColor parses a hex color and panics on error. Intended for literals.
func MustColor(s string) *Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return &c
}

// String formats the color as #rrggbb, or #rrggbbaa when not opaque.
func (c Color) String() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Color) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Color) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// Paint is a fully resolved, render-ready style. A channel that was not
// configured has zero opacity and zero width and is not drawn.
type Paint struct {
	Shape  Shape
	Radius float64
	Icon   string

	FillColor   color.NRGBA
	FillOpacity float64

	StrokeColor   color.NRGBA
	StrokeWidth   float64
	StrokeOpacity float64
}

// HasFill reports whether the fill channel is visible.
func (p Paint) HasFill() bool {
	return p.FillOpacity > 0 && p.FillColor.A > 0
}

// HasStroke reports whether the outline channel is visible.
func (p Paint) HasStroke() bool {
	return p.StrokeWidth > 0 && p.StrokeOpacity > 0 && p.StrokeColor.A > 0
}

// Visible reports whether anything would be drawn for a geometry in this paint.
func (p Paint) Visible() bool {
	return p.HasFill() || p.HasStroke() || p.Icon != ""
}

// FillRGBA returns the fill color with its opacity applied to alpha.
func (p Paint) FillRGBA() color.NRGBA {
	return withOpacity(p.FillColor, p.FillOpacity)
}

// StrokeRGBA returns the outline color with its opacity applied to alpha.
func (p Paint) StrokeRGBA() color.NRGBA {
	return withOpacity(p.StrokeColor, p.StrokeOpacity)
}

func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	opacity = math.Max(0, math.Min(1, opacity))
	c.A = uint8(math.Round(float64(c.A) * opacity))
	return c
}

// ScaleTarget names the style field an AttributeScale writes to.
type ScaleTarget string

const (
	ScaleSize          ScaleTarget = "size"
	ScaleVolume        ScaleTarget = "volume"
	ScaleDiagramSize   ScaleTarget = "diagramSize"
	ScaleDiagramVolume ScaleTarget = "diagramVolume"
)

// AttributeScale maps a numeric property linearly from [InputMin, InputMax]
// to [OutputMin, OutputMax], clamping at both ends. When InputMin equals
// InputMax the property value is used as is.
type AttributeScale struct {
	Target    ScaleTarget `yaml:"target"`
	InputMin  float64     `yaml:"inputMin"`
	InputMax  float64     `yaml:"inputMax"`
	OutputMin float64     `yaml:"outputMin"`
	OutputMax float64     `yaml:"outputMax"`
}

func (s AttributeScale) apply(v float64) float64 {
	if s.InputMin == s.InputMax {
		return v
	}
	t := (v - s.InputMin) / (s.InputMax - s.InputMin)
	t = math.Max(0, math.Min(1, t))
	return s.OutputMin + t*(s.OutputMax-s.OutputMin)
}

// AttributeStyle derives style from a feature property: Values selects a
// style class by the property's formatted value, Scale derives a size or
// volume from its numeric value.
type AttributeStyle struct {
	Property string           `yaml:"property"`
	Values   map[string]Style `yaml:"values,omitempty"`
	Scale    *AttributeScale  `yaml:"scale,omitempty"`
}

func (a AttributeStyle) applyTo(style Style, f *Feature) Style {
	raw, ok := f.Property(a.Property)
	if !ok || raw == nil {
		return style
	}

	if len(a.Values) > 0 {
		if class, ok := a.Values[fmt.Sprint(raw)]; ok {
			style = MergeStyle(style, class)
		}
	}

	if a.Scale != nil {
		if v, ok := toFloat(raw); ok {
			out := Ptr(a.Scale.apply(v))
			switch a.Scale.Target {
			case ScaleSize:
				style.Size = out
			case ScaleVolume:
				style.Volume = out
			case ScaleDiagramSize:
				style.DiagramSize = out
			case ScaleDiagramVolume:
				style.DiagramVolume = out
			}
		}
	}
	return style
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// StyleRules is the layered style specification of a layer.
//
// Base applies to every feature, refined by AttributeStyles in order. Hovered,
// Selected and SelectedHovered are partial overrides merged over that result;
// nil overrides fall back to the package defaults. A selection group's own
// styles take precedence over Selected and SelectedHovered.
type StyleRules struct {
	Base            Style            `yaml:"base"`
	AttributeStyles []AttributeStyle `yaml:"attributeStyles,omitempty"`
	Hovered         *Style           `yaml:"hovered,omitempty"`
	Selected        *Style           `yaml:"selected,omitempty"`
	SelectedHovered *Style           `yaml:"selectedHovered,omitempty"`
}

// baseFor returns Base refined by the attribute styles that match f.
func (r StyleRules) baseFor(f *Feature) Style {
	style := r.Base
	for _, a := range r.AttributeStyles {
		style = a.applyTo(style, f)
	}
	return style
}

// Default override layers used when neither the rules nor the selection group
// configure one.
var (
	DefaultHoveredStyle = Style{
		OutlineColor:        MustColor("#ffcc00"),
		OutlineWidth:        Ptr(2.0),
		OutlineOpacity:      Ptr(1.0),
		DiagramOutlineColor: MustColor("#ffcc00"),
		DiagramOutlineWidth: Ptr(2.0),
	}
	DefaultSelectedStyle = Style{
		OutlineColor:        MustColor("#ff0000"),
		OutlineWidth:        Ptr(3.0),
		OutlineOpacity:      Ptr(1.0),
		DiagramOutlineColor: MustColor("#ff0000"),
		DiagramOutlineWidth: Ptr(3.0),
	}
	DefaultSelectedHoveredStyle = Style{
		OutlineColor:        MustColor("#ff6600"),
		OutlineWidth:        Ptr(3.0),
		OutlineOpacity:      Ptr(1.0),
		DiagramOutlineColor: MustColor("#ff6600"),
		DiagramOutlineWidth: Ptr(3.0),
	}
)

// DefaultStyleRules returns rules drawing grey symbols and areas with a dark outline.
func DefaultStyleRules() StyleRules {
	return StyleRules{
		Base: Style{
			Shape:          Ptr(ShapeCircle),
			Size:           Ptr(4.0),
			Fill:           MustColor("#888888"),
			FillOpacity:    Ptr(0.8),
			OutlineColor:   MustColor("#333333"),
			OutlineWidth:   Ptr(1.0),
			OutlineOpacity: Ptr(1.0),
		},
	}
}

// SelectionGroup is a named set of feature ids sharing a highlight style.
type SelectionGroup struct {
	Key          string      `yaml:"key"`
	Keys         []FeatureID `yaml:"keys"`
	Style        *Style      `yaml:"style,omitempty"`
	HoveredStyle *Style      `yaml:"hoveredStyle,omitempty"`
}

// Contains reports whether the group lists fid.
func (g *SelectionGroup) Contains(fid FeatureID) bool {
	for _, k := range g.Keys {
		if k == fid {
			return true
		}
	}
	return false
}

// SelectionSet is an ordered list of selection groups.
//
// A feature belongs to at most one group: the first group in slice order
// that lists its id. Later groups listing the same id are ignored.
type SelectionSet []SelectionGroup

// Find returns the first group containing fid, or nil. Absent ids are never
// selected.
func (s SelectionSet) Find(fid FeatureID) *SelectionGroup {
	if fid.IsZero() {
		return nil
	}
	for i := range s {
		if s[i].Contains(fid) {
			return &s[i]
		}
	}
	return nil
}

// styleFile is the on-disk layout accepted by ParseStyleRules.
type styleFile struct {
	Rules     StyleRules   `yaml:"rules"`
	Selection SelectionSet `yaml:"selection,omitempty"`
}

// ParseStyleRules decodes style rules and an optional selection set from YAML:
//
//	rules:
//	  base:
//	    shape: circle
//	    size: 6
//	    fill: "#3388ff"
//	  selected:
//	    outlineColor: "#ff0000"
//	    outlineWidth: 2
//	selection:
//	  - key: highlighted
//	    keys: [a, 42]
func ParseStyleRules(data []byte) (StyleRules, SelectionSet, error) {
	var file styleFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return StyleRules{}, nil, fmt.Errorf("parse style rules: %w", err)
	}
	if err := file.Rules.validate(); err != nil {
		return StyleRules{}, nil, err
	}
	return file.Rules, file.Selection, nil
}

func (r StyleRules) validate() error {
	for i, a := range r.AttributeStyles {
		if a.Property == "" {
			return &ErrInvalidOptions{Field: fmt.Sprintf("attributeStyles[%d].property", i), Reason: "must not be empty"}
		}
		if a.Scale != nil {
			switch a.Scale.Target {
			case ScaleSize, ScaleVolume, ScaleDiagramSize, ScaleDiagramVolume:
			default:
				return &ErrInvalidOptions{Field: fmt.Sprintf("attributeStyles[%d].scale.target", i),
					Reason: fmt.Sprintf("unknown target %q", a.Scale.Target)}
			}
		}
	}
	if s := r.Base.Shape; s != nil && *s != ShapeCircle && *s != ShapeSquare {
		return &ErrInvalidOptions{Field: "base.shape", Reason: fmt.Sprintf("unknown shape %q", *s)}
	}
	return nil
}
