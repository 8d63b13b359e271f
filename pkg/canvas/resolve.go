package canvas

import (
	"math"
)

// Mode selects how a layer renders its features.
type Mode int

const (
	// ModeArea draws each feature's own geometry.
	ModeArea Mode = iota
	// ModeDiagram draws each feature's geometry as an area plus a proportional
	// symbol at its centroid, in two independent passes.
	ModeDiagram
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeArea:
		return "area"
	case ModeDiagram:
		return "diagram"
	default:
		return "unknown"
	}
}

// Variants holds the four cascading paints of a feature. Selected and
// SelectedHovered are nil unless the feature belongs to a selection group.
type Variants struct {
	Default         Paint
	Hovered         Paint
	Selected        *Paint
	SelectedHovered *Paint
}

// Pick returns the paint for the given interaction state.
func (v Variants) Pick(selected, hovered bool) Paint {
	switch {
	case selected && hovered && v.SelectedHovered != nil:
		return *v.SelectedHovered
	case hovered:
		return v.Hovered
	case selected && v.Selected != nil:
		return *v.Selected
	default:
		return v.Default
	}
}

// Resolved is the outcome of style resolution for one feature.
//
// In area mode only Area is populated. In diagram mode Area holds the paints
// of the feature outline and Diagram those of the proportional symbol.
type Resolved struct {
	Area    Variants
	Diagram *Variants
}

// Resolve computes the style variants of f.
//
// group is the selection group the feature belongs to (see SelectionSet.Find),
// or nil. Every variant is MergeStyle(base, override) for its override layer,
// with base being rules.Base refined by rules.AttributeStyles; resolution is a
// pure function of its arguments.
func Resolve(f *Feature, rules StyleRules, group *SelectionGroup, mode Mode) Resolved {
	base := rules.baseFor(f)

	hovered := DefaultHoveredStyle
	if rules.Hovered != nil {
		hovered = *rules.Hovered
	}

	layers := []Style{base, MergeStyle(base, hovered)}
	if group != nil {
		selected := DefaultSelectedStyle
		if rules.Selected != nil {
			selected = *rules.Selected
		}
		if group.Style != nil {
			selected = *group.Style
		}

		selectedHovered := DefaultSelectedHoveredStyle
		if rules.SelectedHovered != nil {
			selectedHovered = *rules.SelectedHovered
		}
		if group.HoveredStyle != nil {
			selectedHovered = *group.HoveredStyle
		}

		layers = append(layers, MergeStyle(base, selected), MergeStyle(base, selectedHovered))
	}

	res := Resolved{Area: variantsOf(layers, AreaPaint)}
	if mode == ModeDiagram {
		d := variantsOf(layers, DiagramPaint)
		res.Diagram = &d
	}
	return res
}

func variantsOf(layers []Style, paint func(Style) Paint) Variants {
	v := Variants{
		Default: paint(layers[0]),
		Hovered: paint(layers[1]),
	}
	if len(layers) == 4 {
		s, sh := paint(layers[2]), paint(layers[3])
		v.Selected, v.SelectedHovered = &s, &sh
	}
	return v
}

// AreaPaint resolves the paint of a feature's own geometry.
//
// A fill is drawn only when Fill is set, an outline only when both
// OutlineColor and a positive OutlineWidth are set. Opacities default to 1
// for configured channels. The symbol radius of points is Size, or the radius
// of the circle with area Volume when no size is set.
func AreaPaint(s Style) Paint {
	p := Paint{
		Shape:  ShapeCircle,
		Radius: symbolRadius(s.Size, s.Volume),
	}
	if s.Shape != nil {
		p.Shape = *s.Shape
	}
	if s.Icon != nil {
		p.Icon = *s.Icon
	}

	if s.Fill != nil {
		p.FillColor = s.Fill.NRGBA
		p.FillOpacity = valueOr(s.FillOpacity, 1)
	}
	if s.OutlineColor != nil && valueOr(s.OutlineWidth, 0) > 0 {
		p.StrokeColor = s.OutlineColor.NRGBA
		p.StrokeWidth = *s.OutlineWidth
		p.StrokeOpacity = valueOr(s.OutlineOpacity, 1)
	}
	return p
}

// DiagramPaint resolves the paint of the proportional symbol in diagram mode.
//
// Channels that are not configured are forced to be invisible: without
// DiagramFill the fill is transparent with zero opacity, and without both
// DiagramOutlineColor and a positive DiagramOutlineWidth the outline has zero
// width and zero opacity. The radius is DiagramSize, or sqrt(DiagramVolume/π).
func DiagramPaint(s Style) Paint {
	p := Paint{
		Shape:  ShapeCircle,
		Radius: symbolRadius(s.DiagramSize, s.DiagramVolume),
	}

	if s.DiagramFill != nil {
		p.FillColor = s.DiagramFill.NRGBA
		p.FillOpacity = valueOr(s.DiagramFillOpacity, 1)
	}
	if s.DiagramOutlineColor != nil && valueOr(s.DiagramOutlineWidth, 0) > 0 {
		p.StrokeColor = s.DiagramOutlineColor.NRGBA
		p.StrokeWidth = *s.DiagramOutlineWidth
		p.StrokeOpacity = valueOr(s.DiagramOutlineOpacity, 1)
	}
	return p
}

// symbolRadius returns size when set, otherwise the radius of the
// equal-area circle for volume, otherwise zero.
func symbolRadius(size, volume *float64) float64 {
	switch {
	case size != nil && *size > 0:
		return *size
	case volume != nil && *volume > 0:
		return math.Sqrt(*volume / math.Pi)
	default:
		return 0
	}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
