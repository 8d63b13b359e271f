package canvas

import (
	"github.com/paulmach/orb"
)

// PreparedFeature is a feature together with everything a render pass needs:
// its resolved id, style variants and selection state.
//
// Prepared features live for one render pass and are rebuilt from scratch
// whenever the feature set, the style rules or the selection changes.
type PreparedFeature struct {
	Feature *Feature
	FID     FeatureID

	// Index is the position of the feature in the query result. It breaks
	// ordering ties between features without an id.
	Index int

	Selected bool
	Group    string // key of the selection group, when Selected

	// Area holds the paints of the feature geometry.
	Area Variants

	// Diagram holds the paints of the proportional symbol in diagram mode,
	// anchored at Centroid.
	Diagram  *Variants
	Centroid orb.Point
}

// DefaultPaint returns the paint used when the feature is not hovered.
func (pf *PreparedFeature) DefaultPaint() Paint {
	return pf.Area.Pick(pf.Selected, false)
}

// Size returns the visual size used for ordering: the diagram radius in
// diagram mode, the symbol radius otherwise.
func (pf *PreparedFeature) Size() float64 {
	if pf.Diagram != nil {
		return pf.Diagram.Default.Radius
	}
	return pf.Area.Default.Radius
}

// PrepareOptions configures Prepare.
type PrepareOptions struct {
	Mode Mode

	// FIDProperty names the property holding the feature id for features
	// without an explicit ID.
	FIDProperty string

	// Omitted lists ids that are never prepared.
	Omitted map[FeatureID]bool
}

// ResolveFID returns the feature's id, falling back to the fidProperty value.
func ResolveFID(f *Feature, fidProperty string) FeatureID {
	if !f.ID.IsZero() || fidProperty == "" {
		return f.ID
	}
	if v, ok := f.Property(fidProperty); ok {
		if id, ok := ParseID(v); ok {
			return id
		}
	}
	return FeatureID{}
}

// Prepare resolves ids, selection and styles for each feature.
//
// The result has one entry per input feature, minus omitted ones, in input
// order; call Order to obtain the draw order.
func Prepare(features []*Feature, rules StyleRules, selection SelectionSet, opts PrepareOptions) []*PreparedFeature {
	prepared := make([]*PreparedFeature, 0, len(features))
	for i, f := range features {
		fid := ResolveFID(f, opts.FIDProperty)
		if !fid.IsZero() && opts.Omitted[fid] {
			continue
		}

		group := selection.Find(fid)
		res := Resolve(f, rules, group, opts.Mode)

		pf := &PreparedFeature{
			Feature:  f,
			FID:      fid,
			Index:    i,
			Selected: group != nil,
			Area:     res.Area,
			Diagram:  res.Diagram,
		}
		if group != nil {
			pf.Group = group.Key
		}
		if res.Diagram != nil && f.Geometry != nil {
			pf.Centroid = f.Centroid()
		}
		prepared = append(prepared, pf)
	}
	return prepared
}
