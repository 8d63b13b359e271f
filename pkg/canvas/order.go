package canvas

import (
	"sort"
)

// Order sorts prepared features into draw order, in place, and returns them.
//
// Larger symbols are drawn first so smaller ones stay visible on top of them:
//  1. Size: descending
//  2. Feature id: ascending (features without an id after those with one)
//  3. Input index: ascending
//
// The sort is stable and the result does not depend on the order in which the
// spatial index returned the features.
func Order(features []*PreparedFeature) []*PreparedFeature {
	sort.SliceStable(features, func(i, j int) bool {
		a, b := features[i], features[j]

		if sa, sb := a.Size(), b.Size(); sa != sb {
			return sa > sb
		}

		if c := a.FID.Compare(b.FID); c != 0 {
			return c < 0
		}

		return a.Index < b.Index
	})
	return features
}

// OrderAreas returns the draw order of the area pass in diagram mode:
// unselected areas first, selected areas last so they are never buried.
// Within each group the order of features (already Ordered) is kept.
func OrderAreas(features []*PreparedFeature) []*PreparedFeature {
	areas := make([]*PreparedFeature, len(features))
	copy(areas, features)
	sort.SliceStable(areas, func(i, j int) bool {
		return !areas[i].Selected && areas[j].Selected
	})
	return areas
}

// raiseHovered moves hovered features to the end of the draw order, keeping
// the relative order of everything else.
func raiseHovered(features []*PreparedFeature, hovered map[FeatureID]bool) []*PreparedFeature {
	if len(hovered) == 0 {
		return features
	}
	out := make([]*PreparedFeature, len(features))
	copy(out, features)
	sort.SliceStable(out, func(i, j int) bool {
		return !hovered[out[i].FID] && hovered[out[j].FID]
	})
	return out
}
