package canvas

import (
	"github.com/paulmach/orb"
)

// HitTest returns the ids of the candidates under the pointer at click.
//
// For each point-like candidate (points, multipoints and diagram symbols) a
// small geographic box is built around the click by offsetting it by ± the
// feature's rendered radius in pixel space and projecting both corners. A
// candidate matches when its anchor point lies inside that box, edges
// included. Line and polygon candidates are never matched here.
//
// Zero, one or many ids may be returned, in candidate order; candidates
// without an id are not reported.
func HitTest(click Pixel, candidates []*PreparedFeature, p Projector) ([]FeatureID, error) {
	if !projectorReady(p) {
		return nil, ErrProjectorUnavailable
	}

	var ids []FeatureID
	for _, pf := range candidates {
		if pf.FID.IsZero() {
			continue
		}

		anchors, radius := hitAnchors(pf)
		if len(anchors) == 0 {
			continue
		}

		box := clickBounds(click, radius, p)
		for _, a := range anchors {
			if box.Contains(a.Lon(), a.Lat()) {
				ids = append(ids, pf.FID)
				break
			}
		}
	}
	return ids, nil
}

// clickBounds returns the geographic box covering click ± radius pixels.
func clickBounds(click Pixel, radius float64, p Projector) Bounds {
	offset := Pixel{X: radius, Y: radius}
	return envelope(
		p.PixelToGeo(click.Add(offset)),
		p.PixelToGeo(click.Sub(offset)),
	)
}

// hitAnchors returns the representative points of a feature and the radius
// it is rendered with.
func hitAnchors(pf *PreparedFeature) ([]orb.Point, float64) {
	if pf.Diagram != nil {
		return []orb.Point{pf.Centroid}, pf.Diagram.Pick(pf.Selected, false).Radius
	}

	radius := pf.Area.Pick(pf.Selected, false).Radius
	switch g := pf.Feature.Geometry.(type) {
	case orb.Point:
		return []orb.Point{g}, radius
	case orb.MultiPoint:
		return g, radius
	default:
		return nil, 0
	}
}
