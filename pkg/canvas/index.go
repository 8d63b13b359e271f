package canvas

import (
	"github.com/dhconnelly/rtreego"
)

// R-tree branching factors (2D, min=25 children, max=50 children).
const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
)

// pointEpsilon is the minimum rect side in degrees (~11 meters at the equator).
// The R-tree requires non-zero dimensions, so point features and degenerate
// query boxes are widened to this size.
const pointEpsilon = 0.0001

// GeometryIndex provides fast bounding box queries over a feature set.
//
// The index is always rebuilt as a whole: Load clears the tree and bulk loads
// every feature again. There are no incremental inserts or removals, so every
// entry corresponds to exactly one feature of the most recently loaded set.
//
// Spatial queries are O(log N) with the R-tree, compared to O(N) with linear scan.
//
// A GeometryIndex is not safe for concurrent use.
type GeometryIndex struct {
	rtree    *rtreego.Rtree
	set      *FeatureSet
	count    int
	skipped  int
	rebuilds int
}

// indexEntry wraps a feature for R-tree storage.
type indexEntry struct {
	feature *Feature
	bounds  Bounds
}

// Bounds implements rtreego.Spatial interface.
func (e *indexEntry) Bounds() rtreego.Rect {
	return toRect(e.bounds)
}

// toRect converts geographic bounds into an R-tree rectangle anchored at the
// south-west corner.
func toRect(b Bounds) rtreego.Rect {
	point := rtreego.Point{b.MinLon, b.MinLat}

	lonLength := b.MaxLon - b.MinLon
	latLength := b.MaxLat - b.MinLat
	if lonLength < pointEpsilon {
		lonLength = pointEpsilon
	}
	if latLength < pointEpsilon {
		latLength = pointEpsilon
	}

	rect, _ := rtreego.NewRect(point, []float64{lonLength, latLength})
	return rect
}

// NewGeometryIndex creates an empty index.
func NewGeometryIndex() *GeometryIndex {
	return &GeometryIndex{
		rtree: rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren),
	}
}

// Load replaces all indexed content with the given features.
//
// A nil slice is ignored and the previous content is kept. A non-nil empty
// slice clears the index. Features whose geometry fails ValidateGeometry are
// not indexed; Skipped reports how many were dropped by the last load.
//
// The slice must outlive the index: entries point into it.
func (idx *GeometryIndex) Load(features []Feature) {
	if features == nil {
		return
	}

	entries := make([]rtreego.Spatial, 0, len(features))
	skipped := 0
	for i := range features {
		f := &features[i]
		if err := ValidateGeometry(f.Geometry); err != nil {
			skipped++
			continue
		}
		entries = append(entries, &indexEntry{feature: f, bounds: f.Bounds()})
	}

	// Bulk load (OMT) in one pass instead of repeated inserts.
	idx.rtree = rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren, entries...)
	idx.set = nil
	idx.count = len(entries)
	idx.skipped = skipped
	idx.rebuilds++
}

// Sync loads set into the index unless it is the set that is already loaded.
//
// Only the pointer is compared; a structurally equal but distinct set always
// triggers a rebuild, and a nil set is ignored. Sync reports whether the
// index was rebuilt.
func (idx *GeometryIndex) Sync(set *FeatureSet) bool {
	if set == nil || set == idx.set {
		return false
	}

	features := set.Features
	if features == nil {
		features = []Feature{}
	}
	idx.Load(features)
	idx.set = set
	return true
}

// Query returns every feature whose bounding box intersects b.
//
// The order of the result is unspecified. No filtering other than spatial
// intersection is applied, and the result may include features just outside
// b, never fewer.
func (idx *GeometryIndex) Query(b Bounds) []*Feature {
	if idx.rtree == nil || idx.count == 0 || !b.Valid() {
		return nil
	}

	// rtreego treats touching rectangles as disjoint; widen the query so
	// features lying exactly on an edge are still returned.
	spatials := idx.rtree.SearchIntersect(toRect(b.Expand(pointEpsilon)))

	result := make([]*Feature, 0, len(spatials))
	for _, spatial := range spatials {
		entry := spatial.(*indexEntry)
		result = append(result, entry.feature)
	}
	return result
}

// Len returns the number of indexed features.
func (idx *GeometryIndex) Len() int {
	return idx.count
}

// Skipped returns how many features the last load dropped for invalid geometry.
func (idx *GeometryIndex) Skipped() int {
	return idx.skipped
}

// Rebuilds returns how many times the index has been (re)loaded.
func (idx *GeometryIndex) Rebuilds() int {
	return idx.rebuilds
}

// FeatureSet returns the set last loaded through Sync, or nil.
func (idx *GeometryIndex) FeatureSet() *FeatureSet {
	return idx.set
}
