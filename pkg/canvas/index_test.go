package canvas

import (
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
)

func TestGeometryIndexQuery(t *testing.T) {
	features := []Feature{
		pointFeature("boston", -71.06, 42.36, nil),
		pointFeature("salem", -70.90, 42.52, nil),
		pointFeature("nyc", -74.00, 40.71, nil),
		{ID: StringID("harbor"), Geometry: squarePolygon(-71.05, 42.30, 0.05)},
	}

	idx := NewGeometryIndex()
	idx.Load(features)

	if idx.Len() != 4 {
		t.Fatalf("Expected 4 indexed features, got %d", idx.Len())
	}

	got := idx.Query(Bounds{MinLon: -71.2, MinLat: 42.2, MaxLon: -70.8, MaxLat: 42.6})
	ids := map[string]bool{}
	for _, f := range got {
		ids[f.ID.String()] = true
	}
	for _, want := range []string{"boston", "salem", "harbor"} {
		if !ids[want] {
			t.Errorf("Expected %q in query result, got %v", want, ids)
		}
	}
	if ids["nyc"] {
		t.Errorf("Did not expect nyc in query result")
	}
}

func TestGeometryIndexPointOnEdge(t *testing.T) {
	idx := NewGeometryIndex()
	idx.Load([]Feature{pointFeature("edge", 11, 21, nil)})

	got := idx.Query(Bounds{MinLon: 10, MinLat: 20, MaxLon: 11, MaxLat: 21})
	if len(got) != 1 {
		t.Errorf("Expected point on the north-east corner to be returned, got %d features", len(got))
	}
}

// Every feature whose bounds intersect the query must be returned.
func TestGeometryIndexNoFalseNegatives(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	features := make([]Feature, 2000)
	for i := range features {
		lon := -72 + rng.Float64()*2
		lat := 41 + rng.Float64()*2
		if i%3 == 0 {
			features[i] = Feature{ID: IntID(int64(i)), Geometry: squarePolygon(lon, lat, rng.Float64()*0.1)}
		} else {
			features[i] = Feature{ID: IntID(int64(i)), Geometry: orb.Point{lon, lat}}
		}
	}

	idx := NewGeometryIndex()
	idx.Load(features)

	for q := 0; q < 50; q++ {
		lon := -72 + rng.Float64()*2
		lat := 41 + rng.Float64()*2
		box := Bounds{MinLon: lon, MinLat: lat, MaxLon: lon + rng.Float64()*0.5, MaxLat: lat + rng.Float64()*0.5}

		got := map[FeatureID]bool{}
		for _, f := range idx.Query(box) {
			got[f.ID] = true
		}

		for i := range features {
			if box.Intersects(features[i].Bounds()) && !got[features[i].ID] {
				t.Fatalf("query %d: feature %s intersects %+v but was not returned", q, features[i].ID, box)
			}
		}
	}
}

func TestGeometryIndexSyncMemoizes(t *testing.T) {
	features := []Feature{pointFeature("a", 10, 20, nil)}
	set := NewFeatureSet(features)

	idx := NewGeometryIndex()
	if !idx.Sync(set) {
		t.Fatal("Expected first Sync to rebuild")
	}
	if idx.Sync(set) {
		t.Error("Expected Sync with the same set to be a no-op")
	}
	if idx.Rebuilds() != 1 {
		t.Errorf("Expected 1 rebuild, got %d", idx.Rebuilds())
	}

	// Same content, different identity.
	if !idx.Sync(NewFeatureSet(features)) {
		t.Error("Expected Sync with a new set to rebuild")
	}
	if idx.Rebuilds() != 2 {
		t.Errorf("Expected 2 rebuilds, got %d", idx.Rebuilds())
	}

	if idx.Sync(nil) {
		t.Error("Expected Sync(nil) to be ignored")
	}
}

func TestGeometryIndexLoadNilAndEmpty(t *testing.T) {
	idx := NewGeometryIndex()
	idx.Load([]Feature{pointFeature("a", 10, 20, nil)})

	idx.Load(nil)
	if idx.Len() != 1 {
		t.Errorf("Expected Load(nil) to keep content, got %d features", idx.Len())
	}

	idx.Load([]Feature{})
	if idx.Len() != 0 {
		t.Errorf("Expected empty load to clear the index, got %d features", idx.Len())
	}
	if got := idx.Query(Bounds{MinLon: 0, MinLat: 0, MaxLon: 90, MaxLat: 90}); len(got) != 0 {
		t.Errorf("Expected no results from an empty index, got %d", len(got))
	}
}

func TestGeometryIndexSkipsInvalid(t *testing.T) {
	idx := NewGeometryIndex()
	idx.Load([]Feature{
		pointFeature("ok", 10, 20, nil),
		{ID: StringID("short"), Geometry: orb.LineString{{10, 20}}},
		{ID: StringID("none")},
	})

	if idx.Len() != 1 {
		t.Errorf("Expected 1 indexed feature, got %d", idx.Len())
	}
	if idx.Skipped() != 2 {
		t.Errorf("Expected 2 skipped features, got %d", idx.Skipped())
	}
}

func TestGeometryIndexQueryInvalidBounds(t *testing.T) {
	idx := NewGeometryIndex()
	idx.Load([]Feature{pointFeature("a", 10, 20, nil)})

	if got := idx.Query(Bounds{MinLon: 11, MinLat: 20, MaxLon: 9, MaxLat: 21}); got != nil {
		t.Errorf("Expected nil for inverted bounds, got %d features", len(got))
	}
}
