package canvas

import (
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
)

// Benchmark R-tree spatial index vs linear scan for viewport queries.

func createLargeSet(n int) []Feature {
	rng := rand.New(rand.NewSource(1))
	features := make([]Feature, n)
	for i := range features {
		// Spread over a 2x2 degree region around Boston.
		lon := -72.0 + rng.Float64()*2
		lat := 42.0 + rng.Float64()*2
		features[i] = Feature{ID: IntID(int64(i)), Geometry: orb.Point{lon, lat}}
	}
	return features
}

func linearQuery(features []Feature, b Bounds) []*Feature {
	var out []*Feature
	for i := range features {
		if b.Intersects(features[i].Bounds()) {
			out = append(out, &features[i])
		}
	}
	return out
}

// Small viewport (typical zoom level, ~25 of 10,000 features).
var smallViewport = Bounds{MinLon: -71.1, MaxLon: -71.0, MinLat: 42.0, MaxLat: 42.1}

// Large viewport (zoomed out, ~2,500 of 10,000 features).
var largeViewport = Bounds{MinLon: -72.0, MaxLon: -71.0, MinLat: 42.0, MaxLat: 43.0}

func BenchmarkQuery_Rtree(b *testing.B) {
	idx := NewGeometryIndex()
	idx.Load(createLargeSet(10000))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = idx.Query(smallViewport)
	}
}

func BenchmarkQuery_Linear(b *testing.B) {
	features := createLargeSet(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = linearQuery(features, smallViewport)
	}
}

func BenchmarkQuery_Rtree_LargeViewport(b *testing.B) {
	idx := NewGeometryIndex()
	idx.Load(createLargeSet(10000))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = idx.Query(largeViewport)
	}
}

func BenchmarkQuery_Linear_LargeViewport(b *testing.B) {
	features := createLargeSet(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = linearQuery(features, largeViewport)
	}
}

// BenchmarkLoad benchmarks R-tree bulk load.
func BenchmarkLoad(b *testing.B) {
	features := createLargeSet(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx := NewGeometryIndex()
		idx.Load(features)
	}
}
