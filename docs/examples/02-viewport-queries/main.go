package main

import (
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/featurecanvas/pkg/canvas"
)

func main() {
	data, err := os.ReadFile("ports.geojson")
	if err != nil {
		log.Fatal(err)
	}
	features, err := canvas.FeaturesFromGeoJSON(data, "id")
	if err != nil {
		log.Fatal(err)
	}

	// Build the R-tree once per feature set
	index := canvas.NewGeometryIndex()
	index.Load(features)
	fmt.Printf("Indexed: %d (skipped %d)\n", index.Len(), index.Skipped())

	// A rotated view: the visible area is not axis-aligned in geographic
	// space, so the bbox is the envelope of all four projected corners.
	proj := &canvas.MercatorProjector{
		Center:  canvas.LatLng{Lat: 42.35, Lng: -71.05},
		Zoom:    11,
		Size:    canvas.Pixel{X: 800, Y: 600},
		Bearing: 30,
	}

	bbox, err := canvas.ComputeGeoBBox(proj.Viewport(), proj)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Viewport: [%.4f,%.4f] to [%.4f,%.4f]\n",
		bbox.MinLon, bbox.MinLat,
		bbox.MaxLon, bbox.MaxLat)

	// Query R-tree index for visible features (O(log n))
	visible := index.Query(bbox)
	fmt.Printf("Visible features: %d\n", len(visible))

	for _, f := range visible {
		fmt.Printf("  %s: %s\n", f.ID, f.Type())
	}
}
