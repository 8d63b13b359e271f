package main

import (
	"fmt"
	"image/png"
	"log"
	"os"

	"github.com/beetlebugorg/featurecanvas/pkg/canvas"
)

func main() {
	// Load features
	data, err := os.ReadFile("ports.geojson")
	if err != nil {
		log.Fatal(err)
	}
	features, err := canvas.FeaturesFromGeoJSON(data, "id")
	if err != nil {
		log.Fatal(err)
	}

	// Create layer
	layer, err := canvas.NewLayer(canvas.DefaultLayerOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()

	// The map widget normally provides the projector
	proj := &canvas.MercatorProjector{
		Center: canvas.LatLng{Lat: 42.35, Lng: -71.05},
		Zoom:   10,
		Size:   canvas.Pixel{X: 512, Y: 512},
	}

	if err := layer.SetFeatureSet(canvas.NewFeatureSet(features), canvas.DefaultStyleRules(), nil); err != nil {
		log.Fatal(err)
	}
	if err := layer.OnViewportChanged(proj.Viewport(), proj); err != nil {
		log.Fatal(err)
	}

	stats := layer.Stats()
	fmt.Printf("Drawn: %d, hidden: %d, skipped: %d\n", stats.Drawn, stats.Hidden, stats.Skipped)

	out, err := os.Create("ports.png")
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()
	if err := png.Encode(out, layer.Surface()); err != nil {
		log.Fatal(err)
	}
}
