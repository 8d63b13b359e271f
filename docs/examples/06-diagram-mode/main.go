package main

import (
	"image/png"
	"log"
	"os"

	"github.com/beetlebugorg/featurecanvas/pkg/canvas"
)

// Regions are drawn as areas, with a proportional circle at each centroid
// whose area is the region's population.
const styles = `
rules:
  base:
    fill: "#dddddd"
    outlineColor: "#999999"
    outlineWidth: 1
    diagramFill: "#e31a1c"
    diagramFillOpacity: 0.7
    diagramOutlineColor: "#ffffff"
    diagramOutlineWidth: 1
  attributeStyles:
    - property: population
      scale:
        target: diagramVolume
`

func main() {
	rules, selection, err := canvas.ParseStyleRules([]byte(styles))
	if err != nil {
		log.Fatal(err)
	}

	data, err := os.ReadFile("regions.geojson")
	if err != nil {
		log.Fatal(err)
	}
	features, err := canvas.FeaturesFromGeoJSON(data, "code")
	if err != nil {
		log.Fatal(err)
	}

	opts := canvas.DefaultLayerOptions()
	opts.Mode = canvas.ModeDiagram
	opts.FIDProperty = "code"

	layer, err := canvas.NewLayer(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()

	proj := &canvas.MercatorProjector{
		Center: canvas.LatLng{Lat: 42.2, Lng: -71.8},
		Zoom:   7,
		Size:   canvas.Pixel{X: 800, Y: 600},
	}
	if err := layer.SetFeatureSet(canvas.NewFeatureSet(features), rules, selection); err != nil {
		log.Fatal(err)
	}
	if err := layer.OnViewportChanged(proj.Viewport(), proj); err != nil {
		log.Fatal(err)
	}

	// Surface composites the diagram canvas over the area canvas
	out, err := os.Create("regions.png")
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()
	if err := png.Encode(out, layer.Surface()); err != nil {
		log.Fatal(err)
	}
}
