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

	opts := canvas.DefaultLayerOptions()
	opts.Key = "ports"
	opts.OnFeatureSelected = func(layerKey string, ids []canvas.FeatureID) {
		// Zero, one or many features can be under the pointer; the caller
		// decides between single and multi selection.
		fmt.Printf("Layer %s: selected %v\n", layerKey, ids)
	}

	layer, err := canvas.NewLayer(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()

	proj := &canvas.MercatorProjector{
		Center: canvas.LatLng{Lat: 42.36, Lng: -71.06},
		Zoom:   12,
		Size:   canvas.Pixel{X: 256, Y: 256},
	}
	if err := layer.SetFeatureSet(canvas.NewFeatureSet(features), canvas.DefaultStyleRules(), nil); err != nil {
		log.Fatal(err)
	}
	if err := layer.OnViewportChanged(proj.Viewport(), proj); err != nil {
		log.Fatal(err)
	}

	// Click at the map center, then in a corner
	for _, click := range []canvas.Pixel{{X: 128, Y: 128}, {X: 2, Y: 2}} {
		ids, err := layer.Click(click, proj)
		if err != nil {
			log.Fatal(err)
		}
		if len(ids) == 0 {
			fmt.Printf("Nothing at (%.0f, %.0f)\n", click.X, click.Y)
		}
	}
}
