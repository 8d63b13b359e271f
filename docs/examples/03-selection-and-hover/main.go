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
	opts.Width, opts.Height = 512, 512
	opts.OmittedFeatureKeys = []canvas.FeatureID{canvas.StringID("closed-port")}

	layer, err := canvas.NewLayer(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()

	// Groups are checked in order: a feature listed in both groups is drawn
	// with the "favorites" style.
	selection := canvas.SelectionSet{
		{
			Key:   "favorites",
			Keys:  []canvas.FeatureID{canvas.StringID("boston"), canvas.StringID("salem")},
			Style: &canvas.Style{OutlineColor: canvas.MustColor("#ffd700"), OutlineWidth: canvas.Ptr(3.0)},
		},
		{
			Key:  "visited",
			Keys: []canvas.FeatureID{canvas.StringID("salem"), canvas.IntID(42)},
		},
	}

	proj := &canvas.MercatorProjector{
		Center: canvas.LatLng{Lat: 42.35, Lng: -71.05},
		Zoom:   9,
		Size:   canvas.Pixel{X: 512, Y: 512},
	}

	if err := layer.SetFeatureSet(canvas.NewFeatureSet(features), canvas.DefaultStyleRules(), selection); err != nil {
		log.Fatal(err)
	}
	if err := layer.OnViewportChanged(proj.Viewport(), proj); err != nil {
		log.Fatal(err)
	}

	// Hovered features are drawn last, on top of everything else
	if err := layer.Hover(canvas.StringID("boston")); err != nil {
		log.Fatal(err)
	}

	for _, pf := range layer.Prepared() {
		state := "-"
		if pf.Selected {
			state = pf.Group
		}
		fmt.Printf("  %-12s radius=%.1f selection=%s\n", pf.FID, pf.Size(), state)
	}
}
