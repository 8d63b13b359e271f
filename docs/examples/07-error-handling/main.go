package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/featurecanvas/pkg/canvas"
)

func safeLoadFeatures(path string) ([]canvas.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Check if file exists
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("feature file not found: %s", path)
		}
		return nil, err
	}

	features, err := canvas.FeaturesFromGeoJSON(data, "id")
	if err != nil {
		log.Printf("Failed to decode %s: %v", path, err)
		return nil, err
	}

	// Malformed geometry is not fatal: the index and the rasterizer skip it
	for _, f := range features {
		var geomErr *canvas.ErrInvalidGeometry
		if err := canvas.ValidateGeometry(f.Geometry); errors.As(err, &geomErr) {
			log.Printf("Warning: feature %s will be skipped: %s", f.ID, geomErr.Reason)
		}
	}
	return features, nil
}

func main() {
	features, err := safeLoadFeatures("ports.geojson")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	// Invalid options are reported before anything is drawn
	opts := canvas.DefaultLayerOptions()
	opts.BoxRangeMin, opts.BoxRangeMax = 50000, 1000
	var optErr *canvas.ErrInvalidOptions
	if _, err := canvas.NewLayer(opts); errors.As(err, &optErr) {
		log.Printf("Expected error: %v", optErr)
	}

	// Before the map is mounted there is nothing to project with; the
	// layer skips the cycle and draws once a viewport arrives.
	layer, err := canvas.NewLayer(canvas.DefaultLayerOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Close()

	if err := layer.SetFeatureSet(canvas.NewFeatureSet(features), canvas.DefaultStyleRules(), nil); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Prepared before mount: %d\n", len(layer.Prepared()))

	if _, err := canvas.ComputeGeoBBox(canvas.Viewport{}, nil); errors.Is(err, canvas.ErrProjectorUnavailable) {
		log.Printf("Expected error: %v", err)
	}

	// Try to load a non-existent file
	if _, err := safeLoadFeatures("nonexistent.geojson"); err != nil {
		log.Printf("Expected error: %v", err)
	}
}
