package main

import (
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/featurecanvas/pkg/canvas"
)

// Style rules derived from feature properties: a color class per harbor
// kind and a symbol size scaled from the annual tonnage.
const styles = `
rules:
  base:
    shape: circle
    size: 4
    fill: "#888888"
    outlineColor: "#333333"
    outlineWidth: 1
  attributeStyles:
    - property: kind
      values:
        commercial:
          fill: "#1f78b4"
        fishing:
          fill: "#33a02c"
          shape: square
    - property: tonnage
      scale:
        target: size
        inputMin: 0
        inputMax: 50000000
        outputMin: 3
        outputMax: 16
  hovered:
    outlineColor: "#ffcc00"
    outlineWidth: 2
`

func main() {
	rules, selection, err := canvas.ParseStyleRules([]byte(styles))
	if err != nil {
		log.Fatal(err)
	}

	data, err := os.ReadFile("ports.geojson")
	if err != nil {
		log.Fatal(err)
	}
	features, err := canvas.FeaturesFromGeoJSON(data, "id")
	if err != nil {
		log.Fatal(err)
	}

	for i := range features {
		f := &features[i]
		group := selection.Find(f.ID)
		res := canvas.Resolve(f, rules, group, canvas.ModeArea)

		kind, _ := f.Property("kind")
		fmt.Printf("Feature %s (%v)\n", f.ID, kind)
		fmt.Printf("  Shape: %s, radius %.1f\n", res.Area.Default.Shape, res.Area.Default.Radius)
		fmt.Printf("  Fill: %v\n", res.Area.Default.FillRGBA())
		fmt.Printf("  Hovered outline: %v (%.0fpx)\n", res.Area.Hovered.StrokeRGBA(), res.Area.Hovered.StrokeWidth)
	}
}
