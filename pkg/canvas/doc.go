// Package canvas renders geospatial features onto a pixel canvas and answers
// "what is under the pointer" queries against what was drawn.
//
// It is the rendering engine behind an interactive map layer: the hosting map
// widget supplies a Projector and reports viewport changes, this package
// decides which features are visible, resolves their styles, orders and draws
// them, and maps clicks back to feature ids.
//
// # Basic Usage
//
//	features, err := canvas.FeaturesFromGeoJSON(data, "id")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	layer, err := canvas.NewLayer(canvas.DefaultLayerOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer layer.Close()
//
//	set := canvas.NewFeatureSet(features)
//	layer.SetFeatureSet(set, canvas.DefaultStyleRules(), nil)
//
//	proj := &canvas.MercatorProjector{
//	    Center: canvas.LatLng{Lat: 42.35, Lng: -71.05},
//	    Zoom:   12,
//	    Size:   canvas.Pixel{X: 512, Y: 512},
//	}
//	layer.OnViewportChanged(proj.Viewport(), proj)
//
//	png.Encode(w, layer.Surface())
//
// # Render Pipeline
//
// Every entry point of a Layer runs the same synchronous cycle:
//
//  1. GeometryIndex: the R-tree over the feature set is rebuilt only when a
//     different *FeatureSet is supplied.
//  2. ComputeGeoBBox: the four viewport corners are projected to a
//     geographic envelope and the index is queried with it.
//  3. Prepare / Resolve: feature ids, selection groups and the four style
//     variants (default, hovered, selected, selected-hovered) are resolved.
//  4. Order: larger symbols first, then ascending id, so small symbols stay
//     on top and the result does not depend on R-tree iteration order.
//  5. Rasterizer: the canvas is cleared and every feature drawn once.
//
// In diagram mode, steps 4 and 5 run twice: once for the feature areas and
// once for the proportional symbols at their centroids, each on its own
// canvas.
//
// # Styles
//
// Styles are declarative and layered. StyleRules.Base applies to every
// feature; AttributeStyles refine it from feature properties; Hovered,
// Selected and SelectedHovered are partial overrides merged over the base.
// Rules can be loaded from YAML with ParseStyleRules.
//
// # Hit Testing
//
// Layer.Click tests the features of the last draw cycle. Only point-like
// features and diagram symbols are hit-testable; lines and polygon areas are
// never reported.
package canvas
