package canvas

import (
	"fmt"
	"log/slog"
)

// LayerOptions configures a Layer.
type LayerOptions struct {
	// Key identifies the layer in OnFeatureSelected callbacks.
	// A random key is generated when empty.
	Key string

	// Mode selects area or diagram rendering.
	Mode Mode

	// Width and Height are the initial canvas size in pixels. The canvas
	// follows the viewport size afterwards.
	Width  int
	Height int

	// FIDProperty names the property holding feature ids for features
	// without an explicit id.
	FIDProperty string

	// BoxRangeMin and BoxRangeMax limit the view extents (in meters) at which
	// the layer renders. Zero disables a limit.
	BoxRangeMin float64
	BoxRangeMax float64

	// OmittedFeatureKeys lists features that are never drawn or hit.
	OmittedFeatureKeys []FeatureID

	// PointAsMarker draws points with an Icon style as SVG markers.
	PointAsMarker bool

	// Icons maps icon names to SVG sources for marker points.
	Icons map[string][]byte

	// IconCacheBytes bounds the memory used by rasterized icons.
	IconCacheBytes int64

	// Selectable enables click hit-testing.
	Selectable bool

	// OnFeatureSelected is called synchronously from Click with the ids of
	// the features under the pointer, when there is at least one.
	OnFeatureSelected func(layerKey string, ids []FeatureID)

	// Logger receives recoverable conditions (skipped geometry, skipped draw
	// cycles). Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultLayerOptions returns options for a selectable 256×256 area layer.
func DefaultLayerOptions() LayerOptions {
	return LayerOptions{
		Mode:       ModeArea,
		Width:      256,
		Height:     256,
		Selectable: true,
	}
}

// Validate reports configuration values that can never work.
func (o LayerOptions) Validate() error {
	if o.Mode != ModeArea && o.Mode != ModeDiagram {
		return &ErrInvalidOptions{Field: "Mode", Reason: fmt.Sprintf("unknown mode %d", o.Mode)}
	}
	if o.Width <= 0 || o.Height <= 0 {
		return &ErrInvalidOptions{Field: "Width/Height", Reason: fmt.Sprintf("%dx%d is empty", o.Width, o.Height)}
	}
	if o.BoxRangeMin < 0 || o.BoxRangeMax < 0 {
		return &ErrInvalidOptions{Field: "BoxRange", Reason: "limits must not be negative"}
	}
	if o.BoxRangeMin > 0 && o.BoxRangeMax > 0 && o.BoxRangeMin > o.BoxRangeMax {
		return &ErrInvalidOptions{Field: "BoxRange",
			Reason: fmt.Sprintf("min %.0f is greater than max %.0f", o.BoxRangeMin, o.BoxRangeMax)}
	}
	return nil
}

// boxRangeFits reports whether a view extent is inside the configured limits.
// An unknown extent (0) always fits.
func (o LayerOptions) boxRangeFits(boxRange float64) bool {
	if boxRange <= 0 {
		return true
	}
	if o.BoxRangeMin > 0 && boxRange < o.BoxRangeMin {
		return false
	}
	if o.BoxRangeMax > 0 && boxRange > o.BoxRangeMax {
		return false
	}
	return true
}
