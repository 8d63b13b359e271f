package canvas

import (
	"errors"
	"fmt"
)

// ErrProjectorUnavailable is returned when a draw or hit-test cycle is requested
// before the map has a usable projection (nil projector or not yet mounted).
var ErrProjectorUnavailable = errors.New("projector unavailable")

// ErrInvalidGeometry indicates a feature geometry that cannot be indexed or drawn.
type ErrInvalidGeometry struct {
	Type   GeometryType
	Reason string
}

func (e *ErrInvalidGeometry) Error() string {
	if e.Type != GeometryTypeUnknown {
		return fmt.Sprintf("invalid geometry (%v): %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("invalid geometry: %s", e.Reason)
}

// ErrInvalidOptions indicates a configuration value that can never work.
// These are programmer errors and are returned immediately.
type ErrInvalidOptions struct {
	Field  string
	Reason string
}

func (e *ErrInvalidOptions) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Field, e.Reason)
}
