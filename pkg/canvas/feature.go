package canvas

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Feature is one geospatial entity handed to the renderer.
//
// Features are owned by the caller and treated as read-only: nothing in this
// package mutates a Feature, its geometry or its properties.
//
// Geometry coordinates follow the GeoJSON convention: [longitude, latitude].
type Feature struct {
	ID         FeatureID
	Geometry   orb.Geometry
	Properties map[string]interface{}
}

// Type returns the geometry type of the feature.
func (f *Feature) Type() GeometryType {
	return geometryTypeOf(f.Geometry)
}

// Property returns a property value by key.
func (f *Feature) Property(key string) (interface{}, bool) {
	val, ok := f.Properties[key]
	return val, ok
}

// Bounds returns the geographic bounding box of the feature geometry.
func (f *Feature) Bounds() Bounds {
	if f.Geometry == nil {
		return Bounds{}
	}
	return boundsFromOrb(f.Geometry.Bound())
}

// Centroid returns the area-weighted center of the geometry, used as the
// anchor of proportional symbols in diagram mode.
func (f *Feature) Centroid() orb.Point {
	c, _ := planar.CentroidArea(f.Geometry)
	return c
}

// FeatureSet is a collection of features whose identity (pointer) decides
// whether the spatial index must be rebuilt. Replace the whole set to signal
// a change; mutating Features in place is not detected.
type FeatureSet struct {
	Features []Feature
}

// NewFeatureSet wraps features in a new set.
func NewFeatureSet(features []Feature) *FeatureSet {
	return &FeatureSet{Features: features}
}

// GeometryType represents the type of geometry.
type GeometryType int

const (
	// GeometryTypeUnknown marks geometries the renderer does not support
	// (collections, bare rings or bounds) or a missing geometry.
	GeometryTypeUnknown GeometryType = iota
	GeometryTypePoint
	GeometryTypeMultiPoint
	GeometryTypeLineString
	GeometryTypeMultiLineString
	GeometryTypePolygon
	GeometryTypeMultiPolygon
)

// String returns the GeoJSON name of the geometry type.
func (g GeometryType) String() string {
	switch g {
	case GeometryTypePoint:
		return "Point"
	case GeometryTypeMultiPoint:
		return "MultiPoint"
	case GeometryTypeLineString:
		return "LineString"
	case GeometryTypeMultiLineString:
		return "MultiLineString"
	case GeometryTypePolygon:
		return "Polygon"
	case GeometryTypeMultiPolygon:
		return "MultiPolygon"
	default:
		return "Unknown"
	}
}

// IsPointLike reports whether the type is drawn as a symbol rather than a path.
func (g GeometryType) IsPointLike() bool {
	return g == GeometryTypePoint || g == GeometryTypeMultiPoint
}

func geometryTypeOf(g orb.Geometry) GeometryType {
	switch g.(type) {
	case orb.Point:
		return GeometryTypePoint
	case orb.MultiPoint:
		return GeometryTypeMultiPoint
	case orb.LineString:
		return GeometryTypeLineString
	case orb.MultiLineString:
		return GeometryTypeMultiLineString
	case orb.Polygon:
		return GeometryTypePolygon
	case orb.MultiPolygon:
		return GeometryTypeMultiPolygon
	default:
		return GeometryTypeUnknown
	}
}

// ValidateGeometry checks that a geometry is one of the supported types and
// carries enough coordinates to be indexed and drawn.
func ValidateGeometry(g orb.Geometry) error {
	switch geom := g.(type) {
	case nil:
		return &ErrInvalidGeometry{Reason: "missing geometry"}
	case orb.Point:
		return validatePoint(geom)
	case orb.MultiPoint:
		if len(geom) == 0 {
			return &ErrInvalidGeometry{Type: GeometryTypeMultiPoint, Reason: "no points"}
		}
		for _, p := range geom {
			if err := validatePoint(p); err != nil {
				return err
			}
		}
	case orb.LineString:
		if len(geom) < 2 {
			return &ErrInvalidGeometry{Type: GeometryTypeLineString,
				Reason: fmt.Sprintf("line needs at least 2 points, got %d", len(geom))}
		}
		return validateVertices(GeometryTypeLineString, geom)
	case orb.MultiLineString:
		if len(geom) == 0 {
			return &ErrInvalidGeometry{Type: GeometryTypeMultiLineString, Reason: "no lines"}
		}
		for _, ls := range geom {
			if err := ValidateGeometry(ls); err != nil {
				return err
			}
		}
	case orb.Polygon:
		if len(geom) == 0 {
			return &ErrInvalidGeometry{Type: GeometryTypePolygon, Reason: "no rings"}
		}
		for i, ring := range geom {
			if len(ring) < 3 {
				return &ErrInvalidGeometry{Type: GeometryTypePolygon,
					Reason: fmt.Sprintf("ring %d has %d points, need at least 3", i, len(ring))}
			}
			if err := validateVertices(GeometryTypePolygon, ring); err != nil {
				return err
			}
		}
	case orb.MultiPolygon:
		if len(geom) == 0 {
			return &ErrInvalidGeometry{Type: GeometryTypeMultiPolygon, Reason: "no polygons"}
		}
		for _, p := range geom {
			if err := ValidateGeometry(p); err != nil {
				return err
			}
		}
	default:
		return &ErrInvalidGeometry{Reason: fmt.Sprintf("unsupported geometry type %s", g.GeoJSONType())}
	}
	return nil
}

func validatePoint(p orb.Point) error {
	if !finite(p) {
		return &ErrInvalidGeometry{Type: GeometryTypePoint, Reason: "non-finite coordinate"}
	}
	return nil
}

func validateVertices[T ~[]orb.Point](t GeometryType, path T) error {
	for i, p := range path {
		if !finite(p) {
			return &ErrInvalidGeometry{Type: t, Reason: fmt.Sprintf("non-finite coordinate at vertex %d", i)}
		}
	}
	return nil
}

func finite(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsNaN(p[1]) && !math.IsInf(p[0], 0) && !math.IsInf(p[1], 0)
}

// FeaturesFromGeoJSON decodes a GeoJSON FeatureCollection.
//
// Feature ids are taken from the "id" member; when it is absent and
// fidProperty is non-empty, the named property is used instead.
// Features with unsupported geometry are kept: they are skipped later by the
// index and the rasterizer, which is where malformed input is reported.
func FeaturesFromGeoJSON(data []byte, fidProperty string) ([]Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	features := make([]Feature, 0, len(fc.Features))
	for _, gf := range fc.Features {
		f := Feature{
			Geometry:   gf.Geometry,
			Properties: map[string]interface{}(gf.Properties),
		}
		if id, ok := ParseID(gf.ID); ok {
			f.ID = id
		} else if fidProperty != "" {
			if id, ok := ParseID(gf.Properties[fidProperty]); ok {
				f.ID = id
			}
		}
		features = append(features, f)
	}
	return features, nil
}

type idKind uint8

const (
	idAbsent idKind = iota
	idInt
	idString
)

// FeatureID identifies a feature. GeoJSON allows both string and numeric ids,
// and features may have none at all; the zero value is the absent id.
//
// FeatureIDs are comparable and can be used as map keys.
type FeatureID struct {
	kind idKind
	num  int64
	str  string
}

// StringID returns a string feature id. The empty string is the absent id.
func StringID(s string) FeatureID {
	if s == "" {
		return FeatureID{}
	}
	return FeatureID{kind: idString, str: s}
}

// IntID returns a numeric feature id.
func IntID(n int64) FeatureID {
	return FeatureID{kind: idInt, num: n}
}

// ParseID converts a decoded JSON/YAML value into a FeatureID.
// Integral floats become numeric ids; other floats are kept as strings.
func ParseID(v interface{}) (FeatureID, bool) {
	switch id := v.(type) {
	case FeatureID:
		return id, !id.IsZero()
	case string:
		fid := StringID(id)
		return fid, !fid.IsZero()
	case int:
		return IntID(int64(id)), true
	case int32:
		return IntID(int64(id)), true
	case int64:
		return IntID(id), true
	case uint32:
		return IntID(int64(id)), true
	case float64:
		if id == math.Trunc(id) && math.Abs(id) < 1<<53 {
			return IntID(int64(id)), true
		}
		return StringID(strconv.FormatFloat(id, 'f', -1, 64)), true
	case json.Number:
		if n, err := id.Int64(); err == nil {
			return IntID(n), true
		}
		return StringID(id.String()), true
	default:
		return FeatureID{}, false
	}
}

// IsZero reports whether the id is absent.
func (id FeatureID) IsZero() bool { return id.kind == idAbsent }

// IsNumeric reports whether the id holds an integer.
func (id FeatureID) IsNumeric() bool { return id.kind == idInt }

// String formats the id; absent ids format as the empty string.
func (id FeatureID) String() string {
	switch id.kind {
	case idInt:
		return strconv.FormatInt(id.num, 10)
	case idString:
		return id.str
	default:
		return ""
	}
}

// Value returns the id as int64, string or nil.
func (id FeatureID) Value() interface{} {
	switch id.kind {
	case idInt:
		return id.num
	case idString:
		return id.str
	default:
		return nil
	}
}

// Compare orders ids: numeric ids first (numerically), then string ids
// (lexically), absent ids last. It returns -1, 0 or +1.
func (id FeatureID) Compare(other FeatureID) int {
	if id.kind != other.kind {
		return cmpInt(rank(id.kind), rank(other.kind))
	}
	switch id.kind {
	case idInt:
		return cmpInt(id.num, other.num)
	case idString:
		switch {
		case id.str < other.str:
			return -1
		case id.str > other.str:
			return 1
		}
	}
	return 0
}

func rank(k idKind) int64 {
	switch k {
	case idInt:
		return 0
	case idString:
		return 1
	default:
		return 2
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// MarshalJSON encodes the id as a JSON number, string or null.
func (id FeatureID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Value())
}

// UnmarshalYAML accepts scalar ids in selection and style files.
func (id *FeatureID) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, ok := ParseID(raw)
	if !ok {
		return fmt.Errorf("invalid feature id %v", raw)
	}
	*id = parsed
	return nil
}
