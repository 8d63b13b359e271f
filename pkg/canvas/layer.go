package canvas

import (
	"errors"
	"image"
	"image/draw"
	"log/slog"

	"github.com/google/uuid"
)

// Layer is a feature layer rendered onto its own canvas.
//
// The host map widget drives a Layer through its entry points:
// SetFeatureSet (and the narrower OnStyleChanged / OnSelectionChanged),
// OnViewportChanged, Hover and Click. Each call runs a complete cycle
// synchronously: index query, style resolution, ordering and rasterization.
// Nothing runs in the background.
//
// A Layer is not safe for concurrent use; the host must deliver events
// serially, as UI event loops do.
type Layer struct {
	opts LayerOptions
	key  string
	log  *slog.Logger

	index     *GeometryIndex
	set       *FeatureSet
	rules     StyleRules
	selection SelectionSet
	omitted   map[FeatureID]bool
	hovered   map[FeatureID]bool

	viewport  Viewport
	projector Projector

	areas     *Rasterizer
	diagrams  *Rasterizer
	composite *image.RGBA

	prepared []*PreparedFeature
	stats    DrawStats
}

// NewLayer creates a layer. Invalid options are returned as *ErrInvalidOptions.
func NewLayer(opts LayerOptions) (*Layer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	l := &Layer{
		opts:    opts,
		key:     opts.Key,
		log:     opts.Logger,
		index:   NewGeometryIndex(),
		rules:   DefaultStyleRules(),
		omitted: make(map[FeatureID]bool, len(opts.OmittedFeatureKeys)),
	}
	if l.key == "" {
		l.key = uuid.New().String()
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	l.log = l.log.With(slog.String("layer", l.key), slog.String("mode", opts.Mode.String()))

	for _, id := range opts.OmittedFeatureKeys {
		l.omitted[id] = true
	}

	rOpts := RasterizerOptions{
		PointAsMarker:  opts.PointAsMarker,
		Icons:          opts.Icons,
		IconCacheBytes: opts.IconCacheBytes,
	}
	var err error
	if l.areas, err = NewRasterizer(opts.Width, opts.Height, rOpts); err != nil {
		return nil, err
	}
	if opts.Mode == ModeDiagram {
		if l.diagrams, err = NewRasterizer(opts.Width, opts.Height, rOpts); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Key returns the layer key.
func (l *Layer) Key() string {
	return l.key
}

// SetFeatureSet replaces the features, style rules and selection, then
// redraws. The spatial index is rebuilt only when set is a different
// pointer than the one currently loaded. A nil set renders nothing.
func (l *Layer) SetFeatureSet(set *FeatureSet, rules StyleRules, selection SelectionSet) error {
	if set != nil && l.index.Sync(set) {
		l.log.Debug("spatial index rebuilt",
			slog.Int("features", l.index.Len()),
			slog.Int("skipped", l.index.Skipped()))
		if n := l.index.Skipped(); n > 0 {
			l.log.Warn("features with invalid geometry not indexed", slog.Int("count", n))
		}
	}
	l.set = set
	l.rules = rules
	l.selection = selection
	return l.Redraw()
}

// OnStyleChanged replaces the style rules and redraws.
func (l *Layer) OnStyleChanged(rules StyleRules) error {
	l.rules = rules
	return l.Redraw()
}

// OnSelectionChanged replaces the selection and redraws.
func (l *Layer) OnSelectionChanged(selection SelectionSet) error {
	l.selection = selection
	return l.Redraw()
}

// OnViewportChanged records the new view and redraws. The canvas follows the
// viewport size.
func (l *Layer) OnViewportChanged(vp Viewport, p Projector) error {
	l.viewport = vp
	l.projector = p

	if w, h := int(vp.Width()), int(vp.Height()); w > 0 && h > 0 {
		l.areas.Resize(w, h)
		if l.diagrams != nil {
			l.diagrams.Resize(w, h)
		}
	}
	return l.Redraw()
}

// Hover marks features as hovered and redraws them on top with their
// hovered paints. Pass no ids to clear hover.
func (l *Layer) Hover(ids ...FeatureID) error {
	hovered := make(map[FeatureID]bool, len(ids))
	for _, id := range ids {
		if !id.IsZero() {
			hovered[id] = true
		}
	}
	l.hovered = hovered
	return l.Redraw()
}

// Redraw runs a full draw cycle for the current state.
//
// When no projector is available yet the cycle is skipped and nil is
// returned; the next viewport change triggers it again.
func (l *Layer) Redraw() error {
	if !projectorReady(l.projector) {
		l.log.Debug("draw skipped: projector unavailable")
		return nil
	}

	if l.set == nil || !l.opts.boxRangeFits(l.viewport.BoxRange) {
		l.clear()
		return nil
	}

	bbox, err := ComputeGeoBBox(l.viewport, l.projector)
	if err != nil {
		if errors.Is(err, ErrProjectorUnavailable) {
			l.log.Debug("draw skipped", slog.String("reason", err.Error()))
			return nil
		}
		return err
	}

	candidates := l.index.Query(bbox)
	prepared := Order(Prepare(candidates, l.rules, l.selection, PrepareOptions{
		Mode:        l.opts.Mode,
		FIDProperty: l.opts.FIDProperty,
		Omitted:     l.omitted,
	}))
	l.prepared = prepared

	l.areas.SetHovered(l.hovered)
	areaOrder := prepared
	if l.opts.Mode == ModeDiagram {
		areaOrder = OrderAreas(prepared)
	}
	stats, err := l.areas.Draw(raiseHovered(areaOrder, l.hovered), l.projector, PassArea)
	if err != nil {
		return err
	}

	if l.diagrams != nil {
		l.diagrams.SetHovered(l.hovered)
		ds, err := l.diagrams.Draw(raiseHovered(prepared, l.hovered), l.projector, PassDiagram)
		if err != nil {
			return err
		}
		stats.Drawn += ds.Drawn
		stats.Hidden += ds.Hidden
		stats.Skipped += ds.Skipped
		stats.Errors = append(stats.Errors, ds.Errors...)
	}
	l.stats = stats

	for _, e := range stats.Errors {
		l.log.Debug("feature skipped", slog.String("err", e.Error()))
	}
	l.log.Debug("layer drawn",
		slog.Int("candidates", len(candidates)),
		slog.Int("drawn", stats.Drawn),
		slog.Int("skipped", stats.Skipped))
	return nil
}

func (l *Layer) clear() {
	l.prepared = nil
	l.stats = DrawStats{}
	l.areas.Clear()
	if l.diagrams != nil {
		l.diagrams.Clear()
	}
}

// Click hit-tests the features of the last draw cycle at containerPoint and
// reports matches to OnFeatureSelected. The matched ids are also returned.
func (l *Layer) Click(containerPoint Pixel, p Projector) ([]FeatureID, error) {
	if !l.opts.Selectable {
		return nil, nil
	}
	if p == nil {
		p = l.projector
	}

	ids, err := HitTest(containerPoint, l.prepared, p)
	if err != nil {
		if errors.Is(err, ErrProjectorUnavailable) {
			l.log.Debug("click ignored: projector unavailable")
			return nil, nil
		}
		return nil, err
	}

	if len(ids) > 0 && l.opts.OnFeatureSelected != nil {
		l.opts.OnFeatureSelected(l.key, ids)
	}
	return ids, nil
}

// Prepared returns the features of the last draw cycle in draw order.
func (l *Layer) Prepared() []*PreparedFeature {
	return l.prepared
}

// Stats returns the statistics of the last draw cycle.
func (l *Layer) Stats() DrawStats {
	return l.stats
}

// Index returns the layer's spatial index.
func (l *Layer) Index() *GeometryIndex {
	return l.index
}

// Surfaces returns the layer's canvases back to front: the area canvas, then
// the diagram canvas in diagram mode.
func (l *Layer) Surfaces() []*image.RGBA {
	if l.diagrams == nil {
		return []*image.RGBA{l.areas.Image()}
	}
	return []*image.RGBA{l.areas.Image(), l.diagrams.Image()}
}

// Surface returns the layer flattened into one image. In area mode this is
// the canvas itself; in diagram mode the diagram canvas is composited over
// the area canvas into a separate buffer.
func (l *Layer) Surface() *image.RGBA {
	surfaces := l.Surfaces()
	if len(surfaces) == 1 {
		return surfaces[0]
	}

	b := surfaces[0].Bounds()
	if l.composite == nil || l.composite.Bounds() != b {
		l.composite = image.NewRGBA(b)
	}
	draw.Draw(l.composite, b, surfaces[0], b.Min, draw.Src)
	for _, s := range surfaces[1:] {
		draw.Draw(l.composite, b, s, b.Min, draw.Over)
	}
	return l.composite
}

// Close releases the layer's resources.
func (l *Layer) Close() {
	l.areas.Close()
	if l.diagrams != nil {
		l.diagrams.Close()
	}
}
