// Command featurecanvas renders a GeoJSON feature collection to a PNG image
// and optionally reports the features under a click position.
//
//	featurecanvas -in ports.geojson -styles styles.yaml -out ports.png
//	featurecanvas -in ports.geojson -center 42.35,-71.05 -zoom 11 -click 256,256
//
// Image size, rendering mode and icons are configured through FEATURECANVAS_*
// environment variables or a .env file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/beetlebugorg/featurecanvas/internal/config"
	"github.com/beetlebugorg/featurecanvas/pkg/canvas"
)

func main() {
	var (
		in      = flag.String("in", "", "GeoJSON FeatureCollection to render (required)")
		styles  = flag.String("styles", "", "YAML style rules and selection")
		out     = flag.String("out", "out.png", "output PNG file")
		center  = flag.String("center", "", "map center as lat,lng (default: fit features)")
		zoom    = flag.Float64("zoom", math.NaN(), "zoom level (default: fit features)")
		bearing = flag.Float64("bearing", 0, "map rotation in degrees, clockwise")
		click   = flag.String("click", "", "hit-test the pixel x,y and print matching ids")
		hover   = flag.String("hover", "", "comma separated ids to draw hovered")
		envFile = flag.String("env", ".env", "dotenv file to load")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "featurecanvas: %v\n", err)
		os.Exit(2)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(log)

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg, log, runArgs{
		in: *in, styles: *styles, out: *out,
		center: *center, zoom: *zoom, bearing: *bearing,
		click: *click, hover: *hover,
	}); err != nil {
		log.Error("render failed", "error", err)
		os.Exit(1)
	}
}

type runArgs struct {
	in, styles, out string
	center          string
	zoom, bearing   float64
	click, hover    string
}

func run(cfg *config.Config, log *slog.Logger, args runArgs) error {
	data, err := os.ReadFile(args.in)
	if err != nil {
		return err
	}
	features, err := canvas.FeaturesFromGeoJSON(data, cfg.FIDProperty)
	if err != nil {
		return err
	}
	log.Info("features loaded", "file", args.in, "count", len(features))

	rules, selection := canvas.DefaultStyleRules(), canvas.SelectionSet(nil)
	if args.styles != "" {
		raw, err := os.ReadFile(args.styles)
		if err != nil {
			return err
		}
		if rules, selection, err = canvas.ParseStyleRules(raw); err != nil {
			return err
		}
	}

	opts, err := cfg.LayerOptions(log)
	if err != nil {
		return err
	}
	opts.OnFeatureSelected = func(layerKey string, ids []canvas.FeatureID) {
		enc := json.NewEncoder(os.Stdout)
		_ = enc.Encode(map[string]interface{}{"layer": layerKey, "ids": ids})
	}

	layer, err := canvas.NewLayer(opts)
	if err != nil {
		return err
	}
	defer layer.Close()

	proj, err := projector(cfg, args, features)
	if err != nil {
		return err
	}

	if err := layer.SetFeatureSet(canvas.NewFeatureSet(features), rules, selection); err != nil {
		return err
	}
	if err := layer.OnViewportChanged(proj.Viewport(), proj); err != nil {
		return err
	}
	if args.hover != "" {
		if err := layer.Hover(parseIDs(args.hover)...); err != nil {
			return err
		}
	}

	stats := layer.Stats()
	log.Info("layer drawn", "drawn", stats.Drawn, "hidden", stats.Hidden, "skipped", stats.Skipped)

	if err := writePNG(args.out, layer); err != nil {
		return err
	}
	log.Info("image written", "file", args.out)

	if args.click != "" {
		px, err := parsePair(args.click)
		if err != nil {
			return fmt.Errorf("-click: %w", err)
		}
		ids, err := layer.Click(canvas.Pixel{X: px[0], Y: px[1]}, proj)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			log.Info("no features under click", "x", px[0], "y", px[1])
		}
	}
	return nil
}

func writePNG(path string, layer *canvas.Layer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, layer.Surface()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// projector builds the view from -center/-zoom, fitting the feature bounds
// for whichever of them is not given.
func projector(cfg *config.Config, args runArgs, features []canvas.Feature) (*canvas.MercatorProjector, error) {
	proj := &canvas.MercatorProjector{
		Size:    canvas.Pixel{X: float64(cfg.Width), Y: float64(cfg.Height)},
		Bearing: args.bearing,
		Zoom:    args.zoom,
	}

	fit := featureBounds(features)

	if args.center != "" {
		c, err := parsePair(args.center)
		if err != nil {
			return nil, fmt.Errorf("-center: %w", err)
		}
		proj.Center = canvas.LatLng{Lat: c[0], Lng: c[1]}
	} else {
		proj.Center = canvas.LatLng{
			Lat: (fit.MinLat + fit.MaxLat) / 2,
			Lng: (fit.MinLon + fit.MaxLon) / 2,
		}
	}

	if math.IsNaN(proj.Zoom) {
		proj.Zoom = fitZoom(proj, fit)
	}
	return proj, nil
}

func featureBounds(features []canvas.Feature) canvas.Bounds {
	var fit canvas.Bounds
	found := false
	for i := range features {
		if canvas.ValidateGeometry(features[i].Geometry) != nil {
			continue
		}
		if b := features[i].Bounds(); found {
			fit = fit.Union(b)
		} else {
			fit, found = b, true
		}
	}
	return fit
}

// fitZoom returns the largest zoom (up to 18) at which fit stays inside the
// view, leaving a 10% margin.
func fitZoom(proj *canvas.MercatorProjector, fit canvas.Bounds) float64 {
	probe := *proj
	for z := 18.0; z > 0; z-- {
		probe.Zoom = z
		sw := probe.GeoToPixel(canvas.LatLng{Lat: fit.MinLat, Lng: fit.MinLon})
		ne := probe.GeoToPixel(canvas.LatLng{Lat: fit.MaxLat, Lng: fit.MaxLon})
		if math.Abs(ne.X-sw.X) <= proj.Size.X*0.9 && math.Abs(ne.Y-sw.Y) <= proj.Size.Y*0.9 {
			return z
		}
	}
	return 0
}

func parsePair(s string) ([2]float64, error) {
	var out [2]float64
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return out, fmt.Errorf("want two comma separated numbers, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

func parseIDs(s string) []canvas.FeatureID {
	var ids []canvas.FeatureID
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if n, err := strconv.ParseInt(p, 10, 64); err == nil {
			ids = append(ids, canvas.IntID(n))
			continue
		}
		ids = append(ids, canvas.StringID(p))
	}
	return ids
}
