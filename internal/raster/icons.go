package raster

import (
	"bytes"
	"fmt"
	"image"

	"github.com/dgraph-io/ristretto"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// IconSet renders named SVG icons at a requested pixel size.
//
// Rasterized icons are cached by name and size; the cache cost of an icon is
// its pixel buffer size in bytes. An IconSet is safe for concurrent use.
type IconSet struct {
	sources map[string][]byte
	cache   *ristretto.Cache
}

// NewIconSet creates an icon set from SVG sources keyed by icon name.
// maxCacheBytes bounds the memory held by rasterized icons.
func NewIconSet(sources map[string][]byte, maxCacheBytes int64) (*IconSet, error) {
	if maxCacheBytes <= 0 {
		maxCacheBytes = 32 << 20
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,           // number of keys to track frequency of
		MaxCost:     maxCacheBytes, // maximum cost of cache
		BufferItems: 64,            // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("create icon cache: %w", err)
	}

	src := make(map[string][]byte, len(sources))
	for name, data := range sources {
		src[name] = data
	}
	return &IconSet{sources: src, cache: cache}, nil
}

// Has reports whether an icon with the given name is registered.
func (s *IconSet) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.sources[name]
	return ok
}

// Render returns the icon rasterized into a size×size transparent image.
func (s *IconSet) Render(name string, size int) (*image.RGBA, error) {
	if size < 1 {
		return nil, fmt.Errorf("icon %q: invalid size %d", name, size)
	}

	key := fmt.Sprintf("%s@%d", name, size)
	if cached, found := s.cache.Get(key); found {
		if img, ok := cached.(*image.RGBA); ok {
			return img, nil
		}
	}

	data, ok := s.sources[name]
	if !ok {
		return nil, fmt.Errorf("icon %q not registered", name)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse icon %q: %w", name, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	dasher := rasterx.NewDasher(size, size, scanner)
	icon.Draw(dasher, 1)

	s.cache.Set(key, img, int64(len(img.Pix)))
	s.cache.Wait()

	return img, nil
}

// Close releases the icon cache.
func (s *IconSet) Close() {
	if s != nil && s.cache != nil {
		s.cache.Close()
	}
}
