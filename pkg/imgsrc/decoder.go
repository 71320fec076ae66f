package imgsrc

import (
	"bytes"
	"context"
	"image"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/brandkit/pkg/errors"
)

// Decoder resolves source references to decoded images and remembers each
// source's native pixel dimensions. It implements compose.SourceDecoder
// and editor.NativeSizer.
//
// Decoded images are not cached; the compositor decodes one overlay at a
// time by design, and the fetcher already caches the underlying bytes.
// Decoder is safe for concurrent use by batch tasks.
type Decoder struct {
	fetcher *Fetcher

	mu    sync.RWMutex
	sizes map[string]image.Point
}

// NewDecoder creates a decoder on top of the given fetcher.
func NewDecoder(f *Fetcher) *Decoder {
	return &Decoder{
		fetcher: f,
		sizes:   make(map[string]image.Point),
	}
}

// Decode fetches and decodes one overlay source. The source's native size
// is recorded for later synchronous lookup.
func (d *Decoder) Decode(ctx context.Context, sourceURL string) (image.Image, error) {
	data, err := d.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeElementDecode, err, "decode source %q", sourceURL)
	}

	b := img.Bounds()
	d.mu.Lock()
	d.sizes[sourceURL] = image.Pt(b.Dx(), b.Dy())
	d.mu.Unlock()

	return img, nil
}

// Measure pre-decodes the given sources so their native sizes are
// available synchronously. Hosts call this when an editing session loads;
// failures are collected rather than aborting, since an unmeasurable
// element simply isn't hit-testable until its source decodes.
func (d *Decoder) Measure(ctx context.Context, sourceURLs ...string) []error {
	var errs []error
	for _, src := range sourceURLs {
		if _, err := d.Decode(ctx, src); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// NativeSize returns the native pixel dimensions of a previously decoded
// source. The lookup is synchronous and never triggers a fetch.
func (d *Decoder) NativeSize(sourceURL string) (w, h int, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.sizes[sourceURL]
	return p.X, p.Y, ok
}
