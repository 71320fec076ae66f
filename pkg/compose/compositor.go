// Package compose bakes a Brand Kit overlay config onto target images.
//
// Compositing is deterministic: identical target bytes, an identical
// element list (values and order), and identical overlay source bytes
// produce a pixel-identical raster on every run. To guarantee that despite
// overlay sources living behind URLs, elements are decoded sequentially in
// paint order, never concurrently, which also bounds peak memory to one
// decoded overlay at a time.
//
// An overlay that fails to decode is skipped with a warning; a target that
// fails to decode is a hard error for that image.
package compose

import (
	"context"
	"image"
	"image/color"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/brandkit/pkg/brand"
	"github.com/matzehuels/brandkit/pkg/canvas"
	"github.com/matzehuels/brandkit/pkg/errors"
	"github.com/matzehuels/brandkit/pkg/observability"
)

// SourceDecoder resolves an element's source URL to a decoded image.
// Implementations may fetch over HTTP, read local files, and cache; see the
// imgsrc package.
type SourceDecoder interface {
	Decode(ctx context.Context, sourceURL string) (image.Image, error)
}

// Warning records one overlay element that was skipped during a composite
// run because its source failed to decode.
type Warning struct {
	ElementID string
	SourceURL string
	Err       error
}

// Compositor bakes overlay configs onto target rasters. It is stateless
// apart from its decoder and logger; one Compositor can be shared by
// concurrent batch tasks as long as the decoder is concurrency-safe.
type Compositor struct {
	mapper  canvas.Mapper
	decoder SourceDecoder
	logger  *log.Logger
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithMapper sets the reference canvas mapper (defaults to 800x600).
func WithMapper(m canvas.Mapper) Option {
	return func(c *Compositor) { c.mapper = m }
}

// WithLogger sets the logger used for skip warnings.
func WithLogger(l *log.Logger) Option {
	return func(c *Compositor) { c.logger = l }
}

// New creates a Compositor using the given source decoder.
func New(decoder SourceDecoder, opts ...Option) *Compositor {
	c := &Compositor{
		mapper:  canvas.NewMapper(canvas.DefaultWidth, canvas.DefaultHeight),
		decoder: decoder,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mapper returns the reference canvas mapper in use.
func (c *Compositor) Mapper() canvas.Mapper {
	return c.mapper
}

// Composite draws every element of cfg onto target, in paint order, and
// returns a new raster of the same dimensions. The target is not modified.
//
// Elements whose source fails to decode are skipped and reported in the
// returned warnings. The error return is non-nil only for cancellation;
// the cancellation flag is checked before every per-element draw step.
func (c *Compositor) Composite(ctx context.Context, target image.Image, cfg *brand.Config) (*image.NRGBA, []Warning, error) {
	start := time.Now()
	elems := cfg.Elements()
	observability.Composite().OnCompositeStart(ctx, len(elems))

	dst := imaging.Clone(target)
	bounds := target.Bounds()
	var warnings []Warning

	for _, el := range elems {
		if err := ctx.Err(); err != nil {
			err = errors.Wrap(errors.ErrCodeCancelled, err, "composite cancelled")
			observability.Composite().OnCompositeComplete(ctx, len(elems), time.Since(start), err)
			return nil, warnings, err
		}

		src, err := c.decoder.Decode(ctx, el.SourceURL)
		if err != nil {
			w := Warning{ElementID: el.ID, SourceURL: el.SourceURL, Err: errors.Wrap(errors.ErrCodeElementDecode, err, "element %s", el.ID)}
			warnings = append(warnings, w)
			c.logger.Warn("skipping element, source failed to decode",
				"element", el.ID, "source", el.SourceURL, "err", err)
			observability.Composite().OnElementSkipped(ctx, el.ID, el.SourceURL, err)
			continue
		}

		dst = c.drawElement(dst, el, src, bounds.Dx(), bounds.Dy())
	}

	observability.Composite().OnCompositeComplete(ctx, len(elems), time.Since(start), nil)
	return dst, warnings, nil
}

// drawElement composites one decoded overlay onto dst and returns the
// result. The drawn size is the overlay's native resolution scaled by the
// element's scale factor; it is intentionally not remapped relative to the
// target's resolution, so the same element appears relatively larger on a
// low-resolution target.
func (c *Compositor) drawElement(dst *image.NRGBA, el *brand.Element, src image.Image, imgW, imgH int) *image.NRGBA {
	sb := src.Bounds()
	pl := canvas.Place(el.Position, sb.Dx(), sb.Dy(), el.Scale, el.Rotation, el.Opacity, c.mapper, imgW, imgH)

	w := int(math.Round(pl.Width))
	h := int(math.Round(pl.Height))
	if w < 1 || h < 1 {
		return dst
	}

	overlay := imaging.Resize(src, w, h, imaging.Lanczos)
	if pl.Rotation != 0 {
		// Rotation is clockwise in screen coordinates; imaging rotates
		// counter-clockwise, hence the sign flip. The rotated bounds grow
		// to fit, keeping the element centered.
		overlay = imaging.Rotate(overlay, -pl.Rotation, color.Transparent)
	}

	ob := overlay.Bounds()
	pos := image.Pt(
		int(math.Round(pl.Center.X-float64(ob.Dx())/2)),
		int(math.Round(pl.Center.Y-float64(ob.Dy())/2)),
	)
	return imaging.Overlay(dst, overlay, pos, pl.Opacity)
}
