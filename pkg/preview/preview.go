// Package preview renders an editor-style view of a brand kit: the overlay
// elements drawn on a canvas-sized background, with optional selection
// chrome for the active element.
package preview

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/brandkit/pkg/brand"
	"github.com/matzehuels/brandkit/pkg/canvas"
	"github.com/matzehuels/brandkit/pkg/compose"
	"github.com/matzehuels/brandkit/pkg/editor"
)

var (
	backgroundColor = color.NRGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff}
	chromeColor     = color.NRGBA{R: 0x89, G: 0xb4, B: 0xfa, A: 0xff}
	handleColor     = color.NRGBA{R: 0xf5, G: 0xc2, B: 0xe7, A: 0xff}
)

const handleDotRadius = 5.0

// Renderer draws kit previews. The canvas dimensions double as the output
// image dimensions, so canvas and image coordinates coincide.
type Renderer struct {
	mapper     canvas.Mapper
	compositor *compose.Compositor
	sizes      editor.NativeSizer
}

// New creates a preview renderer. The decoder resolves element sources;
// sizes supplies native dimensions for selection chrome geometry.
func New(decoder compose.SourceDecoder, sizes editor.NativeSizer, mapper canvas.Mapper) *Renderer {
	return &Renderer{
		mapper:     mapper,
		compositor: compose.New(decoder, compose.WithMapper(mapper)),
		sizes:      sizes,
	}
}

// Render draws the kit onto a canvas-sized background. If selectedID names
// an element, its selection chrome is drawn on top. Undecodable elements
// are skipped, same as a real composite run.
func (r *Renderer) Render(ctx context.Context, cfg *brand.Config, selectedID string) (image.Image, []compose.Warning, error) {
	w := int(math.Round(r.mapper.CanvasWidth))
	h := int(math.Round(r.mapper.CanvasHeight))

	dc := gg.NewContext(w, h)
	dc.SetColor(backgroundColor)
	dc.Clear()

	composited, warnings, err := r.compositor.Composite(ctx, dc.Image(), cfg)
	if err != nil {
		return nil, warnings, err
	}
	dc.DrawImage(composited, 0, 0)

	if el := cfg.Find(selectedID); el != nil {
		r.drawChrome(dc, el)
	}
	return dc.Image(), warnings, nil
}

// drawChrome draws the grab ring, rotation handle, and bounding box for
// the selected element.
func (r *Renderer) drawChrome(dc *gg.Context, el *brand.Element) {
	nw, nh, ok := r.sizes.NativeSize(el.SourceURL)
	if !ok {
		return
	}
	radius := canvas.HitRadius(nw, el.Scale)
	if radius <= 0 {
		return
	}
	cx, cy := el.Position.X, el.Position.Y

	// Grab ring at the hit radius.
	dc.SetColor(chromeColor)
	dc.SetLineWidth(1.5)
	dc.SetDash(6, 4)
	dc.DrawCircle(cx, cy, radius)
	dc.Stroke()
	dc.SetDash()

	// Rotated bounding box of the drawn element.
	halfW := float64(nw) * el.Scale / 2
	halfH := float64(nh) * el.Scale / 2
	theta := canvas.Radians(el.Rotation)
	sin, cos := math.Sin(theta), math.Cos(theta)
	corners := [4][2]float64{{-halfW, -halfH}, {halfW, -halfH}, {halfW, halfH}, {-halfW, halfH}}
	dc.NewSubPath()
	for i, c := range corners {
		x := cx + c[0]*cos - c[1]*sin
		y := cy + c[0]*sin + c[1]*cos
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.SetLineWidth(1)
	dc.Stroke()

	// Rotation handle dot on the ring, tracking the element's rotation.
	hx := cx + radius*sin
	hy := cy - radius*cos
	dc.SetColor(handleColor)
	dc.DrawCircle(hx, hy, handleDotRadius)
	dc.Fill()
}
