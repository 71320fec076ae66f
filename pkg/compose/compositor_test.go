package compose

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/brandkit/pkg/brand"
	"github.com/matzehuels/brandkit/pkg/canvas"
	"github.com/matzehuels/brandkit/pkg/errors"
)

// mapDecoder serves decoded images from memory, failing for unknown URLs.
type mapDecoder map[string]image.Image

func (m mapDecoder) Decode(_ context.Context, url string) (image.Image, error) {
	img, ok := m[url]
	if !ok {
		return nil, fmt.Errorf("no such source %q", url)
	}
	return img, nil
}

func solid(w, h int, c color.Color) *image.NRGBA {
	return imaging.New(w, h, c)
}

func logoElement(id, url string, x, y, scale, rotation, opacity float64) *brand.Element {
	return &brand.Element{
		ID:        id,
		Type:      brand.TypeLogo,
		SourceURL: url,
		Position:  canvas.Point{X: x, Y: y},
		Scale:     scale,
		Rotation:  rotation,
		Opacity:   opacity,
	}
}

func mustConfig(t *testing.T, elems ...*brand.Element) *brand.Config {
	t.Helper()
	cfg := brand.NewConfig()
	for _, e := range elems {
		if err := cfg.Add(e); err != nil {
			t.Fatalf("Add(%s): %v", e.ID, err)
		}
	}
	return cfg
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func TestComposite_CenterLandsAtImageCenter(t *testing.T) {
	// A logo at canvas (400,300) on an 800x600 reference canvas, composited
	// onto a 1000x1000 target, must land centered at pixel (500,500).
	dec := mapDecoder{"logo.png": solid(200, 200, red)}
	c := New(dec)

	cfg := mustConfig(t, logoElement("a", "logo.png", 400, 300, 0.5, 0, 1.0))
	target := solid(1000, 1000, white)

	out, warnings, err := c.Composite(context.Background(), target, cfg)
	if err != nil {
		t.Fatalf("Composite error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	if got := out.NRGBAAt(500, 500); got.R < 250 || got.G > 5 {
		t.Errorf("pixel at image center = %v, want red", got)
	}
	// Drawn size is 100x100 (200px native at scale 0.5), so pixels well
	// outside that box stay white.
	if got := out.NRGBAAt(500, 560); got.R < 250 || got.G < 250 || got.B < 250 {
		t.Errorf("pixel outside logo = %v, want white", got)
	}
	if got := out.NRGBAAt(460, 460); got.R < 250 || got.G > 5 {
		t.Errorf("pixel inside logo box = %v, want red", got)
	}
}

func TestComposite_Deterministic(t *testing.T) {
	dec := mapDecoder{
		"logo.png": solid(64, 64, red),
		"mark.png": solid(32, 32, blue),
	}
	c := New(dec)
	cfg := mustConfig(t,
		logoElement("a", "logo.png", 200, 150, 1.3, 33.3, 0.7),
		logoElement("b", "mark.png", 600, 450, 0.8, 290, 0.4),
	)

	run := func() []byte {
		out, _, err := c.Composite(context.Background(), solid(640, 480, white), cfg)
		if err != nil {
			t.Fatalf("Composite error: %v", err)
		}
		return out.Pix
	}

	if !bytes.Equal(run(), run()) {
		t.Error("two identical composite runs produced different pixels")
	}
}

func TestComposite_SkipsUndecodableElement(t *testing.T) {
	dec := mapDecoder{"good.png": solid(50, 50, red)}
	c := New(dec)
	cfg := mustConfig(t,
		logoElement("broken", "missing.png", 100, 100, 1, 0, 1),
		logoElement("ok", "good.png", 400, 300, 1, 0, 1),
	)

	out, warnings, err := c.Composite(context.Background(), solid(800, 600, white), cfg)
	if err != nil {
		t.Fatalf("Composite error: %v", err)
	}

	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	if warnings[0].ElementID != "broken" {
		t.Errorf("warning element = %s, want broken", warnings[0].ElementID)
	}
	if !errors.Is(warnings[0].Err, errors.ErrCodeElementDecode) {
		t.Errorf("warning err = %v, want ELEMENT_DECODE", warnings[0].Err)
	}

	// The decodable element still drew.
	if got := out.NRGBAAt(400, 300); got.R < 250 || got.G > 5 {
		t.Errorf("pixel under good element = %v, want red", got)
	}
}

func TestComposite_PaintOrder(t *testing.T) {
	dec := mapDecoder{
		"red.png":  solid(100, 100, red),
		"blue.png": solid(100, 100, blue),
	}
	c := New(dec)
	// Same position; blue is later in the list so it paints on top.
	cfg := mustConfig(t,
		logoElement("under", "red.png", 400, 300, 1, 0, 1),
		logoElement("over", "blue.png", 400, 300, 1, 0, 1),
	)

	out, _, err := c.Composite(context.Background(), solid(800, 600, white), cfg)
	if err != nil {
		t.Fatalf("Composite error: %v", err)
	}
	if got := out.NRGBAAt(400, 300); got.B < 250 || got.R > 5 {
		t.Errorf("pixel = %v, want blue on top", got)
	}
}

func TestComposite_Opacity(t *testing.T) {
	dec := mapDecoder{"red.png": solid(100, 100, red)}
	c := New(dec)
	cfg := mustConfig(t, logoElement("a", "red.png", 400, 300, 1, 0, 0.5))

	out, _, err := c.Composite(context.Background(), solid(800, 600, white), cfg)
	if err != nil {
		t.Fatalf("Composite error: %v", err)
	}

	got := out.NRGBAAt(400, 300)
	// Half-opaque red over white blends to roughly (255,128,128).
	if got.R < 250 || got.G < 118 || got.G > 138 || got.B < 118 || got.B > 138 {
		t.Errorf("pixel = %v, want half-blended red over white", got)
	}
}

func TestComposite_DoesNotModifyTarget(t *testing.T) {
	dec := mapDecoder{"red.png": solid(100, 100, red)}
	c := New(dec)
	cfg := mustConfig(t, logoElement("a", "red.png", 400, 300, 1, 0, 1))

	target := solid(800, 600, white)
	before := append([]byte(nil), target.Pix...)

	if _, _, err := c.Composite(context.Background(), target, cfg); err != nil {
		t.Fatalf("Composite error: %v", err)
	}
	if !bytes.Equal(before, target.Pix) {
		t.Error("Composite modified the input target")
	}
}

func TestComposite_Cancellation(t *testing.T) {
	dec := mapDecoder{"red.png": solid(10, 10, red)}
	c := New(dec)
	cfg := mustConfig(t, logoElement("a", "red.png", 400, 300, 1, 0, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.Composite(ctx, solid(100, 100, white), cfg)
	if !errors.Is(err, errors.ErrCodeCancelled) {
		t.Errorf("Composite(cancelled ctx) error = %v, want CANCELLED", err)
	}
}

func TestComposite_DegenerateDrawnSize(t *testing.T) {
	dec := mapDecoder{"dot.png": solid(1, 1, red)}
	c := New(dec)
	// 1px native at the minimum scale rounds below one pixel; the element
	// is silently not drawn and nothing panics.
	cfg := mustConfig(t, logoElement("a", "dot.png", 400, 300, 0.1, 0, 1))

	out, warnings, err := c.Composite(context.Background(), solid(100, 100, white), cfg)
	if err != nil {
		t.Fatalf("Composite error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if got := out.NRGBAAt(50, 37); got != white {
		t.Errorf("pixel = %v, want untouched white", got)
	}
}

func TestComposite_EmptyConfig(t *testing.T) {
	c := New(mapDecoder{})
	target := solid(50, 40, red)

	out, warnings, err := c.Composite(context.Background(), target, brand.NewConfig())
	if err != nil || len(warnings) != 0 {
		t.Fatalf("Composite(empty) = warnings %v, err %v", warnings, err)
	}
	if !bytes.Equal(out.Pix, target.Pix) {
		t.Error("empty config changed the target pixels")
	}
}

func TestDecodeTargetBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, solid(20, 20, red), imaging.PNG); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	img, err := DecodeTargetBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeTargetBytes error: %v", err)
	}
	if img.Bounds().Dx() != 20 {
		t.Errorf("decoded width = %d, want 20", img.Bounds().Dx())
	}

	_, err = DecodeTargetBytes([]byte("not an image"))
	if !errors.Is(err, errors.ErrCodeTargetDecode) {
		t.Errorf("DecodeTargetBytes(garbage) error = %v, want TARGET_DECODE", err)
	}
}

func TestSquareCrop(t *testing.T) {
	tests := []struct {
		w, h, want int
	}{
		{300, 200, 200},
		{200, 300, 200},
		{128, 128, 128},
	}

	for _, tt := range tests {
		got := SquareCrop(solid(tt.w, tt.h, red))
		if got.Bounds().Dx() != tt.want || got.Bounds().Dy() != tt.want {
			t.Errorf("SquareCrop(%dx%d) = %dx%d, want %dx%d square",
				tt.w, tt.h, got.Bounds().Dx(), got.Bounds().Dy(), tt.want, tt.want)
		}
	}
}
