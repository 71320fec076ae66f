// Package canvas provides coordinate mapping between the fixed-size
// reference editing canvas and a target image's native pixel space.
//
// Overlay element positions are always authored in reference canvas
// coordinates (e.g. 800x600) and converted to target pixels at composite
// time. The mapping is a pure axis-aligned scale: a point at the canvas
// center always lands at the image center, for any canvas and image
// dimensions.
package canvas

// Point is a position in either canvas or image space, depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Default reference canvas dimensions. These match the logical size of the
// interactive editing surface in the dashboard.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// Mapper converts positions between reference canvas space and the pixel
// space of a target image. The zero value is not useful; use NewMapper or
// set both dimensions explicitly.
type Mapper struct {
	CanvasWidth  float64
	CanvasHeight float64
}

// NewMapper returns a Mapper for the given reference canvas size.
// Non-positive dimensions fall back to the defaults.
func NewMapper(w, h float64) Mapper {
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return Mapper{CanvasWidth: w, CanvasHeight: h}
}

// ToImage maps a canvas-space point to pixel coordinates of an imgW x imgH
// target image.
func (m Mapper) ToImage(p Point, imgW, imgH int) Point {
	return Point{
		X: p.X / m.CanvasWidth * float64(imgW),
		Y: p.Y / m.CanvasHeight * float64(imgH),
	}
}

// ToCanvas maps an image-space point back to reference canvas coordinates.
// It is the inverse of ToImage up to floating-point rounding.
func (m Mapper) ToCanvas(p Point, imgW, imgH int) Point {
	return Point{
		X: p.X / float64(imgW) * m.CanvasWidth,
		Y: p.Y / float64(imgH) * m.CanvasHeight,
	}
}
