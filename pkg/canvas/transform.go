package canvas

import "math"

// Placement describes where an overlay element lands on a raster: the
// image-space center, the drawn size, and the rotation applied about the
// center. The same placement math backs both the compositor and the
// interactive hit-testing path, so the two can never drift apart.
type Placement struct {
	Center   Point   // image-space center of the element
	Width    float64 // drawn width in target pixels
	Height   float64 // drawn height in target pixels
	Rotation float64 // degrees, clockwise, in [0,360)
	Opacity  float64
}

// Place computes the target-space placement of an element positioned at pos
// (canvas space) with the given native pixel size, scale factor, rotation
// and opacity. The drawn size is the element's native resolution multiplied
// by scale; it is not remapped relative to the target image's resolution.
func Place(pos Point, nativeW, nativeH int, scale, rotation, opacity float64, m Mapper, imgW, imgH int) Placement {
	return Placement{
		Center:   m.ToImage(pos, imgW, imgH),
		Width:    float64(nativeW) * scale,
		Height:   float64(nativeH) * scale,
		Rotation: NormalizeDegrees(rotation),
		Opacity:  opacity,
	}
}

// HitRadius returns the interaction radius of an element in canvas space:
// half of the element's native width multiplied by its scale. Returns 0 for
// degenerate inputs so callers can guard against zero-size hit targets.
func HitRadius(nativeW int, scale float64) float64 {
	r := float64(nativeW) * scale / 2
	if r < 0 {
		return 0
	}
	return r
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// AngleTo returns the angle in radians from center to p, measured with
// atan2 in screen coordinates (y grows downward).
func AngleTo(center, p Point) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X)
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// NormalizeDegrees wraps an angle into [0,360). It handles arbitrary
// negative angles and deltas larger than a full turn.
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}
