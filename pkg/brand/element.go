// Package brand defines the Brand Kit data model: positionable overlay
// elements (logos, watermarks, contact info) and the ordered configuration
// that is persisted per user.
//
// Element positions are expressed in reference canvas coordinates, never in
// target-image pixels; see the canvas package for the mapping. An element's
// rotation is kept normalized into [0,360) after every mutation, and list
// order in a Config is paint order: later elements draw on top.
package brand

import (
	"github.com/google/uuid"

	"github.com/matzehuels/brandkit/pkg/canvas"
	"github.com/matzehuels/brandkit/pkg/errors"
)

// Element types.
const (
	TypeLogo        = "logo"
	TypeWatermark   = "watermark"
	TypeContactInfo = "contactInfo"
)

// ValidTypes is the set of supported element types.
var ValidTypes = map[string]bool{
	TypeLogo:        true,
	TypeWatermark:   true,
	TypeContactInfo: true,
}

// Interactive scale bounds. Scale is clamped into this range during
// rotate+scale drags; persisted configs only require scale > 0.
const (
	MinScale = 0.1
	MaxScale = 3.0
)

// Element is one positionable, rotatable, scalable, semi-transparent
// overlay. The JSON field names match the persisted kit format.
type Element struct {
	ID        string       `json:"id" bson:"id"`
	Type      string       `json:"type" bson:"type"`
	SourceURL string       `json:"sourceUrl" bson:"sourceUrl"`
	Position  canvas.Point `json:"position" bson:"position"`
	Scale     float64      `json:"scale" bson:"scale"`
	Rotation  float64      `json:"rotationDeg" bson:"rotationDeg"`
	Opacity   float64      `json:"opacity" bson:"opacity"`
}

// NewElement creates an element of the given type with a fresh ID and
// neutral transform: unit scale, no rotation, fully opaque, centered.
func NewElement(elemType, sourceURL string) *Element {
	return &Element{
		ID:        uuid.NewString(),
		Type:      elemType,
		SourceURL: sourceURL,
		Position:  canvas.Point{X: canvas.DefaultWidth / 2, Y: canvas.DefaultHeight / 2},
		Scale:     1.0,
		Rotation:  0,
		Opacity:   1.0,
	}
}

// Validate checks the element invariants: known type, non-empty source,
// positive scale, opacity in [0,1].
func (e *Element) Validate() error {
	if e.ID == "" {
		return errors.New(errors.ErrCodeInvalidElement, "element has no id")
	}
	if !ValidTypes[e.Type] {
		return errors.New(errors.ErrCodeInvalidElement, "element %s: unknown type %q", e.ID, e.Type)
	}
	if err := errors.ValidateSourceURL(e.SourceURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidElement, err, "element %s", e.ID)
	}
	if e.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidElement, "element %s: scale must be positive, got %v", e.ID, e.Scale)
	}
	if e.Opacity < 0 || e.Opacity > 1 {
		return errors.New(errors.ErrCodeInvalidElement, "element %s: opacity must be in [0,1], got %v", e.ID, e.Opacity)
	}
	return nil
}

// SetRotation sets the rotation, normalizing into [0,360).
func (e *Element) SetRotation(deg float64) {
	e.Rotation = canvas.NormalizeDegrees(deg)
}

// SetScale sets the scale clamped into the interactive bounds.
func (e *Element) SetScale(s float64) {
	e.Scale = ClampScale(s)
}

// MoveTo sets the element center to a canvas-space position.
func (e *Element) MoveTo(p canvas.Point) {
	e.Position = p
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	c := *e
	return &c
}

// ClampScale clamps s into [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
