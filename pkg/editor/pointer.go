package editor

import (
	"github.com/matzehuels/brandkit/pkg/canvas"
)

// DefaultHandleTolerance is the grab tolerance, in canvas pixels, around
// an element's bounding circle within which a pointer-down grabs the
// rotation handle instead of the element body.
const DefaultHandleTolerance = 15.0

// State is the controller's interaction state.
type State int

const (
	// Idle means no drag is active.
	Idle State = iota
	// Moving repositions the selected element under the pointer.
	Moving
	// Rotating spins the selected element about its center.
	Rotating
	// RotatingScaling is Rotating with the Shift modifier held: rotation
	// plus distance-proportional scaling. It is re-evaluated on every
	// move from the current modifier state, not a separate entry
	// transition.
	RotatingScaling
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Moving:
		return "moving"
	case Rotating:
		return "rotating"
	case RotatingScaling:
		return "rotating+scaling"
	default:
		return "idle"
	}
}

// NativeSizer reports the native pixel dimensions of an element source.
// Lookups must be synchronous; implementations pre-measure sources when the
// session loads (see the imgsrc package). A miss disables hit-testing for
// that element rather than blocking the event loop on a decode.
type NativeSizer interface {
	NativeSize(sourceURL string) (w, h int, ok bool)
}

// Controller turns pointer-down/move/up events, the Shift modifier, and
// the Delete key into session mutations. Transitions:
//
//	Idle → {Moving, Rotating, RotatingScaling} → Idle
//
// A pointer-down on the selected element's bounding circle (within
// HandleTolerance of the ring) starts Rotating; inside the circle starts
// Moving; anywhere else the click changes selection or deselects and no
// drag starts.
type Controller struct {
	session *Session
	sizes   NativeSizer

	// HandleTolerance is the rotation-handle grab tolerance in canvas
	// pixels. Defaults to DefaultHandleTolerance.
	HandleTolerance float64
}

// NewController creates a controller driving the given session.
func NewController(s *Session, sizes NativeSizer) *Controller {
	return &Controller{
		session:         s,
		sizes:           sizes,
		HandleTolerance: DefaultHandleTolerance,
	}
}

// State returns the current interaction state.
func (c *Controller) State() State {
	d := c.session.drag
	if d == nil {
		return Idle
	}
	if d.kind == dragMove {
		return Moving
	}
	if d.shift {
		return RotatingScaling
	}
	return Rotating
}

// PointerDown handles a pointer-down at p (canvas space). It either starts
// a drag against the selected element, changes the selection to the topmost
// element under the pointer, or deselects.
func (c *Controller) PointerDown(p canvas.Point) State {
	if c.session.drag != nil {
		// A second pointer-down mid-drag is ignored; the active drag owns
		// the pointer until pointer-up.
		return c.State()
	}

	if sel := c.session.Selected(); sel != nil {
		if w, _, ok := c.sizes.NativeSize(sel.SourceURL); ok {
			r := canvas.HitRadius(w, sel.Scale)
			if r > 0 {
				d := canvas.Dist(p, sel.Position)
				switch {
				case absDiff(d, r) <= c.HandleTolerance:
					c.session.drag = &dragState{
						id:            sel.ID,
						kind:          dragRotate,
						grabAngle:     canvas.AngleTo(sel.Position, p),
						grabDist:      d,
						startRotation: sel.Rotation,
						startScale:    sel.Scale,
					}
					return Rotating
				case d <= r:
					c.session.drag = &dragState{
						id:         sel.ID,
						kind:       dragMove,
						startScale: sel.Scale,
					}
					return Moving
				}
			}
		}
	}

	// No drag started: the click may change selection or deselect.
	elems := c.session.cfg.Elements()
	for i := len(elems) - 1; i >= 0; i-- {
		el := elems[i]
		w, _, ok := c.sizes.NativeSize(el.SourceURL)
		if !ok {
			continue
		}
		r := canvas.HitRadius(w, el.Scale)
		if r > 0 && canvas.Dist(p, el.Position) <= r {
			c.session.Select(el.ID)
			return Idle
		}
	}
	c.session.Deselect()
	return Idle
}

// PointerMove handles a pointer move to p with the given Shift modifier
// state. With no active drag it is a no-op.
func (c *Controller) PointerMove(p canvas.Point, shift bool) State {
	d := c.session.drag
	if d == nil {
		return Idle
	}
	el := c.session.cfg.Find(d.id)
	if el == nil {
		c.session.drag = nil
		return Idle
	}
	d.shift = shift

	switch d.kind {
	case dragMove:
		// Direct positioning: the element center follows the raw pointer
		// coordinate, not a delta from the grab offset.
		el.MoveTo(p)
	case dragRotate:
		angle := canvas.AngleTo(el.Position, p)
		el.SetRotation(d.startRotation + canvas.Degrees(angle-d.grabAngle))
		if shift && d.grabDist > 0 {
			ratio := canvas.Dist(el.Position, p) / d.grabDist
			el.SetScale(d.startScale * ratio)
		}
	}
	return c.State()
}

// PointerUp commits the active drag and returns to Idle. With no active
// drag it is a no-op.
func (c *Controller) PointerUp() State {
	c.session.drag = nil
	return Idle
}

// DeletePressed handles the Delete key: while an element is selected it is
// removed from the config and the selection cleared, as a direct committed
// mutation. Returns the removed element's ID, or "" if nothing was
// selected.
func (c *Controller) DeletePressed() string {
	return c.session.DeleteSelected()
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
