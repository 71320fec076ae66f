// Package editor implements the interactive Brand Kit editing session: the
// owned mutable session state and the pointer-driven state machine that
// turns raw pointer and keyboard events into element mutations.
//
// A Session exists for the lifetime of one editing visit. It owns the
// overlay config being edited, the current selection, and the in-progress
// drag. Unsaved changes are discarded when the session is dropped; saving
// is the host's responsibility via the kitstore package.
//
// Event handling is synchronous: every pointer event is handled to
// completion before the next is processed, so no locking is needed inside
// a session.
package editor

import (
	"github.com/matzehuels/brandkit/pkg/brand"
)

// dragKind identifies the active drag operation.
type dragKind int

const (
	dragMove dragKind = iota
	dragRotate
)

// dragState is the in-progress drag. All angles are radians, distances are
// canvas-space pixels; the start values are captured at grab time.
type dragState struct {
	id            string
	kind          dragKind
	grabAngle     float64
	grabDist      float64
	startRotation float64
	startScale    float64
	shift         bool // modifier state on the most recent move
}

// Session is the owned, mutable state for one editing visit: the ordered
// overlay config, the current selection, and the active drag.
type Session struct {
	cfg        *brand.Config
	selectedID string
	drag       *dragState
}

// NewSession creates a session editing the given config. A nil config
// starts an empty one.
func NewSession(cfg *brand.Config) *Session {
	if cfg == nil {
		cfg = brand.NewConfig()
	}
	return &Session{cfg: cfg}
}

// Config returns the config being edited.
func (s *Session) Config() *brand.Config {
	return s.cfg
}

// Selected returns the currently selected element, or nil.
func (s *Session) Selected() *brand.Element {
	if s.selectedID == "" {
		return nil
	}
	return s.cfg.Find(s.selectedID)
}

// SelectedID returns the selected element's ID, or "".
func (s *Session) SelectedID() string {
	return s.selectedID
}

// Select marks the element with the given ID as selected.
// Returns false if no such element exists.
func (s *Session) Select(id string) bool {
	if s.cfg.Find(id) == nil {
		return false
	}
	s.selectedID = id
	return true
}

// Deselect clears the selection.
func (s *Session) Deselect() {
	s.selectedID = ""
}

// Dragging reports whether a drag is in progress.
func (s *Session) Dragging() bool {
	return s.drag != nil
}

// DeleteSelected removes the selected element from the config and clears
// the selection. Any drag referencing the element is dropped. Returns the
// removed element's ID, or "" if nothing was selected.
func (s *Session) DeleteSelected() string {
	id := s.selectedID
	if id == "" {
		return ""
	}
	s.cfg.Remove(id)
	s.selectedID = ""
	if s.drag != nil && s.drag.id == id {
		s.drag = nil
	}
	return id
}
