// Package editor holds the interactive position-editing state for an
// entertainment area: the drag state machine and the per-session position
// map with its view settings.
package editor

import "github.com/lightpanel/lightpaneld/internal/geometry"

// DragState is the state of the drag interaction machine.
type DragState int

const (
	DragIdle DragState = iota
	DragActive
)

// String returns a human-readable name for the state.
func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case DragActive:
		return "dragging"
	default:
		return "unknown"
	}
}

// Tracker implements the idle -> dragging -> idle interaction machine for a
// single pointer. It captures the pointer's offset from the grabbed marker so
// the drag preserves the exact grab point instead of snapping the marker
// center under the pointer.
type Tracker struct {
	state      DragState
	lightID    string
	offset     geometry.Point
	canvasSize int
	moved      bool
}

// State returns the current machine state.
func (t *Tracker) State() DragState {
	return t.state
}

// LightID returns the id of the light being dragged, or "" when idle.
func (t *Tracker) LightID() string {
	if t.state != DragActive {
		return ""
	}
	return t.lightID
}

// Begin transitions idle -> dragging for a pointer-down on a marker.
// marker is the marker's current canvas position; pointer is where the
// pointer landed. Beginning a new drag while one is active replaces it.
func (t *Tracker) Begin(lightID string, pointer, marker geometry.Point, canvasSize int) {
	t.state = DragActive
	t.lightID = lightID
	t.offset = geometry.Point{X: pointer.X - marker.X, Y: pointer.Y - marker.Y}
	t.canvasSize = canvasSize
	t.moved = false
}

// Move recomputes the marker's world position for a pointer-move. The result
// is clamped and rounded; repeated moves are idempotent with respect to the
// pointer position (no drift accumulates). Returns false when no drag is
// active.
func (t *Tracker) Move(pointer geometry.Point) (x, y float64, ok bool) {
	if t.state != DragActive {
		return 0, 0, false
	}

	t.moved = true
	x, y = geometry.CanvasToWorld(pointer.X-t.offset.X, pointer.Y-t.offset.Y, t.canvasSize)
	return geometry.Round3(x), geometry.Round3(y), true
}

// End transitions dragging -> idle unconditionally, for pointer-up or for
// the pointer leaving the interactive surface. The last computed position is
// kept; there is no revert. moved reports whether any Move happened, so a
// click without drag can be treated as a position no-op.
func (t *Tracker) End() (lightID string, moved bool) {
	if t.state != DragActive {
		return "", false
	}

	lightID = t.lightID
	moved = t.moved
	t.state = DragIdle
	t.lightID = ""
	t.moved = false
	return lightID, moved
}
