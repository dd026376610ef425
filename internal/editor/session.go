package editor

import (
	"fmt"

	"github.com/lightpanel/lightpaneld/internal/geometry"
)

// Default view settings for a fresh editor session.
const (
	DefaultCanvasSize = 400
	DefaultGridCells  = 10
)

// ViewSettings is ephemeral UI state for the position editor. It is reset
// per session and never persisted.
type ViewSettings struct {
	GridVisible bool `json:"gridVisible"`
	GridCells   int  `json:"gridCells"`
	CanvasSize  int  `json:"canvasSize"`
	View3D      bool `json:"view3d"`
}

// DefaultViewSettings returns the settings a fresh editor starts with.
func DefaultViewSettings() ViewSettings {
	return ViewSettings{
		GridVisible: true,
		GridCells:   DefaultGridCells,
		CanvasSize:  DefaultCanvasSize,
	}
}

// Session is the position-editing state for one entertainment-area setup:
// the selected lights in order, their world positions, the view settings and
// the drag tracker. Sessions are not safe for concurrent use; access is
// serialized by the owning session manager.
type Session struct {
	config    geometry.ConfigurationType
	selection []geometry.LightRef
	positions map[string]geometry.LightPosition
	view      ViewSettings
	drag      Tracker
}

// NewSession creates an empty editor session for the given configuration
// type ("screen" or "3dspace").
func NewSession(config geometry.ConfigurationType) *Session {
	return &Session{
		config:    config,
		positions: make(map[string]geometry.LightPosition),
		view:      DefaultViewSettings(),
	}
}

// Configuration returns the session's configuration type.
func (s *Session) Configuration() geometry.ConfigurationType {
	return s.config
}

// SetConfiguration changes the configuration type (layout choice in step 1).
func (s *Session) SetConfiguration(config geometry.ConfigurationType) {
	s.config = config
}

// View returns the current view settings.
func (s *Session) View() ViewSettings {
	return s.view
}

// SetView replaces the view settings. A non-positive canvas size or grid
// cell count falls back to the defaults.
func (s *Session) SetView(v ViewSettings) {
	if v.CanvasSize <= 0 {
		v.CanvasSize = DefaultCanvasSize
	}
	if v.GridCells <= 0 {
		v.GridCells = DefaultGridCells
	}
	s.view = v
}

// Selection returns the selected lights in selection order.
func (s *Session) Selection() []geometry.LightRef {
	out := make([]geometry.LightRef, len(s.selection))
	copy(out, s.selection)
	return out
}

// Select replaces the light selection. Positions of lights that are no
// longer selected are removed; positions of lights that stay survive.
func (s *Session) Select(lights []geometry.LightRef) {
	s.selection = make([]geometry.LightRef, len(lights))
	copy(s.selection, lights)

	keep := make(map[string]bool, len(lights))
	for _, l := range lights {
		keep[l.ID] = true
	}
	for id := range s.positions {
		if !keep[id] {
			delete(s.positions, id)
		}
	}
}

// Position returns the stored position for a light.
func (s *Session) Position(lightID string) (geometry.LightPosition, bool) {
	pos, ok := s.positions[lightID]
	return pos, ok
}

// Positions returns the position map as a slice in selection order;
// unpositioned lights are skipped.
func (s *Session) Positions() []geometry.LightPosition {
	out := make([]geometry.LightPosition, 0, len(s.positions))
	for _, l := range s.selection {
		if pos, ok := s.positions[l.ID]; ok {
			out = append(out, pos)
		}
	}
	return out
}

// HasPositions reports whether any position has been stored yet. The wizard
// uses this to decide whether entering the positioning step should generate
// a default arrangement.
func (s *Session) HasPositions() bool {
	return len(s.positions) > 0
}

// AllPositioned reports whether every selected light has a stored position
// with all three coordinates in range.
func (s *Session) AllPositioned() bool {
	if len(s.selection) == 0 {
		return false
	}
	for _, l := range s.selection {
		pos, ok := s.positions[l.ID]
		if !ok || !pos.InRange() {
			return false
		}
	}
	return true
}

// SetPosition stores a position for a selected light. Coordinates are
// clamped to [-1,1] and rounded to 3 decimals; out-of-range input is a
// data-quality concern, not an error.
func (s *Session) SetPosition(lightID string, x, y, z float64) error {
	ref, ok := s.lightRef(lightID)
	if !ok {
		return fmt.Errorf("light %q is not selected", lightID)
	}

	s.positions[lightID] = geometry.LightPosition{
		LightID:   ref.ID,
		LightName: ref.Name,
		X:         geometry.Round3(geometry.Clamp(x)),
		Y:         geometry.Round3(geometry.Clamp(y)),
		Z:         geometry.Round3(geometry.Clamp(z)),
	}
	return nil
}

// ApplyArrangement regenerates the whole position map from an arrangement
// template. All-or-nothing: every selected light gets a fresh position.
func (s *Session) ApplyArrangement(arrangement geometry.ArrangementType) error {
	if len(s.selection) == 0 {
		return fmt.Errorf("no lights selected")
	}

	generated, err := geometry.Arrange(s.selection, arrangement, s.config)
	if err != nil {
		return err
	}

	s.positions = make(map[string]geometry.LightPosition, len(generated))
	for _, pos := range generated {
		s.positions[pos.LightID] = pos
	}
	return nil
}

// BeginDrag starts a drag on a light marker at the given pointer canvas
// position. The marker's canvas position is derived from its stored world
// position and the session's canvas size.
func (s *Session) BeginDrag(lightID string, pointerX, pointerY float64) error {
	pos, ok := s.positions[lightID]
	if !ok {
		return fmt.Errorf("light %q has no position", lightID)
	}

	marker := geometry.WorldToCanvas(pos.X, pos.Y, s.view.CanvasSize)
	s.drag.Begin(lightID, geometry.Point{X: pointerX, Y: pointerY}, marker, s.view.CanvasSize)
	return nil
}

// DragMove applies a pointer-move to the active drag, writing the new
// position into the map. Returns the updated position.
func (s *Session) DragMove(pointerX, pointerY float64) (geometry.LightPosition, error) {
	x, y, ok := s.drag.Move(geometry.Point{X: pointerX, Y: pointerY})
	if !ok {
		return geometry.LightPosition{}, fmt.Errorf("no drag in progress")
	}

	lightID := s.drag.LightID()
	pos, ok := s.positions[lightID]
	if !ok {
		// The light was deselected mid-drag; drop the interaction.
		s.drag.End()
		return geometry.LightPosition{}, fmt.Errorf("light %q no longer positioned", lightID)
	}
	pos.X = x
	pos.Y = y
	s.positions[lightID] = pos
	return pos, nil
}

// EndDrag ends the active drag (pointer-up or pointer-leave). The last
// computed position is kept. A click without movement leaves the position
// untouched. Ending with no drag active is a no-op.
func (s *Session) EndDrag() {
	s.drag.End()
}

// Dragging reports whether a drag is in progress and for which light.
func (s *Session) Dragging() (string, bool) {
	if s.drag.State() != DragActive {
		return "", false
	}
	return s.drag.LightID(), true
}

func (s *Session) lightRef(lightID string) (geometry.LightRef, bool) {
	for _, l := range s.selection {
		if l.ID == lightID {
			return l, true
		}
	}
	return geometry.LightRef{}, false
}
