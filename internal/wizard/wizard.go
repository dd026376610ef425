// Package wizard implements the four-step entertainment-area creation
// sequencer: Name/Layout -> Select Lights -> Position Lights -> Review.
// Forward navigation is gated on per-step validity; backward navigation is
// always permitted.
package wizard

import (
	"fmt"
	"strings"

	"github.com/lightpanel/lightpaneld/internal/editor"
	"github.com/lightpanel/lightpaneld/internal/geometry"
	"github.com/lightpanel/lightpaneld/internal/templates"
)

// Step identifies a wizard step.
type Step int

const (
	StepNameLayout Step = iota + 1
	StepSelectLights
	StepPositionLights
	StepReview
)

// String returns a human-readable name for the step.
func (s Step) String() string {
	switch s {
	case StepNameLayout:
		return "name_layout"
	case StepSelectLights:
		return "select_lights"
	case StepPositionLights:
		return "position_lights"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}

// Wizard is the step sequencer for one area-creation flow. It owns the
// editor session for the positioning step. Not safe for concurrent use.
type Wizard struct {
	name     string
	template templates.RoomTemplate
	editor   *editor.Session
	step     Step
}

// New creates a wizard at the first step with the given room template
// preselected.
func New(tpl templates.RoomTemplate) *Wizard {
	return &Wizard{
		template: tpl,
		editor:   editor.NewSession(tpl.ConfigurationType),
		step:     StepNameLayout,
	}
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	return w.step
}

// Name returns the area name entered in step 1.
func (w *Wizard) Name() string {
	return w.name
}

// SetName sets the area name.
func (w *Wizard) SetName(name string) {
	w.name = strings.TrimSpace(name)
}

// Template returns the selected room template.
func (w *Wizard) Template() templates.RoomTemplate {
	return w.template
}

// SetTemplate changes the room template, updating the editor's
// configuration type to match.
func (w *Wizard) SetTemplate(tpl templates.RoomTemplate) {
	w.template = tpl
	w.editor.SetConfiguration(tpl.ConfigurationType)
}

// Editor returns the position-editing session owned by the wizard.
func (w *Wizard) Editor() *editor.Session {
	return w.editor
}

// StepValid reports whether a single step's own requirements are met.
// A step is only reachable when every prior step is valid, so the
// predicates are local.
func (w *Wizard) StepValid(step Step) bool {
	switch step {
	case StepNameLayout:
		return w.name != ""
	case StepSelectLights:
		return len(w.editor.Selection()) > 0
	case StepPositionLights:
		return w.editor.AllPositioned()
	case StepReview:
		return true
	default:
		return false
	}
}

// Valid reports whether the given step and every step before it are valid.
func (w *Wizard) Valid(upTo Step) bool {
	for s := StepNameLayout; s <= upTo; s++ {
		if !w.StepValid(s) {
			return false
		}
	}
	return true
}

// Next advances to the following step. Blocked unless the current step is
// valid. Entering the positioning step runs the one-time default-arrangement
// action: if no positions exist yet, a layout is generated so the user
// starts from a sensible placement instead of an empty canvas.
func (w *Wizard) Next() error {
	if w.step >= StepReview {
		return fmt.Errorf("already at the last step")
	}
	if !w.StepValid(w.step) {
		return fmt.Errorf("step %s is not complete", w.step)
	}

	next := w.step + 1
	if next == StepPositionLights && !w.editor.HasPositions() {
		if err := w.generateDefaultPositions(); err != nil {
			return fmt.Errorf("failed to generate default positions: %w", err)
		}
	}

	w.step = next
	return nil
}

// Back moves to the previous step. Always permitted; data entered so far is
// kept.
func (w *Wizard) Back() error {
	if w.step <= StepNameLayout {
		return fmt.Errorf("already at the first step")
	}
	w.step--
	return nil
}

// generateDefaultPositions is the explicit transition action for entering
// the positioning step with an empty position map: screen layouts start in
// a row, 3D-space layouts start in a circle.
func (w *Wizard) generateDefaultPositions() error {
	arrangement := geometry.ArrangementCircle
	if w.editor.Configuration() == geometry.ConfigurationScreen {
		arrangement = geometry.ArrangementLinear
	}
	return w.editor.ApplyArrangement(arrangement)
}
