package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/lightpanel/lightpaneld/internal/entertainment"
	"github.com/lightpanel/lightpaneld/internal/geometry"
	"github.com/lightpanel/lightpaneld/internal/templates"
	"github.com/lightpanel/lightpaneld/internal/wizard"
)

// wizardSnapshot is the session state returned to the panel after every
// wizard operation.
type wizardSnapshot struct {
	ID            string                     `json:"id"`
	Step          int                        `json:"step"`
	StepName      string                     `json:"stepName"`
	StepValid     bool                       `json:"stepValid"`
	Name          string                     `json:"name"`
	Template      templates.RoomTemplate     `json:"template"`
	Configuration geometry.ConfigurationType `json:"configurationType"`
	Selection     []geometry.LightRef        `json:"selection"`
	Positions     []geometry.LightPosition   `json:"positions"`
	Dragging      string                     `json:"dragging,omitempty"`
}

func snapshot(id string, w *wizard.Wizard) wizardSnapshot {
	editor := w.Editor()
	dragging, _ := editor.Dragging()

	return wizardSnapshot{
		ID:            id,
		Step:          int(w.Step()),
		StepName:      w.Step().String(),
		StepValid:     w.StepValid(w.Step()),
		Name:          w.Name(),
		Template:      w.Template(),
		Configuration: editor.Configuration(),
		Selection:     editor.Selection(),
		Positions:     editor.Positions(),
		Dragging:      dragging,
	}
}

// withSession runs fn holding the session's lock. The response is written
// inside fn so the snapshot cannot interleave with a concurrent mutation
// of the same session.
func (h *Handler) withSession(c echo.Context, fn func(id string, w *wizard.Wizard) error) error {
	id := c.Param("id")
	err := h.areas.WithSession(id, func(w *wizard.Wizard) error {
		return fn(id, w)
	})
	if errors.Is(err, entertainment.ErrSessionNotFound) {
		return NewNotFoundError("wizard session", id)
	}
	return err
}

// HandleGetTemplates returns the room-template catalog.
func (h *Handler) HandleGetTemplates(c echo.Context) error {
	return OK(c, templates.All())
}

type startWizardRequest struct {
	TemplateID string `json:"templateId"`
}

// HandleStartWizard opens a new wizard session.
func (h *Handler) HandleStartWizard(c echo.Context) error {
	var req startWizardRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid payload", err)
	}
	if req.TemplateID == "" {
		return NewBadRequestError("templateId is required", nil)
	}

	id, w, err := h.areas.StartSession(req.TemplateID)
	if err != nil {
		return NewBadRequestError("failed to start session", err)
	}

	return Created(c, snapshot(id, w))
}

// HandleGetWizard returns the current session snapshot.
func (h *Handler) HandleGetWizard(c echo.Context) error {
	return h.withSession(c, func(id string, w *wizard.Wizard) error {
		return OK(c, snapshot(id, w))
	})
}

// HandleCloseWizard abandons a session.
func (h *Handler) HandleCloseWizard(c echo.Context) error {
	if !h.areas.CloseSession(c.Param("id")) {
		return NewNotFoundError("wizard session", c.Param("id"))
	}
	return OKMessage(c, nil, "session closed")
}

// HandleWizardNext advances the sequencer. Advancing is refused while the
// current step's data is incomplete.
func (h *Handler) HandleWizardNext(c echo.Context) error {
	return h.withSession(c, func(id string, w *wizard.Wizard) error {
		if err := w.Next(); err != nil {
			return NewConflictError(err.Error())
		}
		return OK(c, snapshot(id, w))
	})
}

// HandleWizardBack steps the sequencer back. Back is always permitted.
func (h *Handler) HandleWizardBack(c echo.Context) error {
	return h.withSession(c, func(id string, w *wizard.Wizard) error {
		if err := w.Back(); err != nil {
			return NewConflictError(err.Error())
		}
		return OK(c, snapshot(id, w))
	})
}

type setNameRequest struct {
	Name string `json:"name"`
}

// HandleWizardSetName sets the area name (step 1 data).
func (h *Handler) HandleWizardSetName(c echo.Context) error {
	var req setNameRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid payload", err)
	}

	return h.withSession(c, func(id string, w *wizard.Wizard) error {
		w.SetName(req.Name)
		return OK(c, snapshot(id, w))
	})
}

type setTemplateRequest struct {
	TemplateID string `json:"templateId"`
}

// HandleWizardSetTemplate switches the room template mid-session.
func (h *Handler) HandleWizardSetTemplate(c echo.Context) error {
	var req setTemplateRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid payload", err)
	}

	tpl, ok := templates.ByID(req.TemplateID)
	if !ok {
		return NewBadRequestError("unknown room template: "+req.TemplateID, nil)
	}

	return h.withSession(c, func(id string, w *wizard.Wizard) error {
		w.SetTemplate(tpl)
		return OK(c, snapshot(id, w))
	})
}

type setLightsRequest struct {
	Lights []geometry.LightRef `json:"lights"`
}

// HandleWizardSetLights replaces the light selection (step 2 data).
// Deselected lights lose their positions.
func (h *Handler) HandleWizardSetLights(c echo.Context) error {
	var req setLightsRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid payload", err)
	}

	return h.withSession(c, func(id string, w *wizard.Wizard) error {
		w.Editor().Select(req.Lights)
		return OK(c, snapshot(id, w))
	})
}

type setPositionRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandleWizardSetPosition writes one light's position. Out-of-range
// coordinates are clamped, not rejected.
func (h *Handler) HandleWizardSetPosition(c echo.Context) error {
	var req setPositionRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid payload", err)
	}

	return h.withSession(c, func(id string, w *wizard.Wizard) error {
		if err := w.Editor().SetPosition(c.Param("lightId"), req.X, req.Y, req.Z); err != nil {
			return NewBadRequestError(err.Error(), nil)
		}
		return OK(c, snapshot(id, w))
	})
}

type arrangeRequest struct {
	Arrangement geometry.ArrangementType `json:"arrangement"`
}

// HandleWizardArrange applies an arrangement generator to the selection,
// replacing all positions.
func (h *Handler) HandleWizardArrange(c echo.Context) error {
	var req arrangeRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid payload", err)
	}

	return h.withSession(c, func(id string, w *wizard.Wizard) error {
		if err := w.Editor().ApplyArrangement(req.Arrangement); err != nil {
			return NewBadRequestError(err.Error(), nil)
		}
		return OK(c, snapshot(id, w))
	})
}

type dragStartRequest struct {
	LightID  string  `json:"lightId"`
	PointerX float64 `json:"pointerX"`
	PointerY float64 `json:"pointerY"`
}

// HandleWizardDragStart begins dragging a light marker.
func (h *Handler) HandleWizardDragStart(c echo.Context) error {
	var req dragStartRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid payload", err)
	}

	return h.withSession(c, func(id string, w *wizard.Wizard) error {
		if err := w.Editor().BeginDrag(req.LightID, req.PointerX, req.PointerY); err != nil {
			return NewConflictError(err.Error())
		}
		return OK(c, snapshot(id, w))
	})
}

type dragMoveRequest struct {
	PointerX float64 `json:"pointerX"`
	PointerY float64 `json:"pointerY"`
}

// HandleWizardDragMove moves the active drag to a new pointer location.
func (h *Handler) HandleWizardDragMove(c echo.Context) error {
	var req dragMoveRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid payload", err)
	}

	return h.withSession(c, func(id string, w *wizard.Wizard) error {
		if _, err := w.Editor().DragMove(req.PointerX, req.PointerY); err != nil {
			return NewConflictError(err.Error())
		}
		return OK(c, snapshot(id, w))
	})
}

// HandleWizardDragEnd ends the active drag. Pointer leaving the canvas is
// reported here too; the light keeps its last position.
func (h *Handler) HandleWizardDragEnd(c echo.Context) error {
	return h.withSession(c, func(id string, w *wizard.Wizard) error {
		w.Editor().EndDrag()
		return OK(c, snapshot(id, w))
	})
}

// HandleWizardCreate commits the session: area on the bridge, positions
// written, snapshot persisted, session closed.
func (h *Handler) HandleWizardCreate(c echo.Context) error {
	area, err := h.areas.CreateArea(c.Request().Context(), c.Param("id"))
	if err != nil {
		return NewConflictError(err.Error())
	}
	return Created(c, area)
}

// HandleGetAreas returns the persisted area snapshots.
func (h *Handler) HandleGetAreas(c echo.Context) error {
	areas, err := h.areas.Areas()
	if err != nil {
		return NewInternalError("failed to load areas", err)
	}
	return OK(c, areas)
}

// HandleGetArea returns one persisted area snapshot.
func (h *Handler) HandleGetArea(c echo.Context) error {
	area, found, err := h.areas.Area(c.Param("areaId"))
	if err != nil {
		return NewInternalError("failed to load area", err)
	}
	if !found {
		return NewNotFoundError("entertainment area", c.Param("areaId"))
	}
	return OK(c, area)
}

// HandleStartStreaming activates streaming on an area.
func (h *Handler) HandleStartStreaming(c echo.Context) error {
	if err := h.areas.StartStreaming(c.Request().Context(), c.Param("areaId")); err != nil {
		return NewBridgeError("failed to start streaming", err)
	}
	return OKMessage(c, nil, "streaming started")
}

// HandleStopStreaming deactivates streaming on an area.
func (h *Handler) HandleStopStreaming(c echo.Context) error {
	if err := h.areas.StopStreaming(c.Request().Context(), c.Param("areaId")); err != nil {
		return NewBridgeError("failed to stop streaming", err)
	}
	return OKMessage(c, nil, "streaming stopped")
}
