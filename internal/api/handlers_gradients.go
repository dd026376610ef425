package api

import (
	"encoding/json"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/lightpanel/lightpaneld/internal/gradient"
)

// HandleListGradients returns all saved gradient presets.
func (h *Handler) HandleListGradients(c echo.Context) error {
	presets, err := h.gradients.List()
	if err != nil {
		return NewInternalError("failed to list gradient presets", err)
	}
	return OK(c, presets)
}

// HandleGetGradient returns one saved preset.
func (h *Handler) HandleGetGradient(c echo.Context) error {
	preset, err := h.gradients.Get(c.Param("id"))
	if err != nil {
		return NewInternalError("failed to load gradient preset", err)
	}
	if preset == nil {
		return NewNotFoundError("gradient preset", c.Param("id"))
	}
	return OK(c, preset)
}

// HandleExportGradient validates and saves a preset, returning the blob
// the panel offers for download.
func (h *Handler) HandleExportGradient(c echo.Context) error {
	var preset gradient.Preset
	if err := c.Bind(&preset); err != nil {
		return NewBadRequestError("invalid gradient payload", err)
	}

	if _, err := h.gradients.Save(&preset); err != nil {
		if verr, ok := err.(*gradient.ValidationError); ok {
			return NewValidationError(verr.Problems)
		}
		return NewInternalError("failed to save gradient preset", err)
	}

	blob, err := gradient.Export(&preset)
	if err != nil {
		return NewInternalError("failed to serialize gradient preset", err)
	}

	return OK(c, json.RawMessage(blob))
}

// HandleImportGradient parses an uploaded blob. Malformed JSON and shape
// violations are reported to the caller.
func (h *Handler) HandleImportGradient(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return NewBadRequestError("failed to read request body", err)
	}

	preset, err := gradient.Import(body)
	if err != nil {
		if verr, ok := err.(*gradient.ValidationError); ok {
			return NewValidationError(verr.Problems)
		}
		return NewBadRequestError("malformed gradient file", err)
	}

	if _, err := h.gradients.Save(preset); err != nil {
		return NewInternalError("failed to save gradient preset", err)
	}

	return Created(c, preset)
}

// HandleDeleteGradient removes a saved preset.
func (h *Handler) HandleDeleteGradient(c echo.Context) error {
	existed, err := h.gradients.Delete(c.Param("id"))
	if err != nil {
		return NewInternalError("failed to delete gradient preset", err)
	}
	if !existed {
		return NewNotFoundError("gradient preset", c.Param("id"))
	}
	return OKMessage(c, nil, "preset deleted")
}
