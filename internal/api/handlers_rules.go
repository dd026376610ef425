package api

import (
	"github.com/labstack/echo/v4"

	"github.com/lightpanel/lightpaneld/internal/bridge"
	"github.com/lightpanel/lightpaneld/internal/rules"
)

// HandleGetRules returns all automation rules.
func (h *Handler) HandleGetRules(c echo.Context) error {
	list, err := h.bridge.GetRules(c.Request().Context())
	if err != nil {
		return NewBridgeError("failed to fetch rules", err)
	}
	return OK(c, list)
}

// HandleGetRule returns one rule.
func (h *Handler) HandleGetRule(c echo.Context) error {
	rule, err := h.bridge.GetRule(c.Request().Context(), c.Param("id"))
	if err != nil {
		return NewBridgeError("failed to fetch rule", err)
	}
	return OK(c, rule)
}

// HandleCreateRule validates and creates a rule. An invalid rule is
// rejected with the full problem list and never reaches the bridge.
func (h *Handler) HandleCreateRule(c echo.Context) error {
	var rule bridge.Rule
	if err := c.Bind(&rule); err != nil {
		return NewBadRequestError("invalid rule payload", err)
	}

	if problems := rules.Validate(&rule); len(problems) > 0 {
		return NewValidationError(problems)
	}

	id, err := h.bridge.CreateRule(c.Request().Context(), &rule)
	if err != nil {
		return NewBridgeError("failed to create rule", err)
	}
	return Created(c, map[string]string{"id": id})
}

// HandleUpdateRule validates and updates a rule.
func (h *Handler) HandleUpdateRule(c echo.Context) error {
	var rule bridge.Rule
	if err := c.Bind(&rule); err != nil {
		return NewBadRequestError("invalid rule payload", err)
	}

	if problems := rules.Validate(&rule); len(problems) > 0 {
		return NewValidationError(problems)
	}

	if err := h.bridge.UpdateRule(c.Request().Context(), c.Param("id"), &rule); err != nil {
		return NewBridgeError("failed to update rule", err)
	}
	return OKMessage(c, nil, "rule updated")
}

// HandleDeleteRule removes a rule.
func (h *Handler) HandleDeleteRule(c echo.Context) error {
	if err := h.bridge.DeleteRule(c.Request().Context(), c.Param("id")); err != nil {
		return NewBridgeError("failed to delete rule", err)
	}
	return OKMessage(c, nil, "rule deleted")
}
