package api

import (
	"github.com/labstack/echo/v4"
)

// HandleGetLights returns all bridge lights.
func (h *Handler) HandleGetLights(c echo.Context) error {
	lights, err := h.bridge.GetLights(c.Request().Context())
	if err != nil {
		return NewBridgeError("failed to fetch lights", err)
	}
	return OK(c, lights)
}

// HandleGetLight returns one light.
func (h *Handler) HandleGetLight(c echo.Context) error {
	light, err := h.bridge.GetLight(c.Request().Context(), c.Param("id"))
	if err != nil {
		return NewBridgeError("failed to fetch light", err)
	}
	return OK(c, light)
}

// HandleSetLightState applies a state update to a light.
func (h *Handler) HandleSetLightState(c echo.Context) error {
	var state map[string]any
	if err := c.Bind(&state); err != nil {
		return NewBadRequestError("invalid state payload", err)
	}
	if len(state) == 0 {
		return NewBadRequestError("state payload is empty", nil)
	}

	if err := h.bridge.SetLightState(c.Request().Context(), c.Param("id"), state); err != nil {
		return NewBridgeError("failed to update light", err)
	}
	return OKMessage(c, nil, "light updated")
}

// HandleGetGroups returns all bridge groups.
func (h *Handler) HandleGetGroups(c echo.Context) error {
	groups, err := h.bridge.GetGroups(c.Request().Context())
	if err != nil {
		return NewBridgeError("failed to fetch groups", err)
	}
	return OK(c, groups)
}

// HandleGetGroup returns one group.
func (h *Handler) HandleGetGroup(c echo.Context) error {
	group, err := h.bridge.GetGroup(c.Request().Context(), c.Param("id"))
	if err != nil {
		return NewBridgeError("failed to fetch group", err)
	}
	return OK(c, group)
}

// HandleCreateGroup creates a group.
func (h *Handler) HandleCreateGroup(c echo.Context) error {
	var attrs map[string]any
	if err := c.Bind(&attrs); err != nil {
		return NewBadRequestError("invalid group payload", err)
	}
	if name, _ := attrs["name"].(string); name == "" {
		return NewBadRequestError("group name is required", nil)
	}

	id, err := h.bridge.CreateGroup(c.Request().Context(), attrs)
	if err != nil {
		return NewBridgeError("failed to create group", err)
	}
	return Created(c, map[string]string{"id": id})
}

// HandleUpdateGroup updates group attributes.
func (h *Handler) HandleUpdateGroup(c echo.Context) error {
	var attrs map[string]any
	if err := c.Bind(&attrs); err != nil {
		return NewBadRequestError("invalid group payload", err)
	}

	if err := h.bridge.UpdateGroup(c.Request().Context(), c.Param("id"), attrs); err != nil {
		return NewBridgeError("failed to update group", err)
	}
	return OKMessage(c, nil, "group updated")
}

// HandleDeleteGroup removes a group.
func (h *Handler) HandleDeleteGroup(c echo.Context) error {
	if err := h.bridge.DeleteGroup(c.Request().Context(), c.Param("id")); err != nil {
		return NewBridgeError("failed to delete group", err)
	}
	return OKMessage(c, nil, "group deleted")
}

// HandleGroupAction sends an action (on/off, brightness, scene) to a group.
func (h *Handler) HandleGroupAction(c echo.Context) error {
	var action map[string]any
	if err := c.Bind(&action); err != nil {
		return NewBadRequestError("invalid action payload", err)
	}
	if len(action) == 0 {
		return NewBadRequestError("action payload is empty", nil)
	}

	if err := h.bridge.SetGroupAction(c.Request().Context(), c.Param("id"), action); err != nil {
		return NewBridgeError("failed to apply group action", err)
	}
	return OKMessage(c, nil, "action applied")
}

// HandleGetScenes returns all scenes.
func (h *Handler) HandleGetScenes(c echo.Context) error {
	scenes, err := h.bridge.GetScenes(c.Request().Context())
	if err != nil {
		return NewBridgeError("failed to fetch scenes", err)
	}
	return OK(c, scenes)
}

// HandleActivateScene activates a scene on a group.
func (h *Handler) HandleActivateScene(c echo.Context) error {
	err := h.bridge.ActivateScene(c.Request().Context(), c.Param("id"), c.Param("sceneId"))
	if err != nil {
		return NewBridgeError("failed to activate scene", err)
	}
	return OKMessage(c, nil, "scene activated")
}

// HandleGetSensors returns all sensors.
func (h *Handler) HandleGetSensors(c echo.Context) error {
	sensors, err := h.bridge.GetSensors(c.Request().Context())
	if err != nil {
		return NewBridgeError("failed to fetch sensors", err)
	}
	return OK(c, sensors)
}

// HandleGetSensor returns one sensor.
func (h *Handler) HandleGetSensor(c echo.Context) error {
	sensor, err := h.bridge.GetSensor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return NewBridgeError("failed to fetch sensor", err)
	}
	return OK(c, sensor)
}
