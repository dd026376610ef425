package api

import (
	"github.com/labstack/echo/v4"

	"github.com/lightpanel/lightpaneld/internal/wled"
)

type deviceInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// HandleGetWLEDDevices lists the configured WLED devices.
func (h *Handler) HandleGetWLEDDevices(c echo.Context) error {
	devices := make([]deviceInfo, 0, len(h.wled))
	for _, client := range h.wled {
		devices = append(devices, deviceInfo{
			ID:      client.ID(),
			Name:    client.Name(),
			Address: client.Address(),
		})
	}
	return OK(c, devices)
}

// HandleGetWLEDState returns the live state of a WLED device.
func (h *Handler) HandleGetWLEDState(c echo.Context) error {
	client, ok := h.wled[c.Param("id")]
	if !ok {
		return NewNotFoundError("WLED device", c.Param("id"))
	}

	state, err := client.GetState(c.Request().Context())
	if err != nil {
		return NewBridgeError("failed to fetch WLED state", err)
	}
	return OK(c, state)
}

// HandleSetWLEDState applies a partial state update to a WLED device.
func (h *Handler) HandleSetWLEDState(c echo.Context) error {
	client, ok := h.wled[c.Param("id")]
	if !ok {
		return NewNotFoundError("WLED device", c.Param("id"))
	}

	var state map[string]any
	if err := c.Bind(&state); err != nil {
		return NewBadRequestError("invalid state payload", err)
	}
	if len(state) == 0 {
		return NewBadRequestError("state payload is empty", nil)
	}

	if err := client.SetState(c.Request().Context(), state); err != nil {
		return NewBridgeError("failed to update WLED state", err)
	}
	return OKMessage(c, nil, "WLED state updated")
}

// HandleSetWLEDZones replaces the gradient segments of a WLED device.
func (h *Handler) HandleSetWLEDZones(c echo.Context) error {
	client, ok := h.wled[c.Param("id")]
	if !ok {
		return NewNotFoundError("WLED device", c.Param("id"))
	}

	var segments []wled.Segment
	if err := c.Bind(&segments); err != nil {
		return NewBadRequestError("invalid segments payload", err)
	}
	if len(segments) == 0 {
		return NewBadRequestError("at least one segment is required", nil)
	}

	if err := client.SetSegments(c.Request().Context(), segments); err != nil {
		return NewBridgeError("failed to update WLED segments", err)
	}
	return OKMessage(c, nil, "segments updated")
}

// HandleGetYeelightDevices lists the configured Yeelight devices.
func (h *Handler) HandleGetYeelightDevices(c echo.Context) error {
	devices := make([]deviceInfo, 0, len(h.yeelight))
	for _, client := range h.yeelight {
		devices = append(devices, deviceInfo{
			ID:      client.ID(),
			Name:    client.Name(),
			Address: client.Address(),
		})
	}
	return OK(c, devices)
}

// HandleGetYeelightState returns the live state of a Yeelight device.
func (h *Handler) HandleGetYeelightState(c echo.Context) error {
	client, ok := h.yeelight[c.Param("id")]
	if !ok {
		return NewNotFoundError("Yeelight device", c.Param("id"))
	}

	state, err := client.GetState(c.Request().Context())
	if err != nil {
		return NewBridgeError("failed to fetch Yeelight state", err)
	}
	return OK(c, state)
}

type yeelightStateRequest struct {
	On         *bool `json:"on,omitempty"`
	Brightness *int  `json:"brightness,omitempty"`
	RGB        *int  `json:"rgb,omitempty"`
}

// HandleSetYeelightState applies power/brightness/color updates to a
// Yeelight device.
func (h *Handler) HandleSetYeelightState(c echo.Context) error {
	client, ok := h.yeelight[c.Param("id")]
	if !ok {
		return NewNotFoundError("Yeelight device", c.Param("id"))
	}

	var req yeelightStateRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid state payload", err)
	}
	if req.On == nil && req.Brightness == nil && req.RGB == nil {
		return NewBadRequestError("state payload is empty", nil)
	}

	ctx := c.Request().Context()
	if req.On != nil {
		if err := client.SetPower(ctx, *req.On); err != nil {
			return NewBridgeError("failed to set Yeelight power", err)
		}
	}
	if req.Brightness != nil {
		if err := client.SetBrightness(ctx, *req.Brightness); err != nil {
			return NewBridgeError("failed to set Yeelight brightness", err)
		}
	}
	if req.RGB != nil {
		if err := client.SetRGB(ctx, *req.RGB); err != nil {
			return NewBridgeError("failed to set Yeelight color", err)
		}
	}

	return OKMessage(c, nil, "Yeelight state updated")
}
