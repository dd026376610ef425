// Package api serves the panel REST and WebSocket surface.
package api

import (
	"github.com/lightpanel/lightpaneld/internal/bridge"
	"github.com/lightpanel/lightpaneld/internal/entertainment"
	"github.com/lightpanel/lightpaneld/internal/gradient"
	"github.com/lightpanel/lightpaneld/internal/wled"
	"github.com/lightpanel/lightpaneld/internal/yeelight"
)

// Handler holds the dependencies shared by all endpoint groups.
type Handler struct {
	bridge    *bridge.Client
	areas     *entertainment.Manager
	gradients *gradient.Store
	wled      map[string]*wled.Client
	yeelight  map[string]*yeelight.Client
}

// NewHandler creates the handler set.
func NewHandler(
	bridgeClient *bridge.Client,
	areas *entertainment.Manager,
	gradients *gradient.Store,
	wledClients map[string]*wled.Client,
	yeelightClients map[string]*yeelight.Client,
) *Handler {
	if wledClients == nil {
		wledClients = make(map[string]*wled.Client)
	}
	if yeelightClients == nil {
		yeelightClients = make(map[string]*yeelight.Client)
	}

	return &Handler{
		bridge:    bridgeClient,
		areas:     areas,
		gradients: gradients,
		wled:      wledClients,
		yeelight:  yeelightClients,
	}
}
