package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/lightpanel/lightpaneld/internal/api"
	"github.com/lightpanel/lightpaneld/internal/config"
	"github.com/lightpanel/lightpaneld/internal/eventbus"
)

// PanelService wraps the panel HTTP/WebSocket server.
type PanelService struct {
	cfg    *config.Config
	Hub    *api.WSHub
	Server *api.Server
}

// NewPanelService creates a new PanelService wired to the shared handler set.
func NewPanelService(cfg *config.Config, h *api.Handler, bus *eventbus.Bus) *PanelService {
	hub := api.NewWSHub(bus)
	server := api.NewServer(cfg.Server, h, hub)

	return &PanelService{
		cfg:    cfg,
		Hub:    hub,
		Server: server,
	}
}

// Start begins serving the panel API.
// The onFatalError callback is called if the server fails to serve (e.g., port already bound).
func (s *PanelService) Start(ctx context.Context, onFatalError func(error)) {
	go func() {
		if err := s.Server.Start(); err != nil {
			log.Error().Err(err).Msg("Panel server error")
			if onFatalError != nil {
				onFatalError(err)
			}
		}
	}()
}

// Close shuts down the server and drops all WebSocket clients.
func (s *PanelService) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration())
	defer cancel()

	if s.Server != nil {
		if err := s.Server.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Panel server shutdown error")
		}
	}
	if s.Hub != nil {
		s.Hub.Close()
	}
}
