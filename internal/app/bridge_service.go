package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/lightpanel/lightpaneld/internal/bridge"
	"github.com/lightpanel/lightpaneld/internal/config"
	"github.com/lightpanel/lightpaneld/internal/eventbus"
	"github.com/lightpanel/lightpaneld/internal/poller"
	"github.com/lightpanel/lightpaneld/internal/storage"
)

// BridgeService wraps all bridge-related components: client, event stream, and poller.
type BridgeService struct {
	cfg *config.Config

	Client      *bridge.Client
	EventStream *bridge.EventStream
	Poller      *poller.Poller
	Bus         *eventbus.Bus
}

// NewBridgeService creates a new BridgeService with all components initialized but not connected.
func NewBridgeService(cfg *config.Config, bus *eventbus.Bus, store *storage.Store) *BridgeService {
	client := bridge.NewClient(cfg.Bridge.Address, cfg.Bridge.Token, cfg.Bridge.Timeout.Duration())

	// Event stream with retry configuration
	streamConfig := bridge.EventStreamConfig{
		MinBackoff:    cfg.Bridge.MinRetryBackoff.Duration(),
		MaxBackoff:    cfg.Bridge.MaxRetryBackoff.Duration(),
		Multiplier:    cfg.Bridge.RetryMultiplier,
		MaxReconnects: cfg.Bridge.MaxReconnects,
	}
	eventStream := bridge.NewEventStream(client, streamConfig)

	// Poller keeps sensors and groups fresh between push events
	p := poller.New(client, bus, store,
		cfg.Poll.SensorsInterval.Duration(),
		cfg.Poll.GroupsInterval.Duration(),
	)

	return &BridgeService{
		cfg:         cfg,
		Client:      client,
		EventStream: eventStream,
		Poller:      p,
		Bus:         bus,
	}
}

// Start connects to the lighting bridge.
func (s *BridgeService) Start(ctx context.Context) error {
	if err := s.Client.Connect(ctx); err != nil {
		return err
	}
	log.Info().Str("bridge", s.cfg.Bridge.Address).Msg("Connected to bridge")
	return nil
}

// StartBackground starts all background goroutines (event stream, poller).
// The optional onFatalError callback is called when a fatal error occurs (e.g., max reconnects exceeded).
func (s *BridgeService) StartBackground(ctx context.Context, onFatalError func(error)) {
	go func() {
		if err := s.EventStream.Run(ctx, s.Bus); err != nil {
			if err == bridge.ErrMaxReconnectsExceeded {
				log.Error().Msg("Event stream: max reconnects exceeded, triggering shutdown")
				if onFatalError != nil {
					onFatalError(err)
				}
			} else {
				log.Error().Err(err).Msg("Event stream error")
			}
		}
	}()

	s.Poller.Start(ctx)
}

// Close releases all resources.
func (s *BridgeService) Close() {
	if s.Poller != nil {
		s.Poller.Stop()
	}
	if s.Client != nil {
		s.Client.Close()
	}
}
