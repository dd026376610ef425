package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lightpanel/lightpaneld/internal/api"
	"github.com/lightpanel/lightpaneld/internal/config"
	"github.com/lightpanel/lightpaneld/internal/entertainment"
	"github.com/lightpanel/lightpaneld/internal/eventbus"
	"github.com/lightpanel/lightpaneld/internal/gradient"
	"github.com/lightpanel/lightpaneld/internal/storage"
	"github.com/lightpanel/lightpaneld/internal/wled"
	"github.com/lightpanel/lightpaneld/internal/yeelight"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	DB    *storage.DB
	Store *storage.Store
	Bus   *eventbus.Bus

	// Bridge-backed components
	Bridge *BridgeService

	// Entertainment areas and gradient presets
	Areas     *entertainment.Manager
	Gradients *gradient.Store

	// Standalone device clients
	WLED     map[string]*wled.Client
	Yeelight map[string]*yeelight.Client

	// HTTP/WebSocket surface
	Panel *PanelService

	stopKVCleanup func()
}

// NewServices creates all services with proper dependency injection.
func NewServices(cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	// Initialize database
	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	s.DB = db

	// Initialize generic state store
	s.Store = storage.NewStore(db.DB)

	// Initialize event bus
	s.Bus = eventbus.NewWithConfig(cfg.EventBus.GetWorkers(), cfg.EventBus.GetQueueSize())

	// Initialize bridge service (client, event stream, poller)
	s.Bridge = NewBridgeService(cfg, s.Bus, s.Store)

	// Initialize entertainment manager (wizard sessions + created areas)
	s.Areas = entertainment.NewManager(s.Bridge.Client, s.Bus, s.Store, cfg.Wizard.SessionTTL.Duration())

	// Initialize gradient preset store
	s.Gradients = gradient.NewStore(storage.NewBucket(db.DB, gradient.BucketName))

	// Initialize standalone device clients from config
	s.WLED = make(map[string]*wled.Client, len(cfg.WLED.Devices))
	for _, d := range cfg.WLED.Devices {
		s.WLED[d.ID] = wled.NewClient(d.ID, d.Name, d.Address, cfg.WLED.Timeout.Duration())
	}
	s.Yeelight = make(map[string]*yeelight.Client, len(cfg.Yeelight.Devices))
	for _, d := range cfg.Yeelight.Devices {
		s.Yeelight[d.ID] = yeelight.NewClient(d.ID, d.Name, d.Address, cfg.Yeelight.Timeout.Duration())
	}

	// Initialize panel server
	handler := api.NewHandler(s.Bridge.Client, s.Areas, s.Gradients, s.WLED, s.Yeelight)
	s.Panel = NewPanelService(cfg, handler, s.Bus)

	return s, nil
}

// Start starts all services in the correct order.
// The onFatalError callback is called when a fatal error occurs (e.g., max reconnects exceeded).
func (s *Services) Start(ctx context.Context, onFatalError func(error)) error {
	// Connect to the lighting bridge
	if err := s.Bridge.Start(ctx); err != nil {
		return err
	}

	// Start background services
	s.Bridge.StartBackground(ctx, onFatalError)
	s.Areas.StartCleanup(ctx, s.cfg.Wizard.CleanupInterval.Duration())
	s.stopKVCleanup = storage.StartCleanup(ctx, s.DB.DB, time.Hour)
	s.Panel.Start(ctx, onFatalError)

	log.Info().
		Str("addr", s.cfg.Server.Host).
		Int("port", s.cfg.Server.Port).
		Int("wled", len(s.WLED)).
		Int("yeelight", len(s.Yeelight)).
		Msg("Panel services started")

	return nil
}

// ClearState clears all cached bridge resource state.
func (s *Services) ClearState() error {
	return s.Store.Clear("")
}

// Stop gracefully stops all services.
func (s *Services) Stop() error {
	s.Close()
	return nil
}

// Close releases all resources.
func (s *Services) Close() {
	if s.Panel != nil {
		s.Panel.Close()
	}
	if s.Areas != nil {
		s.Areas.StopCleanup()
	}
	if s.Bridge != nil {
		s.Bridge.Close()
	}
	if s.stopKVCleanup != nil {
		s.stopKVCleanup()
	}
	if s.Bus != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration())
		s.Bus.Close(ctx)
		cancel()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}
