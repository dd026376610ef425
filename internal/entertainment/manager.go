// Package entertainment runs the area-setup wizard sessions and commits
// finished areas to the bridge.
package entertainment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lightpanel/lightpaneld/internal/bridge"
	"github.com/lightpanel/lightpaneld/internal/eventbus"
	"github.com/lightpanel/lightpaneld/internal/geometry"
	"github.com/lightpanel/lightpaneld/internal/storage"
	"github.com/lightpanel/lightpaneld/internal/templates"
	"github.com/lightpanel/lightpaneld/internal/wizard"
)

// KindArea is the resource_state kind for committed areas.
const KindArea = "entertainment_area"

// ErrSessionNotFound is returned by WithSession for unknown or expired ids.
var ErrSessionNotFound = errors.New("wizard session not found")

// Area is the persisted snapshot of a committed entertainment area.
type Area struct {
	ID            string                     `json:"id"`
	Name          string                     `json:"name"`
	TemplateID    string                     `json:"templateId"`
	Configuration geometry.ConfigurationType `json:"configurationType"`
	Positions     []geometry.LightPosition   `json:"positions"`
	CreatedAt     time.Time                  `json:"createdAt"`
}

// sessionState pairs a wizard with its keep-alive timestamp. The mutex
// serializes all wizard and editor access for this session; the wizard
// itself is not safe for concurrent use.
type sessionState struct {
	mu           sync.Mutex
	wizard       *wizard.Wizard
	lastAccessed time.Time
}

// Manager owns the active wizard sessions. Sessions are in-memory and
// expire after the configured TTL without access.
type Manager struct {
	sessions map[string]*sessionState
	mu       sync.RWMutex

	client *bridge.Client
	bus    *eventbus.Bus
	areas  *storage.TypedStore[Area]

	ttl time.Duration

	cleanupStop    chan struct{}
	cleanupStopped chan struct{}
}

// NewManager creates a session manager.
func NewManager(client *bridge.Client, bus *eventbus.Bus, store *storage.Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &Manager{
		sessions: make(map[string]*sessionState),
		client:   client,
		bus:      bus,
		areas:    storage.NewTypedStore[Area](store, KindArea),
		ttl:      ttl,
	}
}

// StartSession opens a new wizard session for a room template.
func (m *Manager) StartSession(templateID string) (string, *wizard.Wizard, error) {
	tpl, ok := templates.ByID(templateID)
	if !ok {
		return "", nil, fmt.Errorf("unknown room template %q", templateID)
	}

	sessionID := uuid.New().String()
	w := wizard.New(tpl)

	m.mu.Lock()
	m.sessions[sessionID] = &sessionState{
		wizard:       w,
		lastAccessed: time.Now(),
	}
	m.mu.Unlock()

	log.Info().Str("session", sessionID).Str("template", templateID).Msg("Wizard session started")
	return sessionID, w, nil
}

// lookup fetches a session and refreshes its keep-alive.
func (m *Manager) lookup(id string) (*sessionState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	state.lastAccessed = time.Now()
	return state, true
}

// WithSession runs fn with exclusive access to the session's wizard.
// Panel handlers run concurrently (rapid drag-move posts in particular),
// so every wizard read and mutation goes through here.
func (m *Manager) WithSession(id string, fn func(*wizard.Wizard) error) error {
	state, ok := m.lookup(id)
	if !ok {
		return ErrSessionNotFound
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return fn(state.wizard)
}

// CloseSession drops a session without committing it.
func (m *Manager) CloseSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// CreateArea commits a review-step session: the area is created on the
// bridge, light positions are written, the snapshot is persisted and the
// session is closed.
func (m *Manager) CreateArea(ctx context.Context, sessionID string) (*Area, error) {
	state, ok := m.lookup(sessionID)
	if !ok {
		return nil, fmt.Errorf("session %q not found", sessionID)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	w := state.wizard

	if w.Step() != wizard.StepReview {
		return nil, fmt.Errorf("session is at step %s, not review", w.Step())
	}
	if !w.Valid(wizard.StepReview) {
		return nil, fmt.Errorf("wizard data is incomplete")
	}

	editor := w.Editor()
	positions := editor.Positions()

	lightIDs := make([]string, 0, len(editor.Selection()))
	for _, ref := range editor.Selection() {
		lightIDs = append(lightIDs, ref.ID)
	}

	areaID, err := m.client.CreateEntertainmentArea(ctx, bridge.EntertainmentAreaRequest{
		Name:   w.Name(),
		Lights: lightIDs,
	})
	if err != nil {
		return nil, err
	}

	if err := m.client.UpdateLightPositions(ctx, areaID, positions); err != nil {
		return nil, fmt.Errorf("area %s created but positions failed: %w", areaID, err)
	}

	area := Area{
		ID:            areaID,
		Name:          w.Name(),
		TemplateID:    w.Template().ID,
		Configuration: editor.Configuration(),
		Positions:     positions,
		CreatedAt:     time.Now().UTC(),
	}

	if err := m.areas.Set(areaID, area); err != nil {
		log.Warn().Err(err).Str("area", areaID).Msg("Failed to persist area snapshot")
	}

	m.CloseSession(sessionID)

	log.Info().
		Str("area", areaID).
		Str("name", area.Name).
		Int("lights", len(positions)).
		Msg("Entertainment area created")

	return &area, nil
}

// Areas returns all persisted area snapshots.
func (m *Manager) Areas() ([]Area, error) {
	byID, _, err := m.areas.GetAll()
	if err != nil {
		return nil, err
	}

	areas := make([]Area, 0, len(byID))
	for _, area := range byID {
		areas = append(areas, area)
	}
	return areas, nil
}

// Area returns one persisted snapshot. Found reports whether it exists.
func (m *Manager) Area(areaID string) (Area, bool, error) {
	area, version, err := m.areas.Get(areaID)
	if err != nil {
		return Area{}, false, err
	}
	return area, version > 0, nil
}

// StartStreaming activates streaming on an area and publishes the status.
func (m *Manager) StartStreaming(ctx context.Context, areaID string) error {
	if err := m.client.StartStreaming(ctx, areaID); err != nil {
		return err
	}

	m.bus.Publish(eventbus.Event{
		Type:       eventbus.EventTypeStreamingStatus,
		ResourceID: areaID,
		Payload:    eventbus.StreamingStatus{Active: true},
	})
	return nil
}

// StopStreaming deactivates streaming on an area and publishes the status.
func (m *Manager) StopStreaming(ctx context.Context, areaID string) error {
	if err := m.client.StopStreaming(ctx, areaID); err != nil {
		return err
	}

	m.bus.Publish(eventbus.Event{
		Type:       eventbus.EventTypeStreamingStatus,
		ResourceID: areaID,
		Payload:    eventbus.StreamingStatus{Active: false},
	})
	return nil
}

// StartCleanup launches the session expiry loop.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	m.cleanupStop = make(chan struct{})
	m.cleanupStopped = make(chan struct{})

	go func() {
		defer close(m.cleanupStopped)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.cleanupStop:
				return
			case <-ticker.C:
				m.cleanupExpired()
			}
		}
	}()
}

// StopCleanup stops the expiry loop.
func (m *Manager) StopCleanup() {
	if m.cleanupStop != nil {
		close(m.cleanupStop)
		<-m.cleanupStopped
	}
}

func (m *Manager) cleanupExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.ttl)
	for id, state := range m.sessions {
		if state.lastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			log.Debug().Str("session", id).Msg("Expired wizard session removed")
		}
	}
}

// SessionCount returns the number of active sessions.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
