package entertainment

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lightpanel/lightpaneld/internal/geometry"
	"github.com/lightpanel/lightpaneld/internal/wizard"
)

func TestStartSessionUnknownTemplate(t *testing.T) {
	m := NewManager(nil, nil, nil, time.Minute)

	if _, _, err := m.StartSession("no-such-room"); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestSessionLifecycle(t *testing.T) {
	m := NewManager(nil, nil, nil, time.Minute)

	id, w, err := m.StartSession("tv-setup")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if w.Step() != wizard.StepNameLayout {
		t.Errorf("new session should start at name/layout, got %s", w.Step())
	}
	if m.SessionCount() != 1 {
		t.Errorf("expected 1 session, got %d", m.SessionCount())
	}

	var got *wizard.Wizard
	if err := m.WithSession(id, func(w *wizard.Wizard) error {
		got = w
		return nil
	}); err != nil {
		t.Fatalf("WithSession failed: %v", err)
	}
	if got != w {
		t.Error("WithSession should hand out the same wizard")
	}

	if !m.CloseSession(id) {
		t.Error("CloseSession should report the session existed")
	}
	if err := m.WithSession(id, func(*wizard.Wizard) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("closed session should be gone, got %v", err)
	}
	if m.CloseSession(id) {
		t.Error("closing twice should report false")
	}
}

// Overlapping panel requests hammer the same session; every wizard access
// must serialize through the per-session lock or the editor's maps race.
func TestConcurrentSessionWrites(t *testing.T) {
	m := NewManager(nil, nil, nil, time.Minute)

	id, w, err := m.StartSession("free-placement")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	w.Editor().Select([]geometry.LightRef{{ID: "L1"}, {ID: "L2"}})

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			lightID := "L1"
			if g%2 == 1 {
				lightID = "L2"
			}
			for i := 0; i < 200; i++ {
				err := m.WithSession(id, func(w *wizard.Wizard) error {
					x := float64(i%17)/17 - 0.5
					return w.Editor().SetPosition(lightID, x, -x, 0)
				})
				if err != nil {
					t.Errorf("WithSession failed: %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	if err := m.WithSession(id, func(w *wizard.Wizard) error {
		for _, pos := range w.Editor().Positions() {
			if !pos.InRange() {
				t.Errorf("%s ended out of range: (%v, %v, %v)", pos.LightID, pos.X, pos.Y, pos.Z)
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("WithSession failed: %v", err)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	m := NewManager(nil, nil, nil, 10*time.Millisecond)

	id, _, err := m.StartSession("living-room")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	// Age the session past the TTL
	m.mu.Lock()
	m.sessions[id].lastAccessed = time.Now().Add(-time.Second)
	m.mu.Unlock()

	m.cleanupExpired()

	if m.SessionCount() != 0 {
		t.Error("expired session should have been removed")
	}
}

func TestCleanupKeepsActiveSessions(t *testing.T) {
	m := NewManager(nil, nil, nil, time.Hour)

	id, _, err := m.StartSession("desk")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	m.cleanupExpired()

	if err := m.WithSession(id, func(*wizard.Wizard) error { return nil }); err != nil {
		t.Errorf("fresh session should survive cleanup, got %v", err)
	}
}
