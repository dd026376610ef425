package poller

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightpanel/lightpaneld/internal/bridge"
	"github.com/lightpanel/lightpaneld/internal/eventbus"
	"github.com/lightpanel/lightpaneld/internal/storage"
)

// fakeBridge serves the v1 sensors and groups collections. Payloads can be
// swapped between polls to simulate device changes.
type fakeBridge struct {
	mu      sync.Mutex
	sensors string
	groups  string
}

func (f *fakeBridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/sensors"):
		fmt.Fprint(w, f.sensors)
	case strings.HasSuffix(r.URL.Path, "/groups"):
		fmt.Fprint(w, f.groups)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeBridge) setSensors(payload string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sensors = payload
}

func waitEvent(t *testing.T, ch <-chan eventbus.Event) eventbus.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return eventbus.Event{}
	}
}

func TestPollerPublishesOnlyChangedResources(t *testing.T) {
	fake := &fakeBridge{
		sensors: `{"s1":{"name":"Hall motion","type":"ZLLPresence","state":{"presence":false}}}`,
		groups:  `{"g1":{"name":"Living room","lights":["1","2"]}}`,
	}
	ts := httptest.NewServer(fake)
	defer ts.Close()

	db, err := storage.Open(filepath.Join(t.TempDir(), "poller.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	bus := eventbus.NewWithConfig(1, 32)
	defer bus.Close(context.Background())

	sensorEvents := make(chan eventbus.Event, 16)
	groupEvents := make(chan eventbus.Event, 16)
	bus.Subscribe(eventbus.EventTypeSensorUpdate, func(e eventbus.Event) { sensorEvents <- e })
	bus.Subscribe(eventbus.EventTypeGroupUpdate, func(e eventbus.Event) { groupEvents <- e })

	client := bridge.NewClient(strings.TrimPrefix(ts.URL, "http://"), "testtoken", 2*time.Second)
	p := New(client, bus, storage.NewStore(db.DB), 50*time.Millisecond, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	// The priming poll broadcasts every resource once.
	event := waitEvent(t, sensorEvents)
	assert.Equal(t, "s1", event.ResourceID)
	sensor, ok := event.Payload.(bridge.Sensor)
	require.True(t, ok, "sensor event payload must be a bridge.Sensor, got %T", event.Payload)
	assert.Equal(t, "Hall motion", sensor.Name)

	event = waitEvent(t, groupEvents)
	assert.Equal(t, "g1", event.ResourceID)

	// Flip the sensor; the next poll must publish it again.
	fake.setSensors(`{"s1":{"name":"Hall motion","type":"ZLLPresence","state":{"presence":true}}}`)

	event = waitEvent(t, sensorEvents)
	assert.Equal(t, "s1", event.ResourceID)
	sensor, ok = event.Payload.(bridge.Sensor)
	require.True(t, ok)
	require.NotNil(t, sensor.State.Presence)
	assert.True(t, *sensor.State.Presence)

	// The group never changed, so repeated polls must stay quiet for it.
	select {
	case event := <-groupEvents:
		t.Fatalf("unexpected group event for unchanged group: %+v", event)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestPollerStopTerminatesLoop(t *testing.T) {
	fake := &fakeBridge{sensors: `{}`, groups: `{}`}
	ts := httptest.NewServer(fake)
	defer ts.Close()

	db, err := storage.Open(filepath.Join(t.TempDir(), "poller.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	bus := eventbus.NewWithConfig(1, 8)
	defer bus.Close(context.Background())

	client := bridge.NewClient(strings.TrimPrefix(ts.URL, "http://"), "testtoken", 2*time.Second)
	p := New(client, bus, storage.NewStore(db.DB), time.Hour, time.Hour)

	p.Start(context.Background())

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
