package eventbus

import (
	"context"
	"testing"
	"time"
)

func TestPublishDeliversTypedPayload(t *testing.T) {
	b := NewWithConfig(2, 16)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		b.Close(ctx)
	}()

	got := make(chan Event, 1)
	b.Subscribe(EventTypeStreamingStatus, func(e Event) { got <- e })

	b.Publish(Event{
		Type:       EventTypeStreamingStatus,
		ResourceID: "area-1",
		Payload:    StreamingStatus{Active: true},
	})

	select {
	case e := <-got:
		if e.ResourceID != "area-1" {
			t.Errorf("resource id = %q, want area-1", e.ResourceID)
		}
		status, ok := e.Payload.(StreamingStatus)
		if !ok {
			t.Fatalf("payload is %T, want StreamingStatus", e.Payload)
		}
		if !status.Active {
			t.Error("status should be active")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestPublishRoutesByType(t *testing.T) {
	b := NewWithConfig(2, 16)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		b.Close(ctx)
	}()

	sensors := make(chan Event, 2)
	b.Subscribe(EventTypeSensorUpdate, func(e Event) { sensors <- e })

	b.Publish(Event{Type: EventTypeConnectivity, ResourceID: "dev-1", Payload: Connectivity{Status: "connected"}})
	b.Publish(Event{Type: EventTypeSensorUpdate, ResourceID: "sensor-1", Payload: SensorDelta{SensorType: "motion"}})

	select {
	case e := <-sensors:
		if e.ResourceID != "sensor-1" {
			t.Errorf("sensor handler received %q event", e.ResourceID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sensor event was not delivered")
	}

	select {
	case e := <-sensors:
		t.Errorf("sensor handler received extra event for %q", e.ResourceID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	b := NewWithConfig(1, 4)

	calls := make(chan struct{}, 4)
	b.Subscribe(EventTypeConnectivity, func(Event) { calls <- struct{}{} })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	b.Close(ctx)

	// Must neither panic nor deliver
	b.Publish(Event{Type: EventTypeConnectivity, ResourceID: "dev-1", Payload: Connectivity{Status: "gone"}})

	select {
	case <-calls:
		t.Error("event delivered after close")
	case <-time.After(50 * time.Millisecond):
	}
}
