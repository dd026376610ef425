package bridge

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lightpanel/lightpaneld/internal/eventbus"
)

// ErrMaxReconnectsExceeded is returned when the maximum number of reconnect attempts is exceeded.
var ErrMaxReconnectsExceeded = errors.New("max reconnects exceeded")

// EventStreamConfig contains configuration for event stream reconnection.
type EventStreamConfig struct {
	MinBackoff    time.Duration // Minimum backoff between reconnects
	MaxBackoff    time.Duration // Maximum backoff between reconnects
	Multiplier    float64       // Backoff multiplier
	MaxReconnects int           // Max reconnect attempts, 0 = infinite
}

// EventStream listens to the bridge's server-sent event stream and feeds
// state deltas onto the event bus.
type EventStream struct {
	client     *Client
	httpClient *http.Client
	config     EventStreamConfig
}

// NewEventStream creates a new event stream listener.
func NewEventStream(client *Client, config EventStreamConfig) *EventStream {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}

	return &EventStream{
		client: client,
		httpClient: &http.Client{
			Transport: transport,
			// No timeout for SSE - it's a long-lived connection
		},
		config: config,
	}
}

// Run starts listening to the event stream with automatic reconnection.
// Returns ErrMaxReconnectsExceeded if max reconnects is exceeded.
func (e *EventStream) Run(ctx context.Context, bus *eventbus.Bus) error {
	retryCount := 0
	currentBackoff := e.config.MinBackoff

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := e.connect(ctx, bus)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			retryCount++

			if e.config.MaxReconnects > 0 && retryCount > e.config.MaxReconnects {
				log.Error().
					Int("max_reconnects", e.config.MaxReconnects).
					Msg("Event stream: max reconnects exceeded, terminating")
				return ErrMaxReconnectsExceeded
			}

			log.Warn().
				Err(err).
				Dur("backoff", currentBackoff).
				Int("retry", retryCount).
				Int("max_reconnects", e.config.MaxReconnects).
				Msg("Event stream disconnected, reconnecting")

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(currentBackoff):
			}

			// Next backoff grows by the multiplier, capped at max
			nextBackoff := time.Duration(float64(currentBackoff) * e.config.Multiplier)
			if nextBackoff > e.config.MaxBackoff {
				nextBackoff = e.config.MaxBackoff
			}
			currentBackoff = nextBackoff

			continue
		}

		// Reset retry count and backoff on successful connection
		retryCount = 0
		currentBackoff = e.config.MinBackoff
	}
}

func (e *EventStream) connect(ctx context.Context, bus *eventbus.Bus) error {
	url := fmt.Sprintf("https://%s/eventstream/clip/v2", e.client.Address())

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	req.Header.Set("hue-application-key", e.client.Token())
	req.Header.Set("Accept", "text/event-stream")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	log.Info().Msg("Connected to bridge event stream")

	scanner := bufio.NewScanner(resp.Body)
	var dataBuffer strings.Builder

	for scanner.Scan() {
		line := scanner.Text()

		// Handle intro message
		if line == ": hi" {
			log.Debug().Msg("Received event stream greeting")
			continue
		}

		// Empty line marks end of event
		if line == "" {
			if dataBuffer.Len() > 0 {
				e.processEvent(dataBuffer.String(), bus)
				dataBuffer.Reset()
			}
			continue
		}

		// Collect data lines
		if strings.HasPrefix(line, "data: ") {
			dataBuffer.WriteString(strings.TrimPrefix(line, "data: "))
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	return nil
}

func (e *EventStream) processEvent(data string, bus *eventbus.Bus) {
	var envelopes []map[string]any
	if err := json.Unmarshal([]byte(data), &envelopes); err != nil {
		log.Warn().Err(err).Str("data", data).Msg("Failed to parse event")
		return
	}

	for _, envelope := range envelopes {
		e.handleEvent(envelope, bus)
	}
}

func (e *EventStream) handleEvent(event map[string]any, bus *eventbus.Bus) {
	eventType, _ := event["type"].(string)
	dataItems, _ := event["data"].([]any)

	for _, item := range dataItems {
		itemMap, ok := item.(map[string]any)
		if !ok {
			continue
		}

		itemType, _ := itemMap["type"].(string)
		itemID, _ := itemMap["id"].(string)

		switch itemType {
		case "light", "grouped_light":
			e.handleLightChangeEvent(itemID, itemType, itemMap, bus)

		case "motion", "temperature", "light_level", "button":
			e.handleSensorEvent(itemID, itemType, itemMap, bus)

		case "entertainment_configuration":
			e.handleStreamingEvent(itemID, itemMap, bus)

		case "zigbee_connectivity":
			e.handleConnectivityEvent(itemID, itemMap, bus)

		default:
			log.Trace().
				Str("event_type", eventType).
				Str("item_type", itemType).
				Str("id", itemID).
				Msg("Unhandled event type")
		}
	}
}

func (e *EventStream) handleLightChangeEvent(id, resourceType string, data map[string]any, bus *eventbus.Bus) {
	delta := eventbus.LightDelta{ResourceType: resourceType}

	if owner, ok := data["owner"].(map[string]any); ok {
		delta.OwnerID, _ = owner["rid"].(string)
		delta.OwnerType, _ = owner["rtype"].(string)
	}

	if dimming, ok := data["dimming"].(map[string]any); ok {
		if brightness, ok := dimming["brightness"].(float64); ok {
			delta.Brightness = &brightness
		}
	}

	if on, ok := data["on"].(map[string]any); ok {
		if isOn, ok := on["on"].(bool); ok {
			delta.Power = &isOn
		}
	}

	if color, ok := data["color"].(map[string]any); ok {
		if xy, ok := color["xy"].(map[string]any); ok {
			if x, ok := xy["x"].(float64); ok {
				delta.ColorX = &x
			}
			if y, ok := xy["y"].(float64); ok {
				delta.ColorY = &y
			}
		}
	}

	log.Debug().
		Str("id", id).
		Str("resource_type", resourceType).
		Msg("Light change event")

	eventType := eventbus.EventTypeLightChange
	if resourceType == "grouped_light" {
		eventType = eventbus.EventTypeGroupUpdate
	}

	bus.Publish(eventbus.Event{
		Type:       eventType,
		ResourceID: id,
		Payload:    delta,
	})
}

func (e *EventStream) handleSensorEvent(id, sensorType string, data map[string]any, bus *eventbus.Bus) {
	delta := eventbus.SensorDelta{SensorType: sensorType}

	switch sensorType {
	case "motion":
		if motion, ok := data["motion"].(map[string]any); ok {
			if present, ok := motion["motion"].(bool); ok {
				delta.Presence = &present
			}
		}
	case "temperature":
		if temp, ok := data["temperature"].(map[string]any); ok {
			if value, ok := temp["temperature"].(float64); ok {
				delta.Temperature = &value
			}
		}
	case "light_level":
		if level, ok := data["light"].(map[string]any); ok {
			if value, ok := level["light_level"].(float64); ok {
				lux := int(value)
				delta.LightLevel = &lux
			}
		}
	case "button":
		if button, ok := data["button"].(map[string]any); ok {
			if report, ok := button["button_report"].(map[string]any); ok {
				delta.ButtonEvent, _ = report["event"].(string)
			}
		}
	}

	log.Debug().
		Str("id", id).
		Str("sensor_type", sensorType).
		Msg("Sensor event")

	bus.Publish(eventbus.Event{
		Type:       eventbus.EventTypeSensorUpdate,
		ResourceID: id,
		Payload:    delta,
	})
}

func (e *EventStream) handleStreamingEvent(id string, data map[string]any, bus *eventbus.Bus) {
	var status eventbus.StreamingStatus

	if state, ok := data["status"].(string); ok {
		status.Active = state == "active"
	}
	if active, ok := data["active_streamer"].(map[string]any); ok {
		status.StreamerID, _ = active["rid"].(string)
	}

	log.Debug().
		Str("area", id).
		Bool("active", status.Active).
		Msg("Streaming status event")

	bus.Publish(eventbus.Event{
		Type:       eventbus.EventTypeStreamingStatus,
		ResourceID: id,
		Payload:    status,
	})
}

func (e *EventStream) handleConnectivityEvent(id string, data map[string]any, bus *eventbus.Bus) {
	status, _ := data["status"].(string)

	log.Debug().
		Str("id", id).
		Str("status", status).
		Msg("Connectivity event")

	bus.Publish(eventbus.Event{
		Type:       eventbus.EventTypeConnectivity,
		ResourceID: id,
		Payload:    eventbus.Connectivity{Status: status},
	})
}
