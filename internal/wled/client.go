// Package wled provides a thin client for the WLED JSON API.
package wled

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Segment is one strip segment with its LED range and primary color.
type Segment struct {
	ID     int     `json:"id"`
	Start  int     `json:"start"`
	Stop   int     `json:"stop"`
	Colors [][]int `json:"col,omitempty"`
	On     *bool   `json:"on,omitempty"`
	Bri    int     `json:"bri,omitempty"`
}

// State is the controllable device state.
type State struct {
	On         bool      `json:"on"`
	Bri        int       `json:"bri,omitempty"`
	Transition int       `json:"transition,omitempty"`
	Segments   []Segment `json:"seg,omitempty"`
}

// Info describes the device.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"ver"`
	LEDs    struct {
		Count int `json:"count"`
	} `json:"leds"`
}

// Client talks to a single WLED device.
type Client struct {
	id         string
	name       string
	address    string
	httpClient *http.Client
}

// NewClient creates a client for the device at address.
func NewClient(id, name, address string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		id:      id,
		name:    name,
		address: address,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ID returns the configured device ID.
func (c *Client) ID() string {
	return c.id
}

// Name returns the configured device name.
func (c *Client) Name() string {
	return c.name
}

// Address returns the device address.
func (c *Client) Address() string {
	return c.address
}

// GetState fetches the current device state.
func (c *Client) GetState(ctx context.Context) (*State, error) {
	var state State
	if err := c.get(ctx, "/json/state", &state); err != nil {
		return nil, fmt.Errorf("failed to get WLED state: %w", err)
	}
	return &state, nil
}

// GetInfo fetches device info.
func (c *Client) GetInfo(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.get(ctx, "/json/info", &info); err != nil {
		return nil, fmt.Errorf("failed to get WLED info: %w", err)
	}
	return &info, nil
}

// SetState applies a partial state update. Unset fields keep their device
// values.
func (c *Client) SetState(ctx context.Context, state map[string]any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "http://"+c.address+"/json/state", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to set WLED state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("WLED returned %d: %s", resp.StatusCode, string(body))
	}

	log.Debug().Str("device", c.id).Msg("WLED state updated")
	return nil
}

// SetSegments replaces the device's gradient segments.
func (c *Client) SetSegments(ctx context.Context, segments []Segment) error {
	return c.SetState(ctx, map[string]any{"seg": segments})
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", "http://"+c.address+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
