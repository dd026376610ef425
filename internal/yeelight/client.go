// Package yeelight provides a thin client for the Yeelight LAN control
// protocol (JSON commands over TCP).
package yeelight

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultPort = "55443"

// command is a single LAN-protocol request.
type command struct {
	ID     int    `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// response is the device's reply to a command.
type response struct {
	ID     int   `json:"id"`
	Result []any `json:"result,omitempty"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// State is the panel-facing device state.
type State struct {
	Power  string `json:"power"`
	Bright int    `json:"bright"`
	RGB    int    `json:"rgb"`
	CT     int    `json:"ct"`
}

// Client talks to a single Yeelight device. Each command opens a fresh
// connection; the LAN protocol is stateless per request.
type Client struct {
	id      string
	name    string
	address string
	timeout time.Duration
	nextID  int
}

// NewClient creates a client for the device at address. A bare host gets
// the default Yeelight port.
func NewClient(id, name, address string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if _, _, err := net.SplitHostPort(address); err != nil {
		address = net.JoinHostPort(address, defaultPort)
	}

	return &Client{
		id:      id,
		name:    name,
		address: address,
		timeout: timeout,
		nextID:  1,
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

// GetState fetches the current power, brightness and color properties.
func (c *Client) GetState(ctx context.Context) (*State, error) {
	result, err := c.send(ctx, "get_prop", []any{"power", "bright", "rgb", "ct"})
	if err != nil {
		return nil, fmt.Errorf("failed to get Yeelight state: %w", err)
	}
	if len(result) < 4 {
		return nil, fmt.Errorf("short get_prop reply: %v", result)
	}

	state := &State{}
	if s, ok := result[0].(string); ok {
		state.Power = s
	}
	state.Bright = intProp(result[1])
	state.RGB = intProp(result[2])
	state.CT = intProp(result[3])

	return state, nil
}

// SetPower turns the device on or off.
func (c *Client) SetPower(ctx context.Context, on bool) error {
	value := "off"
	if on {
		value = "on"
	}

	_, err := c.send(ctx, "set_power", []any{value, "smooth", 300})
	return err
}

// SetBrightness sets brightness 1..100.
func (c *Client) SetBrightness(ctx context.Context, brightness int) error {
	if brightness < 1 {
		brightness = 1
	}
	if brightness > 100 {
		brightness = 100
	}

	_, err := c.send(ctx, "set_bright", []any{brightness, "smooth", 300})
	return err
}

// SetRGB sets the color as a packed 0xRRGGBB value.
func (c *Client) SetRGB(ctx context.Context, rgb int) error {
	_, err := c.send(ctx, "set_rgb", []any{rgb, "smooth", 300})
	return err
}

func (c *Client) send(ctx context.Context, method string, params []any) ([]any, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	cmd := command{ID: c.nextID, Method: method, Params: params}
	c.nextID++

	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}

	// Commands are newline-terminated
	if _, err := conn.Write(append(data, '\r', '\n')); err != nil {
		return nil, fmt.Errorf("failed to send command: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var resp response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue
		}

		// Devices push unsolicited notifications on the same connection;
		// only the matching ID is our reply.
		if resp.ID != cmd.ID {
			continue
		}

		if resp.Error != nil {
			return nil, fmt.Errorf("device error %d: %s", resp.Error.Code, resp.Error.Message)
		}

		log.Debug().Str("device", c.id).Str("method", method).Msg("Yeelight command ok")
		return resp.Result, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reply: %w", err)
	}

	return nil, fmt.Errorf("connection closed before reply")
}

func intProp(v any) int {
	switch t := v.(type) {
	case string:
		var n int
		_, _ = fmt.Sscanf(t, "%d", &n)
		return n
	case float64:
		return int(t)
	default:
		return 0
	}
}
