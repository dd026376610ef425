// Package bridge provides the HTTP client for the lighting bridge.
package bridge

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lightpanel/lightpaneld/internal/geometry"
)

// Client provides access to the bridge REST API
type Client struct {
	address    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new bridge client
func NewClient(address, token string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	// Bridges use self-signed certs on the local network
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}

	return &Client{
		address: address,
		token:   token,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Connect verifies the bridge is reachable and the token is accepted
func (c *Client) Connect(ctx context.Context) error {
	resp, err := c.request(ctx, "GET", "capabilities", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to bridge: %w", err)
	}
	resp.Body.Close()

	log.Info().Str("address", c.address).Msg("Connected to bridge")
	return nil
}

// Close closes the client
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Address returns the bridge address
func (c *Client) Address() string {
	return c.address
}

// Token returns the application token
func (c *Client) Token() string {
	return c.token
}

func (c *Client) url(path string) string {
	return fmt.Sprintf("http://%s/api/%s/%s", c.address, c.token, path)
}

func (c *Client) request(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}

// do issues a request and decodes the response into out (may be nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.request(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bridge returned %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// collection fetches an id-keyed map resource and flattens it into a slice,
// stamping the map key as the element ID.
func collection[T any](ctx context.Context, c *Client, path string, setID func(*T, string)) ([]T, error) {
	var raw map[string]T
	if err := c.do(ctx, "GET", path, nil, &raw); err != nil {
		return nil, err
	}

	items := make([]T, 0, len(raw))
	for id, item := range raw {
		setID(&item, id)
		items = append(items, item)
	}

	return items, nil
}

// GetLights returns all lights
func (c *Client) GetLights(ctx context.Context) ([]Light, error) {
	return collection(ctx, c, "lights", func(l *Light, id string) { l.ID = id })
}

// GetLight returns a light by ID
func (c *Client) GetLight(ctx context.Context, lightID string) (*Light, error) {
	var light Light
	if err := c.do(ctx, "GET", "lights/"+lightID, nil, &light); err != nil {
		return nil, err
	}
	light.ID = lightID
	return &light, nil
}

// SetLightState updates a light's state
func (c *Client) SetLightState(ctx context.Context, lightID string, state map[string]any) error {
	return c.do(ctx, "PUT", fmt.Sprintf("lights/%s/state", lightID), state, nil)
}

// GetGroups returns all groups
func (c *Client) GetGroups(ctx context.Context) ([]Group, error) {
	return collection(ctx, c, "groups", func(g *Group, id string) { g.ID = id })
}

// GetGroup returns a group by ID
func (c *Client) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	var group Group
	if err := c.do(ctx, "GET", "groups/"+groupID, nil, &group); err != nil {
		return nil, err
	}
	group.ID = groupID
	return &group, nil
}

// CreateGroup creates a group and returns its ID
func (c *Client) CreateGroup(ctx context.Context, group map[string]any) (string, error) {
	var result []struct {
		Success map[string]string `json:"success"`
	}
	if err := c.do(ctx, "POST", "groups", group, &result); err != nil {
		return "", err
	}

	if len(result) == 0 || result[0].Success["id"] == "" {
		return "", fmt.Errorf("bridge did not return a group id")
	}

	return result[0].Success["id"], nil
}

// UpdateGroup updates group attributes (name, lights, class)
func (c *Client) UpdateGroup(ctx context.Context, groupID string, attrs map[string]any) error {
	return c.do(ctx, "PUT", "groups/"+groupID, attrs, nil)
}

// DeleteGroup removes a group
func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	return c.do(ctx, "DELETE", "groups/"+groupID, nil, nil)
}

// SetGroupAction sends an action to a group
func (c *Client) SetGroupAction(ctx context.Context, groupID string, action map[string]any) error {
	return c.do(ctx, "PUT", fmt.Sprintf("groups/%s/action", groupID), action, nil)
}

// GetScenes returns all scenes
func (c *Client) GetScenes(ctx context.Context) ([]Scene, error) {
	return collection(ctx, c, "scenes", func(s *Scene, id string) { s.ID = id })
}

// ActivateScene activates a scene on a group
func (c *Client) ActivateScene(ctx context.Context, groupID, sceneID string) error {
	err := c.do(ctx, "PUT", fmt.Sprintf("groups/%s/action", groupID), map[string]any{"scene": sceneID}, nil)
	if err != nil {
		return err
	}

	log.Debug().
		Str("group", groupID).
		Str("scene", sceneID).
		Msg("Scene activated")

	return nil
}

// GetSensors returns all sensors
func (c *Client) GetSensors(ctx context.Context) ([]Sensor, error) {
	return collection(ctx, c, "sensors", func(s *Sensor, id string) { s.ID = id })
}

// GetSensor returns a sensor by ID
func (c *Client) GetSensor(ctx context.Context, sensorID string) (*Sensor, error) {
	var sensor Sensor
	if err := c.do(ctx, "GET", "sensors/"+sensorID, nil, &sensor); err != nil {
		return nil, err
	}
	sensor.ID = sensorID
	return &sensor, nil
}

// GetRules returns all automation rules
func (c *Client) GetRules(ctx context.Context) ([]Rule, error) {
	return collection(ctx, c, "rules", func(r *Rule, id string) { r.ID = id })
}

// GetRule returns a rule by ID
func (c *Client) GetRule(ctx context.Context, ruleID string) (*Rule, error) {
	var rule Rule
	if err := c.do(ctx, "GET", "rules/"+ruleID, nil, &rule); err != nil {
		return nil, err
	}
	rule.ID = ruleID
	return &rule, nil
}

// CreateRule creates a rule and returns its ID
func (c *Client) CreateRule(ctx context.Context, rule *Rule) (string, error) {
	var result []struct {
		Success map[string]string `json:"success"`
	}
	if err := c.do(ctx, "POST", "rules", rule, &result); err != nil {
		return "", err
	}

	if len(result) == 0 || result[0].Success["id"] == "" {
		return "", fmt.Errorf("bridge did not return a rule id")
	}

	return result[0].Success["id"], nil
}

// UpdateRule updates a rule
func (c *Client) UpdateRule(ctx context.Context, ruleID string, rule *Rule) error {
	return c.do(ctx, "PUT", "rules/"+ruleID, rule, nil)
}

// DeleteRule removes a rule
func (c *Client) DeleteRule(ctx context.Context, ruleID string) error {
	return c.do(ctx, "DELETE", "rules/"+ruleID, nil, nil)
}

// CreateEntertainmentArea creates an entertainment group and returns the
// new area ID.
func (c *Client) CreateEntertainmentArea(ctx context.Context, req EntertainmentAreaRequest) (string, error) {
	if req.Type == "" {
		req.Type = "Entertainment"
	}
	if req.Class == "" {
		req.Class = "TV"
	}

	areaID, err := c.CreateGroup(ctx, map[string]any{
		"name":   req.Name,
		"lights": req.Lights,
		"type":   req.Type,
		"class":  req.Class,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create entertainment area: %w", err)
	}

	log.Info().
		Str("area", areaID).
		Str("name", req.Name).
		Int("lights", len(req.Lights)).
		Msg("Entertainment area created")

	return areaID, nil
}

// UpdateLightPositions writes the per-light locations of an entertainment
// area. Positions are 3D points in the bridge's [-1,1] space.
func (c *Client) UpdateLightPositions(ctx context.Context, areaID string, positions []geometry.LightPosition) error {
	locations := make(map[string][]float64, len(positions))
	for _, p := range positions {
		locations[p.LightID] = []float64{p.X, p.Y, p.Z}
	}

	if err := c.UpdateGroup(ctx, areaID, map[string]any{"locations": locations}); err != nil {
		return fmt.Errorf("failed to update light positions: %w", err)
	}

	return nil
}

// StartStreaming activates entertainment streaming on an area
func (c *Client) StartStreaming(ctx context.Context, areaID string) error {
	err := c.do(ctx, "PUT", "groups/"+areaID, map[string]any{
		"stream": map[string]any{"active": true},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to start streaming: %w", err)
	}

	log.Info().Str("area", areaID).Msg("Streaming started")
	return nil
}

// StopStreaming deactivates entertainment streaming on an area
func (c *Client) StopStreaming(ctx context.Context, areaID string) error {
	err := c.do(ctx, "PUT", "groups/"+areaID, map[string]any{
		"stream": map[string]any{"active": false},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to stop streaming: %w", err)
	}

	log.Info().Str("area", areaID).Msg("Streaming stopped")
	return nil
}
