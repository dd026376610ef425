package bridge

// LightState represents the controllable state of a light (v1 API)
type LightState struct {
	On        bool      `json:"on"`
	Bri       int       `json:"bri,omitempty"`
	Hue       int       `json:"hue,omitempty"`
	Sat       int       `json:"sat,omitempty"`
	XY        []float64 `json:"xy,omitempty"`
	CT        int       `json:"ct,omitempty"`
	Reachable bool      `json:"reachable,omitempty"`
	ColorMode string    `json:"colormode,omitempty"`
	TransTime int       `json:"transitiontime,omitempty"`
}

// Light represents a bridge light (v1 API)
type Light struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Type             string     `json:"type"`
	ModelID          string     `json:"modelid,omitempty"`
	ManufacturerName string     `json:"manufacturername,omitempty"`
	State            LightState `json:"state"`
}

// GroupState represents the aggregate state of a group (v1 API)
type GroupState struct {
	AllOn bool `json:"all_on"`
	AnyOn bool `json:"any_on"`
}

// GroupAction represents the last action applied to a group
type GroupAction struct {
	On  bool `json:"on"`
	Bri int  `json:"bri"`
}

// Group represents a bridge group (v1 API). Entertainment areas are groups
// with Type "Entertainment" and per-light locations.
type Group struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Lights    []string             `json:"lights"`
	Type      string               `json:"type"`
	Class     string               `json:"class,omitempty"`
	State     GroupState           `json:"state"`
	Action    GroupAction          `json:"action"`
	Locations map[string][]float64 `json:"locations,omitempty"`
	Stream    *StreamStatus        `json:"stream,omitempty"`
}

// StreamStatus reports entertainment streaming state on a group
type StreamStatus struct {
	Active bool   `json:"active"`
	Owner  string `json:"owner,omitempty"`
}

// Scene represents a bridge scene (v1 API)
type Scene struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Group   string   `json:"group"`
	Lights  []string `json:"lights"`
	Type    string   `json:"type"`
	Version int      `json:"version"`
}

// SensorState holds the last reported reading of a sensor
type SensorState struct {
	Presence    *bool  `json:"presence,omitempty"`
	Temperature *int   `json:"temperature,omitempty"`
	LightLevel  *int   `json:"lightlevel,omitempty"`
	ButtonEvent *int   `json:"buttonevent,omitempty"`
	Daylight    *bool  `json:"daylight,omitempty"`
	LastUpdated string `json:"lastupdated,omitempty"`
}

// SensorConfig holds sensor configuration
type SensorConfig struct {
	On        bool `json:"on"`
	Reachable bool `json:"reachable,omitempty"`
	Battery   int  `json:"battery,omitempty"`
}

// Sensor represents a bridge sensor (v1 API)
type Sensor struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Type             string       `json:"type"`
	ModelID          string       `json:"modelid,omitempty"`
	ManufacturerName string       `json:"manufacturername,omitempty"`
	State            SensorState  `json:"state"`
	Config           SensorConfig `json:"config"`
}

// RuleCondition is one condition of an automation rule (v1 API)
type RuleCondition struct {
	Address  string `json:"address"`
	Operator string `json:"operator"`
	Value    string `json:"value,omitempty"`
}

// RuleAction is one action of an automation rule (v1 API)
type RuleAction struct {
	Address string         `json:"address"`
	Method  string         `json:"method"`
	Body    map[string]any `json:"body"`
}

// Rule represents a bridge automation rule (v1 API)
type Rule struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Status     string          `json:"status,omitempty"`
	Conditions []RuleCondition `json:"conditions"`
	Actions    []RuleAction    `json:"actions"`
}

// EntertainmentAreaRequest is the payload for creating an entertainment area
type EntertainmentAreaRequest struct {
	Name   string   `json:"name"`
	Lights []string `json:"lights"`
	Type   string   `json:"type"`
	Class  string   `json:"class"`
}
