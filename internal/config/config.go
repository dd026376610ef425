package config

import (
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server          ServerConfig   `yaml:"server"`
	Bridge          BridgeConfig   `yaml:"bridge"`
	WLED            DevicesConfig  `yaml:"wled"`
	Yeelight        DevicesConfig  `yaml:"yeelight"`
	Database        DatabaseConfig `yaml:"database"`
	Log             LogConfig      `yaml:"log"`
	Poll            PollConfig     `yaml:"poll"`
	Wizard          WizardConfig   `yaml:"wizard"`
	EventBus        EventBusConfig `yaml:"eventbus"`
	ShutdownTimeout Duration       `yaml:"shutdown_timeout"` // General shutdown timeout for graceful stops
}

// ServerConfig contains settings for the panel HTTP/WebSocket server
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"` // Allowed origins for the browser frontend
	BodyLimit   string   `yaml:"body_limit"`   // Request body limit (echo format, e.g. "2M")
}

// BridgeConfig contains lighting-bridge connection settings
type BridgeConfig struct {
	Address string   `yaml:"address"`
	Token   string   `yaml:"token"`
	Timeout Duration `yaml:"timeout"` // HTTP timeout for bridge API requests

	// Event stream reconnect settings
	MinRetryBackoff Duration `yaml:"min_retry_backoff"` // Minimum backoff between reconnects (default: 1s)
	MaxRetryBackoff Duration `yaml:"max_retry_backoff"` // Maximum backoff between reconnects (default: 2m)
	RetryMultiplier float64  `yaml:"retry_multiplier"`  // Backoff multiplier (default: 2.0)
	MaxReconnects   int      `yaml:"max_reconnects"`    // Max reconnect attempts, 0 = infinite (default: 0)
}

// DeviceConfig identifies a standalone device (WLED or Yeelight) by address
type DeviceConfig struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

// DevicesConfig contains settings for a family of standalone devices
type DevicesConfig struct {
	Devices []DeviceConfig `yaml:"devices"`
	Timeout Duration       `yaml:"timeout"` // HTTP timeout for device requests
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	UseJSON bool   `yaml:"json"`
	Colors  bool   `yaml:"colors"`
}

// GetLevel returns the configured log level with default
func (c *LogConfig) GetLevel() string {
	if c.Level == "" {
		return "info"
	}
	return c.Level
}

// PollConfig contains fixed-interval refresh settings for bridge resources
type PollConfig struct {
	SensorsInterval Duration `yaml:"sensors_interval"` // Sensor refresh interval (default: 10s)
	GroupsInterval  Duration `yaml:"groups_interval"`  // Group refresh interval (default: 10s)
}

// WizardConfig contains wizard session lifecycle settings
type WizardConfig struct {
	SessionTTL      Duration `yaml:"session_ttl"`      // Idle time before an abandoned session is dropped
	CleanupInterval Duration `yaml:"cleanup_interval"` // How often expired sessions are collected
}

// EventBusConfig contains event bus settings
type EventBusConfig struct {
	Workers   int `yaml:"workers"`    // Number of worker goroutines (default: 4)
	QueueSize int `yaml:"queue_size"` // Event queue size (default: 100)
}

// GetWorkers returns worker count with default
func (c *EventBusConfig) GetWorkers() int {
	if c.Workers <= 0 {
		return 4
	}
	return c.Workers
}

// GetQueueSize returns queue size with default
func (c *EventBusConfig) GetQueueSize() int {
	if c.QueueSize <= 0 {
		return 100
	}
	return c.QueueSize
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.BodyLimit == "" {
		cfg.Server.BodyLimit = "2M"
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "./lightpanel.sqlite"
	}

	// Bridge defaults
	if cfg.Bridge.Timeout == 0 {
		cfg.Bridge.Timeout = Duration(30 * time.Second)
	}
	if cfg.Bridge.MinRetryBackoff == 0 {
		cfg.Bridge.MinRetryBackoff = Duration(1 * time.Second)
	}
	if cfg.Bridge.MaxRetryBackoff == 0 {
		cfg.Bridge.MaxRetryBackoff = Duration(2 * time.Minute)
	}
	if cfg.Bridge.RetryMultiplier == 0 {
		cfg.Bridge.RetryMultiplier = 2.0
	}
	// MaxReconnects defaults to 0 (infinite), no need to set

	// Device defaults
	if cfg.WLED.Timeout == 0 {
		cfg.WLED.Timeout = Duration(10 * time.Second)
	}
	if cfg.Yeelight.Timeout == 0 {
		cfg.Yeelight.Timeout = Duration(10 * time.Second)
	}

	// Poll defaults
	if cfg.Poll.SensorsInterval == 0 {
		cfg.Poll.SensorsInterval = Duration(10 * time.Second)
	}
	if cfg.Poll.GroupsInterval == 0 {
		cfg.Poll.GroupsInterval = Duration(10 * time.Second)
	}

	// Wizard session defaults
	if cfg.Wizard.SessionTTL == 0 {
		cfg.Wizard.SessionTTL = Duration(30 * time.Minute)
	}
	if cfg.Wizard.CleanupInterval == 0 {
		cfg.Wizard.CleanupInterval = Duration(5 * time.Minute)
	}

	// General shutdown timeout
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(5 * time.Second)
	}

	return &cfg, nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	// Match ${VAR} or ${VAR:default}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}

// ExpandEnvString expands a single string with environment variables
func ExpandEnvString(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return expandEnvVars(s)
	}
	return s
}
