// Package config loads the chat-notify configuration file and turns its
// notification entries into registry values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/Veraticus/chat-notify/pkg/matcher"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: CHAT_NOTIFY_RATE_LIMIT__MAX_MESSAGES sets rate_limit.max_messages.
const EnvPrefix = "CHAT_NOTIFY_"

// Input formats accepted by the monitor.
const (
	InputText = "text"
	InputJSON = "json"
)

// Config holds all configuration for chat-notify.
type Config struct {
	// Alert settings
	NtfyServer string `yaml:"ntfy_server" koanf:"ntfy_server"`
	NtfyTopic  string `yaml:"ntfy_topic" koanf:"ntfy_topic"`
	Quiet      bool   `yaml:"quiet" koanf:"quiet"`

	Self SelfConfig `yaml:"self" koanf:"self"`

	// Notifications in priority order. Entry 0 is the self notification.
	Notifications []NotificationConfig `yaml:"notifications" koanf:"notifications"`

	RateLimit   RateLimitConfig `yaml:"rate_limit" koanf:"rate_limit"`
	BatchWindow time.Duration   `yaml:"batch_window" koanf:"batch_window"`

	// TickDuration is the wall-clock length of one response delay tick.
	TickDuration time.Duration `yaml:"tick_duration" koanf:"tick_duration"`

	HistoryPath string `yaml:"history_path" koanf:"history_path"`
	LogFile     string `yaml:"log_file" koanf:"log_file"`
	InputFormat string `yaml:"input_format" koanf:"input_format"`
}

// SelfConfig describes the local user.
type SelfConfig struct {
	// Names holds the user's name and display name. They become the two
	// reserved triggers of the self notification.
	Names []string `yaml:"names" koanf:"names"`
	// DetectOwnMessages lets the user's own lines trigger notifications.
	DetectOwnMessages bool `yaml:"detect_own_messages" koanf:"detect_own_messages"`
	// OwnMessagePattern marks a plain-text line as sent by the user.
	OwnMessagePattern string `yaml:"own_message_pattern" koanf:"own_message_pattern"`
}

// RateLimitConfig holds alert rate limiting configuration.
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window" koanf:"window"`
	MaxMessages int           `yaml:"max_messages" koanf:"max_messages"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		NtfyServer: "https://ntfy.sh",
		RateLimit: RateLimitConfig{
			Window:      1 * time.Minute,
			MaxMessages: 5,
		},
		BatchWindow:  5 * time.Second,
		TickDuration: 50 * time.Millisecond,
		HistoryPath:  filepath.Join(xdg.DataHome, "chat-notify", "history.db"),
		InputFormat:  InputText,
	}
}

// DefaultNotifications is used when the file defines none.
func DefaultNotifications() []NotificationConfig {
	return []NotificationConfig{
		{
			Name:  "self",
			Color: "#ffc400",
			Bold:  "on",
			Sound: SoundConfig{
				Enabled: true,
				ID:      "entity.experience_orb.pickup",
				Volume:  1,
				Pitch:   1,
			},
		},
	}
}

// Path returns the configuration file location.
func Path() string {
	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		return path
	}
	return filepath.Join(xdg.ConfigHome, "chat-notify", "config.yaml")
}

// Load reads the YAML file at path, if it exists, then overlays CHAT_NOTIFY_*
// environment variables and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if len(cfg.Notifications) == 0 {
		cfg.Notifications = DefaultNotifications()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks scalar settings and every notification entry.
func (c *Config) Validate() error {
	if c.RateLimit.MaxMessages < 0 {
		return fmt.Errorf("rate_limit.max_messages must be non-negative")
	}
	if c.RateLimit.Window < 0 {
		return fmt.Errorf("rate_limit.window must be non-negative")
	}
	if c.BatchWindow < 0 {
		return fmt.Errorf("batch_window must be non-negative")
	}
	if c.TickDuration <= 0 {
		return fmt.Errorf("tick_duration must be positive")
	}

	switch c.InputFormat {
	case InputText, InputJSON:
	default:
		return fmt.Errorf("input_format %q must be %s or %s", c.InputFormat, InputText, InputJSON)
	}

	if len(c.Self.Names) > 2 {
		return fmt.Errorf("self.names holds at most a name and a display name, got %d", len(c.Self.Names))
	}
	if c.Self.OwnMessagePattern != "" {
		if _, err := matcher.CompilePattern(c.Self.OwnMessagePattern); err != nil {
			return fmt.Errorf("self.own_message_pattern: %w", err)
		}
	}

	if _, err := c.BuildNotifications(); err != nil {
		return err
	}
	return nil
}
