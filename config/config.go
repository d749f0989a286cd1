package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	DefaultInstructionsDir = "instructions"
	DefaultMenuTTLMinutes  = 30
)

// Config is the process-lifetime configuration, loaded once at startup.
// The key names mirror the deployed config files, so they stay as-is.
type Config struct {
	APIToken       string                `json:"api-token"`
	OpenerURL      string                `json:"opener_url"`
	OpenerUser     string                `json:"opener_user"`
	OpenerPassword string                `json:"opener_password"`
	Users          map[string]UserConfig `json:"users"`

	SessionsDir     string         `json:"sessions_dir,omitempty"`
	InstructionsDir string         `json:"instructions_dir,omitempty"`
	MenuTTLMinutes  int            `json:"menu_ttl_minutes,omitempty"`
	Telegram        TelegramConfig `json:"telegram,omitempty"`
}

// UserConfig is one allow-list entry, keyed by phone number. An empty
// section means the resident is not bound to any intercom section.
type UserConfig struct {
	Section string `json:"section,omitempty"`
}

type TelegramConfig struct {
	// BaseURL overrides the Telegram API endpoint (used in tests).
	BaseURL        string `json:"base_url,omitempty"`
	PollTimeoutSec int    `json:"poll_timeout_sec,omitempty"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.APIToken) == "" {
		return fmt.Errorf("api-token is empty")
	}
	if strings.TrimSpace(c.OpenerURL) == "" {
		return fmt.Errorf("opener_url is empty")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Users == nil {
		c.Users = map[string]UserConfig{}
	}
	if strings.TrimSpace(c.InstructionsDir) == "" {
		c.InstructionsDir = DefaultInstructionsDir
	}
	if c.MenuTTLMinutes <= 0 {
		c.MenuTTLMinutes = DefaultMenuTTLMinutes
	}
}
