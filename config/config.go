// Package config builds the immutable settings snapshot the façade is
// constructed from: provider secrets, provider tunables and server options.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeout = 60 * time.Second
	DefaultAddr    = ":8000"
)

// LookupFunc reads a single setting, reporting whether it is present.
type LookupFunc func(key string) (string, bool)

// Config is the immutable settings snapshot shared by every provider.
type Config struct {
	Server Server `yaml:"server"`
	A2E    A2E    `yaml:"a2e"`
	DID    DID    `yaml:"did"`
	HeyGen HeyGen `yaml:"heygen"`
}

// Server holds the HTTP listen address and the per-call provider timeout.
type Server struct {
	Addr    string        `yaml:"addr"`
	Timeout time.Duration `yaml:"timeout"`
}

// A2E holds the A2E credentials and task naming.
type A2E struct {
	Token    string `yaml:"token"`
	BaseURL  string `yaml:"base_url"`
	TaskName string `yaml:"task_name"`
}

// DID holds the D-ID API key.
type DID struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// HeyGen holds the HeyGen key and the avatar, voice and output defaults
// used to build generate requests.
type HeyGen struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	AvatarID    string  `yaml:"avatar_id"`
	VoiceID     string  `yaml:"voice_id"`
	Language    string  `yaml:"language"`
	AvatarStyle string  `yaml:"avatar_style"`
	VoiceSpeed  float64 `yaml:"voice_speed"`
	Width       int     `yaml:"dimension_width"`
	Height      int     `yaml:"dimension_height"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Server: Server{Addr: DefaultAddr, Timeout: DefaultTimeout},
		HeyGen: HeyGen{
			Language:    "en-US",
			AvatarStyle: "normal",
			VoiceSpeed:  1.0,
			Width:       1280,
			Height:      720,
		},
	}
}

// Load reads the optional YAML file at path, falling back to defaults when it
// does not exist, and then applies environment overrides read through lookup.
// A nil lookup reads the process environment.
func Load(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg.applyEnv(lookup)
	cfg.trim()
	return cfg, nil
}

// FromEnv builds the configuration from the environment alone.
func FromEnv(lookup LookupFunc) *Config {
	cfg, _ := Load("", lookup)
	return cfg
}

func (c *Config) applyEnv(lookup LookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	str("VIDFACADE_ADDR", &c.Server.Addr)
	if v, ok := lookup("VIDFACADE_TIMEOUT"); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && d > 0 {
			c.Server.Timeout = d
		}
	}

	str("A2E_TOKEN", &c.A2E.Token)
	str("A2E_BASE_URL", &c.A2E.BaseURL)
	str("A2E_TASK_NAME", &c.A2E.TaskName)

	str("DID_KEY", &c.DID.APIKey)
	str("DID_BASE_URL", &c.DID.BaseURL)

	str("HEYGEN_KEY", &c.HeyGen.APIKey)
	str("HEYGEN_BASE_URL", &c.HeyGen.BaseURL)
	str("HEYGEN_AVATAR_ID", &c.HeyGen.AvatarID)
	str("HEYGEN_VOICE_ID", &c.HeyGen.VoiceID)
	str("HEYGEN_LANGUAGE", &c.HeyGen.Language)
	str("HEYGEN_AVATAR_STYLE", &c.HeyGen.AvatarStyle)

	// Unparseable numbers keep the current value.
	if v, ok := lookup("HEYGEN_VOICE_SPEED"); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			c.HeyGen.VoiceSpeed = f
		}
	}
	if v, ok := lookup("HEYGEN_DIMENSION_WIDTH"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.HeyGen.Width = n
		}
	}
	if v, ok := lookup("HEYGEN_DIMENSION_HEIGHT"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.HeyGen.Height = n
		}
	}
}

// trim strips whitespace that would otherwise end up in request headers.
func (c *Config) trim() {
	for _, s := range []*string{
		&c.Server.Addr,
		&c.A2E.Token, &c.A2E.BaseURL,
		&c.DID.APIKey, &c.DID.BaseURL,
		&c.HeyGen.APIKey, &c.HeyGen.BaseURL, &c.HeyGen.AvatarID, &c.HeyGen.VoiceID,
		&c.HeyGen.Language, &c.HeyGen.AvatarStyle,
	} {
		*s = strings.TrimSpace(*s)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Timeout <= 0 {
		c.Server.Timeout = DefaultTimeout
	}
}
