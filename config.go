package lettastream

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Default response log path, next to the process working directory.
const DefaultResponseLogPath = "letta_responses.jsonl"

// DefaultBaseURL points at a local Letta server.
const DefaultBaseURL = "http://localhost:8283"

// DisplayToggles controls which event kinds reach the sink. System-level
// and user-level toggles are AND-merged per run: a user can narrow what the
// system permits, never widen it.
type DisplayToggles struct {
	// ShowEvents gates all sink events other than answer increments.
	ShowEvents bool `yaml:"show_events"`

	// ShowReasoning gates reasoning step events.
	ShowReasoning bool `yaml:"show_reasoning"`

	// ShowUsage gates usage statistics events.
	ShowUsage bool `yaml:"show_usage"`
}

// AllDisplayToggles enables every event kind. The zero value disables all.
func AllDisplayToggles() DisplayToggles {
	return DisplayToggles{ShowEvents: true, ShowReasoning: true, ShowUsage: true}
}

// DisplayPolicy is the resolved set of toggles for one run.
type DisplayPolicy struct {
	ShowEvents    bool
	ShowReasoning bool
	ShowUsage     bool
}

// ResolvePolicy AND-merges system and user toggles.
func ResolvePolicy(system, user DisplayToggles) DisplayPolicy {
	return DisplayPolicy{
		ShowEvents:    system.ShowEvents && user.ShowEvents,
		ShowReasoning: system.ShowReasoning && user.ShowReasoning,
		ShowUsage:     system.ShowUsage && user.ShowUsage,
	}
}

// Diagnostics configures the optional append-only capture of every raw
// frame, parsed event, and terminal status.
type Diagnostics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config holds everything a Client needs. Treat values as immutable once a
// Client is built from them: derive changed copies with With, never mutate
// a Config shared with in-flight runs.
type Config struct {
	// BaseURL of the Letta server, without a trailing slash.
	BaseURL string `yaml:"base_url"`

	// AgentID identifies the agent whose stream endpoint is called.
	AgentID string `yaml:"agent_id"`

	// Credential is the shared secret sent in the X-BARE-PASSWORD header.
	Credential string `yaml:"credential"`

	// Display holds the system-level event toggles.
	Display DisplayToggles `yaml:"display"`

	// Diagnostics configures raw/parsed capture for replay.
	Diagnostics Diagnostics `yaml:"diagnostics"`
}

// DefaultConfig returns a config with every display toggle on, pointing at
// a local server.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Display: AllDisplayToggles(),
		Diagnostics: Diagnostics{
			Path: DefaultResponseLogPath,
		},
	}
}

// FromEnv builds a config from LETTA_* environment variables, starting
// from DefaultConfig.
func FromEnv() *Config {
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg
}

// ApplyEnv overlays LETTA_* environment variables onto the config. Unset
// variables leave the existing values untouched, so a file-loaded config
// can be layered under environment overrides. Recognized variables:
//
//	LETTA_BASE_URL, LETTA_AGENT_ID, LETTA_PASSWORD
//	LETTA_SHOW_EVENTS, LETTA_SHOW_REASONING, LETTA_SHOW_USAGE_STATS
//	LETTA_DIAGNOSTICS, LETTA_RESPONSE_LOG_PATH
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LETTA_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("LETTA_AGENT_ID"); v != "" {
		c.AgentID = v
	}
	if v := os.Getenv("LETTA_PASSWORD"); v != "" {
		c.Credential = v
	}
	c.Display.ShowEvents = envBool("LETTA_SHOW_EVENTS", c.Display.ShowEvents)
	c.Display.ShowReasoning = envBool("LETTA_SHOW_REASONING", c.Display.ShowReasoning)
	c.Display.ShowUsage = envBool("LETTA_SHOW_USAGE_STATS", c.Display.ShowUsage)
	c.Diagnostics.Enabled = envBool("LETTA_DIAGNOSTICS", c.Diagnostics.Enabled)
	if v := os.Getenv("LETTA_RESPONSE_LOG_PATH"); v != "" {
		c.Diagnostics.Path = v
	}
}

// LoadConfigFile reads a YAML config file over DefaultConfig.
func LoadConfigFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the config can drive a run.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.AgentID == "" {
		return ErrMissingAgentID
	}
	if c.Credential == "" {
		return ErrMissingCredential
	}
	if c.Diagnostics.Enabled && c.Diagnostics.Path == "" {
		return ErrMissingLogPath
	}
	return nil
}

// With returns a modified copy, leaving the receiver untouched. Runs built
// from the original config keep seeing the original values.
func (c *Config) With(mutate func(*Config)) *Config {
	next := *c
	mutate(&next)
	return &next
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
