// Package config provides unified configuration for the intelligence core.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/intelcore/intelcore/pkg/types"
)

// Config holds the unified configuration for the intelligence core.
type Config struct {
	// DataDir is the base directory for all data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// DryRun prints briefings instead of delivering them
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	// Bridge configuration (collection and delivery boundary)
	Bridge BridgeConfig `json:"bridge" yaml:"bridge"`

	// Reasoning configuration (Anthropic boundary)
	Reasoning ReasoningConfig `json:"reasoning" yaml:"reasoning"`

	// Collection cycle configuration
	Collection CollectionConfig `json:"collection" yaml:"collection"`

	// Synthesis cycle configuration
	Synthesis SynthesisConfig `json:"synthesis" yaml:"synthesis"`

	// HTTP admin server configuration
	HTTP HTTPConfig `json:"http" yaml:"http"`

	// Domains is the ordered classification rule table
	Domains []types.DomainRule `json:"domains" yaml:"domains"`
}

// BridgeConfig holds WhatsApp bridge configuration.
type BridgeConfig struct {
	// URL is the base URL of the bridge REST API
	URL string `json:"url" yaml:"url"`

	// APIKey is sent as X-API-Key on every bridge request
	APIKey string `json:"api_key" yaml:"api_key"`

	// Recipient is the phone number briefings are delivered to
	Recipient string `json:"recipient" yaml:"recipient"`

	// Timeout bounds every bridge call
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ReasoningConfig holds reasoning-boundary configuration.
type ReasoningConfig struct {
	// APIKey is the Anthropic API key (usually from ANTHROPIC_API_KEY)
	APIKey string `json:"-" yaml:"-"`

	// Model is the model identifier used for synthesis
	Model string `json:"model" yaml:"model"`

	// MaxTokens caps the response length
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Timeout bounds the reasoning call
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// CollectionConfig holds collection cycle configuration.
type CollectionConfig struct {
	// Interval is the time between collection sweeps
	Interval time.Duration `json:"interval" yaml:"interval"`

	// BootstrapHours is the lookback used when no cursor exists yet
	BootstrapHours int `json:"bootstrap_hours" yaml:"bootstrap_hours"`
}

// SynthesisConfig holds synthesis cycle configuration.
type SynthesisConfig struct {
	// Hour is the UTC wall-clock hour of the daily synthesis run
	Hour int `json:"hour" yaml:"hour"`

	// LookbackHours is the event window fed into each synthesis run
	LookbackHours int `json:"lookback_hours" yaml:"lookback_hours"`

	// MaxMessageLen is the delivery part-size cap in characters
	MaxMessageLen int `json:"max_message_len" yaml:"max_message_len"`
}

// HTTPConfig holds admin HTTP server configuration.
type HTTPConfig struct {
	// Enabled controls whether the admin server runs
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Addr is the listen address
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout is the HTTP read timeout
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the HTTP write timeout
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the HTTP idle timeout
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/intelcore",
		DryRun:  false,
		Bridge: BridgeConfig{
			URL:     "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		Reasoning: ReasoningConfig{
			Model:     "claude-sonnet-4-5-20250929",
			MaxTokens: 4096,
			Timeout:   60 * time.Second,
		},
		Collection: CollectionConfig{
			Interval:       30 * time.Minute,
			BootstrapHours: 48,
		},
		Synthesis: SynthesisConfig{
			Hour:          4,
			LookbackHours: 48,
			MaxMessageLen: 4000,
		},
		HTTP: HTTPConfig{
			Enabled:      true,
			Addr:         ":8090",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Domains: DefaultDomains(),
	}
}

// DefaultDomains returns the built-in classification rule table.
func DefaultDomains() []types.DomainRule {
	return []types.DomainRule{
		{
			Name:         "bi_branch",
			People:       []string{"patrick", "henry", "reagan"},
			EmailDomains: []string{"bibranch.co.za"},
			Keywords:     []string{"ecv", "dayone", "day one", "bi branch", "bibranch"},
			OrgFile:      "bi-branch.md",
		},
		{
			Name:         "platform45",
			People:       []string{"maro", "justin", "shaun", "wayne"},
			EmailDomains: []string{"platform45.com"},
			Channels:     []string{"yebo", "readygolf", "hagglz", "carma"},
			Keywords:     []string{"yebo", "carma", "readygolf", "ready golf", "hagglz", "p45", "platform45", "platform 45"},
			OrgFile:      "platform45.md",
		},
	}
}

// EventsDBPath returns the path to the event log database.
func (c *Config) EventsDBPath() string {
	return filepath.Join(c.DataDir, "events.db")
}

// MemoryDir returns the root directory of the memory bank.
func (c *Config) MemoryDir() string {
	return filepath.Join(c.DataDir, "memory")
}

// CursorPath returns the path to the collection cursor file.
func (c *Config) CursorPath() string {
	return filepath.Join(c.MemoryDir(), "system", "collection_state.json")
}

// Resolve fills in defaults for fields left empty by partial configs.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/intelcore"
	}
	if c.Bridge.Timeout == 0 {
		c.Bridge.Timeout = 30 * time.Second
	}
	if c.Reasoning.Timeout == 0 {
		c.Reasoning.Timeout = 60 * time.Second
	}
	if c.Reasoning.Model == "" {
		c.Reasoning.Model = "claude-sonnet-4-5-20250929"
	}
	if c.Reasoning.MaxTokens == 0 {
		c.Reasoning.MaxTokens = 4096
	}
	if c.Collection.Interval == 0 {
		c.Collection.Interval = 30 * time.Minute
	}
	if c.Collection.BootstrapHours == 0 {
		c.Collection.BootstrapHours = 48
	}
	if c.Synthesis.LookbackHours == 0 {
		c.Synthesis.LookbackHours = 48
	}
	if c.Synthesis.MaxMessageLen == 0 {
		c.Synthesis.MaxMessageLen = 4000
	}
	if len(c.Domains) == 0 {
		c.Domains = DefaultDomains()
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Bridge.URL == "" {
		return fmt.Errorf("bridge.url is required")
	}
	if c.Synthesis.Hour < 0 || c.Synthesis.Hour > 23 {
		return fmt.Errorf("synthesis.hour must be between 0 and 23, got %d", c.Synthesis.Hour)
	}
	if c.Synthesis.LookbackHours < 1 {
		return fmt.Errorf("synthesis.lookback_hours must be positive, got %d", c.Synthesis.LookbackHours)
	}
	if c.Synthesis.MaxMessageLen < 100 {
		return fmt.Errorf("synthesis.max_message_len must be at least 100, got %d", c.Synthesis.MaxMessageLen)
	}
	if c.Collection.Interval < time.Minute {
		return fmt.Errorf("collection.interval must be at least 1m, got %v", c.Collection.Interval)
	}
	for i, d := range c.Domains {
		if d.Name == "" {
			return fmt.Errorf("domains[%d].name is required", i)
		}
	}
	return nil
}

// EnsureDirectories creates the data and memory directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.MemoryDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the INTELCORE_ prefix, except the Anthropic
// key which follows the SDK convention.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("INTELCORE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("INTELCORE_DRY_RUN"); v != "" {
		cfg.DryRun = v == "true" || v == "1" || v == "yes"
	}

	// Bridge configuration
	if v := os.Getenv("INTELCORE_BRIDGE_URL"); v != "" {
		cfg.Bridge.URL = v
	}
	if v := os.Getenv("INTELCORE_BRIDGE_API_KEY"); v != "" {
		cfg.Bridge.APIKey = v
	}
	if v := os.Getenv("INTELCORE_RECIPIENT"); v != "" {
		cfg.Bridge.Recipient = v
	}

	// Reasoning configuration
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Reasoning.APIKey = v
	}
	if v := os.Getenv("INTELCORE_MODEL"); v != "" {
		cfg.Reasoning.Model = v
	}

	// Cycle configuration
	if v := os.Getenv("INTELCORE_SUMMARY_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Synthesis.Hour = n
		}
	}
	if v := os.Getenv("INTELCORE_LOOKBACK_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Synthesis.LookbackHours = n
		}
	}
	if v := os.Getenv("INTELCORE_COLLECT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Collection.Interval = d
		}
	}

	// HTTP configuration
	if v := os.Getenv("INTELCORE_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("INTELCORE_HTTP_ENABLED"); v != "" {
		cfg.HTTP.Enabled = v == "true" || v == "1"
	}
}
