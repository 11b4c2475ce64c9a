// Package config provides configuration loading for the library desk tool.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// UserConfigDir is the directory for user-level config, under $HOME.
	UserConfigDir = ".config/librarydesk"
	// UserConfigFile is the name of the user-level config file.
	UserConfigFile = "config.yaml"
)

// Config holds the complete desk configuration.
type Config struct {
	// BaseURL is the root of the library API (e.g. "http://localhost:8000/api").
	BaseURL string `yaml:"base_url"`
	// Timeout bounds every HTTP request.
	Timeout time.Duration `yaml:"timeout"`
	// APIKey, when set, is sent as a bearer token on every request.
	APIKey string `yaml:"api_key"`

	Search SearchConfig `yaml:"search"`
}

// SearchConfig configures the autocomplete search widgets.
type SearchConfig struct {
	// Debounce is the quiet interval before a lookup is dispatched.
	Debounce time.Duration `yaml:"debounce"`
	// MaxResults caps how many suggestions are shown.
	MaxResults int `yaml:"max_results"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:8000/api",
		Timeout: 15 * time.Second,
		Search: SearchConfig{
			Debounce:   300 * time.Millisecond,
			MaxResults: 10,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Search.Debounce <= 0 {
		return fmt.Errorf("search.debounce must be positive")
	}
	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.BaseURL != "" {
		c.BaseURL = other.BaseURL
	}
	if other.Timeout != 0 {
		c.Timeout = other.Timeout
	}
	if other.APIKey != "" {
		c.APIKey = other.APIKey
	}
	if other.Search.Debounce != 0 {
		c.Search.Debounce = other.Search.Debounce
	}
	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
}

// LoadFromFile loads configuration from a YAML file, layered over defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveToFile writes the configuration to a YAML file, creating the parent
// directory if needed.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// UserConfigPath returns the path of the user config file, or "" when the
// home directory cannot be determined.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// Load builds the effective configuration: defaults, then the user config
// file if present, then the explicit file at path if given.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if userPath := UserConfigPath(); userPath != "" {
		if userConfig, err := LoadFromFile(userPath); err == nil {
			config.Merge(userConfig)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		config.Merge(fileConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
