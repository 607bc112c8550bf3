package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Supported generation providers.
const (
	ProviderKie     = "kie"
	ProviderSunoapi = "sunoapi.org"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Provider ProviderConfig `toml:"provider"`
	Credits  CreditsConfig  `toml:"credits"`
	Database DatabaseConfig `toml:"database"`
	Polling  PollingConfig  `toml:"polling"`
}

// ProviderConfig selects the upstream generation API and carries its credentials.
//
// The gateway receives this object at construction time; nothing reads
// provider settings ambiently after startup.
type ProviderConfig struct {
	Name       string `toml:"name"` // "kie" or "sunoapi.org"
	APIKey     string `toml:"api_key"`
	KieURL     string `toml:"kie_url"`
	SunoapiURL string `toml:"sunoapi_url"`
}

// BaseURL returns the API base URL for the configured provider.
func (p ProviderConfig) BaseURL() string {
	if p.Name == ProviderSunoapi {
		return p.SunoapiURL
	}
	return p.KieURL
}

// Validate checks that the provider selection is usable.
func (p ProviderConfig) Validate() error {
	if p.Name != ProviderKie && p.Name != ProviderSunoapi {
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, p.Name)
	}
	if p.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// CreditsConfig contains the local credit accounting policy.
//
// Balances are tracked client-side only; the provider is never consulted.
type CreditsConfig struct {
	KieBalance        int  `toml:"kie_balance"`
	SunoapiBalance    int  `toml:"sunoapi_balance"`
	CostPerGeneration int  `toml:"cost_per_generation"`
	RefundOnFailure   bool `toml:"refund_on_failure"`
}

// InitialBalance returns the starting credit balance for the given provider.
func (c CreditsConfig) InitialBalance(provider string) int {
	if provider == ProviderSunoapi {
		return c.SunoapiBalance
	}
	return c.KieBalance
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PollingConfig controls the task poll cadence and retry budget.
type PollingConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
	MaxAttempts     int `toml:"max_attempts"`
}

// Interval returns the poll interval as a [time.Duration].
func (p PollingConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
