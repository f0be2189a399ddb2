package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LLMConfig holds the settings for the external model endpoint.
type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Config is the runtime configuration for the scan CLI. Values come from a
// YAML file; CLI flags may override individual fields.
type Config struct {
	URLs        []string  `yaml:"urls"`
	WorkerCount int       `yaml:"workers"`
	OutputDir   string    `yaml:"output_dir"`
	CacheDir    string    `yaml:"cache_dir"`
	CacheTTL    string    `yaml:"cache_ttl"`
	LLM         LLMConfig `yaml:"llm"`

	// ShowOrderDetails gates whether order-details/history pages (as opposed
	// to just-placed confirmations) are surfaced at all.
	ShowOrderDetails bool `yaml:"show_order_details"`
}

// DefaultConfig returns the baseline configuration applied before any file
// or flag overrides.
func DefaultConfig() Config {
	return Config{
		WorkerCount: 4,
		OutputDir:   "results",
		CacheDir:    ".cache",
		CacheTTL:    "1h",
		LLM: LLMConfig{
			Endpoint:    "https://generativelanguage.googleapis.com/v1beta/models",
			Model:       "gemini-2.0-flash",
			Temperature: 0.1,
			MaxTokens:   2000,
		},
	}
}

// LoadConfig reads a YAML config file on top of the defaults. A missing file
// is not an error; the defaults are returned unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// CacheTTLDuration parses the configured cache TTL, falling back to one hour
// on a malformed value.
func (c Config) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d < 0 {
		return time.Hour
	}
	return d
}
