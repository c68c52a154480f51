package deduplication

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds configuration for the duplicate detector
type Config struct {
	// Window is the number of most recently created open issues to compare against.
	// Default: 10
	Window int `yaml:"window"`

	// Threshold is the body similarity (0.0-1.0) a pair must exceed to be a duplicate.
	// The bound is exclusive: a score equal to the threshold is not a duplicate.
	// Default: 0.8
	Threshold float64 `yaml:"threshold"`

	// MaxCompareRunes caps how many leading runes of each normalized body are scored.
	// Edit distance is quadratic in body length, so long bodies are clipped first.
	// Default: 2000
	MaxCompareRunes int `yaml:"max_compare_runes"`
}

// DefaultConfig returns the default detector configuration
func DefaultConfig() Config {
	return Config{
		Window:          10,
		Threshold:       0.8,
		MaxCompareRunes: 2000,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive (got %d)", c.Window)
	}
	if c.Window > 100 {
		return fmt.Errorf("window too large (got %d, max 100)", c.Window)
	}
	if c.Threshold < 0.0 || c.Threshold > 1.0 {
		return fmt.Errorf("threshold must be between 0.0 and 1.0 (got %.2f)", c.Threshold)
	}
	if c.MaxCompareRunes <= 0 {
		return fmt.Errorf("max_compare_runes must be positive (got %d)", c.MaxCompareRunes)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	return fmt.Sprintf("Config{Window: %d, Threshold: %.2f, MaxCompareRunes: %d}",
		c.Window, c.Threshold, c.MaxCompareRunes)
}

// ApplyEnv overrides fields from environment variables
//
// Environment variables:
//   - ZAPISSUES_DEDUP_WINDOW: Number of recent open issues to compare against
//   - ZAPISSUES_DEDUP_THRESHOLD: Exclusive body similarity threshold (0.0-1.0)
//   - ZAPISSUES_DEDUP_MAX_COMPARE_RUNES: Leading body runes scored per comparison
func (c *Config) ApplyEnv() error {
	if err := parseEnvInt("ZAPISSUES_DEDUP_WINDOW", &c.Window); err != nil {
		return err
	}
	if err := parseEnvFloat("ZAPISSUES_DEDUP_THRESHOLD", &c.Threshold); err != nil {
		return err
	}
	if err := parseEnvInt("ZAPISSUES_DEDUP_MAX_COMPARE_RUNES", &c.MaxCompareRunes); err != nil {
		return err
	}
	return nil
}

// ConfigFromEnv creates a Config from environment variables, falling back to defaults.
// Returns an error if any environment variable has an invalid value.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration from environment: %w", err)
	}
	return cfg, nil
}

// parseEnvFloat parses a float64 from an environment variable
func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
