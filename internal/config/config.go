// Package config assembles the explicit configuration value handed to every
// component of a run: an optional YAML file, then .env, then the process
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"

	"github.com/zapissues/zapissues/internal/ai"
	"github.com/zapissues/zapissues/internal/deduplication"
	"github.com/zapissues/zapissues/internal/extract"
	"github.com/zapissues/zapissues/internal/records"
	"github.com/zapissues/zapissues/internal/synthesis"
	"github.com/zapissues/zapissues/internal/tracker"
)

// DefaultReportPath is the report read when none is given
const DefaultReportPath = "zap-report.html"

// DefaultEnvFile is loaded when present and no other file is named
const DefaultEnvFile = ".env"

// GitHubConfig locates the target repository
type GitHubConfig struct {
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	Token  string `yaml:"token,omitempty"`
	APIURL string `yaml:"api_url,omitempty"`
}

// AIConfig selects the completion provider
type AIConfig struct {
	// Provider: "anthropic" (default), "gemini" or "openrouter"
	Provider string `yaml:"provider"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// Config is the complete configuration of one run
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	AI     AIConfig     `yaml:"ai"`

	// Report is the path of the ZAP HTML report
	Report string `yaml:"report"`

	// RecordsPath is where extracted records are persisted
	RecordsPath string `yaml:"records_path"`

	ExtractionMode extract.Mode   `yaml:"extraction_mode"`
	SynthesisMode  synthesis.Mode `yaml:"synthesis_mode"`

	Dedup deduplication.Config `yaml:"dedup"`
}

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() Config {
	return Config{
		AI:             AIConfig{Provider: ai.ProviderAnthropic},
		Report:         DefaultReportPath,
		RecordsPath:    records.DefaultPath,
		ExtractionMode: extract.ModeStructural,
		SynthesisMode:  synthesis.ModeAuto,
		Dedup:          deduplication.DefaultConfig(),
	}
}

// Load reads a YAML configuration file on top of the defaults
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing YAML: %w", err)
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is an error
// only when required is true.
func LoadEnvFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("reading env file: %w", err)
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables
//
// Environment variables:
//   - GITHUB_OWNER, GITHUB_REPO, GITHUB_TOKEN, GITHUB_API_URL
//   - ZAPISSUES_AI_PROVIDER, ZAPISSUES_AI_MODEL
//   - ANTHROPIC_API_KEY, GEMINI_API_KEY, OPENAI_API_KEY (OpenRouter): the key of the selected provider
//   - ZAPISSUES_REPORT, ZAPISSUES_RECORDS_PATH
//   - ZAPISSUES_EXTRACTION_MODE, ZAPISSUES_SYNTHESIS_MODE
//   - ZAPISSUES_DEDUP_WINDOW, ZAPISSUES_DEDUP_THRESHOLD
func (c *Config) ApplyEnv() error {
	setFromEnv("GITHUB_OWNER", &c.GitHub.Owner)
	setFromEnv("GITHUB_REPO", &c.GitHub.Repo)
	setFromEnv("GITHUB_TOKEN", &c.GitHub.Token)
	setFromEnv("GITHUB_API_URL", &c.GitHub.APIURL)

	setFromEnv("ZAPISSUES_AI_PROVIDER", &c.AI.Provider)
	setFromEnv("ZAPISSUES_AI_MODEL", &c.AI.Model)
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		c.AI.Provider = ai.ProviderAnthropic
	}
	if key := apiKeyEnv(c.AI.Provider); key != "" {
		setFromEnv(key, &c.AI.APIKey)
	}

	setFromEnv("ZAPISSUES_REPORT", &c.Report)
	setFromEnv("ZAPISSUES_RECORDS_PATH", &c.RecordsPath)

	if v := os.Getenv("ZAPISSUES_EXTRACTION_MODE"); v != "" {
		mode, err := extract.ParseMode(v)
		if err != nil {
			return fmt.Errorf("invalid value for ZAPISSUES_EXTRACTION_MODE: %w", err)
		}
		c.ExtractionMode = mode
	}
	if v := os.Getenv("ZAPISSUES_SYNTHESIS_MODE"); v != "" {
		mode, err := synthesis.ParseMode(v)
		if err != nil {
			return fmt.Errorf("invalid value for ZAPISSUES_SYNTHESIS_MODE: %w", err)
		}
		c.SynthesisMode = mode
	}

	return c.Dedup.ApplyEnv()
}

// apiKeyEnv names the environment variable holding the key of provider
func apiKeyEnv(provider string) string {
	switch provider {
	case ai.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ai.ProviderGemini:
		return "GEMINI_API_KEY"
	case ai.ProviderOpenRouter:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

func setFromEnv(key string, dest *string) {
	if v := os.Getenv(key); v != "" {
		*dest = v
	}
}

// NeedsAI reports whether a configured mode always requires a completion provider
func (c Config) NeedsAI() bool {
	return c.ExtractionMode == extract.ModeAssisted || c.SynthesisMode == synthesis.ModeAssisted
}

// HasAI reports whether a completion provider can be built
func (c Config) HasAI() bool {
	return c.AI.APIKey != ""
}

// Validate checks mode, provider and dedup settings. Tracker credentials are
// checked separately by ValidateTracker since extraction alone does not need them.
func (c Config) Validate() error {
	if !c.ExtractionMode.IsValid() {
		return fmt.Errorf("invalid extraction mode: %q", c.ExtractionMode)
	}
	if !c.SynthesisMode.IsValid() {
		return fmt.Errorf("invalid synthesis mode: %q", c.SynthesisMode)
	}
	if apiKeyEnv(c.AI.Provider) == "" {
		return fmt.Errorf("unknown AI provider: %q (want anthropic, gemini or openrouter)", c.AI.Provider)
	}
	if c.NeedsAI() && !c.HasAI() {
		return fmt.Errorf("%s must be set for assisted mode: %w", apiKeyEnv(c.AI.Provider), ai.ErrNoAPIKey)
	}
	if strings.TrimSpace(c.RecordsPath) == "" {
		return fmt.Errorf("records path is required")
	}
	if err := c.Dedup.Validate(); err != nil {
		return fmt.Errorf("dedup: %w", err)
	}
	return nil
}

// ValidateTracker checks that the tracker can be reached
func (c Config) ValidateTracker() error {
	return c.TrackerConfig().Validate()
}

// TrackerConfig returns the tracker client configuration
func (c Config) TrackerConfig() tracker.GitHubConfig {
	return tracker.GitHubConfig{
		Owner:   c.GitHub.Owner,
		Repo:    c.GitHub.Repo,
		Token:   c.GitHub.Token,
		BaseURL: c.GitHub.APIURL,
	}
}

// CompleterConfig returns the completion provider configuration
func (c Config) CompleterConfig() ai.Config {
	return ai.Config{
		Provider: c.AI.Provider,
		APIKey:   c.AI.APIKey,
		Model:    c.AI.Model,
		BaseURL:  c.AI.BaseURL,
	}
}
