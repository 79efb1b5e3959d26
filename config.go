package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigDir = ".lexfill"

const defaultRetryDelay = 2 * time.Second

// Embedded configuration defaults
//
//go:embed config/enricher-system-prompt.md
var defaultSystemPrompt string

//go:embed config/settings.yaml
var defaultSettings string

// Settings represents the YAML configuration structure
type Settings struct {
	Backend          string `yaml:"backend"`
	MaxAttempts      int    `yaml:"max_attempts"`
	RetryDelay       string `yaml:"retry_delay"`
	CheckpointPath   string `yaml:"checkpoint_path"`
	OutputPath       string `yaml:"output_path"`
	StrictCheckpoint bool   `yaml:"strict_checkpoint"`
	Backends         struct {
		GPT struct {
			Model       string  `yaml:"model"`
			Temperature float64 `yaml:"temperature"`
			BaseURL     string  `yaml:"base_url"`
		} `yaml:"gpt"`
		Ollama struct {
			Model string `yaml:"model"`
			Host  string `yaml:"host"`
		} `yaml:"ollama"`
	} `yaml:"backends"`
}

// ConfigOverrides allows overriding embedded defaults with file paths
type ConfigOverrides struct {
	PromptPath *string
}

// Config holds settings, overrides and credentials for one run.
type Config struct {
	Settings  *Settings
	Overrides *ConfigOverrides
	APIKey    string
}

// NewConfig loads settings and bundles them with overrides and credentials.
func NewConfig(apiKey string, overrides *ConfigOverrides) (*Config, error) {
	if err := ensureConfigExists(); err != nil {
		return nil, fmt.Errorf("ensuring config files exist: %w", err)
	}

	settings, err := loadSettings()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	return &Config{
		Settings:  settings,
		Overrides: overrides,
		APIKey:    apiKey,
	}, nil
}

// GetSystemPrompt returns the enricher system prompt (from override file or embedded)
func (c *Config) GetSystemPrompt() string {
	if c.Overrides != nil && c.Overrides.PromptPath != nil {
		if content, err := os.ReadFile(*c.Overrides.PromptPath); err == nil {
			return string(content)
		}
	}
	return defaultSystemPrompt
}

// RetryDelay parses the configured delay between retry attempts.
func (c *Config) RetryDelay() time.Duration {
	if c.Settings.RetryDelay == "" {
		return defaultRetryDelay
	}
	d, err := time.ParseDuration(c.Settings.RetryDelay)
	if err != nil || d < 0 {
		return defaultRetryDelay
	}
	return d
}

// Validate checks the configuration before any row is processed.
// A failure here is fatal: the run must not start.
func (c *Config) Validate() error {
	switch c.Settings.Backend {
	case BackendGPT:
		if c.APIKey == "" {
			return fmt.Errorf("API key required for the gpt backend: use --api-key or the OPENAI_API_KEY environment variable")
		}
	case BackendOllama:
		// Reachability of the Ollama daemon is checked when the resolver is built.
	default:
		return fmt.Errorf("unknown backend %q (expected %q or %q)", c.Settings.Backend, BackendGPT, BackendOllama)
	}

	if c.Settings.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be a positive integer, got %d", c.Settings.MaxAttempts)
	}
	if c.Settings.CheckpointPath == "" {
		return fmt.Errorf("checkpoint_path must not be empty")
	}
	return nil
}

// loadSettings loads settings from the default location, falling back to the
// embedded defaults when no settings file exists yet.
func loadSettings() (*Settings, error) {
	settingsPath := getConfigPath("settings.yaml")

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		data = []byte(defaultSettings)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}

	applySettingsDefaults(&settings)
	return &settings, nil
}

// applySettingsDefaults fills zero values left out of a user's settings file.
func applySettingsDefaults(s *Settings) {
	if s.Backend == "" {
		s.Backend = BackendGPT
	}
	if s.MaxAttempts == 0 {
		s.MaxAttempts = 3
	}
	if s.RetryDelay == "" {
		s.RetryDelay = defaultRetryDelay.String()
	}
	if s.CheckpointPath == "" {
		s.CheckpointPath = getConfigPath("checkpoint.csv")
	}
	if s.Backends.GPT.Model == "" {
		s.Backends.GPT.Model = "gpt-4o"
	}
	if s.Backends.Ollama.Model == "" {
		s.Backends.Ollama.Model = "llama3.2"
	}
}

// getConfigPath returns the path to a config file in the .lexfill directory
func getConfigPath(filename string) string {
	return filepath.Join(defaultConfigDir, filename)
}

// ensureConfigExists creates the config directory and default settings file
// if they don't exist, so users have something to customize.
func ensureConfigExists() error {
	if _, err := os.Stat(defaultConfigDir); os.IsNotExist(err) {
		if err := os.MkdirAll(defaultConfigDir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	settingsPath := getConfigPath("settings.yaml")
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := os.WriteFile(settingsPath, []byte(defaultSettings), 0644); err != nil {
			return fmt.Errorf("failed to write default settings: %w", err)
		}
	}

	return nil
}
