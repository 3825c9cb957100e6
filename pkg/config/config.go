// Package config provides configuration loading and validation for the
// context engine. It handles YAML config files with environment variable
// overrides for API keys.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
)

// Default token budgets and engine limits.
const (
	DefaultModel                  = "gpt-4o"
	DefaultAvailableMessageTokens = 2000
	DefaultModuleTokenBudget      = 1200
	DefaultMaxResponseTokens      = 500
)

// Classifier provider constants.
const (
	ClassifierKeyword   = "keyword"
	ClassifierOpenAI    = "openai"
	ClassifierAnthropic = "anthropic"
)

// BudgetConfig holds the token budgets governing context assembly.
type BudgetConfig struct {
	AvailableMessageTokens int `yaml:"available_message_tokens"` // Budget for conversation history
	ModuleTokenBudget      int `yaml:"module_token_budget"`      // Budget for context modules
	MaxResponseTokens      int `yaml:"max_response_tokens"`      // Reserved for the model reply
}

// ClassifierConfig selects and configures the intent classifier.
type ClassifierConfig struct {
	Provider string `yaml:"provider"` // "keyword", "openai", or "anthropic"
	Model    string `yaml:"model"`    // Provider model name, empty for provider default
	APIKey   string `yaml:"api_key"`  // Overridden by env when empty
}

// StorageConfig holds file paths for the engine's SQLite databases.
type StorageConfig struct {
	SessionDBPath   string `yaml:"session_db_path"`   // Session persistence, empty disables
	KnowledgeDBPath string `yaml:"knowledge_db_path"` // Knowledge base, empty disables
}

// Config represents the full engine configuration.
type Config struct {
	Model      string           `yaml:"model"` // Tokenizer model name
	Budgets    BudgetConfig     `yaml:"budgets"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Storage    StorageConfig    `yaml:"storage"`
	Bot        chat.BotConfig   `yaml:"bot"`
	Metrics    bool             `yaml:"metrics"` // Enable Prometheus recording
}

// Default returns a configuration with all defaults applied and the
// keyword classifier selected.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads, parses, and validates a YAML config file. Missing budget
// fields fall back to defaults; API keys fall back to environment
// variables.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Budgets.AvailableMessageTokens == 0 {
		c.Budgets.AvailableMessageTokens = DefaultAvailableMessageTokens
	}
	if c.Budgets.ModuleTokenBudget == 0 {
		c.Budgets.ModuleTokenBudget = DefaultModuleTokenBudget
	}
	if c.Budgets.MaxResponseTokens == 0 {
		c.Budgets.MaxResponseTokens = DefaultMaxResponseTokens
	}
	if c.Classifier.Provider == "" {
		c.Classifier.Provider = ClassifierKeyword
	}
	if c.Classifier.APIKey == "" {
		c.Classifier.APIKey = apiKeyFromEnv(c.Classifier.Provider)
	}
	if c.Bot.BotName == "" {
		c.Bot.BotName = "Assistant"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Budgets.AvailableMessageTokens < 0 {
		return fmt.Errorf("available_message_tokens must be non-negative, got %d", c.Budgets.AvailableMessageTokens)
	}
	if c.Budgets.ModuleTokenBudget < 0 {
		return fmt.Errorf("module_token_budget must be non-negative, got %d", c.Budgets.ModuleTokenBudget)
	}
	if c.Budgets.MaxResponseTokens < 0 {
		return fmt.Errorf("max_response_tokens must be non-negative, got %d", c.Budgets.MaxResponseTokens)
	}
	switch c.Classifier.Provider {
	case ClassifierKeyword, ClassifierOpenAI, ClassifierAnthropic:
	default:
		return fmt.Errorf("unknown classifier provider %q", c.Classifier.Provider)
	}
	if c.Classifier.Provider != ClassifierKeyword && c.Classifier.APIKey == "" {
		return fmt.Errorf("classifier provider %q requires an API key", c.Classifier.Provider)
	}
	return nil
}

func apiKeyFromEnv(provider string) string {
	switch provider {
	case ClassifierOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ClassifierAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}
