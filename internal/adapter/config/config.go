package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Supported LLM providers
const (
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderClaude   = "claude"
	ProviderOllama   = "ollama"
)

// Config is the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Backend  BackendConfig  `yaml:"backend"`
	LLM      LLMConfig      `yaml:"llm"`
	Gemini   VendorConfig   `yaml:"gemini"`
	OpenAI   VendorConfig   `yaml:"openai"`
	DeepSeek VendorConfig   `yaml:"deepseek"`
	Claude   VendorConfig   `yaml:"claude"`
	Ollama   OllamaConfig   `yaml:"ollama"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig is the agent API listener
type ServerConfig struct {
	Host string `yaml:"host" env:"SCHOOLOO_SERVER_HOST"`
	Port int    `yaml:"port" env:"SCHOOLOO_SERVER_PORT"`
}

// BackendConfig covers both the backend client and the bundled backend server
type BackendConfig struct {
	URL            string `yaml:"url" env:"SCHOOLOO_BACKEND_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"SCHOOLOO_BACKEND_TIMEOUT_SECONDS"`
	Host           string `yaml:"host" env:"SCHOOLOO_BACKEND_HOST"`
	Port           int    `yaml:"port" env:"SCHOOLOO_BACKEND_PORT"`
}

// LLMConfig selects the chat provider and sampling parameters
type LLMConfig struct {
	Provider    string  `yaml:"provider" env:"SCHOOLOO_LLM_PROVIDER"`
	Temperature float64 `yaml:"temperature" env:"SCHOOLOO_LLM_TEMPERATURE"`
	TopP        float64 `yaml:"top_p" env:"SCHOOLOO_LLM_TOP_P"`
	MaxTokens   int     `yaml:"max_tokens" env:"SCHOOLOO_LLM_MAX_TOKENS"`
}

// VendorConfig is a hosted model API. Keys should come from the environment.
type VendorConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// OllamaConfig is a local Ollama server
type OllamaConfig struct {
	BaseURL string `yaml:"base_url" env:"SCHOOLOO_OLLAMA_BASE_URL"`
	Model   string `yaml:"model" env:"SCHOOLOO_OLLAMA_MODEL"`
}

// DispatchConfig bounds tool invocation per query
type DispatchConfig struct {
	MaxTools int `yaml:"max_tools" env:"SCHOOLOO_DISPATCH_MAX_TOOLS"`
}

// SessionConfig is session storage
type SessionConfig struct {
	StorageDir   string `yaml:"storage_dir" env:"SCHOOLOO_SESSION_STORAGE_DIR"`
	HistoryTurns int    `yaml:"history_turns" env:"SCHOOLOO_SESSION_HISTORY_TURNS"`
}

// LogConfig is logging
type LogConfig struct {
	Level  string `yaml:"level" env:"SCHOOLOO_LOG_LEVEL"`
	Format string `yaml:"format" env:"SCHOOLOO_LOG_FORMAT"`
}

// MetricsConfig toggles the /metrics endpoint
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"SCHOOLOO_METRICS_ENABLED"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads a YAML file, applies defaults and environment overrides and validates.
// An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	cfg.setDefaults()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}

	if c.Backend.URL == "" {
		c.Backend.URL = "http://localhost:5000/api"
	}
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 10
	}
	if c.Backend.Host == "" {
		c.Backend.Host = "0.0.0.0"
	}
	if c.Backend.Port == 0 {
		c.Backend.Port = 5000
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderGemini
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.LLM.TopP == 0 {
		c.LLM.TopP = 0.95
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 2048
	}

	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.DeepSeek.Model == "" {
		c.DeepSeek.Model = "deepseek-chat"
	}
	if c.DeepSeek.BaseURL == "" {
		c.DeepSeek.BaseURL = "https://api.deepseek.com/v1/"
	}
	if c.Claude.Model == "" {
		c.Claude.Model = "claude-sonnet-4-20250514"
	}
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = "llama3.1"
	}

	if c.Dispatch.MaxTools == 0 {
		c.Dispatch.MaxTools = 1
	}

	if c.Session.StorageDir == "" {
		c.Session.StorageDir = "./data/sessions"
	}
	if c.Session.HistoryTurns == 0 {
		c.Session.HistoryTurns = 10
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// loadFromEnv applies SCHOOLOO_* overrides, then vendor API keys.
// Keys are never expected in the file.
func (c *Config) loadFromEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	if key := firstEnv("GOOGLE_API_KEY", "API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.OpenAI.APIKey = key
	}
	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		c.DeepSeek.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.Claude.APIKey = key
	}
	if url := os.Getenv("BACKEND_URL"); url != "" {
		c.Backend.URL = url
	}

	return nil
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Backend.Port < 1 || c.Backend.Port > 65535 {
		return fmt.Errorf("invalid backend port: %d (must be 1-65535)", c.Backend.Port)
	}

	if c.Backend.URL == "" {
		return fmt.Errorf("backend url is required")
	}
	if !strings.HasPrefix(c.Backend.URL, "http://") && !strings.HasPrefix(c.Backend.URL, "https://") {
		return fmt.Errorf("backend url must be http(s): %s", c.Backend.URL)
	}
	if c.Backend.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid backend timeout: %d", c.Backend.TimeoutSeconds)
	}

	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderDeepSeek, ProviderClaude, ProviderOllama:
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLM.Provider)
	}
	if c.LLM.MaxTokens < 1 {
		return fmt.Errorf("invalid llm max_tokens: %d", c.LLM.MaxTokens)
	}

	if c.Dispatch.MaxTools < 1 {
		return fmt.Errorf("invalid dispatch max_tools: %d (must be >= 1)", c.Dispatch.MaxTools)
	}

	if c.Session.StorageDir == "" {
		return fmt.Errorf("session storage_dir is required")
	}

	switch c.Log.Format {
	case "json", "console", "text":
	default:
		return fmt.Errorf("unknown log format: %s", c.Log.Format)
	}

	return nil
}

// APIKey returns the key for the selected provider. Ollama needs none.
func (c *Config) APIKey() string {
	switch c.LLM.Provider {
	case ProviderGemini:
		return c.Gemini.APIKey
	case ProviderOpenAI:
		return c.OpenAI.APIKey
	case ProviderDeepSeek:
		return c.DeepSeek.APIKey
	case ProviderClaude:
		return c.Claude.APIKey
	}
	return ""
}
