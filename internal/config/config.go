// Package config loads and manages personabot configuration.
// Configuration source priority (highest to lowest):
// 1. Environment variables (PERSONABOT_PROVIDER, OPENAI_API_KEY, PUSHOVER_TOKEN, etc.)
// 2. Config file path specified via --config flag
// 3. ./personabot.yaml
// 4. ~/.config/personabot/config.yaml
//
// A .env file in the working directory is loaded first with override
// semantics, so the env vars above may come from there.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed providers_default.yaml
var defaultProvidersYAML []byte

// ProviderDefaults holds the default base URL and model for a provider.
type ProviderDefaults struct {
	BaseURL      string `yaml:"base_url"`
	DefaultModel string `yaml:"default_model"`
}

// LoadProviderDefaults parses the embedded defaults and merges any user
// overrides from ~/.config/personabot/providers.yaml.
func LoadProviderDefaults() map[string]ProviderDefaults {
	defs := make(map[string]ProviderDefaults)
	_ = yaml.Unmarshal(defaultProvidersYAML, &defs)

	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, ".config", "personabot", "providers.yaml")
		if data, err := os.ReadFile(userPath); err == nil {
			userDefs := make(map[string]ProviderDefaults)
			if yaml.Unmarshal(data, &userDefs) == nil {
				for name, ud := range userDefs {
					d := defs[name]
					if ud.BaseURL != "" {
						d.BaseURL = ud.BaseURL
					}
					if ud.DefaultModel != "" {
						d.DefaultModel = ud.DefaultModel
					}
					defs[name] = d
				}
			}
		}
	}
	return defs
}

// ProviderConfig holds configuration for a single provider.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// PersonaConfig identifies the person the chatbot speaks as, and the
// files the system prompt is built from.
type PersonaConfig struct {
	// Name is the full name used throughout the system prompt.
	Name string `yaml:"name"`

	// SummaryPath is the plain-text background summary, read once at startup.
	SummaryPath string `yaml:"summary_path"`

	// ResumePath is the resume PDF whose page text becomes the bio.
	ResumePath string `yaml:"resume_path"`
}

// PushoverConfig holds credentials for the push-notification webhook.
// All three values normally come from the .env file (PUSHOVER_TOKEN,
// PUSHOVER_USER, PUSHOVER_URL). An empty URL disables delivery.
type PushoverConfig struct {
	Token string `yaml:"token"`
	User  string `yaml:"user"`
	URL   string `yaml:"url"`
}

// ServerConfig holds web chat UI server settings.
type ServerConfig struct {
	// Listen is the host:port to bind. Port 0 picks a free ephemeral port.
	Listen string `yaml:"listen"`

	// RequestTimeoutSec bounds a single chat turn, model retries included.
	RequestTimeoutSec int `yaml:"request_timeout_sec"`

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int `yaml:"max_body_bytes"`
}

// SessionConfig holds conversation persistence settings.
type SessionConfig struct {
	// DBPath is the sqlite file for session transcripts.
	// Empty = keep sessions in memory only.
	DBPath string `yaml:"db_path"`
}

// ToolsConfig holds tool execution settings.
type ToolsConfig struct {
	// TimeoutSec bounds a single tool execution.
	TimeoutSec int `yaml:"timeout_sec"`

	// MaxOutputBytes caps tool output returned to the model.
	MaxOutputBytes int `yaml:"max_output_bytes"`
}

// GraphConfig holds settings for the graph demo command.
type GraphConfig struct {
	// Model overrides the model used by the graph's LLM node.
	Model string `yaml:"model"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the complete configuration structure for personabot.
type Config struct {
	// Provider is the active provider name (e.g. "openai", "anthropic", "deepseek")
	Provider string `yaml:"provider"`

	// Model overrides the provider's default model.
	Model string `yaml:"model"`

	// Providers holds per-provider configuration.
	Providers map[string]*ProviderConfig `yaml:"providers"`

	// MaxTokens caps the tokens generated per model call.
	MaxTokens int64 `yaml:"max_tokens"`

	// MaxIterations is the max number of model/tool rounds per chat turn.
	// The loop normally exits as soon as the model stops calling tools.
	MaxIterations int `yaml:"max_iterations"`

	// Persona holds the profile the chatbot answers as.
	Persona PersonaConfig `yaml:"persona"`

	// Pushover holds the notification webhook settings.
	Pushover PushoverConfig `yaml:"pushover"`

	// Server holds web chat UI settings.
	Server ServerConfig `yaml:"server"`

	// Session holds transcript persistence settings.
	Session SessionConfig `yaml:"session"`

	// Tools holds tool execution settings.
	Tools ToolsConfig `yaml:"tools"`

	// Graph holds graph demo settings.
	Graph GraphConfig `yaml:"graph"`

	// Log holds logging settings.
	Log LogConfig `yaml:"log"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:      "openai",
		Providers:     make(map[string]*ProviderConfig),
		MaxTokens:     1024,
		MaxIterations: 10,
		Persona: PersonaConfig{
			Name:        "Ypatios Chaniotakos",
			SummaryPath: filepath.Join("data", "summary.txt"),
			ResumePath:  filepath.Join("data", "resume.pdf"),
		},
		Server: ServerConfig{
			Listen:            "127.0.0.1:0",
			RequestTimeoutSec: 120,
			MaxBodyBytes:      1 << 20,
		},
		Session: SessionConfig{
			DBPath: "personabot.db",
		},
		Tools: ToolsConfig{
			TimeoutSec:     30,
			MaxOutputBytes: 16 * 1024,
		},
		Graph: GraphConfig{
			Model: "gpt-4o",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the env file and the config file, then merges environment
// variable overrides.
func Load(configPath string) (*Config, error) {
	LoadEnvFile("")

	cfg := DefaultConfig()

	// Determine config file path: explicit flag, working directory,
	// then the user config directory.
	if configPath == "" {
		if _, err := os.Stat("personabot.yaml"); err == nil {
			configPath = "personabot.yaml"
		} else if home, err := os.UserHomeDir(); err == nil {
			configPath = filepath.Join(home, ".config", "personabot", "config.yaml")
		}
	}

	// Read config file (use defaults if not found)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Initialize providers map
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]*ProviderConfig)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads a .env file into the process environment with
// override semantics, matching how the persona site is deployed. A
// missing file is not an error. Empty path means "./.env".
func LoadEnvFile(path string) {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Overload(path)
}

// Validate rejects configurations the commands cannot run with.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider must not be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations)
	}
	if c.Persona.Name == "" {
		return fmt.Errorf("persona.name must not be empty")
	}
	if c.Persona.SummaryPath == "" || c.Persona.ResumePath == "" {
		return fmt.Errorf("persona.summary_path and persona.resume_path must be set")
	}
	if c.Tools.TimeoutSec <= 0 {
		return fmt.Errorf("tools.timeout_sec must be positive, got %d", c.Tools.TimeoutSec)
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	return nil
}

// GetProviderConfig returns the config for the named provider, or an empty config if not found.
func (c *Config) GetProviderConfig(name string) *ProviderConfig {
	if pc, ok := c.Providers[name]; ok {
		return pc
	}
	return &ProviderConfig{}
}

var (
	// KnownProviderBaseURLs maps well-known provider names to their base URLs.
	// Populated from providers_default.yaml (embedded) + user overrides.
	KnownProviderBaseURLs map[string]string

	// KnownProviderModels maps well-known provider names to their default models.
	// Populated from providers_default.yaml (embedded) + user overrides.
	KnownProviderModels map[string]string
)

func init() {
	defs := LoadProviderDefaults()
	KnownProviderBaseURLs = make(map[string]string, len(defs))
	KnownProviderModels = make(map[string]string, len(defs))
	for name, d := range defs {
		if d.BaseURL != "" {
			KnownProviderBaseURLs[name] = d.BaseURL
		}
		if d.DefaultModel != "" {
			KnownProviderModels[name] = d.DefaultModel
		}
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Generic overrides for the active provider
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		provider := cfg.Provider
		if cfg.Providers[provider] == nil {
			cfg.Providers[provider] = &ProviderConfig{}
		}
		cfg.Providers[provider].APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		provider := cfg.Provider
		if cfg.Providers[provider] == nil {
			cfg.Providers[provider] = &ProviderConfig{}
		}
		cfg.Providers[provider].BaseURL = v
	}

	// Provider-specific keys
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if cfg.Providers["openai"] == nil {
			cfg.Providers["openai"] = &ProviderConfig{}
		}
		if cfg.Providers["openai"].APIKey == "" {
			cfg.Providers["openai"].APIKey = v
		}
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		if cfg.Providers["anthropic"] == nil {
			cfg.Providers["anthropic"] = &ProviderConfig{}
		}
		if cfg.Providers["anthropic"].APIKey == "" {
			cfg.Providers["anthropic"].APIKey = v
		}
	}

	// Provider selection
	if v := os.Getenv("PERSONABOT_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("PERSONABOT_MODEL"); v != "" {
		cfg.Model = v
	}

	// Push notification webhook
	if v := os.Getenv("PUSHOVER_TOKEN"); v != "" {
		cfg.Pushover.Token = v
	}
	if v := os.Getenv("PUSHOVER_USER"); v != "" {
		cfg.Pushover.User = v
	}
	if v := os.Getenv("PUSHOVER_URL"); v != "" {
		cfg.Pushover.URL = v
	}
}
