package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"lspmcp/internal/languages"
)

// Session replacement policies for init_lsp_client when a session is
// already active.
const (
	PolicyError   = "error"
	PolicyReplace = "replace"
)

// Config is the complete lspmcp configuration.
type Config struct {
	Version int `json:"version" yaml:"version" mapstructure:"version"`

	Session SessionConfig           `json:"session" yaml:"session" mapstructure:"session"`
	Servers map[string]ServerConfig `json:"servers" yaml:"servers" mapstructure:"servers"`
	Limits  LimitsConfig            `json:"limits" yaml:"limits" mapstructure:"limits"`
	Logging LoggingConfig           `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// SessionConfig controls session lifecycle behavior.
type SessionConfig struct {
	// Policy decides what happens when init is called while a session is
	// active: "error" rejects, "replace" shuts the old session down.
	Policy string `json:"policy" yaml:"policy" mapstructure:"policy"`

	// RequestTimeoutMs bounds each language-server request.
	RequestTimeoutMs int `json:"requestTimeoutMs" yaml:"requestTimeoutMs" mapstructure:"requestTimeoutMs"`
}

// ServerConfig names the language server executable for one language.
type ServerConfig struct {
	Command string   `json:"command" yaml:"command" mapstructure:"command"`
	Args    []string `json:"args" yaml:"args" mapstructure:"args"`
}

// LimitsConfig contains result size limits.
type LimitsConfig struct {
	// DefaultMaxItems applies when a tool call omits max_items.
	DefaultMaxItems int `json:"defaultMaxItems" yaml:"defaultMaxItems" mapstructure:"defaultMaxItems"`

	// MaxMaxItems caps what a tool call may request.
	MaxMaxItems int `json:"maxMaxItems" yaml:"maxMaxItems" mapstructure:"maxMaxItems"`

	// DefaultContextLines applies when include_code is set without
	// context_lines.
	DefaultContextLines int `json:"defaultContextLines" yaml:"defaultContextLines" mapstructure:"defaultContextLines"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format string `json:"format" yaml:"format" mapstructure:"format"`
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration. There are no built-in
// server commands: tool calls supply server_command, or the config file
// names one per language.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Session: SessionConfig{
			Policy:           PolicyError,
			RequestTimeoutMs: 30000,
		},
		Servers: map[string]ServerConfig{},
		Limits: LimitsConfig{
			DefaultMaxItems:     100,
			MaxMaxItems:         1000,
			DefaultContextLines: 2,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// ExampleConfig returns a starter configuration with the common server for
// each language filled in. Written by `lspmcp config init`; these commands
// take effect only once the user keeps the file.
func ExampleConfig() *Config {
	cfg := DefaultConfig()
	cfg.Servers = map[string]ServerConfig{
		"python":     {Command: "pyright-langserver", Args: []string{"--stdio"}},
		"typescript": {Command: "typescript-language-server", Args: []string{"--stdio"}},
		"javascript": {Command: "typescript-language-server", Args: []string{"--stdio"}},
		"rust":       {Command: "rust-analyzer"},
		"go":         {Command: "gopls"},
		"java":       {Command: "jdtls"},
		"cpp":        {Command: "clangd"},
		"c":          {Command: "clangd"},
	}
	return cfg
}

// LoadConfig loads configuration from <root>/.lspmcp/config.yaml, falling
// back to defaults when no file exists. File values are merged over the
// defaults, so a partial file is fine.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("session.policy", defaults.Session.Policy)
	v.SetDefault("session.requestTimeoutMs", defaults.Session.RequestTimeoutMs)
	v.SetDefault("limits.defaultMaxItems", defaults.Limits.DefaultMaxItems)
	v.SetDefault("limits.maxMaxItems", defaults.Limits.MaxMaxItems)
	v.SetDefault("limits.defaultContextLines", defaults.Limits.DefaultContextLines)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(root, ".lspmcp"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Server entries are merged per language so overriding one does not
	// erase the rest.
	merged := defaults.Servers
	for tag, sc := range cfg.Servers {
		merged[tag] = sc
	}
	cfg.Servers = merged

	return &cfg, nil
}

// Save writes the configuration to <root>/.lspmcp/config.yaml, creating
// the directory if needed.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".lspmcp")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Session.Policy != PolicyError && c.Session.Policy != PolicyReplace {
		return &ConfigError{Field: "session.policy", Message: fmt.Sprintf("must be %q or %q", PolicyError, PolicyReplace)}
	}
	if c.Session.RequestTimeoutMs <= 0 {
		return &ConfigError{Field: "session.requestTimeoutMs", Message: "must be positive"}
	}
	if c.Limits.DefaultMaxItems < 0 {
		return &ConfigError{Field: "limits.defaultMaxItems", Message: "must not be negative"}
	}
	if c.Limits.MaxMaxItems < c.Limits.DefaultMaxItems {
		return &ConfigError{Field: "limits.maxMaxItems", Message: "must be at least defaultMaxItems"}
	}
	if c.Limits.DefaultContextLines < 0 {
		return &ConfigError{Field: "limits.defaultContextLines", Message: "must not be negative"}
	}
	for tag := range c.Servers {
		if !languages.IsSupported(tag) {
			return &ConfigError{Field: "servers." + tag, Message: "unknown language tag"}
		}
	}
	return nil
}

// Server returns the configured server for a language tag.
func (c *Config) Server(tag string) (ServerConfig, bool) {
	sc, ok := c.Servers[tag]
	return sc, ok
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
