package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the top-level service configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Agent   AgentConfig   `toml:"agent"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	ReadTimeoutSecs    int      `toml:"read_timeout_secs"`
	WriteTimeoutSecs   int      `toml:"write_timeout_secs"`
	MaxConns           int      `toml:"max_conns"`
}

// StorageConfig represents the SQLite storage configuration
type StorageConfig struct {
	Path            string `toml:"path"`
	SeatsPerFlight  int    `toml:"seats_per_flight"`
	BusyTimeoutMs   int    `toml:"busy_timeout_ms"`
	SkipInitialSeed bool   `toml:"skip_initial_seed"`
}

// AgentConfig represents the OpenAI-backed chat assistant configuration
type AgentConfig struct {
	Enabled       bool   `toml:"enabled"`
	Model         string `toml:"model"`
	APIKeyEnvVar  string `toml:"api_key_env_var"`
	SystemPrompt  string `toml:"system_prompt"`
	MaxToolRounds int    `toml:"max_tool_rounds"`
	TimeoutSecs   int    `toml:"timeout_secs"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

const defaultSystemPrompt = `You are the VuelaConNosotros flight assistant. ` +
	`Use the available tools to look up flight status, list flight options, ` +
	`reserve seats, cancel reservations and verify reservations. Answer in ` +
	`the language the passenger writes in, and never invent flight data.`

// Default returns the configuration defaults used when no file is provided
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8000,
			CORSAllowedOrigins: []string{"*"},
			ReadTimeoutSecs:    15,
			WriteTimeoutSecs:   30,
			MaxConns:           256,
		},
		Storage: StorageConfig{
			Path:           "vuelos.db",
			SeatsPerFlight: 20,
			BusyTimeoutMs:  5000,
		},
		Agent: AgentConfig{
			Enabled:       false,
			Model:         "gpt-4o-mini",
			APIKeyEnvVar:  "OPENAI_API_KEY",
			SystemPrompt:  defaultSystemPrompt,
			MaxToolRounds: 8,
			TimeoutSecs:   60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the configuration from a TOML file, applying defaults for any
// missing values. A missing file is not an error: defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path must not be empty")
	}
	if c.Storage.SeatsPerFlight <= 0 {
		return fmt.Errorf("seats_per_flight must be positive, got %d", c.Storage.SeatsPerFlight)
	}
	if c.Agent.Enabled && c.Agent.Model == "" {
		return fmt.Errorf("agent model must not be empty when the agent is enabled")
	}
	return nil
}

// Addr returns the host:port address the server listens on
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ReadTimeout returns the configured read timeout
func (c *ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSecs) * time.Second
}

// WriteTimeout returns the configured write timeout
func (c *ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSecs) * time.Second
}

// APIKey resolves the OpenAI API key from the configured environment variable
func (c *AgentConfig) APIKey() string {
	if c.APIKeyEnvVar == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnvVar)
}
