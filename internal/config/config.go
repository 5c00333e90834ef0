// Package config loads BoxBee server configuration from a YAML file with
// environment overrides for deploy-time secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Env names the runtime environment. Development enables console email
// delivery and stack traces in error envelopes.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all BoxBee configuration.
type Config struct {
	Env      string         `yaml:"env"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Auth     AuthConfig     `yaml:"auth"`
	Email    EmailConfig    `yaml:"email"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LLMConfig configures the text-generation capability. An empty APIKey
// means the capability is absent and callers fall back to defaults.
type LLMConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig configures token lifetimes.
type AuthConfig struct {
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
	VerificationTTL time.Duration `yaml:"verification_ttl"`
}

// EmailConfig configures the verification email sender.
type EmailConfig struct {
	From     string `yaml:"from"`
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass"`
	BaseURL  string `yaml:"base_url"` // verification link base
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	Debug bool   `yaml:"debug"`
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Env: EnvDevelopment,
		Server: ServerConfig{
			Port:            3000,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "boxbee.db",
		},
		LLM: LLMConfig{
			Model:   "gemini-2.5-flash",
			Timeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			AccessTokenTTL:  7 * 24 * time.Hour,
			RefreshTokenTTL: 30 * 24 * time.Hour,
			VerificationTTL: 24 * time.Hour,
		},
		Email: EmailConfig{
			From:    "noreply@boxbee.app",
			BaseURL: "http://localhost:3000",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "logs",
		},
	}
}

// Load reads configuration from path, falling back to defaults when the
// file is absent, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets deployment environments inject secrets and
// per-instance settings without editing the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BOXBEE_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("BOXBEE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("BOXBEE_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("BOXBEE_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("BOXBEE_DEBUG"); v != "" {
		c.Logging.Debug = v == "1" || v == "true"
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path required")
	}
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	return nil
}

// Development reports whether the server runs in development mode.
func (c *Config) Development() bool {
	return c.Env == EnvDevelopment
}

// LogDir resolves the logging directory relative to the database
// location so all state lives together by default.
func (c *Config) LogDir() string {
	if filepath.IsAbs(c.Logging.Dir) {
		return c.Logging.Dir
	}
	return filepath.Join(filepath.Dir(c.Database.Path), c.Logging.Dir)
}
