package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/bridge/internal/auth"
	"github.com/davidbz/bridge/internal/observability"
	"github.com/davidbz/bridge/internal/provider/anthropic"
	"github.com/davidbz/bridge/internal/provider/echo"
	"github.com/davidbz/bridge/internal/provider/gemini"
	"github.com/davidbz/bridge/internal/provider/registry"
	"github.com/davidbz/bridge/internal/provider/xai"
	usageredis "github.com/davidbz/bridge/internal/usage/redis"
)

// Config represents the gateway configuration.
type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	Log       observability.Config
	Auth      auth.Config
	Registry  registry.Config
	Usage     usageredis.Config
	Anthropic anthropic.Config
	Gemini    gemini.Config
	XAI       xai.Config
	Echo      echo.Config
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `env:"HOST"                    envDefault:"0.0.0.0"`
	Port            int    `env:"PORT"                    envDefault:"8000"`
	ReadTimeout     int    `env:"SERVER_READ_TIMEOUT"     envDefault:"30"`
	WriteTimeout    int    `env:"SERVER_WRITE_TIMEOUT"    envDefault:"30"`
	ShutdownTimeout int    `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ShutdownDuration returns the graceful shutdown budget.
func (c *ServerConfig) ShutdownDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// DepConfig is used for dependency injection with dig.
// Several sub-configs share the type name Config, so fields are named.
type DepConfig struct {
	dig.Out

	Server    *ServerConfig
	CORS      *CORSConfig
	Log       *observability.Config
	Auth      *auth.Config
	Registry  *registry.Config
	Usage     *usageredis.Config
	Anthropic *anthropic.Config
	Gemini    *gemini.Config
	XAI       *xai.Config
	Echo      *echo.Config
}

// Load loads environment files and parses configuration.
func Load() (*Config, error) {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return &cfg, nil
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		Server:    &cfg.Server,
		CORS:      &cfg.CORS,
		Log:       &cfg.Log,
		Auth:      &cfg.Auth,
		Registry:  &cfg.Registry,
		Usage:     &cfg.Usage,
		Anthropic: &cfg.Anthropic,
		Gemini:    &cfg.Gemini,
		XAI:       &cfg.XAI,
		Echo:      &cfg.Echo,
	}
}
