package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/bridge/internal/auth"
	"github.com/davidbz/bridge/internal/config"
	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/httpserver"
	"github.com/davidbz/bridge/internal/httpserver/middleware"
	"github.com/davidbz/bridge/internal/observability"
	"github.com/davidbz/bridge/internal/provider/anthropic"
	"github.com/davidbz/bridge/internal/provider/echo"
	"github.com/davidbz/bridge/internal/provider/gemini"
	"github.com/davidbz/bridge/internal/provider/registry"
	"github.com/davidbz/bridge/internal/provider/xai"
	"github.com/davidbz/bridge/internal/routing"
	usageredis "github.com/davidbz/bridge/internal/usage/redis"
)

const redisPingTimeout = 3 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// serve runs the gateway until ctx is canceled, then shuts it down gracefully.
func serve(ctx context.Context) error {
	container, err := buildContainer()
	if err != nil {
		return err
	}

	err = container.Invoke(func(server *httpserver.Server, cfg *config.ServerConfig, client *goredis.Client) error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownDuration())
		defer cancel()

		shutdownErr := server.Shutdown(shutdownCtx)
		if client != nil {
			shutdownErr = errors.Join(shutdownErr, client.Close())
		}
		return shutdownErr
	})
	if err != nil {
		return fmt.Errorf("gateway stopped: %w", err)
	}

	return nil
}

func buildContainer() (*dig.Container, error) {
	container := dig.New()

	constructors := []struct {
		name string
		ctor any
	}{
		// Configuration
		{"config", config.Load},
		{"config dependencies", config.ParseDependenciesConfig},

		// Observability
		{"logger", observability.InitLogger},

		// Providers and models
		{"provider registry", func() domain.ProviderRegistry {
			return registry.NewRegistry()
		}},
		{"model catalog", func(cfg *registry.Config, providers domain.ProviderRegistry) (domain.ModelRegistry, error) {
			return registry.NewCatalog(cfg, providers)
		}},
		{"router", func(catalog domain.ModelRegistry, providers domain.ProviderRegistry) domain.Router {
			return routing.NewRouter(catalog, providers)
		}},

		// Usage ledger
		{"redis client", newRedisClient},
		{"usage recorder", newUsageRecorder},

		// Domain Services
		{"gateway service", domain.NewGatewayService},

		// HTTP Layer
		{"auth gate", auth.NewGate},
		{"middleware chain", middleware.BuildMiddlewareChain},
		{"HTTP handler", httpserver.NewHandler},
		{"HTTP server", httpserver.NewServer},
	}

	for _, c := range constructors {
		if err := container.Provide(c.ctor); err != nil {
			return nil, fmt.Errorf("failed to provide %s: %w", c.name, err)
		}
	}

	// The logger must exist before anything else logs.
	if err := container.Invoke(func(*zap.Logger) {}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Providers are registered before the catalog is built, so the catalog only
	// exposes models whose provider is configured.
	if err := container.Invoke(registerProviders); err != nil {
		return nil, fmt.Errorf("failed to register providers: %w", err)
	}

	return container, nil
}

// registerProviders registers every provider whose credentials are configured.
func registerProviders(
	reg domain.ProviderRegistry,
	anthropicCfg *anthropic.Config,
	geminiCfg *gemini.Config,
	xaiCfg *xai.Config,
	echoCfg *echo.Config,
) error {
	ctx := context.Background()
	logger := observability.FromContext(ctx)

	var enabled []domain.Provider

	if anthropicCfg.Enabled() {
		p, err := anthropic.NewProvider(*anthropicCfg)
		if err != nil {
			return fmt.Errorf("failed to create anthropic provider: %w", err)
		}
		enabled = append(enabled, p)
	}

	if geminiCfg.Enabled() {
		p, err := gemini.NewProvider(*geminiCfg)
		if err != nil {
			return fmt.Errorf("failed to create gemini provider: %w", err)
		}
		enabled = append(enabled, p)
	}

	if xaiCfg.Enabled() {
		p, err := xai.NewProvider(*xaiCfg)
		if err != nil {
			return fmt.Errorf("failed to create xai provider: %w", err)
		}
		enabled = append(enabled, p)
	}

	if echoCfg.Enabled {
		enabled = append(enabled, echo.NewProvider())
	}

	for _, p := range enabled {
		if err := reg.Register(ctx, p); err != nil {
			return fmt.Errorf("failed to register %s provider: %w", p.Name(), err)
		}
		logger.Info("provider registered", observability.String("provider", p.Name()))
	}

	if len(enabled) == 0 {
		logger.Warn("no provider credentials configured, /health will report unhealthy")
	}

	return nil
}

// newRedisClient returns nil when the usage ledger is disabled.
func newRedisClient(cfg *usageredis.Config) (*goredis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	client, err := usageredis.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	logger := observability.FromContext(ctx)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, usage will not be recorded until it recovers", observability.Error(err))
	} else {
		logger.Info("usage ledger enabled", observability.Int("ttl_days", cfg.TTLDays))
	}

	return client, nil
}

func newUsageRecorder(client *goredis.Client, cfg *usageredis.Config) domain.UsageRecorder {
	if client == nil {
		return nil
	}
	return usageredis.NewRecorder(client, cfg)
}
