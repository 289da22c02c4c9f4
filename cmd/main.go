package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/davidbz/ghostline/internal/config"
	"github.com/davidbz/ghostline/internal/domain"
	"github.com/davidbz/ghostline/internal/http"
	"github.com/davidbz/ghostline/internal/http/middleware"
	"github.com/davidbz/ghostline/internal/observability"
	"github.com/davidbz/ghostline/internal/provider/completions"
	"github.com/davidbz/ghostline/internal/provider/echo"
	"github.com/davidbz/ghostline/internal/provider/openai"
	"github.com/davidbz/ghostline/internal/provider/registry"
	"github.com/davidbz/ghostline/internal/telemetry"
	redisstream "github.com/davidbz/ghostline/internal/telemetry/redis"
)

// ErrProviderNotConfigured indicates that a provider is not configured and should be skipped.
var ErrProviderNotConfigured = errors.New("provider not configured")

func main() {
	container := buildContainer()

	err := container.Invoke(run)
	if err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

// run serves until SIGINT/SIGTERM, then shuts the server down and releases
// the session and telemetry workers.
func run(
	server *http.Server,
	orchestrator *domain.Orchestrator,
	stream *redisstream.StreamSink,
	redisClient *goredis.Client,
	serverCfg *config.ServerConfig,
) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(server.Start)

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(serverCfg.ShutdownTimeout)*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	err := group.Wait()

	orchestrator.Close()
	if stream != nil {
		stream.Close()
	}
	if redisClient != nil {
		if closeErr := redisClient.Close(); closeErr != nil {
			observability.FromContext(ctx).Warn("failed to close redis client", observability.Error(closeErr))
		}
	}

	observability.FromContext(ctx).Info("shutdown complete")

	return err
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}

	// Providers
	if err := container.Provide(provideRegistry); err != nil {
		log.Fatalf("Failed to provide registry: %v", err)
	}
	if err := container.Provide(selectProvider); err != nil {
		log.Fatalf("Failed to provide completion provider: %v", err)
	}

	// Telemetry
	if err := container.Provide(provideMetricsRegistry); err != nil {
		log.Fatalf("Failed to provide metrics registry: %v", err)
	}
	if err := container.Provide(provideRedisClient); err != nil {
		log.Fatalf("Failed to provide redis client: %v", err)
	}
	if err := container.Provide(provideStreamSink); err != nil {
		log.Fatalf("Failed to provide telemetry stream: %v", err)
	}
	if err := container.Provide(provideTelemetrySink); err != nil {
		log.Fatalf("Failed to provide telemetry sink: %v", err)
	}

	// Domain Services
	if err := container.Provide(provideOrchestrator); err != nil {
		log.Fatalf("Failed to provide orchestrator: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(provideMetricsGatherer); err != nil {
		log.Fatalf("Failed to provide metrics gatherer: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}

func provideRegistry(
	_ *zap.Logger,
	completionsCfg *completions.Config,
	openaiCfg *openai.Config,
) (domain.ProviderRegistry, error) {
	ctx := context.Background()
	reg := registry.NewRegistry()

	completionsProvider, err := completions.NewClient(*completionsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create completions provider: %w", err)
	}
	if err := reg.Register(ctx, completionsProvider); err != nil {
		return nil, fmt.Errorf("failed to register completions provider: %w", err)
	}

	openaiProvider, err := newOpenAIProvider(openaiCfg)
	switch {
	case errors.Is(err, ErrProviderNotConfigured):
		observability.FromContext(ctx).Info("openai provider not configured, skipping")
	case err != nil:
		return nil, err
	default:
		if err := reg.Register(ctx, openaiProvider); err != nil {
			return nil, fmt.Errorf("failed to register OpenAI provider: %w", err)
		}
	}

	if err := reg.Register(ctx, echo.NewProvider()); err != nil {
		return nil, fmt.Errorf("failed to register echo provider: %w", err)
	}

	return reg, nil
}

func newOpenAIProvider(cfg *openai.Config) (*openai.Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrProviderNotConfigured
	}

	provider, err := openai.NewProvider(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI provider: %w", err)
	}

	return provider, nil
}

func selectProvider(reg domain.ProviderRegistry, cfg *config.CompletionConfig) (domain.Provider, error) {
	ctx := context.Background()

	provider, err := reg.Get(ctx, cfg.Provider)
	if err != nil {
		available, _ := reg.List(ctx)
		return nil, fmt.Errorf("completion provider %q unavailable (registered: %v): %w", cfg.Provider, available, err)
	}

	observability.FromContext(ctx).Info("completion provider selected",
		observability.String("provider", provider.Name()))

	return provider, nil
}

func provideMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetricsGatherer(reg *prometheus.Registry, cfg *config.TelemetryConfig) prometheus.Gatherer {
	if !cfg.MetricsEnabled {
		return nil
	}
	return reg
}

// provideRedisClient returns nil when no address is configured.
func provideRedisClient(cfg *config.TelemetryConfig) *goredis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func provideStreamSink(client *goredis.Client, cfg *config.TelemetryConfig) *redisstream.StreamSink {
	if client == nil {
		return nil
	}

	return redisstream.NewStreamSink(client, cfg.RedisStream, cfg.BufferSize)
}

func provideTelemetrySink(
	reg *prometheus.Registry,
	stream *redisstream.StreamSink,
	cfg *config.TelemetryConfig,
) domain.TelemetrySink {
	sinks := []domain.TelemetrySink{telemetry.NewLogSink()}

	if cfg.MetricsEnabled {
		sinks = append(sinks, telemetry.NewPrometheusSink(reg))
	}
	if stream != nil {
		sinks = append(sinks, stream)
	}

	return telemetry.NewFanout(sinks...)
}

func provideOrchestrator(
	cfg *config.CompletionConfig,
	provider domain.Provider,
	sink domain.TelemetrySink,
) *domain.Orchestrator {
	reportError := func(err error) {
		observability.FromContext(context.Background()).Error("completion request failed", observability.Error(err))
	}

	return domain.NewOrchestrator(domain.OrchestratorConfig{
		DebounceDelay:      cfg.DebounceDelay,
		RejectionWindow:    cfg.RejectionWindow,
		ContinuationWindow: cfg.ContinuationWindow,
		HistoryCapacity:    cfg.HistoryCapacity,
		NetworkTimeout:     cfg.NetworkTimeout,
		Model:              cfg.Model,
		Temperature:        cfg.Temperature,
		ClientID:           cfg.ClientID,
		CalculateHideScore: cfg.CalculateHideScore,
	}, provider, sink, domain.WithErrorReporter(reportError))
}
