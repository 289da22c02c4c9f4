package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/ghostline/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("should load config with defaults", func(t *testing.T) {
		// Clear environment
		os.Clearenv()

		cfg := config.Load()

		require.NotNil(t, cfg)

		// Verify defaults
		require.Equal(t, 8080, cfg.Server.Port)
		require.Equal(t, 30, cfg.Server.ReadTimeout)
		require.Equal(t, 30, cfg.Server.WriteTimeout)
		require.Equal(t, 10, cfg.Server.ShutdownTimeout)

		require.Equal(t, 300*time.Millisecond, cfg.Completion.DebounceDelay)
		require.Equal(t, 10*time.Second, cfg.Completion.RejectionWindow)
		require.Equal(t, 500*time.Millisecond, cfg.Completion.ContinuationWindow)
		require.Equal(t, 20, cfg.Completion.HistoryCapacity)
		require.Equal(t, 2*time.Second, cfg.Completion.NetworkTimeout)
		require.Equal(t, "completions", cfg.Completion.Provider)
		require.False(t, cfg.Completion.CalculateHideScore)

		require.Equal(t, "http://localhost:8090/v1", cfg.Completions.BaseURL)
		require.InDelta(t, 10.0, cfg.Completions.RateLimit, 0.0001)
		require.Equal(t, 5, cfg.Completions.RateBurst)

		require.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
		require.Equal(t, 10, cfg.OpenAI.Timeout)
		require.Equal(t, 0, cfg.OpenAI.MaxRetries)
		require.Empty(t, cfg.OpenAI.APIKey)

		require.Empty(t, cfg.Telemetry.RedisAddr)
		require.Equal(t, "ghostline:telemetry", cfg.Telemetry.RedisStream)
		require.True(t, cfg.Telemetry.MetricsEnabled)
	})

	t.Run("should load config from environment variables", func(t *testing.T) {
		// Set environment variables using t.Setenv for automatic cleanup
		t.Setenv("SERVER_PORT", "9000")
		t.Setenv("COMPLETION_DEBOUNCE_DELAY", "150ms")
		t.Setenv("COMPLETION_REJECTION_WINDOW", "5s")
		t.Setenv("COMPLETION_HISTORY_CAPACITY", "50")
		t.Setenv("COMPLETION_PROVIDER", "echo")
		t.Setenv("COMPLETION_CALCULATE_HIDE_SCORE", "true")
		t.Setenv("COMPLETIONS_BASE_URL", "https://complete.example.com/v2")
		t.Setenv("COMPLETIONS_API_KEY", "secret")
		t.Setenv("OPENAI_API_KEY", "sk-test-key")
		t.Setenv("OPENAI_MAX_TOKENS", "64")
		t.Setenv("TELEMETRY_REDIS_ADDR", "localhost:6379")
		t.Setenv("TELEMETRY_METRICS_ENABLED", "false")

		cfg := config.Load()

		require.NotNil(t, cfg)

		// Verify loaded values
		require.Equal(t, 9000, cfg.Server.Port)
		require.Equal(t, 150*time.Millisecond, cfg.Completion.DebounceDelay)
		require.Equal(t, 5*time.Second, cfg.Completion.RejectionWindow)
		require.Equal(t, 50, cfg.Completion.HistoryCapacity)
		require.Equal(t, "echo", cfg.Completion.Provider)
		require.True(t, cfg.Completion.CalculateHideScore)
		require.Equal(t, "https://complete.example.com/v2", cfg.Completions.BaseURL)
		require.Equal(t, "secret", cfg.Completions.APIKey)
		require.Equal(t, "sk-test-key", cfg.OpenAI.APIKey)
		require.Equal(t, 64, cfg.OpenAI.MaxTokens)
		require.Equal(t, "localhost:6379", cfg.Telemetry.RedisAddr)
		require.False(t, cfg.Telemetry.MetricsEnabled)
	})
}

func TestParseDependenciesConfig(t *testing.T) {
	os.Clearenv()
	cfg := config.Load()

	deps := config.ParseDependenciesConfig(cfg)

	require.Same(t, &cfg.Server, deps.ServerConfig)
	require.Same(t, &cfg.Completion, deps.CompletionConfig)
	require.Same(t, &cfg.Telemetry, deps.TelemetryConfig)
	require.Same(t, &cfg.Completions, deps.Completions)
	require.Same(t, &cfg.OpenAI, deps.OpenAI)
}
