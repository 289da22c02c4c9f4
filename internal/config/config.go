package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/ghostline/internal/provider/completions"
	"github.com/davidbz/ghostline/internal/provider/openai"
)

// Config represents the completion service configuration.
type Config struct {
	Server      ServerConfig
	CORS        CORSConfig
	Completion  CompletionConfig
	Completions completions.Config
	OpenAI      openai.Config
	Telemetry   TelemetryConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int `env:"SERVER_PORT"             envDefault:"8080"`
	ReadTimeout     int `env:"SERVER_READ_TIMEOUT"     envDefault:"30"`
	WriteTimeout    int `env:"SERVER_WRITE_TIMEOUT"    envDefault:"30"`
	ShutdownTimeout int `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// CompletionConfig contains the completion session tunables and the
// constant fields sent with every fetch.
type CompletionConfig struct {
	DebounceDelay      time.Duration `env:"COMPLETION_DEBOUNCE_DELAY"       envDefault:"300ms"`
	RejectionWindow    time.Duration `env:"COMPLETION_REJECTION_WINDOW"     envDefault:"10s"`
	ContinuationWindow time.Duration `env:"COMPLETION_CONTINUATION_WINDOW"  envDefault:"500ms"`
	HistoryCapacity    int           `env:"COMPLETION_HISTORY_CAPACITY"     envDefault:"20"`
	NetworkTimeout     time.Duration `env:"COMPLETION_NETWORK_TIMEOUT"      envDefault:"2s"`
	Provider           string        `env:"COMPLETION_PROVIDER"             envDefault:"completions"`
	Model              string        `env:"COMPLETION_MODEL"                envDefault:"default"`
	Temperature        float64       `env:"COMPLETION_TEMPERATURE"          envDefault:"0.2"`
	ClientID           string        `env:"COMPLETION_CLIENT_ID"            envDefault:"ghostline"`
	CalculateHideScore bool          `env:"COMPLETION_CALCULATE_HIDE_SCORE" envDefault:"false"`
}

// TelemetryConfig selects where accept/reject records go. The log sink is
// always on; Redis is enabled by a non-empty address.
type TelemetryConfig struct {
	RedisAddr      string `env:"TELEMETRY_REDIS_ADDR"`
	RedisPassword  string `env:"TELEMETRY_REDIS_PASSWORD"`
	RedisDB        int    `env:"TELEMETRY_REDIS_DB"              envDefault:"0"`
	RedisStream    string `env:"TELEMETRY_REDIS_STREAM"          envDefault:"ghostline:telemetry"`
	BufferSize     int    `env:"TELEMETRY_BUFFER_SIZE"           envDefault:"256"`
	MetricsEnabled bool   `env:"TELEMETRY_METRICS_ENABLED"       envDefault:"true"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*CompletionConfig
	*TelemetryConfig

	Completions *completions.Config
	OpenAI      *openai.Config
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Completion,
		&cfg.Telemetry,
		&cfg.Completions,
		&cfg.OpenAI,
	}
}
