package domain

import "context"

// Provider fetches a completion from a remote (or local) completion service.
type Provider interface {
	// Complete sends the request and returns the first usable choice.
	Complete(ctx context.Context, req *FetchRequest) (*FetchResult, error)

	// Name returns the provider identifier.
	Name() string
}

// ProviderRegistry manages available providers.
type ProviderRegistry interface {
	// Register adds a provider to the registry.
	Register(ctx context.Context, provider Provider) error

	// Get retrieves a provider by name.
	Get(ctx context.Context, providerName string) (Provider, error)

	// List returns all available providers.
	List(ctx context.Context) ([]string, error)
}

// TelemetrySink receives accept/reject records. Implementations must not block.
type TelemetrySink interface {
	Record(ctx context.Context, record TelemetryRecord)
}

// ErrorReporter receives per-request failures that were swallowed.
type ErrorReporter func(err error)
