package domain

import "context"

// Provider represents an upstream LLM provider variant.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Stream sends a completion request and returns a stream of normalized chunks.
	// Failures before the stream starts are returned directly; failures after it
	// started arrive as a chunk carrying a *StreamInterruptedError.
	Stream(ctx context.Context, req *CompletionRequest) (<-chan StreamChunk, error)

	// Name returns the provider tag.
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

// ModelRegistry is the read-only catalog of public models.
type ModelRegistry interface {
	// Resolve returns the descriptor for a public model id or a *ModelNotFoundError.
	Resolve(publicID string) (ModelDescriptor, error)

	// List returns all descriptors in configuration order.
	List() []ModelDescriptor
}

// Router determines which provider serves a request.
type Router interface {
	// Route resolves a public model id into its descriptor and provider.
	Route(ctx context.Context, model string) (*Route, error)

	// Models returns the routable model descriptors in configuration order.
	Models(ctx context.Context) []ModelDescriptor
}

// UsageRecorder persists per-user token usage.
type UsageRecorder interface {
	// Record adds one completed request to the user's usage counters.
	Record(ctx context.Context, user, model string, usage Usage) error
}
