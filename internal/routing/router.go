package routing

import (
	"context"
	"fmt"

	"github.com/davidbz/bridge/internal/domain"
)

// SimpleRouter resolves public model ids through the catalog and picks the
// provider registered under the descriptor's tag.
type SimpleRouter struct {
	catalog  domain.ModelRegistry
	registry domain.ProviderRegistry
}

// NewRouter creates a new router.
func NewRouter(catalog domain.ModelRegistry, registry domain.ProviderRegistry) *SimpleRouter {
	return &SimpleRouter{
		catalog:  catalog,
		registry: registry,
	}
}

// Route selects a provider based on the model name.
func (r *SimpleRouter) Route(ctx context.Context, model string) (*domain.Route, error) {
	if model == "" {
		return nil, &domain.ValidationError{
			Kind:    domain.ValidationMissingField,
			Field:   "model",
			Message: "model is required",
		}
	}

	desc, err := r.catalog.Resolve(model)
	if err != nil {
		return nil, err
	}

	provider, err := r.registry.Get(ctx, string(desc.Provider))
	if err != nil {
		return nil, fmt.Errorf("model %s is served by an unavailable provider: %w", model, err)
	}

	return &domain.Route{Descriptor: desc, Provider: provider}, nil
}

// Models returns the routable model descriptors in catalog order.
func (r *SimpleRouter) Models(_ context.Context) []domain.ModelDescriptor {
	return r.catalog.List()
}
