package routing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/mocks"
	"github.com/davidbz/bridge/internal/routing"
)

var haiku = domain.ModelDescriptor{
	PublicID:          "claude-3-5-haiku-20241022",
	Provider:          domain.ProviderAnthropic,
	NativeID:          "claude-3-5-haiku-20241022",
	MaxOutputTokens:   8192,
	SupportsStreaming: true,
}

func TestRouter_Route(t *testing.T) {
	ctx := context.Background()

	t.Run("should route to the provider of the descriptor", func(t *testing.T) {
		catalog := mocks.NewMockModelRegistry(t)
		registry := mocks.NewMockProviderRegistry(t)
		provider := mocks.NewMockProvider(t)

		catalog.EXPECT().Resolve("claude-3-5-haiku-20241022").Return(haiku, nil)
		registry.EXPECT().Get(mock.Anything, "anthropic").Return(provider, nil)

		route, err := routing.NewRouter(catalog, registry).Route(ctx, "claude-3-5-haiku-20241022")

		require.NoError(t, err)
		require.Equal(t, haiku, route.Descriptor)
		require.Same(t, provider, route.Provider)
	})

	t.Run("should return ModelNotFoundError for unknown models", func(t *testing.T) {
		catalog := mocks.NewMockModelRegistry(t)
		registry := mocks.NewMockProviderRegistry(t)

		catalog.EXPECT().Resolve("does-not-exist").Return(domain.ModelDescriptor{}, &domain.ModelNotFoundError{Model: "does-not-exist"})

		route, err := routing.NewRouter(catalog, registry).Route(ctx, "does-not-exist")

		require.Nil(t, route)
		var notFound *domain.ModelNotFoundError
		require.True(t, errors.As(err, &notFound))
	})

	t.Run("should require a model", func(t *testing.T) {
		route, err := routing.NewRouter(mocks.NewMockModelRegistry(t), mocks.NewMockProviderRegistry(t)).Route(ctx, "")

		require.Nil(t, route)
		var validation *domain.ValidationError
		require.True(t, errors.As(err, &validation))
		require.Equal(t, domain.ValidationMissingField, validation.Kind)
	})

	t.Run("should fail when the provider is not registered", func(t *testing.T) {
		catalog := mocks.NewMockModelRegistry(t)
		registry := mocks.NewMockProviderRegistry(t)

		catalog.EXPECT().Resolve("claude-3-5-haiku-20241022").Return(haiku, nil)
		registry.EXPECT().Get(mock.Anything, "anthropic").Return(nil, errors.New("provider anthropic not found"))

		_, err := routing.NewRouter(catalog, registry).Route(ctx, "claude-3-5-haiku-20241022")

		require.Error(t, err)
		require.Contains(t, err.Error(), "unavailable provider")
	})
}

func TestRouter_Models(t *testing.T) {
	catalog := mocks.NewMockModelRegistry(t)
	catalog.EXPECT().List().Return([]domain.ModelDescriptor{haiku})

	models := routing.NewRouter(catalog, mocks.NewMockProviderRegistry(t)).Models(context.Background())

	require.Equal(t, []domain.ModelDescriptor{haiku}, models)
}
