package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/bridge/internal/domain"
)

func TestValidateRequest(t *testing.T) {
	valid := func() *domain.CompletionRequest {
		return &domain.CompletionRequest{
			Model:    "gemini-2.5-flash",
			Messages: []domain.Message{{Role: domain.RoleUser, Content: "Hi"}},
		}
	}

	t.Run("should accept a minimal request", func(t *testing.T) {
		require.NoError(t, domain.ValidateRequest(valid()))
	})

	t.Run("should accept boundary values", func(t *testing.T) {
		req := valid()
		req.Temperature = ptr(0.0)
		req.TopP = ptr(1.0)
		req.MaxTokens = ptr(1)
		require.NoError(t, domain.ValidateRequest(req))

		req.Temperature = ptr(1.0)
		req.TopP = ptr(0.0)
		require.NoError(t, domain.ValidateRequest(req))
	})

	tests := []struct {
		name   string
		mutate func(req *domain.CompletionRequest)
		kind   domain.ValidationKind
		field  string
	}{
		{
			name:   "missing model",
			mutate: func(req *domain.CompletionRequest) { req.Model = "" },
			kind:   domain.ValidationMissingField,
			field:  "model",
		},
		{
			name:   "no messages",
			mutate: func(req *domain.CompletionRequest) { req.Messages = nil },
			kind:   domain.ValidationMissingField,
			field:  "messages",
		},
		{
			name: "only system messages",
			mutate: func(req *domain.CompletionRequest) {
				req.Messages = []domain.Message{{Role: domain.RoleSystem, Content: "x"}}
			},
			kind:  domain.ValidationMissingField,
			field: "messages",
		},
		{
			name: "unknown role",
			mutate: func(req *domain.CompletionRequest) {
				req.Messages = append(req.Messages, domain.Message{Role: "tool", Content: "x"})
			},
			kind:  domain.ValidationInvalidValue,
			field: "messages[1].role",
		},
		{
			name: "empty role",
			mutate: func(req *domain.CompletionRequest) {
				req.Messages = []domain.Message{{Content: "x"}}
			},
			kind:  domain.ValidationMissingField,
			field: "messages[0].role",
		},
		{
			name:   "temperature above range",
			mutate: func(req *domain.CompletionRequest) { req.Temperature = ptr(1.5) },
			kind:   domain.ValidationOutOfRange,
			field:  "temperature",
		},
		{
			name:   "negative temperature",
			mutate: func(req *domain.CompletionRequest) { req.Temperature = ptr(-0.1) },
			kind:   domain.ValidationOutOfRange,
			field:  "temperature",
		},
		{
			name:   "top_p above range",
			mutate: func(req *domain.CompletionRequest) { req.TopP = ptr(1.01) },
			kind:   domain.ValidationOutOfRange,
			field:  "top_p",
		},
		{
			name:   "zero max_tokens",
			mutate: func(req *domain.CompletionRequest) { req.MaxTokens = ptr(0) },
			kind:   domain.ValidationOutOfRange,
			field:  "max_tokens",
		},
	}

	for _, tt := range tests {
		t.Run("should reject "+tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)

			err := domain.ValidateRequest(req)

			var validation *domain.ValidationError
			require.True(t, errors.As(err, &validation))
			require.Equal(t, tt.kind, validation.Kind)
			require.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestValidateForModel(t *testing.T) {
	desc := domain.ModelDescriptor{PublicID: "grok-3", MaxOutputTokens: 8192, SupportsStreaming: true}

	t.Run("should accept max_tokens at the limit", func(t *testing.T) {
		req := &domain.CompletionRequest{MaxTokens: ptr(8192)}
		require.NoError(t, domain.ValidateForModel(req, desc))
	})

	t.Run("should reject max_tokens above the limit", func(t *testing.T) {
		req := &domain.CompletionRequest{MaxTokens: ptr(8193)}

		var validation *domain.ValidationError
		require.True(t, errors.As(domain.ValidateForModel(req, desc), &validation))
		require.Equal(t, domain.ValidationOutOfRange, validation.Kind)
	})

	t.Run("should ignore the limit when the model declares none", func(t *testing.T) {
		unlimited := desc
		unlimited.MaxOutputTokens = 0
		require.NoError(t, domain.ValidateForModel(&domain.CompletionRequest{MaxTokens: ptr(1 << 20)}, unlimited))
	})

	t.Run("should reject streaming when unsupported", func(t *testing.T) {
		batchOnly := desc
		batchOnly.SupportsStreaming = false

		var validation *domain.ValidationError
		require.True(t, errors.As(domain.ValidateForModel(&domain.CompletionRequest{Stream: true}, batchOnly), &validation))
		require.Equal(t, "stream", validation.Field)
	})
}
