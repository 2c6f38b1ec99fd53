package apierror_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/httpserver/apierror"
)

func TestMap(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		errType string
		code    string
	}{
		{"auth missing", &domain.AuthError{Kind: domain.AuthMissing}, 401, apierror.TypeAuthentication, "missing_authorization"},
		{"auth malformed", &domain.AuthError{Kind: domain.AuthMalformed}, 401, apierror.TypeAuthentication, "malformed_authorization"},
		{"auth invalid", &domain.AuthError{Kind: domain.AuthInvalid}, 401, apierror.TypeAuthentication, "invalid_api_key"},
		{"model not found", &domain.ModelNotFoundError{Model: "gpt-4"}, 404, apierror.TypeInvalidRequest, "model_not_found"},
		{"out of range", &domain.ValidationError{Kind: domain.ValidationOutOfRange, Field: "temperature"}, 400, apierror.TypeInvalidRequest, "out_of_range"},
		{"missing field", &domain.ValidationError{Kind: domain.ValidationMissingField, Field: "model"}, 400, apierror.TypeInvalidRequest, "missing_field"},
		{"invalid value", &domain.ValidationError{Kind: domain.ValidationInvalidValue, Field: "stream"}, 400, apierror.TypeInvalidRequest, "invalid_value"},
		{"decode", &apierror.DecodeError{Err: errors.New("unexpected EOF")}, 400, apierror.TypeInvalidRequest, "invalid_json"},
		{"upstream 4xx", &domain.ProviderError{Kind: domain.Upstream4xx, StatusCode: 401}, 502, apierror.TypeUpstream, "upstream_4xx"},
		{"upstream 5xx", &domain.ProviderError{Kind: domain.Upstream5xx, StatusCode: 529}, 502, apierror.TypeUpstream, "upstream_5xx"},
		{"connection", &domain.ProviderError{Kind: domain.ConnectionFailure}, 502, apierror.TypeUpstream, "connection_failure"},
		{"timeout", &domain.ProviderError{Kind: domain.ProviderTimeout}, 504, apierror.TypeUpstreamTimeout, "provider_timeout"},
		{"interrupted", &domain.StreamInterruptedError{Provider: "gemini", Err: errors.New("reset")}, 502, apierror.TypeUpstream, "stream_interrupted"},
		{"wrapped", fmt.Errorf("completion failed: %w", &domain.ProviderError{Kind: domain.ProviderTimeout}), 504, apierror.TypeUpstreamTimeout, "provider_timeout"},
		{"unknown", errors.New("boom"), 500, apierror.TypeServer, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := apierror.Map(tt.err)
			require.Equal(t, tt.status, status)
			require.Equal(t, tt.errType, body.Type)
			require.Equal(t, tt.code, body.Code)
			require.NotEmpty(t, body.Message)
		})
	}
}

func TestMap_HidesInternalMessages(t *testing.T) {
	_, body := apierror.Map(errors.New("dial tcp 10.0.0.1: secret detail"))
	require.Equal(t, "internal server error", body.Message)
}

func TestWrite(t *testing.T) {
	t.Run("should write the envelope with bearer challenge on 401", func(t *testing.T) {
		w := httptest.NewRecorder()

		apierror.Write(context.Background(), w, &domain.AuthError{Kind: domain.AuthMissing})

		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var envelope apierror.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		require.Equal(t, "missing_authorization", envelope.Error.Code)
	})

	t.Run("should include param for validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()

		apierror.Write(context.Background(), w, &domain.ValidationError{
			Kind: domain.ValidationOutOfRange, Field: "temperature", Message: "temperature must be within [0.0, 1.0], got 1.5",
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Empty(t, w.Header().Get("WWW-Authenticate"))

		var raw map[string]map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
		require.Equal(t, "temperature", raw["error"]["param"])
		require.Equal(t, "invalid_request_error", raw["error"]["type"])
	})
}
