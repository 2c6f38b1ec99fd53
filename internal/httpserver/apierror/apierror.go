// Package apierror maps internal errors onto OpenAI-style error envelopes.
package apierror

import (
	"context"
	"errors"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/observability"
)

// Error types reported in the envelope.
const (
	TypeAuthentication  = "authentication_error"
	TypeInvalidRequest  = "invalid_request_error"
	TypeUpstream        = "upstream_error"
	TypeUpstreamTimeout = "upstream_timeout"
	TypeServer          = "server_error"
)

// Body is the `error` member of the envelope.
type Body struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
	Param   string `json:"param,omitempty"`
}

// Envelope is the JSON document written for every failed request.
type Envelope struct {
	Error Body `json:"error"`
}

// DecodeError reports a request body that is not valid JSON for the endpoint.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "invalid JSON payload"
	}
	return "invalid JSON payload: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Map returns the HTTP status and envelope body for err. Every error maps to something;
// unknown errors become 500 internal_error without leaking their message.
func Map(err error) (int, Body) {
	var (
		authErr     *domain.AuthError
		notFound    *domain.ModelNotFoundError
		validation  *domain.ValidationError
		providerErr *domain.ProviderError
		interrupted *domain.StreamInterruptedError
		decodeErr   *DecodeError
	)

	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, Body{
			Message: authErr.Error(),
			Type:    TypeAuthentication,
			Code:    authCode(authErr.Kind),
		}

	case errors.As(err, &notFound):
		return http.StatusNotFound, Body{
			Message: notFound.Error(),
			Type:    TypeInvalidRequest,
			Code:    "model_not_found",
			Param:   "model",
		}

	case errors.As(err, &validation):
		return http.StatusBadRequest, Body{
			Message: validation.Message,
			Type:    TypeInvalidRequest,
			Code:    validation.Kind.String(),
			Param:   validation.Field,
		}

	case errors.As(err, &decodeErr):
		return http.StatusBadRequest, Body{
			Message: decodeErr.Error(),
			Type:    TypeInvalidRequest,
			Code:    "invalid_json",
		}

	case errors.As(err, &providerErr):
		if providerErr.Kind == domain.ProviderTimeout {
			return http.StatusGatewayTimeout, Body{
				Message: providerErr.Error(),
				Type:    TypeUpstreamTimeout,
				Code:    "provider_timeout",
			}
		}
		return http.StatusBadGateway, Body{
			Message: providerErr.Error(),
			Type:    TypeUpstream,
			Code:    providerErr.Kind.String(),
		}

	case errors.As(err, &interrupted):
		return http.StatusBadGateway, Body{
			Message: interrupted.Error(),
			Type:    TypeUpstream,
			Code:    "stream_interrupted",
		}

	default:
		return http.StatusInternalServerError, Body{
			Message: "internal server error",
			Type:    TypeServer,
			Code:    "internal_error",
		}
	}
}

func authCode(kind domain.AuthErrorKind) string {
	switch kind {
	case domain.AuthMissing:
		return "missing_authorization"
	case domain.AuthMalformed:
		return "malformed_authorization"
	default:
		return "invalid_api_key"
	}
}

// Write maps err and writes the envelope. Nothing may have been written to w before.
func Write(ctx context.Context, w http.ResponseWriter, err error) {
	status, body := Map(err)

	logger := observability.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			observability.Int("status", status),
			observability.String("code", body.Code),
			observability.Error(err))
	} else {
		logger.Info("request rejected",
			observability.Int("status", status),
			observability.String("code", body.Code),
			observability.Error(err))
	}

	WriteBody(w, status, body)
}

// WriteBody writes an already mapped envelope.
func WriteBody(w http.ResponseWriter, status int, body Body) {
	data, err := sonic.Marshal(Envelope{Error: body})
	if err != nil {
		http.Error(w, body.Message, status)
		return
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
