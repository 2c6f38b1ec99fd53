package domain

import (
	"fmt"
	"strings"
)

// AuthErrorKind distinguishes why a bearer token was rejected.
type AuthErrorKind int

const (
	AuthMissing AuthErrorKind = iota
	AuthMalformed
	AuthInvalid
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthMissing:
		return "missing"
	case AuthMalformed:
		return "malformed"
	case AuthInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// AuthError is returned when a request cannot be authenticated.
type AuthError struct {
	Kind AuthErrorKind
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case AuthMissing:
		return "missing authorization header"
	case AuthMalformed:
		return "invalid authorization format, expected: Bearer <token>"
	default:
		return "invalid authentication token"
	}
}

// ModelNotFoundError is returned when a public model id is not in the registry.
type ModelNotFoundError struct {
	Model string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model %s not found, use /v1/models to see available models", e.Model)
}

// ValidationKind classifies request validation failures.
type ValidationKind int

const (
	ValidationOutOfRange ValidationKind = iota
	ValidationMissingField
	ValidationInvalidValue
)

func (k ValidationKind) String() string {
	switch k {
	case ValidationOutOfRange:
		return "out_of_range"
	case ValidationMissingField:
		return "missing_field"
	default:
		return "invalid_value"
	}
}

// ValidationError reports caller error in the request body.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProviderErrorKind classifies upstream failures.
type ProviderErrorKind int

const (
	Upstream4xx ProviderErrorKind = iota
	Upstream5xx
	ProviderTimeout
	ConnectionFailure
)

func (k ProviderErrorKind) String() string {
	switch k {
	case Upstream4xx:
		return "upstream_4xx"
	case Upstream5xx:
		return "upstream_5xx"
	case ProviderTimeout:
		return "timeout"
	default:
		return "connection_failure"
	}
}

// ProviderError is returned when the upstream call fails before a response stream started.
type ProviderError struct {
	Kind       ProviderErrorKind
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s provider error (%s)", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " status %d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// StreamInterruptedError is delivered on the chunk channel when an upstream stream ends
// abnormally after it has started.
type StreamInterruptedError struct {
	Provider string
	Err      error
}

func (e *StreamInterruptedError) Error() string {
	return fmt.Sprintf("%s stream interrupted: %v", e.Provider, e.Err)
}

func (e *StreamInterruptedError) Unwrap() error {
	return e.Err
}
