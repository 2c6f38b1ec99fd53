package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/davidbz/bridge/internal/domain"
)

// StatusError maps a non-2xx upstream status onto a ProviderError.
func StatusError(provider string, status int, message string) *domain.ProviderError {
	kind := domain.Upstream5xx
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		kind = domain.Upstream4xx
	}

	if message == "" {
		message = http.StatusText(status)
	}

	return &domain.ProviderError{
		Kind:       kind,
		Provider:   provider,
		StatusCode: status,
		Message:    message,
	}
}

// Timeout builds a ProviderTimeout error.
func Timeout(provider string, err error) *domain.ProviderError {
	return &domain.ProviderError{
		Kind:     domain.ProviderTimeout,
		Provider: provider,
		Message:  "upstream did not respond in time",
		Err:      err,
	}
}

// Classify maps a failed round trip onto the provider error taxonomy.
// Cancellation by the caller is returned unchanged.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return Timeout(provider, err)
	}

	return &domain.ProviderError{
		Kind:     domain.ConnectionFailure,
		Provider: provider,
		Message:  "failed to reach upstream",
		Err:      err,
	}
}

// ClassifyStream is Classify for calls guarded by a watchdog.
func ClassifyStream(provider string, err error, w *Watchdog) error {
	if w != nil && w.TimedOut() {
		return Timeout(provider, err)
	}
	return Classify(provider, err)
}

// Interrupted wraps a failure that happened after a stream started.
func Interrupted(provider string, err error, w *Watchdog) *domain.StreamInterruptedError {
	if w != nil && w.TimedOut() {
		err = Timeout(provider, err)
	}
	return &domain.StreamInterruptedError{
		Provider: provider,
		Err:      fmt.Errorf("stream read failed: %w", err),
	}
}
