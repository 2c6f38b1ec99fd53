package transport_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/provider/transport"
)

func requireProviderKind(t *testing.T, err error, kind domain.ProviderErrorKind) *domain.ProviderError {
	t.Helper()

	var providerErr *domain.ProviderError
	require.True(t, errors.As(err, &providerErr), "expected *domain.ProviderError, got %v", err)
	require.Equal(t, kind, providerErr.Kind)
	return providerErr
}

func TestConfig_Durations(t *testing.T) {
	cfg := transport.Config{ConnectTimeout: 5, Timeout: 0, StreamIdleTimeout: -1}

	require.Equal(t, 5*time.Second, cfg.ConnectDuration())
	require.Zero(t, cfg.TotalDuration())
	require.Zero(t, cfg.IdleDuration())
}

func TestStatusError(t *testing.T) {
	t.Run("should classify 4xx", func(t *testing.T) {
		err := transport.StatusError("anthropic", http.StatusUnauthorized, "invalid x-api-key")

		require.Equal(t, domain.Upstream4xx, err.Kind)
		require.Equal(t, http.StatusUnauthorized, err.StatusCode)
		require.Contains(t, err.Error(), "invalid x-api-key")
	})

	t.Run("should classify 5xx and default the message", func(t *testing.T) {
		err := transport.StatusError("gemini", http.StatusServiceUnavailable, "")

		require.Equal(t, domain.Upstream5xx, err.Kind)
		require.Equal(t, "Service Unavailable", err.Message)
	})
}

func TestClassify(t *testing.T) {
	t.Run("should keep caller cancellation", func(t *testing.T) {
		err := transport.Classify("anthropic", context.Canceled)
		require.ErrorIs(t, err, context.Canceled)

		var providerErr *domain.ProviderError
		require.False(t, errors.As(err, &providerErr))
	})

	t.Run("should map deadline to timeout", func(t *testing.T) {
		requireProviderKind(t, transport.Classify("anthropic", context.DeadlineExceeded), domain.ProviderTimeout)
	})

	t.Run("should map refused connection to connection failure", func(t *testing.T) {
		client := transport.NewHTTPClient(transport.Config{ConnectTimeout: 1})
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		req, err := http.NewRequest(http.MethodGet, url, nil)
		require.NoError(t, err)

		_, err = client.Do(req)
		require.Error(t, err)
		requireProviderKind(t, transport.Classify("gemini", err), domain.ConnectionFailure)
	})

	t.Run("should return nil for nil", func(t *testing.T) {
		require.NoError(t, transport.Classify("gemini", nil))
	})
}

func TestWatchdog(t *testing.T) {
	t.Run("should cancel after idle window", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w := transport.NewWatchdog(20*time.Millisecond, cancel)
		defer w.Stop()

		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("watchdog did not fire")
		}
		require.True(t, w.TimedOut())
		requireProviderKind(t, transport.ClassifyStream("xai", context.Canceled, w), domain.ProviderTimeout)
	})

	t.Run("should not fire while kicked", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w := transport.NewWatchdog(100*time.Millisecond, cancel)
		for range 5 {
			time.Sleep(20 * time.Millisecond)
			w.Kick()
		}
		w.Stop()

		require.NoError(t, ctx.Err())
		require.False(t, w.TimedOut())
	})

	t.Run("should be inert with a zero window", func(t *testing.T) {
		w := transport.NewWatchdog(0, func() { t.Fatal("cancel called") })
		w.Kick()
		w.Stop()
		require.False(t, w.TimedOut())
	})
}

func TestInterrupted(t *testing.T) {
	err := transport.Interrupted("anthropic", errors.New("unexpected EOF"), nil)

	require.Equal(t, "anthropic", err.Provider)
	require.Contains(t, err.Error(), "unexpected EOF")
}

func TestNewJSONRequest(t *testing.T) {
	req, err := transport.NewJSONRequest(context.Background(), "http://upstream/v1/messages",
		map[string]string{"model": "m"}, map[string]string{"x-api-key": "secret"})
	require.NoError(t, err)

	require.Equal(t, http.MethodPost, req.Method)
	require.Equal(t, "application/json", req.Header.Get("Content-Type"))
	require.Equal(t, "secret", req.Header.Get("x-api-key"))

	var decoded map[string]string
	require.NoError(t, transport.DecodeJSON(req.Body, &decoded))
	require.Equal(t, "m", decoded["model"])
}

func TestReadErrorBody(t *testing.T) {
	resp := &http.Response{Body: httptest.NewRecorder().Result().Body}
	require.Empty(t, transport.ReadErrorBody(resp))

	rec := httptest.NewRecorder()
	_, _ = rec.WriteString(strings.Repeat("x", 70*1024))
	require.Len(t, transport.ReadErrorBody(rec.Result()), 64*1024)
}
