package anthropic_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/provider/anthropic"
	"github.com/davidbz/bridge/internal/provider/transport"
)

const completeBody = `{
	"id": "msg_01",
	"type": "message",
	"role": "assistant",
	"model": "claude-3-5-haiku-20241022",
	"content": [{"type": "text", "text": "Hello"}, {"type": "text", "text": " there!"}],
	"stop_reason": "end_turn",
	"usage": {"input_tokens": 9, "output_tokens": 4}
}`

const streamBody = "event: message_start\n" +
	`data: {"type":"message_start","message":{"id":"msg_01","usage":{"input_tokens":9,"output_tokens":1}}}` + "\n\n" +
	"event: content_block_start\n" +
	`data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}` + "\n\n" +
	"event: ping\n" +
	`data: {"type":"ping"}` + "\n\n" +
	"event: content_block_delta\n" +
	`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}` + "\n\n" +
	"event: content_block_delta\n" +
	`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" there!"}}` + "\n\n" +
	"event: content_block_stop\n" +
	`data: {"type":"content_block_stop","index":0}` + "\n\n" +
	"event: message_delta\n" +
	`data: {"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":4}}` + "\n\n" +
	"event: message_stop\n" +
	`data: {"type":"message_stop"}` + "\n\n"

func newProvider(t *testing.T, url string, timeouts transport.Config) *anthropic.Provider {
	t.Helper()

	provider, err := anthropic.NewProvider(anthropic.Config{
		APIKey:    "test-key",
		BaseURL:   url,
		Version:   "2023-06-01",
		Transport: timeouts,
	})
	require.NoError(t, err)
	return provider
}

func newRequest(stream bool) *domain.CompletionRequest {
	return &domain.CompletionRequest{
		Model: "claude-3-5-haiku-20241022",
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: "Be brief."},
			{Role: domain.RoleUser, Content: "Hi"},
		},
		Stream: stream,
	}
}

func collect(t *testing.T, chunks <-chan domain.StreamChunk) []domain.StreamChunk {
	t.Helper()

	var out []domain.StreamChunk
	timeout := time.After(5 * time.Second)
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				return out
			}
			out = append(out, chunk)
		case <-timeout:
			t.Fatal("stream did not finish")
		}
	}
}

func concat(chunks []domain.StreamChunk) string {
	var b strings.Builder
	for _, chunk := range chunks {
		b.WriteString(chunk.Delta)
	}
	return b.String()
}

func TestNewProvider(t *testing.T) {
	_, err := anthropic.NewProvider(anthropic.Config{BaseURL: "http://x"})
	require.Error(t, err)

	provider, err := anthropic.NewProvider(anthropic.Config{APIKey: "k", BaseURL: "http://x/"})
	require.NoError(t, err)
	require.Equal(t, "anthropic", provider.Name())
}

func TestProvider_Complete(t *testing.T) {
	t.Run("should send a Messages API request and map the response", func(t *testing.T) {
		var received map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/messages", r.URL.Path)
			require.Equal(t, "test-key", r.Header.Get("x-api-key"))
			require.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, completeBody)
		}))
		defer server.Close()

		resp, err := newProvider(t, server.URL, transport.Config{}).Complete(context.Background(), newRequest(false))
		require.NoError(t, err)

		require.Equal(t, "Be brief.", received["system"])
		require.EqualValues(t, domain.DefaultMaxTokens, received["max_tokens"])
		require.NotContains(t, received, "stream")

		require.Equal(t, "msg_01", resp.ID)
		require.Equal(t, "Hello there!", resp.Content)
		require.Equal(t, domain.FinishReasonStop, resp.FinishReason)
		require.Equal(t, domain.Usage{PromptTokens: 9, CompletionTokens: 4, TotalTokens: 13}, resp.Usage)
		require.Equal(t, "anthropic", resp.Provider)
	})

	t.Run("should map upstream errors by status", func(t *testing.T) {
		tests := []struct {
			status int
			kind   domain.ProviderErrorKind
		}{
			{status: http.StatusUnauthorized, kind: domain.Upstream4xx},
			{status: http.StatusTooManyRequests, kind: domain.Upstream4xx},
			{status: 529, kind: domain.Upstream5xx},
		}

		for _, tt := range tests {
			t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = io.WriteString(w, `{"type":"error","error":{"type":"some_error","message":"upstream said no"}}`)
				}))
				defer server.Close()

				_, err := newProvider(t, server.URL, transport.Config{}).Complete(context.Background(), newRequest(false))

				var providerErr *domain.ProviderError
				require.True(t, errors.As(err, &providerErr))
				require.Equal(t, tt.kind, providerErr.Kind)
				require.Equal(t, tt.status, providerErr.StatusCode)
				require.Contains(t, providerErr.Message, "upstream said no")
			})
		}
	})

	t.Run("should time out slow upstreams", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		defer server.Close()

		_, err := newProvider(t, server.URL, transport.Config{Timeout: 1}).Complete(context.Background(), newRequest(false))

		var providerErr *domain.ProviderError
		require.True(t, errors.As(err, &providerErr))
		require.Equal(t, domain.ProviderTimeout, providerErr.Kind)
	})

	t.Run("should report connection failures", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := newProvider(t, url, transport.Config{ConnectTimeout: 1}).Complete(context.Background(), newRequest(false))

		var providerErr *domain.ProviderError
		require.True(t, errors.As(err, &providerErr))
		require.Equal(t, domain.ConnectionFailure, providerErr.Kind)
	})
}

func TestProvider_Stream(t *testing.T) {
	sseServer := func(body string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]any
			_ = json.NewDecoder(r.Body).Decode(&payload)
			if payload["stream"] != true {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, completeBody)
				return
			}
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = io.WriteString(w, body)
		}))
	}

	t.Run("should normalize events in order", func(t *testing.T) {
		server := sseServer(streamBody)
		defer server.Close()

		chunks, err := newProvider(t, server.URL, transport.Config{}).Stream(context.Background(), newRequest(true))
		require.NoError(t, err)

		got := collect(t, chunks)
		require.Len(t, got, 3)
		require.Equal(t, "Hello", got[0].Delta)
		require.Equal(t, " there!", got[1].Delta)

		last := got[2]
		require.True(t, last.Done)
		require.Equal(t, domain.FinishReasonStop, last.FinishReason)
		require.Equal(t, &domain.Usage{PromptTokens: 9, CompletionTokens: 4, TotalTokens: 13}, last.Usage)
	})

	t.Run("should match the non-streaming content", func(t *testing.T) {
		server := sseServer(streamBody)
		defer server.Close()

		provider := newProvider(t, server.URL, transport.Config{})

		resp, err := provider.Complete(context.Background(), newRequest(false))
		require.NoError(t, err)

		chunks, err := provider.Stream(context.Background(), newRequest(true))
		require.NoError(t, err)

		require.Equal(t, resp.Content, concat(collect(t, chunks)))
	})

	t.Run("should map max_tokens to length", func(t *testing.T) {
		body := strings.Replace(streamBody, `"stop_reason":"end_turn"`, `"stop_reason":"max_tokens"`, 1)
		server := sseServer(body)
		defer server.Close()

		chunks, err := newProvider(t, server.URL, transport.Config{}).Stream(context.Background(), newRequest(true))
		require.NoError(t, err)

		got := collect(t, chunks)
		require.Equal(t, domain.FinishReasonLength, got[len(got)-1].FinishReason)
	})

	t.Run("should synthesize stop when upstream closes early", func(t *testing.T) {
		body := "event: content_block_delta\n" +
			`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}` + "\n\n"
		server := sseServer(body)
		defer server.Close()

		chunks, err := newProvider(t, server.URL, transport.Config{}).Stream(context.Background(), newRequest(true))
		require.NoError(t, err)

		got := collect(t, chunks)
		require.Len(t, got, 2)
		require.Equal(t, "Hel", got[0].Delta)
		require.True(t, got[1].Done)
		require.Equal(t, domain.FinishReasonStop, got[1].FinishReason)
		require.NoError(t, got[1].Error)
	})

	t.Run("should deliver error events as stream interruptions", func(t *testing.T) {
		body := "event: content_block_delta\n" +
			`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}` + "\n\n" +
			"event: error\n" +
			`data: {"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}` + "\n\n"
		server := sseServer(body)
		defer server.Close()

		chunks, err := newProvider(t, server.URL, transport.Config{}).Stream(context.Background(), newRequest(true))
		require.NoError(t, err)

		got := collect(t, chunks)
		require.Len(t, got, 2)

		var interrupted *domain.StreamInterruptedError
		require.True(t, errors.As(got[1].Error, &interrupted))
		require.Contains(t, interrupted.Error(), "Overloaded")
	})

	t.Run("should fail before streaming on upstream rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
		}))
		defer server.Close()

		chunks, err := newProvider(t, server.URL, transport.Config{}).Stream(context.Background(), newRequest(true))
		require.Nil(t, chunks)

		var providerErr *domain.ProviderError
		require.True(t, errors.As(err, &providerErr))
		require.Equal(t, domain.Upstream4xx, providerErr.Kind)
	})

	t.Run("should time out an idle stream", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = io.WriteString(w, "event: content_block_delta\n"+
				`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`+"\n\n")
			w.(http.Flusher).Flush()
			<-r.Context().Done()
		}))
		defer server.Close()

		chunks, err := newProvider(t, server.URL, transport.Config{StreamIdleTimeout: 1}).Stream(context.Background(), newRequest(true))
		require.NoError(t, err)

		got := collect(t, chunks)
		require.Len(t, got, 2)

		var providerErr *domain.ProviderError
		require.True(t, errors.As(got[1].Error, &providerErr))
		require.Equal(t, domain.ProviderTimeout, providerErr.Kind)
	})

	t.Run("should cancel the upstream read when the caller goes away", func(t *testing.T) {
		upstreamDone := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = io.WriteString(w, "event: ping\ndata: {\"type\":\"ping\"}\n\n")
			w.(http.Flusher).Flush()
			<-r.Context().Done()
			close(upstreamDone)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		chunks, err := newProvider(t, server.URL, transport.Config{}).Stream(ctx, newRequest(true))
		require.NoError(t, err)

		cancel()

		select {
		case <-upstreamDone:
		case <-time.After(5 * time.Second):
			t.Fatal("upstream request was not cancelled")
		}
		collect(t, chunks)
	})
}
