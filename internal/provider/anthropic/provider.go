// Package anthropic implements the domain.Provider interface for the Anthropic
// Messages API over plain HTTP.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/observability"
	"github.com/davidbz/bridge/internal/provider/transport"
)

const (
	providerName = string(domain.ProviderAnthropic)
	messagesPath = "/v1/messages"
)

// Provider implements the domain.Provider interface for Anthropic.
type Provider struct {
	apiKey   string
	version  string
	messages string
	timeouts transport.Config
	client   *http.Client
}

// NewProvider creates a new Anthropic provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("Anthropic base URL must not be empty")
	}

	return &Provider{
		apiKey:   cfg.APIKey,
		version:  cfg.Version,
		messages: baseURL + messagesPath,
		timeouts: cfg.Transport,
		client:   transport.NewHTTPClient(cfg.Transport),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return providerName
}

// Complete sends a non-streaming Messages API request.
func (p *Provider) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling Anthropic API")

	if total := p.timeouts.TotalDuration(); total > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, total)
		defer cancel()
	}

	payload := toAnthropic(req)
	payload.Stream = false

	httpReq, err := transport.NewJSONRequest(ctx, p.messages, payload, p.headers())
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, transport.Classify(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseAPIError(resp)
	}

	var body messagesResponse
	if err := transport.DecodeJSON(resp.Body, &body); err != nil {
		return nil, transport.Classify(providerName, err)
	}

	logger.Debug("Anthropic API call succeeded",
		observability.Int("prompt_tokens", body.Usage.InputTokens),
		observability.Int("completion_tokens", body.Usage.OutputTokens),
	)

	return &domain.CompletionResponse{
		ID:           body.ID,
		Model:        req.Model,
		Provider:     providerName,
		Content:      joinText(body.Content),
		FinishReason: finishReason(ctx, body.StopReason),
		Usage:        body.Usage.toDomain(),
		FinishTime:   time.Now(),
	}, nil
}

// Stream sends a streaming Messages API request and normalizes its events.
func (p *Provider) Stream(ctx context.Context, req *domain.CompletionRequest) (<-chan domain.StreamChunk, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	observability.FromContext(ctx).Debug("calling Anthropic streaming API")

	payload := toAnthropic(req)
	payload.Stream = true

	streamCtx, cancel := context.WithCancel(ctx)
	watchdog := transport.NewWatchdog(p.timeouts.IdleDuration(), cancel)

	headers := p.headers()
	headers["Accept"] = "text/event-stream"

	httpReq, err := transport.NewJSONRequest(streamCtx, p.messages, payload, headers)
	if err != nil {
		watchdog.Stop()
		cancel()
		return nil, err
	}

	//nolint:bodyclose // Response body is closed by the stream goroutine
	resp, err := p.client.Do(httpReq)
	if err != nil {
		watchdog.Stop()
		cancel()
		return nil, transport.ClassifyStream(providerName, err, watchdog)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer cancel()
		defer watchdog.Stop()
		defer resp.Body.Close()
		return nil, parseAPIError(resp)
	}

	watchdog.Kick()

	n := newNormalizer(ctx)
	return transport.StreamEvents(ctx, cancel, providerName, resp, watchdog, n.handle, n.finish), nil
}

func (p *Provider) headers() map[string]string {
	return map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": p.version,
	}
}

// parseAPIError maps an error response onto a ProviderError, keeping Anthropic's message.
func parseAPIError(resp *http.Response) error {
	body := transport.ReadErrorBody(resp)

	message := strings.TrimSpace(string(body))
	var apiErr apiErrorResponse
	if err := sonic.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = fmt.Sprintf("%s: %s", apiErr.Error.Type, apiErr.Error.Message)
	}

	return transport.StatusError(providerName, resp.StatusCode, message)
}
