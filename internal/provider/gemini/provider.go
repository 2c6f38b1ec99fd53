// Package gemini implements the domain.Provider interface for the Google Gemini
// generateContent API over plain HTTP.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/observability"
	"github.com/davidbz/bridge/internal/provider/transport"
)

const providerName = string(domain.ProviderGemini)

// Provider implements the domain.Provider interface for Gemini.
type Provider struct {
	apiKey   string
	baseURL  string
	timeouts transport.Config
	client   *http.Client
}

// NewProvider creates a new Gemini provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Google API key is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("Gemini base URL must not be empty")
	}

	return &Provider{
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		timeouts: cfg.Transport,
		client:   transport.NewHTTPClient(cfg.Transport),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return providerName
}

// Complete sends a generateContent request.
func (p *Provider) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling Gemini API")

	if total := p.timeouts.TotalDuration(); total > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, total)
		defer cancel()
	}

	httpReq, err := transport.NewJSONRequest(ctx, p.endpoint(req.Model, "generateContent"), toGemini(req), p.headers())
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

	var body generateResponse
	if err := transport.DecodeJSON(resp.Body, &body); err != nil {
		return nil, transport.Classify(providerName, err)
	}

	reason, _ := body.finish()
	usage := body.UsageMetadata.toDomain()

	logger.Debug("Gemini API call succeeded",
		observability.Int("prompt_tokens", usage.PromptTokens),
		observability.Int("completion_tokens", usage.CompletionTokens),
	)

	id := body.ResponseID
	if id == "" {
		id = uuid.NewString()
	}

	return &domain.CompletionResponse{
		ID:           id,
		Model:        req.Model,
		Provider:     providerName,
		Content:      body.text(),
		FinishReason: finishReason(ctx, reason),
		Usage:        usage,
		FinishTime:   time.Now(),
	}, nil
}

// Stream sends a streamGenerateContent request and normalizes its events.
func (p *Provider) Stream(ctx context.Context, req *domain.CompletionRequest) (<-chan domain.StreamChunk, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	observability.FromContext(ctx).Debug("calling Gemini streaming API")

	streamCtx, cancel := context.WithCancel(ctx)
	watchdog := transport.NewWatchdog(p.timeouts.IdleDuration(), cancel)

	endpoint := p.endpoint(req.Model, "streamGenerateContent") + "?alt=sse"
	headers := p.headers()
	headers["Accept"] = "text/event-stream"

	httpReq, err := transport.NewJSONRequest(streamCtx, endpoint, toGemini(req), headers)
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

func (p *Provider) endpoint(model, method string) string {
	return fmt.Sprintf("%s/models/%s:%s", p.baseURL, url.PathEscape(model), method)
}

func (p *Provider) headers() map[string]string {
	return map[string]string{"x-goog-api-key": p.apiKey}
}

// parseAPIError maps a Google API error onto a ProviderError.
func parseAPIError(resp *http.Response) error {
	body := transport.ReadErrorBody(resp)

	message := strings.TrimSpace(string(body))
	var apiErr apiErrorResponse
	if err := sonic.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = fmt.Sprintf("%s: %s", apiErr.Error.Status, apiErr.Error.Message)
	}

	return transport.StatusError(providerName, resp.StatusCode, message)
}
