// Package xai provides an adapter for the xAI Grok API using the official OpenAI SDK.
// It implements the domain.Provider interface and handles conversion between
// domain types and SDK types.
package xai

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/observability"
	"github.com/davidbz/bridge/internal/provider/transport"
)

const providerName = string(domain.ProviderXAI)

// Provider implements the domain.Provider interface for xAI.
type Provider struct {
	client   openai.Client
	timeouts transport.Config
}

// NewProvider creates a new xAI provider. SDK retries are disabled.
func NewProvider(config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("xAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithHTTPClient(transport.NewHTTPClient(config.Transport)),
		option.WithMaxRetries(0),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &Provider{
		client:   openai.NewClient(opts...),
		timeouts: config.Transport,
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return providerName
}

// Complete sends a completion request and returns the full response.
func (p *Provider) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling xAI API")

	if total := p.timeouts.TotalDuration(); total > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, total)
		defer cancel()
	}

	resp, err := p.client.Chat.Completions.New(ctx, toSDKParams(req))
	if err != nil {
		return nil, classify(err, nil)
	}

	logger.Debug("xAI API call succeeded",
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
	)

	return toDomainResponse(ctx, req.Model, resp), nil
}

// Stream sends a completion request and returns a stream of chunks.
func (p *Provider) Stream(ctx context.Context, req *domain.CompletionRequest) (<-chan domain.StreamChunk, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling xAI streaming API")

	streamCtx, cancel := context.WithCancel(ctx)
	watchdog := transport.NewWatchdog(p.timeouts.IdleDuration(), cancel)

	params := toSDKParams(req)
	params.StreamOptions = openai.ChatCompletionStreamOptionsParam{IncludeUsage: openai.Bool(true)}

	stream := p.client.Chat.Completions.NewStreaming(streamCtx, params)
	if err := stream.Err(); err != nil {
		watchdog.Stop()
		cancel()
		return nil, classify(err, watchdog)
	}
	watchdog.Kick()

	chunks := make(chan domain.StreamChunk)

	go func() {
		defer close(chunks)
		defer cancel()
		defer watchdog.Stop()
		defer stream.Close()

		send := func(chunk domain.StreamChunk) bool {
			select {
			case chunks <- chunk:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var (
			reason string
			usage  domain.Usage
		)

		for stream.Next() {
			watchdog.Kick()
			chunk := stream.Current()

			if chunk.Usage.TotalTokens > 0 {
				usage = toDomainUsage(chunk.Usage)
			}

			if len(chunk.Choices) == 0 {
				continue
			}

			choice := chunk.Choices[0]
			if choice.FinishReason != "" {
				reason = choice.FinishReason
			}

			if choice.Delta.Content != "" && !send(domain.StreamChunk{Delta: choice.Delta.Content}) {
				return
			}
		}

		if err := stream.Err(); err != nil {
			if ctx.Err() == nil {
				send(domain.StreamChunk{Error: transport.Interrupted(providerName, err, watchdog)})
			}
			return
		}

		if reason == "" {
			logger.Warn("xAI stream ended without finish reason, synthesizing stop")
		}

		send(domain.StreamChunk{
			Done:         true,
			FinishReason: finishReason(ctx, reason),
			Usage:        &usage,
		})
	}()

	return chunks, nil
}

// classify maps SDK errors onto the provider error taxonomy.
func classify(err error, watchdog *transport.Watchdog) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return transport.StatusError(providerName, apiErr.StatusCode, apiErr.Message)
	}
	return transport.ClassifyStream(providerName, err, watchdog)
}

// finishReason keeps the OpenAI vocabulary; anything else becomes stop.
func finishReason(ctx context.Context, reason string) domain.FinishReason {
	switch domain.FinishReason(reason) {
	case domain.FinishReasonStop, domain.FinishReasonLength, domain.FinishReasonContentFilter:
		return domain.FinishReason(reason)
	case "":
		return domain.FinishReasonStop
	default:
		observability.FromContext(ctx).Warn("unknown xAI finish reason, reporting stop",
			observability.String("finish_reason", reason))
		return domain.FinishReasonStop
	}
}

// toSDKParams converts domain request to SDK ChatCompletionNewParams.
func toSDKParams(req *domain.CompletionRequest) openai.ChatCompletionNewParams {
	system, turns := domain.SplitSystem(req.Messages)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, msg := range turns {
		if msg.Role == domain.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(msg.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(msg.Content))
	}

	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(req.Model),
		Messages:  messages,
		MaxTokens: openai.Int(int64(domain.EffectiveMaxTokens(req))),
	}

	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	if req.TopP != nil {
		params.TopP = openai.Float(*req.TopP)
	}

	if len(req.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: req.Stop}
	}

	return params
}

// toDomainResponse converts SDK response to domain response.
func toDomainResponse(ctx context.Context, model string, resp *openai.ChatCompletion) *domain.CompletionResponse {
	content, reason := "", ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		reason = resp.Choices[0].FinishReason
	}

	return &domain.CompletionResponse{
		ID:           resp.ID,
		Model:        model,
		Provider:     providerName,
		Content:      content,
		FinishReason: finishReason(ctx, reason),
		Usage:        toDomainUsage(resp.Usage),
		FinishTime:   time.Now(),
	}
}

func toDomainUsage(usage openai.CompletionUsage) domain.Usage {
	return domain.Usage{
		PromptTokens:     int(usage.PromptTokens),
		CompletionTokens: int(usage.CompletionTokens),
		TotalTokens:      int(usage.TotalTokens),
	}
}
