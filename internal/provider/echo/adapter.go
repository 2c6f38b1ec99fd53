// Package echo provides a development provider that echoes back input messages.
// It implements the domain.Provider interface without making external API calls,
// providing deterministic responses for local smoke tests.
package echo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/observability"
)

const (
	providerName = string(domain.ProviderEcho)
	modelName    = "echo4"
	chunkDelay   = 10 * time.Millisecond
)

// Config toggles the echo provider.
type Config struct {
	Enabled bool `env:"ECHO_ENABLED" envDefault:"false"`
}

// Provider implements the domain.Provider interface for echo testing.
type Provider struct {
	supportedModels map[string]bool
	delay           time.Duration
}

// NewProvider creates a new echo provider.
// No configuration is required as this provider operates entirely in-memory.
func NewProvider() *Provider {
	return &Provider{
		supportedModels: map[string]bool{
			modelName: true,
		},
		delay: chunkDelay,
	}
}

// Complete returns the echoed conversation.
func (p *Provider) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	if err := p.check(req); err != nil {
		return nil, err
	}

	logger := observability.FromContext(ctx)
	logger.Debug("echoing request")

	echoContent := buildEchoContent(req.Messages)
	usage := usageFor(echoContent)

	logger.Debug("echo completed",
		observability.Int("prompt_tokens", usage.PromptTokens),
		observability.Int("completion_tokens", usage.CompletionTokens),
	)

	return &domain.CompletionResponse{
		ID:           uuid.NewString(),
		Model:        req.Model,
		Provider:     providerName,
		Content:      echoContent,
		FinishReason: domain.FinishReasonStop,
		Usage:        usage,
		FinishTime:   time.Now(),
	}, nil
}

// Stream echoes the conversation word by word.
func (p *Provider) Stream(ctx context.Context, req *domain.CompletionRequest) (<-chan domain.StreamChunk, error) {
	if err := p.check(req); err != nil {
		return nil, err
	}

	observability.FromContext(ctx).Debug("streaming echo request")

	echoContent := buildEchoContent(req.Messages)
	chunks := make(chan domain.StreamChunk)

	go func() {
		defer close(chunks)

		// SplitAfter keeps separators so the deltas concatenate to echoContent.
		for _, word := range strings.SplitAfter(echoContent, " ") {
			if word == "" {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case chunks <- domain.StreamChunk{Delta: word}:
			}

			if p.delay > 0 {
				time.Sleep(p.delay)
			}
		}

		usage := usageFor(echoContent)
		select {
		case chunks <- domain.StreamChunk{Done: true, FinishReason: domain.FinishReasonStop, Usage: &usage}:
		case <-ctx.Done():
		}
	}()

	return chunks, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) check(req *domain.CompletionRequest) error {
	if req == nil {
		return errors.New("request cannot be nil")
	}

	if !p.supportedModels[req.Model] {
		return &domain.ProviderError{
			Kind:       domain.Upstream4xx,
			Provider:   providerName,
			StatusCode: 404,
			Message:    fmt.Sprintf("model %s is not supported by echo provider", req.Model),
		}
	}

	return nil
}

// buildEchoContent constructs the echo response from request messages.
func buildEchoContent(messages []domain.Message) string {
	var builder strings.Builder
	for _, msg := range messages {
		fmt.Fprintf(&builder, "[%s]: %s\n", msg.Role, msg.Content)
	}
	return builder.String()
}

// usageFor performs simple word-based token counting.
func usageFor(content string) domain.Usage {
	tokens := len(strings.Fields(content))
	return domain.Usage{
		PromptTokens:     tokens,
		CompletionTokens: tokens,
		TotalTokens:      2 * tokens,
	}
}
