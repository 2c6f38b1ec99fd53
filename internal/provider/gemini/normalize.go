package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/observability"
	"github.com/davidbz/bridge/internal/sse"
)

// finishReason maps a Gemini finishReason onto the OpenAI vocabulary.
func finishReason(ctx context.Context, reason string) domain.FinishReason {
	switch reason {
	case "STOP", "":
		return domain.FinishReasonStop
	case "MAX_TOKENS":
		return domain.FinishReasonLength
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII", "IMAGE_SAFETY":
		return domain.FinishReasonContentFilter
	default:
		observability.FromContext(ctx).Warn("unknown gemini finish reason, reporting stop",
			observability.String("finish_reason", reason))
		return domain.FinishReasonStop
	}
}

// text concatenates the parts of the first candidate.
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}

	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// finish returns the upstream finish signal of the response, if any.
// A blocked prompt counts as a content_filter finish.
func (r *generateResponse) finish() (string, bool) {
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return "SAFETY", true
	}
	if len(r.Candidates) > 0 && r.Candidates[0].FinishReason != "" {
		return r.Candidates[0].FinishReason, true
	}
	return "", false
}

// normalizer turns streamGenerateContent events into chunks. Every event carries a
// complete generateResponse; the stream ends when the connection closes.
type normalizer struct {
	ctx   context.Context
	usage *usageMetadata
}

func newNormalizer(ctx context.Context) *normalizer {
	return &normalizer{ctx: ctx}
}

func (n *normalizer) handle(ev *sse.Event) ([]domain.StreamChunk, bool, error) {
	var resp generateResponse
	if err := sonic.UnmarshalString(ev.Data, &resp); err != nil {
		return nil, false, fmt.Errorf("failed to decode gemini event: %w", err)
	}

	if resp.UsageMetadata != nil {
		n.usage = resp.UsageMetadata
	}

	var chunks []domain.StreamChunk
	if text := resp.text(); text != "" {
		chunks = append(chunks, domain.StreamChunk{Delta: text})
	}

	reason, done := resp.finish()
	if done {
		chunks = append(chunks, n.final(reason))
	}

	return chunks, done, nil
}

// finish is called when the connection closed without a finishReason.
func (n *normalizer) finish() domain.StreamChunk {
	observability.FromContext(n.ctx).Warn("gemini stream ended without finish reason, synthesizing stop")
	return n.final("")
}

func (n *normalizer) final(reason string) domain.StreamChunk {
	usage := n.usage.toDomain()
	return domain.StreamChunk{
		Done:         true,
		FinishReason: finishReason(n.ctx, reason),
		Usage:        &usage,
	}
}
