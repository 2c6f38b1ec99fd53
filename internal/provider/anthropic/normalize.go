package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/observability"
	"github.com/davidbz/bridge/internal/sse"
)

// Stream event types.
const (
	eventMessageStart      = "message_start"
	eventContentBlockDelta = "content_block_delta"
	eventMessageDelta      = "message_delta"
	eventMessageStop       = "message_stop"
	eventError             = "error"

	deltaText = "text_delta"
)

// finishReason maps a stop_reason onto the OpenAI vocabulary.
func finishReason(ctx context.Context, stopReason string) domain.FinishReason {
	switch stopReason {
	case "end_turn", "stop_sequence", "":
		return domain.FinishReasonStop
	case "max_tokens":
		return domain.FinishReasonLength
	case "refusal":
		return domain.FinishReasonContentFilter
	default:
		observability.FromContext(ctx).Warn("unknown anthropic stop reason, reporting stop",
			observability.String("stop_reason", stopReason))
		return domain.FinishReasonStop
	}
}

// joinText concatenates the text blocks of a response. Other block types are skipped.
func joinText(blocks []contentBlock) string {
	var b strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

type streamEvent struct {
	Type    string `json:"type"`
	Message *struct {
		ID    string     `json:"id"`
		Usage usageBlock `json:"usage"`
	} `json:"message,omitempty"`
	Delta *struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta,omitempty"`
	Usage *usageBlock `json:"usage,omitempty"`
	Error *apiError   `json:"error,omitempty"`
}

// normalizer turns Messages API stream events into chunks. It is used by one stream only.
type normalizer struct {
	ctx        context.Context
	usage      usageBlock
	stopReason string
	sawStop    bool
}

func newNormalizer(ctx context.Context) *normalizer {
	return &normalizer{ctx: ctx}
}

func (n *normalizer) handle(ev *sse.Event) ([]domain.StreamChunk, bool, error) {
	var event streamEvent
	if err := sonic.UnmarshalString(ev.Data, &event); err != nil {
		return nil, false, fmt.Errorf("failed to decode %q event: %w", ev.Type, err)
	}
	if event.Type == "" {
		event.Type = ev.Type
	}

	switch event.Type {
	case eventMessageStart:
		if event.Message != nil {
			n.usage.InputTokens = event.Message.Usage.InputTokens
		}
	case eventContentBlockDelta:
		if event.Delta != nil && event.Delta.Type == deltaText && event.Delta.Text != "" {
			return []domain.StreamChunk{{Delta: event.Delta.Text}}, false, nil
		}
	case eventMessageDelta:
		if event.Delta != nil && event.Delta.StopReason != "" {
			n.stopReason = event.Delta.StopReason
			n.sawStop = true
		}
		if event.Usage != nil {
			n.usage.OutputTokens = event.Usage.OutputTokens
		}
	case eventMessageStop:
		return []domain.StreamChunk{n.final()}, true, nil
	case eventError:
		if event.Error != nil {
			return nil, false, fmt.Errorf("anthropic stream error (%s): %s", event.Error.Type, event.Error.Message)
		}
		return nil, false, fmt.Errorf("anthropic stream error: %s", ev.Data)
	default:
		// ping, content_block_start and content_block_stop carry no text.
	}

	return nil, false, nil
}

// finish is called when the upstream closed the stream without message_stop.
func (n *normalizer) finish() domain.StreamChunk {
	if !n.sawStop {
		observability.FromContext(n.ctx).Warn("anthropic stream ended without stop signal, synthesizing stop")
	}
	return n.final()
}

func (n *normalizer) final() domain.StreamChunk {
	usage := n.usage.toDomain()
	return domain.StreamChunk{
		Done:         true,
		FinishReason: finishReason(n.ctx, n.stopReason),
		Usage:        &usage,
	}
}
