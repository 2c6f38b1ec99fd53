package anthropic

import "github.com/davidbz/bridge/internal/domain"

// Messages API request/response structures.
type messagesRequest struct {
	Model         string    `json:"model"`
	System        string    `json:"system,omitempty"`
	Messages      []message `json:"messages"`
	MaxTokens     int       `json:"max_tokens"`
	Temperature   *float64  `json:"temperature,omitempty"`
	TopP          *float64  `json:"top_p,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
	Stream        bool      `json:"stream,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      usageBlock     `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type usageBlock struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type apiErrorResponse struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// toAnthropic translates a completion request into a Messages API request.
// System messages move into the system field; user and assistant turns keep their order.
func toAnthropic(req *domain.CompletionRequest) messagesRequest {
	system, turns := domain.SplitSystem(req.Messages)

	messages := make([]message, 0, len(turns))
	for _, msg := range turns {
		messages = append(messages, message{Role: msg.Role, Content: msg.Content})
	}

	return messagesRequest{
		Model:         req.Model,
		System:        system,
		Messages:      messages,
		MaxTokens:     domain.EffectiveMaxTokens(req),
		Temperature:   req.Temperature,
		TopP:          req.TopP,
		StopSequences: req.Stop,
		Stream:        req.Stream,
	}
}

func (u usageBlock) toDomain() domain.Usage {
	return domain.Usage{
		PromptTokens:     u.InputTokens,
		CompletionTokens: u.OutputTokens,
		TotalTokens:      u.InputTokens + u.OutputTokens,
	}
}
