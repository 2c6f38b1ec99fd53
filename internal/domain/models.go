package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// Message roles accepted on the OpenAI wire contract.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// FinishReason is the OpenAI vocabulary for why generation stopped.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// CompletionRequest represents a unified chat completion request.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	Stop        StopList  `json:"stop,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// StopList holds stop sequences. On the wire it is either a string or an array of strings.
type StopList []string

// UnmarshalJSON accepts both `"stop": "x"` and `"stop": ["x", "y"]`.
func (s *StopList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*s = nil
			return nil
		}
		*s = StopList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("stop must be a string or an array of strings")
	}
	*s = many
	return nil
}

// CompletionResponse represents a unified, non-streaming completion.
type CompletionResponse struct {
	ID           string       `json:"id"`
	Model        string       `json:"model"`
	Provider     string       `json:"provider"`
	Content      string       `json:"content"`
	FinishReason FinishReason `json:"finish_reason"`
	Usage        Usage        `json:"usage"`
	FinishTime   time.Time    `json:"finish_time"`
}

// StreamChunk represents a single normalized streaming chunk.
// The final chunk of a stream has Done set and a non-empty FinishReason.
type StreamChunk struct {
	Delta        string       `json:"delta"`
	Done         bool         `json:"done"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
	Usage        *Usage       `json:"usage,omitempty"`
	Error        error        `json:"-"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ProviderTag identifies an upstream provider variant.
type ProviderTag string

const (
	ProviderAnthropic ProviderTag = "anthropic"
	ProviderGemini    ProviderTag = "gemini"
	ProviderXAI       ProviderTag = "xai"
	ProviderEcho      ProviderTag = "echo"
)

// KnownProvider reports whether tag names a provider variant this gateway implements.
func KnownProvider(tag ProviderTag) bool {
	switch tag {
	case ProviderAnthropic, ProviderGemini, ProviderXAI, ProviderEcho:
		return true
	default:
		return false
	}
}

// OwnedBy returns the organisation reported in the OpenAI models listing.
func (t ProviderTag) OwnedBy() string {
	switch t {
	case ProviderAnthropic:
		return "anthropic"
	case ProviderGemini:
		return "google"
	case ProviderXAI:
		return "xai"
	default:
		return string(t)
	}
}

// ModelDescriptor maps a public model identifier onto a provider and its native model id.
type ModelDescriptor struct {
	PublicID          string
	Provider          ProviderTag
	NativeID          string
	MaxContextTokens  int
	MaxOutputTokens   int
	SupportsStreaming bool
}

// Route is the result of resolving a public model id.
type Route struct {
	Descriptor ModelDescriptor
	Provider   Provider
}
