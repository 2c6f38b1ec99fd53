package httpserver

import (
	"github.com/google/uuid"

	"github.com/davidbz/bridge/internal/domain"
)

const (
	objectCompletion = "chat.completion"
	objectChunk      = "chat.completion.chunk"
	objectModel      = "model"
	objectList       = "list"

	completionIDPrefix = "chatcmpl-"
)

type chatCompletion struct {
	ID      string    `json:"id"`
	Object  string    `json:"object"`
	Created int64     `json:"created"`
	Model   string    `json:"model"`
	Choices []choice  `json:"choices"`
	Usage   wireUsage `json:"usage"`
}

type choice struct {
	Index        int         `json:"index"`
	Message      wireMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []chunkChoice `json:"choices"`
	Usage   *wireUsage    `json:"usage,omitempty"`
}

type chunkChoice struct {
	Index int       `json:"index"`
	Delta wireDelta `json:"delta"`
	// FinishReason is null on every chunk but the last.
	FinishReason *string `json:"finish_reason"`
}

type wireDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

type wireUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type modelObject struct {
	ID              string `json:"id"`
	Object          string `json:"object"`
	Created         int64  `json:"created"`
	OwnedBy         string `json:"owned_by"`
	ContextWindow   int    `json:"context_window,omitempty"`
	MaxOutputTokens int    `json:"max_output_tokens,omitempty"`
}

type modelList struct {
	Object string        `json:"object"`
	Data   []modelObject `json:"data"`
}

func newCompletionID() string {
	return completionIDPrefix + uuid.NewString()
}

func toWireUsage(u domain.Usage) wireUsage {
	total := u.TotalTokens
	if total == 0 {
		total = u.PromptTokens + u.CompletionTokens
	}
	return wireUsage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      total,
	}
}

func toChatCompletion(resp *domain.CompletionResponse, created int64) chatCompletion {
	id := resp.ID
	if id == "" {
		id = newCompletionID()
	}

	finish := resp.FinishReason
	if finish == "" {
		finish = domain.FinishReasonStop
	}

	return chatCompletion{
		ID:      id,
		Object:  objectCompletion,
		Created: created,
		Model:   resp.Model,
		Choices: []choice{{
			Index:        0,
			Message:      wireMessage{Role: domain.RoleAssistant, Content: resp.Content},
			FinishReason: string(finish),
		}},
		Usage: toWireUsage(resp.Usage),
	}
}

func toModelObject(desc domain.ModelDescriptor, created int64) modelObject {
	return modelObject{
		ID:              desc.PublicID,
		Object:          objectModel,
		Created:         created,
		OwnedBy:         desc.Provider.OwnedBy(),
		ContextWindow:   desc.MaxContextTokens,
		MaxOutputTokens: desc.MaxOutputTokens,
	}
}
