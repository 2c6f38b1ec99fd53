package domain

import "fmt"

const (
	minTemperature = 0.0
	maxTemperature = 1.0
	minTopP        = 0.0
	maxTopP        = 1.0
)

// ValidateRequest checks the request shape. It runs before any routing or upstream call.
func ValidateRequest(req *CompletionRequest) error {
	if req.Model == "" {
		return missingField("model")
	}

	if len(req.Messages) == 0 {
		return missingField("messages")
	}

	turns := 0
	for i, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
		case RoleUser, RoleAssistant:
			turns++
		case "":
			return missingField(fmt.Sprintf("messages[%d].role", i))
		default:
			return &ValidationError{
				Kind:    ValidationInvalidValue,
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: fmt.Sprintf("messages[%d].role must be one of system, user, assistant, got %q", i, msg.Role),
			}
		}
	}

	if turns == 0 {
		return &ValidationError{
			Kind:    ValidationMissingField,
			Field:   "messages",
			Message: "messages must contain at least one user or assistant message",
		}
	}

	if req.Temperature != nil && (*req.Temperature < minTemperature || *req.Temperature > maxTemperature) {
		return &ValidationError{
			Kind:    ValidationOutOfRange,
			Field:   "temperature",
			Message: fmt.Sprintf("temperature must be within [%.1f, %.1f], got %g", minTemperature, maxTemperature, *req.Temperature),
		}
	}

	if req.TopP != nil && (*req.TopP < minTopP || *req.TopP > maxTopP) {
		return &ValidationError{
			Kind:    ValidationOutOfRange,
			Field:   "top_p",
			Message: fmt.Sprintf("top_p must be within [%.1f, %.1f], got %g", minTopP, maxTopP, *req.TopP),
		}
	}

	if req.MaxTokens != nil && *req.MaxTokens <= 0 {
		return &ValidationError{
			Kind:    ValidationOutOfRange,
			Field:   "max_tokens",
			Message: fmt.Sprintf("max_tokens must be greater than 0, got %d", *req.MaxTokens),
		}
	}

	return nil
}

// ValidateForModel checks the request against the limits of the resolved model.
func ValidateForModel(req *CompletionRequest, desc ModelDescriptor) error {
	if req.Stream && !desc.SupportsStreaming {
		return &ValidationError{
			Kind:    ValidationInvalidValue,
			Field:   "stream",
			Message: fmt.Sprintf("model %s does not support streaming", desc.PublicID),
		}
	}

	if req.MaxTokens != nil && desc.MaxOutputTokens > 0 && *req.MaxTokens > desc.MaxOutputTokens {
		return &ValidationError{
			Kind:    ValidationOutOfRange,
			Field:   "max_tokens",
			Message: fmt.Sprintf("max_tokens must be at most %d for model %s, got %d", desc.MaxOutputTokens, desc.PublicID, *req.MaxTokens),
		}
	}

	return nil
}

func missingField(field string) *ValidationError {
	return &ValidationError{
		Kind:    ValidationMissingField,
		Field:   field,
		Message: field + " is required",
	}
}
