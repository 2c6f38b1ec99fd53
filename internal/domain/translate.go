package domain

import "strings"

// DefaultMaxTokens is substituted when a request omits max_tokens. Every provider uses the
// same value so responses stay comparable across providers.
const DefaultMaxTokens = 4096

const systemSeparator = "\n"

// SplitSystem extracts every system message into a single instruction, joined with a
// newline in original order, and returns the remaining turns in order.
func SplitSystem(messages []Message) (string, []Message) {
	var system []string
	turns := make([]Message, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		turns = append(turns, msg)
	}

	return strings.Join(system, systemSeparator), turns
}

// EffectiveMaxTokens returns the requested max_tokens or DefaultMaxTokens.
func EffectiveMaxTokens(req *CompletionRequest) int {
	if req.MaxTokens != nil {
		return *req.MaxTokens
	}
	return DefaultMaxTokens
}
