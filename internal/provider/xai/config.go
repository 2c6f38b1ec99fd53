package xai

import "github.com/davidbz/bridge/internal/provider/transport"

// Config contains xAI provider configuration.
// The API is OpenAI-compatible and is reached through the OpenAI SDK:
//   - APIKey: Maps to option.WithAPIKey()
//   - BaseURL: Maps to option.WithBaseURL()
//   - Transport: builds the client passed to option.WithHTTPClient()
type Config struct {
	APIKey    string           `env:"GROK_API_KEY"`
	BaseURL   string           `env:"GROK_BASE_URL" envDefault:"https://api.x.ai/v1"`
	Transport transport.Config `envPrefix:"GROK_"`
}

// Enabled reports whether credentials are configured.
func (c Config) Enabled() bool {
	return c.APIKey != ""
}
