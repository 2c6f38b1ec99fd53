package gemini

import "github.com/davidbz/bridge/internal/provider/transport"

// Config contains Gemini provider configuration.
type Config struct {
	APIKey    string           `env:"GOOGLE_API_KEY"`
	BaseURL   string           `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	Transport transport.Config `envPrefix:"GEMINI_"`
}

// Enabled reports whether credentials are configured.
func (c Config) Enabled() bool {
	return c.APIKey != ""
}
