package anthropic

import "github.com/davidbz/bridge/internal/provider/transport"

// Config contains Anthropic provider configuration.
type Config struct {
	APIKey    string           `env:"ANTHROPIC_API_KEY"`
	BaseURL   string           `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com"`
	Version   string           `env:"ANTHROPIC_VERSION"  envDefault:"2023-06-01"`
	Transport transport.Config `envPrefix:"ANTHROPIC_"`
}

// Enabled reports whether credentials are configured.
func (c Config) Enabled() bool {
	return c.APIKey != ""
}
