// Package transport holds the outbound HTTP plumbing shared by the provider clients:
// a pooled client with a connect timeout, the stream inactivity watchdog and the mapping
// of transport failures onto domain.ProviderError.
package transport

import "time"

// Config contains the timeouts of one provider client, in seconds.
// It is embedded into each provider config with an envPrefix, e.g. ANTHROPIC_TIMEOUT.
type Config struct {
	ConnectTimeout    int `env:"CONNECT_TIMEOUT"     envDefault:"10"`
	Timeout           int `env:"TIMEOUT"             envDefault:"120"`
	StreamIdleTimeout int `env:"STREAM_IDLE_TIMEOUT" envDefault:"60"`
}

// ConnectDuration is the dial timeout.
func (c Config) ConnectDuration() time.Duration {
	return seconds(c.ConnectTimeout)
}

// TotalDuration bounds a whole non-streaming call.
func (c Config) TotalDuration() time.Duration {
	return seconds(c.Timeout)
}

// IdleDuration bounds the silence between two stream events.
func (c Config) IdleDuration() time.Duration {
	return seconds(c.StreamIdleTimeout)
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
