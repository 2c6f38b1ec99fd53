package redis

import "time"

const hoursPerDay = 24

// Config contains usage ledger settings. The ledger is disabled when URL is empty.
type Config struct {
	URL     string `env:"REDIS_URL"`
	TTLDays int    `env:"USAGE_TTL_DAYS" envDefault:"90"`
}

// Enabled reports whether a Redis URL is configured.
func (c *Config) Enabled() bool {
	return c != nil && c.URL != ""
}

// TTL returns how long a daily usage hash is retained.
func (c *Config) TTL() time.Duration {
	if c.TTLDays <= 0 {
		return 0
	}
	return time.Duration(c.TTLDays) * hoursPerDay * time.Hour
}
