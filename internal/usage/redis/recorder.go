// Package redis keeps per-user daily token counters in Redis hashes.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/observability"
)

const (
	keyPrefix  = "usage"
	dateLayout = "2006-01-02"
)

// Recorder implements domain.UsageRecorder on top of a Redis client.
type Recorder struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewClient opens a client for the configured URL.
func NewClient(cfg *Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewRecorder creates a recorder writing through client.
func NewRecorder(client *redis.Client, cfg *Config) *Recorder {
	return &Recorder{
		client: client,
		ttl:    cfg.TTL(),
		now:    time.Now,
	}
}

// Record adds one completed request to the user's counters for today (UTC).
func (r *Recorder) Record(ctx context.Context, user, model string, usage domain.Usage) error {
	key := Key(user, r.now())

	logger := observability.FromContext(ctx)
	logger.Debug("recording usage",
		observability.String("key", key),
		observability.Int("prompt_tokens", usage.PromptTokens),
		observability.Int("completion_tokens", usage.CompletionTokens))

	pipe := r.client.Pipeline()

	pipe.HIncrBy(ctx, key, Field(model, "requests"), 1)
	pipe.HIncrBy(ctx, key, Field(model, "prompt_tokens"), int64(usage.PromptTokens))
	pipe.HIncrBy(ctx, key, Field(model, "completion_tokens"), int64(usage.CompletionTokens))

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}

	return nil
}

// Totals returns the counters of user for day, keyed by field.
func (r *Recorder) Totals(ctx context.Context, user string, day time.Time) (map[string]string, error) {
	totals, err := r.client.HGetAll(ctx, Key(user, day)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read usage: %w", err)
	}
	return totals, nil
}

// Key returns the hash holding user's counters for the UTC day of t.
func Key(user string, t time.Time) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, user, t.UTC().Format(dateLayout))
}

// Field returns the hash field for one model counter.
func Field(model, counter string) string {
	return model + ":" + counter
}
