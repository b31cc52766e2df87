// Package dedup remembers webhook deliveries that were already applied, so a
// gateway redelivering the same event gets acknowledged without re-entering
// the lifecycle engine. It is best effort: redis being down must never cause
// a webhook to be rejected.
package dedup

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "webhook-dedup:"

type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Seen reports whether the delivery key was marked before. Lookup failures
// count as unseen so the event still reaches the engine.
func (s *Store) Seen(ctx context.Context, key string) bool {
	err := s.client.Get(ctx, keyPrefix+key).Err()
	if err == nil {
		return true
	}
	if !errors.Is(err, redis.Nil) {
		s.logger.Warn("webhook dedup lookup failed", "key", key, "error", err)
	}
	return false
}

// Mark records a successfully applied delivery for the configured TTL.
func (s *Store) Mark(ctx context.Context, key string) {
	if err := s.client.Set(ctx, keyPrefix+key, 1, s.ttl).Err(); err != nil {
		s.logger.Warn("webhook dedup mark failed", "key", key, "error", err)
	}
}
