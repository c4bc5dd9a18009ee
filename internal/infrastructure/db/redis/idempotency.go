package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour

	// pendingValue marks a key claimed by a send that has not finished yet.
	pendingValue = "pending"
)

// IdempotencyStore remembers which message an Idempotency-Key produced.
// Key format: idem:msg:<username>:<key>
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Claim reserves key with SETNX. When the key is already held it returns the
// stored message id, or "" while the owning send is still in flight.
func (s *IdempotencyStore) Claim(ctx context.Context, caller, key string, ttl time.Duration) (string, bool, error) {
	k := s.key(caller, key)
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, pendingValue, ttlOrDefault(ttl)).Result()
		if err != nil {
			return "", false, fmt.Errorf("idempotency claim: %w", err)
		}
		if ok {
			return "", true, nil
		}

		id, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			// Released or expired between SETNX and GET.
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("idempotency claim: %w", err)
		}
		return pendingID(id), false, nil
	}
	return "", false, nil
}

// Complete replaces the pending marker with messageID.
func (s *IdempotencyStore) Complete(ctx context.Context, caller, key, messageID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(caller, key), messageID, ttlOrDefault(ttl)).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release drops a claim so the key can be used again after a failed send.
func (s *IdempotencyStore) Release(ctx context.Context, caller, key string) error {
	if err := s.client.Del(ctx, s.key(caller, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(caller, key string) string {
	return fmt.Sprintf("idem:msg:%s:%s", caller, key)
}

func pendingID(v string) string {
	if v == pendingValue {
		return ""
	}
	return v
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return defaultIdempotencyTTL
	}
	return ttl
}
