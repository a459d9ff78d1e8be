package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/ports"
	"grabbit/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// DefaultIdempotencyTTL is used when the store is created with a non-positive TTL.
const DefaultIdempotencyTTL = 24 * time.Hour

var (
	_ ports.IdempotencyStore = (*IdempotencyStore)(nil)
	_ ports.IdempotencyStore = NopIdempotencyStore{}
)

// releaseScript deletes the key only while it still holds our order id.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// IdempotencyStore keeps idem:order:create:<buyer>:<key> -> order id for ttl.
type IdempotencyStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewIdempotencyStore(client redis.UniversalClient, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) Reserve(
	ctx context.Context,
	buyerID kernel.UUID,
	key string,
	orderID kernel.UUID,
) (kernel.UUID, bool, error) {
	k := s.key(buyerID, key)

	// The key can expire between SETNX and GET; one retry covers that gap.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, orderID.String(), s.ttl).Result()
		if err != nil {
			return kernel.UUID{}, false, errs.NewStorageUnavailableErrorWithCause("idempotency reserve", err)
		}
		if ok {
			return orderID, true, nil
		}

		stored, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return kernel.UUID{}, false, errs.NewStorageUnavailableErrorWithCause("idempotency lookup", err)
		}

		existing, err := kernel.UUIDFromString(stored)
		if err != nil {
			return kernel.UUID{}, false, fmt.Errorf("idempotency key %q holds %q: %w", k, stored, err)
		}
		return existing, false, nil
	}

	return kernel.UUID{}, false, errs.NewStorageUnavailableError("idempotency reserve")
}

func (s *IdempotencyStore) Release(ctx context.Context, buyerID kernel.UUID, key string, orderID kernel.UUID) error {
	err := releaseScript.Run(ctx, s.client, []string{s.key(buyerID, key)}, orderID.String()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return errs.NewStorageUnavailableErrorWithCause("idempotency release", err)
	}
	return nil
}

func (s *IdempotencyStore) key(buyerID kernel.UUID, key string) string {
	return fmt.Sprintf("idem:order:create:%s:%s", buyerID, key)
}

// NopIdempotencyStore reserves every key. It is used when Redis is not configured.
type NopIdempotencyStore struct{}

func (NopIdempotencyStore) Reserve(_ context.Context, _ kernel.UUID, _ string, orderID kernel.UUID) (kernel.UUID, bool, error) {
	return orderID, true, nil
}

func (NopIdempotencyStore) Release(context.Context, kernel.UUID, string, kernel.UUID) error {
	return nil
}
