package redis

import (
	"context"
	"time"

	"github.com/alma-store/storefront-api/internal/domain/payment"
	"github.com/redis/go-redis/v9"
)

// PaymentGuard serializes reconciliation of a reference across instances.
// The TTL bounds how long a crashed attempt can hold the lock.
type PaymentGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPaymentGuard(rdb *redis.Client, ttl time.Duration) *PaymentGuard {
	return &PaymentGuard{rdb: rdb, ttl: ttl}
}

func (g *PaymentGuard) TryAcquire(ctx context.Context, reference string) (bool, error) {
	return g.rdb.SetNX(ctx, "payment:reconcile:"+reference, "1", g.ttl).Result()
}

func (g *PaymentGuard) Release(ctx context.Context, reference string) error {
	return g.rdb.Del(ctx, "payment:reconcile:"+reference).Err()
}

var _ payment.Guard = (*PaymentGuard)(nil)
