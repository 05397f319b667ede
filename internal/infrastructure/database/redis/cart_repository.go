package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alma-store/storefront-api/internal/domain/cart"
	"github.com/redis/go-redis/v9"
)

// CartRepository stores each cart as one JSON array under "<namespace>:<owner>"
type CartRepository struct {
	rdb       *redis.Client
	namespace string
	ttl       time.Duration
}

// NewCartRepository creates a Redis-backed cart repository.
// A zero ttl keeps records forever.
func NewCartRepository(rdb *redis.Client, namespace string, ttl time.Duration) *CartRepository {
	return &CartRepository{
		rdb:       rdb,
		namespace: namespace,
		ttl:       ttl,
	}
}

var _ cart.Repository = (*CartRepository)(nil)

func (r *CartRepository) Load(ctx context.Context, owner string) ([]cart.LineItem, error) {
	if owner == "" {
		return nil, cart.ErrOwnerRequired
	}

	data, err := r.rdb.Get(ctx, r.key(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rdb.Get: %w", err)
	}

	return cart.UnmarshalItems(data)
}

func (r *CartRepository) Save(ctx context.Context, owner string, items []cart.LineItem) error {
	if owner == "" {
		return cart.ErrOwnerRequired
	}

	data, err := cart.MarshalItems(items)
	if err != nil {
		return err
	}

	if err := r.rdb.Set(ctx, r.key(owner), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("rdb.Set: %w", err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, owner string) error {
	if owner == "" {
		return cart.ErrOwnerRequired
	}

	if err := r.rdb.Del(ctx, r.key(owner)).Err(); err != nil {
		return fmt.Errorf("rdb.Del: %w", err)
	}
	return nil
}

func (r *CartRepository) key(owner string) string {
	return fmt.Sprintf("%s:%s", r.namespace, owner)
}
