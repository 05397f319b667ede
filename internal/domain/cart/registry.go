package cart

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultIdleTTL is how long an unused store stays cached
	DefaultIdleTTL = 30 * time.Minute

	defaultLoadTimeout = 5 * time.Second
)

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithIdleTTL sets how long a store without subscribers may go unused before
// it is dropped and rehydrated from the repository on next use
func WithIdleTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.idleTTL = ttl
		}
	}
}

// WithLoadTimeout bounds a single hydration
func WithLoadTimeout(timeout time.Duration) RegistryOption {
	return func(r *Registry) {
		if timeout > 0 {
			r.loadTimeout = timeout
		}
	}
}

type entry struct {
	store    *Store
	lastUsed time.Time
}

// Registry hands out one Store per cart owner. Every caller asking for the
// same owner while the store is cached gets the same *Store, which serializes
// that owner's mutations. Stores idle for longer than the idle TTL and
// without subscribers are dropped.
type Registry struct {
	repo        Repository
	logger      logrus.FieldLogger
	idleTTL     time.Duration
	loadTimeout time.Duration

	mu        sync.Mutex
	stores    map[string]*entry
	lastSweep time.Time
	loads     singleflight.Group
}

// NewRegistry creates a registry backed by repo
func NewRegistry(repo Repository, logger logrus.FieldLogger, opts ...RegistryOption) *Registry {
	r := &Registry{
		repo:        repo,
		logger:      logger,
		idleTTL:     DefaultIdleTTL,
		loadTimeout: defaultLoadTimeout,
		stores:      make(map[string]*entry),
		lastSweep:   time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the cart of owner, hydrating it from the repository when it
// is not cached. Load failures are returned and nothing is cached, so the
// next call retries.
func (r *Registry) Store(ctx context.Context, owner string) (*Store, error) {
	if owner == "" {
		return nil, ErrOwnerRequired
	}

	if s, ok := r.lookup(owner); ok {
		return s, nil
	}

	v, err, _ := r.loads.Do(owner, func() (any, error) {
		if s, ok := r.lookup(owner); ok {
			return s, nil
		}

		// shared by every waiter, so one caller going away must not cancel it
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
		defer cancel()

		s, err := Open(loadCtx, owner, r.repo, r.logger)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.stores[owner] = &entry{store: s, lastUsed: time.Now()}
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		r.logger.WithError(err).WithField("cart_owner", owner).Error("Failed to hydrate cart")
		return nil, err
	}

	return v.(*Store), nil
}

// Forget drops the in-process store of owner. The persisted record is kept;
// the next Store call hydrates again.
func (r *Registry) Forget(owner string) {
	r.mu.Lock()
	delete(r.stores, owner)
	r.mu.Unlock()
}

// Len returns the number of cached stores
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

func (r *Registry) lookup(owner string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.lastSweep) >= r.idleTTL {
		r.sweepLocked(now)
	}

	e, ok := r.stores[owner]
	if !ok {
		return nil, false
	}
	if r.idleLocked(e, now) {
		delete(r.stores, owner)
		return nil, false
	}

	e.lastUsed = now
	return e.store, true
}

func (r *Registry) sweepLocked(now time.Time) {
	for owner, e := range r.stores {
		if r.idleLocked(e, now) {
			delete(r.stores, owner)
		}
	}
	r.lastSweep = now
}

// idleLocked reports whether e may be dropped. A store with subscribers is
// still in use by a stream even when no request touched it.
func (r *Registry) idleLocked(e *entry, now time.Time) bool {
	return now.Sub(e.lastUsed) > r.idleTTL && e.store.Subscribers() == 0
}
