// internal/domain/cart/store.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

// Listener receives one snapshot per committed cart mutation.
// Listeners run synchronously and must not mutate or (un)subscribe to the
// store they are attached to.
type Listener func(Snapshot)

// Store holds the line items of a single cart owner.
//
// Mutations are applied under the store lock and published to listeners in
// commit order, so no reader ever sees a half-applied update. Repository
// failures are logged and otherwise ignored: cart operations cannot fail.
type Store struct {
	owner  string
	repo   Repository
	logger logrus.FieldLogger

	mu      sync.Mutex
	items   []LineItem
	version uint64

	// notifyMu is always taken while holding mu and released after the
	// listeners ran, which keeps deliveries ordered by version.
	notifyMu  sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64
}

// Open hydrates the cart of owner from the repository. Missing and corrupt
// records open as an empty cart; any other load failure is returned so the
// persisted record is never replaced by an empty one.
func Open(ctx context.Context, owner string, repo Repository, logger logrus.FieldLogger) (*Store, error) {
	s := &Store{
		owner:     owner,
		repo:      repo,
		logger:    logger.WithField("cart_owner", owner),
		listeners: make(map[uint64]Listener),
	}

	items, err := repo.Load(ctx, owner)
	switch {
	case errors.Is(err, ErrCorruptRecord):
		s.logger.WithError(err).Warn("Discarding corrupt cart record")
		items = nil
	case err != nil:
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	s.items = sanitize(items)

	return s, nil
}

// Owner returns the session or user the cart belongs to
func (s *Store) Owner() string {
	return s.owner
}

// AddToCart adds exactly one unit of item. An existing entry with the same id
// has its quantity incremented and its descriptive fields refreshed.
func (s *Store) AddToCart(ctx context.Context, item LineItem) {
	s.add(ctx, item, 1)
}

// AddQuantity adds n units of item, n below 1 counts as 1
func (s *Store) AddQuantity(ctx context.Context, item LineItem, n int) {
	if n < 1 {
		n = 1
	}
	s.add(ctx, item, n)
}

// RemoveFromCart deletes the entry with the given id, if present
func (s *Store) RemoveFromCart(ctx context.Context, id ItemID) {
	s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		i := indexOf(items, id)
		if i < 0 {
			return items, false
		}
		return slices.Delete(slices.Clone(items), i, i+1), true
	})
}

// UpdateQuantity sets the quantity of an existing entry. A quantity of zero or
// less removes the entry. Unknown ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, id ItemID, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, id)
		return
	}

	s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		i := indexOf(items, id)
		if i < 0 || items[i].Quantity == quantity {
			return items, false
		}
		next := slices.Clone(items)
		next[i].Quantity = quantity
		return next, true
	})
}

// ClearCart empties the cart and removes its persisted record
func (s *Store) ClearCart(ctx context.Context) {
	s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		return nil, true
	})
}

// Snapshot returns the current committed state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribers returns the number of active subscriptions
func (s *Store) Subscribers() int {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	return len(s.listeners)
}

// Subscribe registers fn and immediately delivers the current snapshot to it.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.notifyMu.Lock()
	s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	fn(snap)
	s.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.notifyMu.Lock()
			delete(s.listeners, id)
			s.notifyMu.Unlock()
		})
	}
}

func (s *Store) add(ctx context.Context, item LineItem, n int) {
	item = normalize(item)

	s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		next := slices.Clone(items)
		if i := indexOf(next, item.ID); i >= 0 {
			item.Quantity = next[i].Quantity + n
			next[i] = item
			return next, true
		}
		item.Quantity = n
		return append(next, item), true
	})
}

// mutate applies fn to the current items. fn must not modify its argument in
// place: snapshots already handed out share its backing array.
func (s *Store) mutate(ctx context.Context, fn func([]LineItem) ([]LineItem, bool)) {
	s.mu.Lock()

	next, changed := fn(s.items)
	if !changed {
		s.mu.Unlock()
		return
	}

	s.items = next
	s.version++
	snap := s.snapshotLocked()
	s.persist(ctx, snap.Items)

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, l := range s.listeners {
		l(snap)
	}
}

func (s *Store) persist(ctx context.Context, items []LineItem) {
	var err error
	if len(items) == 0 {
		err = s.repo.Delete(ctx, s.owner)
	} else {
		err = s.repo.Save(ctx, s.owner, items)
	}

	if err != nil {
		s.logger.WithError(err).Error("Failed to persist cart")
	}
}

func (s *Store) snapshotLocked() Snapshot {
	items := make([]LineItem, len(s.items))
	for i, item := range s.items {
		item.Specifications = slices.Clone(item.Specifications)
		items[i] = item
	}

	return Snapshot{
		Owner:   s.owner,
		Version: s.version,
		Items:   items,
		Totals:  CalculateTotals(items),
	}
}

func indexOf(items []LineItem, id ItemID) int {
	return slices.IndexFunc(items, func(li LineItem) bool {
		return li.ID == id
	})
}
