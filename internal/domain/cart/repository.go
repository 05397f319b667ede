package cart

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrOwnerRequired is returned when a cart is requested without a session or user
	ErrOwnerRequired = errors.New("cart owner is required")

	// ErrCorruptRecord marks a persisted cart that could not be decoded
	ErrCorruptRecord = errors.New("corrupt cart record")
)

// Repository persists the full line-item collection of one cart owner.
// A missing record loads as an empty list without error.
type Repository interface {
	Load(ctx context.Context, owner string) ([]LineItem, error)
	Save(ctx context.Context, owner string, items []LineItem) error
	Delete(ctx context.Context, owner string) error
}

// MemoryRepository keeps serialized carts in process memory
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string][]byte),
	}
}

func (r *MemoryRepository) Load(_ context.Context, owner string) ([]LineItem, error) {
	if owner == "" {
		return nil, ErrOwnerRequired
	}

	r.mu.RLock()
	data, ok := r.records[owner]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	return UnmarshalItems(data)
}

func (r *MemoryRepository) Save(_ context.Context, owner string, items []LineItem) error {
	if owner == "" {
		return ErrOwnerRequired
	}

	data, err := MarshalItems(items)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.records[owner] = data
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, owner string) error {
	if owner == "" {
		return ErrOwnerRequired
	}

	r.mu.Lock()
	delete(r.records, owner)
	r.mu.Unlock()
	return nil
}

// PutRaw stores an already serialized record as-is
func (r *MemoryRepository) PutRaw(owner string, data []byte) {
	r.mu.Lock()
	r.records[owner] = data
	r.mu.Unlock()
}

// Raw returns the serialized record of owner, if any
func (r *MemoryRepository) Raw(owner string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.records[owner]
	return data, ok
}
