package payment

import (
	"context"
	"sync"
)

// MemoryGuard is a process-local Guard
type MemoryGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewMemoryGuard creates an empty guard
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{inFlight: make(map[string]struct{})}
}

func (g *MemoryGuard) TryAcquire(_ context.Context, reference string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[reference]; busy {
		return false, nil
	}
	g.inFlight[reference] = struct{}{}
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, reference string) error {
	g.mu.Lock()
	delete(g.inFlight, reference)
	g.mu.Unlock()
	return nil
}
