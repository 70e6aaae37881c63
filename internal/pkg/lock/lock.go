package lock

import (
	"context"
	"sync"
	"time"
)

// Locker serializes the check-then-write window of a booking. Keys are
// (responsible, date) pairs; whoever fails to take the lock retries with
// fresh data instead of blocking.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// MemoryLock is the single-process Locker used in development and tests.
type MemoryLock struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewMemoryLock() *MemoryLock {
	return &MemoryLock{held: make(map[string]time.Time)}
}

func (m *MemoryLock) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if exp, ok := m.held[key]; ok && time.Now().Before(exp) {
		return false, nil
	}
	m.held[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MemoryLock) Unlock(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
	return nil
}
