package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockTimeout is returned when a lock could not be acquired within the
// configured wait window.
var ErrLockTimeout = errors.New("lock: acquisition timed out")

// DoctorLocker serializes booking-side mutations per doctor. Acquire blocks
// until the lock is held, the wait window elapses, or ctx is cancelled. The
// returned release function must be called exactly once.
type DoctorLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type mutexEntry struct {
	ch   chan struct{}
	refs int
}

// KeyedMutex is an in-process DoctorLocker backed by one semaphore per key.
// Entries are reference counted and removed when no goroutine holds or waits
// on them.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*mutexEntry
	wait    time.Duration
}

func NewKeyedMutex(wait time.Duration) *KeyedMutex {
	return &KeyedMutex{
		entries: make(map[string]*mutexEntry),
		wait:    wait,
	}
}

func (m *KeyedMutex) Acquire(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &mutexEntry{ch: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	timer := time.NewTimer(m.wait)
	defer timer.Stop()

	select {
	case e.ch <- struct{}{}:
		return func() {
			<-e.ch
			m.put(key, e)
		}, nil
	case <-timer.C:
		m.put(key, e)
		return nil, ErrLockTimeout
	case <-ctx.Done():
		m.put(key, e)
		return nil, ctx.Err()
	}
}

func (m *KeyedMutex) put(key string, e *mutexEntry) {
	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
	m.mu.Unlock()
}
