package storage

import (
	"context"
	"path/filepath"
	"sync"
	"time"
)

// DefaultLockTimeout bounds how long an acquisition waits for a contended
// file before giving up. The timeout is the sole liveness guarantee; there
// is no deadlock detection.
const DefaultLockTimeout = 10 * time.Second

// fileLock is the per-path lock state. waiters are granted in FIFO order.
type fileLock struct {
	held    bool
	waiters []chan struct{}
}

// LockManager serializes access to files by normalized absolute path, so
// concurrent request handlers never interleave reads and writes to the same
// data file. It is an explicit instance, constructed once and injected into
// the store layer.
//
// Locks are not reentrant: acquiring a path already held by the caller
// queues the caller behind itself and times out.
type LockManager struct {
	mu      sync.Mutex
	locks   map[string]*fileLock
	timeout time.Duration
}

// NewLockManager creates a lock manager. A non-positive timeout falls back
// to DefaultLockTimeout.
func NewLockManager(timeout time.Duration) *LockManager {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &LockManager{
		locks:   make(map[string]*fileLock),
		timeout: timeout,
	}
}

// normalizeKey collapses differing spellings of the same file to one key.
func normalizeKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Acquire grants the lock for path, waiting in FIFO order behind current
// holders. It returns false, never an error, when the configured timeout
// elapses or ctx is cancelled first; the caller must abort the operation
// the lock was meant to guard.
func (m *LockManager) Acquire(ctx context.Context, path string) bool {
	key := normalizeKey(path)

	m.mu.Lock()
	fl, ok := m.locks[key]
	if !ok {
		fl = &fileLock{}
		m.locks[key] = fl
	}
	if !fl.held {
		fl.held = true
		m.mu.Unlock()
		return true
	}

	grant := make(chan struct{}, 1)
	fl.waiters = append(fl.waiters, grant)
	m.mu.Unlock()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case <-grant:
		return true
	case <-ctx.Done():
	case <-timer.C:
	}

	// A grant may have raced the timeout. If it did, the lock is ours;
	// otherwise remove ourselves from the queue.
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-grant:
		return true
	default:
	}
	for i, w := range fl.waiters {
		if w == grant {
			fl.waiters = append(fl.waiters[:i], fl.waiters[i+1:]...)
			break
		}
	}
	return false
}

// Release frees the lock for path and hands it to the head of the wait
// queue, if any. Releasing an unheld path is a no-op.
func (m *LockManager) Release(path string) {
	key := normalizeKey(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	fl, ok := m.locks[key]
	if !ok || !fl.held {
		return
	}
	if len(fl.waiters) > 0 {
		next := fl.waiters[0]
		fl.waiters = fl.waiters[1:]
		next <- struct{}{}
		return
	}
	// Free with no waiters: drop the entry so the map does not grow
	// without bound.
	delete(m.locks, key)
}

// IsLocked reports whether the lock for path is currently held.
// Introspection only.
func (m *LockManager) IsLocked(path string) bool {
	key := normalizeKey(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	fl, ok := m.locks[key]
	return ok && fl.held
}

// ActiveLocks returns the number of paths with live lock state.
func (m *LockManager) ActiveLocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
