// Package lock serializes mutations of a single game session.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrLockTimeout is returned when the context ends before the lock is acquired
var ErrLockTimeout = errors.New("lock: timed out waiting for lock")

// Locker runs fn while holding an exclusive lock on key
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// LocalLocker is an in-process keyed mutex. Entries are dropped once no goroutine holds or waits on them.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localEntry
}

type localEntry struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localEntry)}
}

func (l *LocalLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	entry := l.acquireEntry(key)
	defer l.releaseEntry(key, entry)

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		return ErrLockTimeout
	}
	defer func() { <-entry.ch }()

	return fn(ctx)
}

func (l *LocalLocker) acquireEntry(key string) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &localEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (l *LocalLocker) releaseEntry(key string, entry *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
}

// size is the number of tracked keys
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
