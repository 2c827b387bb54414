// Package lock provides per-key mutual exclusion for wallets.
//
// Acquire takes every requested key in ascending order, so two callers locking
// the same pair of wallets in opposite directions cannot deadlock. The returned
// lease can be released more than once.
package lock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/simaogato/walletflow-backend/internal/domain"
)

// KeyedMutex serializes callers per key within one process
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewKeyedMutex creates an empty KeyedMutex
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyLock)}
}

// Acquire blocks until every key is held or ctx is done.
// On failure no key remains held.
func (m *KeyedMutex) Acquire(ctx context.Context, keys ...string) (domain.Lease, error) {
	ordered := sortedUnique(keys)
	held := make([]string, 0, len(ordered))

	for _, key := range ordered {
		if err := m.lock(ctx, key); err != nil {
			m.unlockAll(held)
			return nil, err
		}
		held = append(held, key)
	}

	return &keyedLease{release: func() { m.unlockAll(held) }}, nil
}

// keyedLease stays valid until released; in-process locks do not expire
type keyedLease struct {
	once     sync.Once
	released atomic.Bool
	release  func()
}

func (l *keyedLease) Check(ctx context.Context) error {
	if l.released.Load() {
		return fmt.Errorf("%w: released", domain.ErrLockLost)
	}
	return nil
}

func (l *keyedLease) Release() {
	l.once.Do(func() {
		l.released.Store(true)
		l.release()
	})
}

func (m *KeyedMutex) lock(ctx context.Context, key string) error {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{sem: make(chan struct{}, 1)}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		m.unref(key, l)
		return ctx.Err()
	}
}

func (m *KeyedMutex) unlockAll(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		m.mu.Lock()
		l := m.locks[keys[i]]
		m.mu.Unlock()

		<-l.sem
		m.unref(keys[i], l)
	}
}

func (m *KeyedMutex) unref(key string, l *keyLock) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}

// size reports how many keys are tracked
func (m *KeyedMutex) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

func sortedUnique(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
