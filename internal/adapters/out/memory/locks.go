package memory

import (
	"context"
	"sync"
	"time"

	"grabbit/internal/pkg/errs"
)

// keyedLocks is a set of per-key mutexes built on one-slot channels so that
// acquisition can be bounded by a timeout and a context. A slot lives only
// while some caller holds or waits for its key.
type keyedLocks struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{slots: make(map[string]*lockSlot)}
}

func (l *keyedLocks) ref(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s.ch
}

func (l *keyedLocks) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		return
	}
	s.refs--
	if s.refs <= 0 {
		delete(l.slots, key)
	}
}

// acquire blocks until the key is free, ctx is done or timeout elapses.
// The two failure cases surface as StorageUnavailableError.
func (l *keyedLocks) acquire(ctx context.Context, key string, timeout time.Duration) error {
	ch := l.ref(key)

	select {
	case ch <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.unref(key)
		return errs.NewStorageUnavailableErrorWithCause("lock "+key, ctx.Err())
	case <-timer.C:
		l.unref(key)
		return errs.NewStorageUnavailableErrorWithCause("lock "+key, context.DeadlineExceeded)
	}
}

// tryAcquire takes the key only if it is free right now.
func (l *keyedLocks) tryAcquire(key string) bool {
	select {
	case l.ref(key) <- struct{}{}:
		return true
	default:
		l.unref(key)
		return false
	}
}

// release frees a key taken by acquire or tryAcquire.
func (l *keyedLocks) release(key string) {
	l.mu.Lock()
	s, ok := l.slots[key]
	l.mu.Unlock()
	if !ok {
		return
	}

	select {
	case <-s.ch:
		l.unref(key)
	default:
	}
}

// size reports how many keys are currently held or awaited.
func (l *keyedLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
