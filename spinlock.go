// Package spinlock provides a test-and-test-and-set spin lock built on an
// atomic compare-and-swap.
//
// A contender never parks on a scheduler wait queue: it polls the lock word
// until it is observed free and then retries the CAS. The lock gives no
// fairness guarantee and is not reentrant; a goroutine calling Lock while it
// already holds the same Lock spins forever.
package spinlock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/yudhasubki/spinlock/pkg/relax"
)

const (
	unlocked = uint32(0)
	locked   = uint32(1)
)

var _ sync.Locker = (*Lock)(nil)

// Lock is a spin lock. The zero value is an unlocked lock.
//
// A Lock must not be copied after first use. Embed it in the structure whose
// fields it guards.
type Lock struct {
	state atomic.Uint32
}

// Lock acquires l, busy-waiting until it is available.
func (l *Lock) Lock() {
	var s relax.Spinner
	for {
		if l.state.CompareAndSwap(unlocked, locked) {
			return
		}

		// poll with loads, not CAS, until the holder releases
		for l.state.Load() == locked {
			s.Spin()
		}
	}
}

// TryLock tries to acquire l once and reports whether it succeeded.
func (l *Lock) TryLock() bool {
	return l.state.CompareAndSwap(unlocked, locked)
}

// Unlock releases l. Every write made while holding l is visible to the next
// goroutine that acquires it.
//
// It is not checked that the caller holds l. Unlocking a lock that is not
// locked leaves it unlocked.
func (l *Lock) Unlock() {
	l.state.Store(unlocked)
}

// LockBackOff acquires l like Lock, but after every failed CAS it keeps
// spinning for b.NextBackOff() before polling the word again. When b returns
// backoff.Stop the remaining attempts poll without delay. b is reset before
// the first attempt and must not be shared between goroutines.
func (l *Lock) LockBackOff(b backoff.BackOff) {
	var s relax.Spinner
	b.Reset()
	for {
		if l.state.CompareAndSwap(unlocked, locked) {
			return
		}

		if d := b.NextBackOff(); d > 0 {
			deadline := time.Now().Add(d)
			for time.Now().Before(deadline) {
				s.Spin()
			}
		}

		for l.state.Load() == locked {
			s.Spin()
		}
	}
}

// NewBackOff returns an exponential backoff sized for spin waits. It never
// returns backoff.Stop.
func NewBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Microsecond
	b.MaxInterval = time.Millisecond
	b.MaxElapsedTime = 0
	b.Reset()

	return b
}
