package spinlock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
)

const (
	testWorkers    = 8
	testIncrements = 10000
)

type lockFunc func(l *Lock)

var acquirers = map[string]lockFunc{
	"lock":    func(l *Lock) { l.Lock() },
	"backoff": func(l *Lock) { l.LockBackOff(NewBackOff()) },
	"stop":    func(l *Lock) { l.LockBackOff(&backoff.StopBackOff{}) },
}

func TestZeroValueIsUnlocked(t *testing.T) {
	var l Lock

	require.True(t, l.TryLock())
	require.False(t, l.TryLock())

	l.Unlock()
	require.True(t, l.TryLock())
	l.Unlock()
}

func TestLockProgress(t *testing.T) {
	for name, acquire := range acquirers {
		t.Run(name, func(t *testing.T) {
			var l Lock
			done := make(chan struct{})

			go func() {
				acquire(&l)
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("uncontended acquire did not return")
			}
			require.False(t, l.TryLock())
			l.Unlock()
		})
	}
}

func TestLockNoLostUpdates(t *testing.T) {
	for name, acquire := range acquirers {
		t.Run(name, func(t *testing.T) {
			var shared = struct {
				mtx     Lock
				counter int
			}{}

			wg := sync.WaitGroup{}
			wg.Add(testWorkers)
			for i := 0; i < testWorkers; i++ {
				go func() {
					defer wg.Done()
					for j := 0; j < testIncrements; j++ {
						acquire(&shared.mtx)
						shared.counter++
						shared.mtx.Unlock()
					}
				}()
			}
			wg.Wait()

			require.Equal(t, testWorkers*testIncrements, shared.counter)
		})
	}
}

func TestLockMutualExclusion(t *testing.T) {
	for name, acquire := range acquirers {
		t.Run(name, func(t *testing.T) {
			var (
				l          Lock
				inside     atomic.Int32
				violations atomic.Int32
				start      = make(chan struct{})
				wg         sync.WaitGroup
			)

			wg.Add(testWorkers)
			for i := 0; i < testWorkers; i++ {
				go func() {
					defer wg.Done()
					<-start
					for j := 0; j < testIncrements/10; j++ {
						acquire(&l)
						if inside.Add(1) != 1 {
							violations.Add(1)
						}
						inside.Add(-1)
						l.Unlock()
					}
				}()
			}
			close(start)
			wg.Wait()

			require.Zero(t, violations.Load())
		})
	}
}

func TestUnlockPublishesWrites(t *testing.T) {
	var (
		l       Lock
		payload []int
		written = make(chan struct{})
	)

	go func() {
		l.Lock()
		payload = []int{1, 2, 3}
		l.Unlock()
		close(written)
	}()
	<-written

	l.Lock()
	got := payload
	l.Unlock()

	require.Equal(t, []int{1, 2, 3}, got)
}

// Two contenders: the first wins the CAS and holds the lock, the second spins
// until the first releases and then acquires on its next attempt.
func TestLockHandOff(t *testing.T) {
	var (
		l        Lock
		val      = 1
		first    int
		second   int
		acquired = make(chan struct{})
	)

	l.Lock()
	first = val
	val++

	go func() {
		l.Lock()
		second = val
		val++
		l.Unlock()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second contender acquired a held lock")
	case <-time.After(20 * time.Millisecond):
	}
	l.Unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second contender did not acquire after release")
	}

	require.Equal(t, 1, first)
	require.Equal(t, 2, second)
	require.Equal(t, 3, val)
}

// Lock is not reentrant: a holder that locks again spins until someone else
// releases the word. The deadline stands in for a deadlock detector.
func TestLockIsNotReentrant(t *testing.T) {
	var (
		l         Lock
		reentered = make(chan struct{})
	)

	l.Lock()
	go func() {
		l.Lock()
		close(reentered)
	}()

	select {
	case <-reentered:
		t.Fatal("reentrant acquire returned while the lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	// release on behalf of the stuck holder so the goroutine can exit
	l.Unlock()
	<-reentered
	l.Unlock()
}

func TestTryLockContended(t *testing.T) {
	var l Lock
	l.Lock()

	var wg sync.WaitGroup
	var won atomic.Int32
	wg.Add(testWorkers)
	for i := 0; i < testWorkers; i++ {
		go func() {
			defer wg.Done()
			if l.TryLock() {
				won.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Zero(t, won.Load())
	l.Unlock()
}

func TestNewBackOffNeverStops(t *testing.T) {
	b := NewBackOff()
	for i := 0; i < 64; i++ {
		d := b.NextBackOff()
		require.NotEqual(t, time.Duration(-1), d)
		require.LessOrEqual(t, d, 2*time.Millisecond)
	}
}

func benchRoutine(b *testing.B, size int, fn func()) {
	wg := sync.WaitGroup{}
	wg.Add(size)
	for i := 0; i < size; i++ {
		go func() {
			for i := 0; i < b.N; i++ {
				fn()
			}
			wg.Done()
		}()
	}
	wg.Wait()
}

func benchmarkLocks(b *testing.B, routineSize int) {
	b.Run("run with spinlock", func(b *testing.B) {
		var t = struct {
			counter int
			mtx     Lock
		}{}

		benchRoutine(b, routineSize, func() {
			t.mtx.Lock()
			t.counter++
			t.mtx.Unlock()
		})

		if routineSize*b.N != t.counter {
			b.Fatalf("Expected %d but got %d", routineSize*b.N, t.counter)
		}
	})

	b.Run("run with backoff", func(b *testing.B) {
		var t = struct {
			counter int
			mtx     Lock
		}{}

		benchRoutine(b, routineSize, func() {
			t.mtx.LockBackOff(NewBackOff())
			t.counter++
			t.mtx.Unlock()
		})

		if routineSize*b.N != t.counter {
			b.Fatalf("Expected %d but got %d", routineSize*b.N, t.counter)
		}
	})

	b.Run("run with mutex", func(b *testing.B) {
		var t = struct {
			counter int
			mtx     sync.Mutex
		}{}

		benchRoutine(b, routineSize, func() {
			t.mtx.Lock()
			t.counter++
			t.mtx.Unlock()
		})

		if routineSize*b.N != t.counter {
			b.Fatalf("Expected %d but got %d", routineSize*b.N, t.counter)
		}
	})
}

func BenchmarkLock1000(b *testing.B) {
	benchmarkLocks(b, 1000)
}

func BenchmarkLock10(b *testing.B) {
	benchmarkLocks(b, 10)
}
