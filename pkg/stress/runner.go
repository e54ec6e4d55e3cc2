// Package stress runs contention workloads against the spin lock and keeps a
// history of their results.
package stress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/yudhasubki/spinlock"
	"github.com/yudhasubki/spinlock/pkg/core"
	"github.com/yudhasubki/spinlock/pkg/metric"
	"gopkg.in/guregu/null.v4"
)

const (
	LogPrefixRun      = "run_id"
	LogPrefixStrategy = "strategy"
	LogPrefixErr      = "error"

	createdAtLayout = "2006-01-02 15:04:05.000000000"

	// cancellation is polled once per this many increments
	cancelCheckEvery = 256
)

type Config struct {
	Strategy   core.Strategy
	Workers    int
	Increments int
}

// locker is one acquisition policy. acquire reports whether the first
// attempt found the lock held.
type locker interface {
	acquire() (contended bool)
	release()
}

type spinLocker struct {
	mtx *spinlock.Lock
}

func (l spinLocker) acquire() bool {
	if l.mtx.TryLock() {
		return false
	}
	l.mtx.Lock()
	return true
}

func (l spinLocker) release() { l.mtx.Unlock() }

// backOffLocker is created per worker; the backoff state is not shared.
type backOffLocker struct {
	mtx *spinlock.Lock
	b   *backoff.ExponentialBackOff
}

func newBackOffLocker(mtx *spinlock.Lock) *backOffLocker {
	return &backOffLocker{mtx: mtx, b: spinlock.NewBackOff()}
}

func (l *backOffLocker) acquire() bool {
	if l.mtx.TryLock() {
		return false
	}
	l.mtx.LockBackOff(l.b)
	return true
}

func (l *backOffLocker) release() { l.mtx.Unlock() }

type mutexLocker struct {
	mtx *sync.Mutex
}

func (l mutexLocker) acquire() bool {
	if l.mtx.TryLock() {
		return false
	}
	l.mtx.Lock()
	return true
}

func (l mutexLocker) release() { l.mtx.Unlock() }

type Runner struct{}

func NewRunner() *Runner {
	return &Runner{}
}

// Run starts cfg.Workers goroutines that each perform cfg.Increments
// increments of one shared counter, every increment wrapped in an
// acquire/release of a single lock.
func (r *Runner) Run(ctx context.Context, cfg Config) (core.Run, error) {
	lockers, err := newLockers(cfg)
	if err != nil {
		return core.Run{}, err
	}

	var (
		id         = uuid.New()
		counter    int64
		inside     atomic.Int32
		violations atomic.Int64
		contended  atomic.Int64
		start      = make(chan struct{})
		done       = ctx.Done()
		wg         sync.WaitGroup
	)

	slog.Debug(
		"starting contention run",
		LogPrefixRun, id,
		LogPrefixStrategy, cfg.Strategy,
		"workers", cfg.Workers,
		"increments", cfg.Increments,
	)

	wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go func(l locker) {
			defer wg.Done()

			var local int64
			defer func() { contended.Add(local) }()

			<-start
			for j := 0; j < cfg.Increments; j++ {
				if j%cancelCheckEvery == 0 {
					select {
					case <-done:
						return
					default:
					}
				}

				if l.acquire() {
					local++
				}
				if inside.Add(1) != 1 {
					violations.Add(1)
				}
				counter++
				inside.Add(-1)
				l.release()
			}
		}(lockers[i])
	}

	begin := time.Now()
	close(start)
	wg.Wait()
	elapsed := time.Since(begin)

	if err := ctx.Err(); err != nil {
		return core.Run{}, err
	}

	run := core.Run{
		Id:         id,
		Strategy:   cfg.Strategy,
		Workers:    cfg.Workers,
		Increments: cfg.Increments,
		Expected:   int64(cfg.Workers) * int64(cfg.Increments),
		Counter:    counter,
		Contended:  contended.Load(),
		Violations: violations.Load(),
		DurationNs: elapsed.Nanoseconds(),
		CreatedAt:  time.Now().UTC().Format(createdAtLayout),
	}
	run.Failure = failure(run)

	observe(run, elapsed)

	return run, nil
}

func newLockers(cfg Config) ([]locker, error) {
	if cfg.Workers < 1 || cfg.Increments < 1 {
		return nil, fmt.Errorf("invalid run size: %d workers, %d increments", cfg.Workers, cfg.Increments)
	}

	lockers := make([]locker, cfg.Workers)
	switch cfg.Strategy {
	case core.StrategySpin:
		mtx := new(spinlock.Lock)
		for i := range lockers {
			lockers[i] = spinLocker{mtx: mtx}
		}
	case core.StrategyBackOff:
		mtx := new(spinlock.Lock)
		for i := range lockers {
			lockers[i] = newBackOffLocker(mtx)
		}
	case core.StrategyMutex:
		mtx := new(sync.Mutex)
		for i := range lockers {
			lockers[i] = mutexLocker{mtx: mtx}
		}
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownStrategy, cfg.Strategy)
	}

	return lockers, nil
}

func failure(run core.Run) null.String {
	switch {
	case run.Violations > 0:
		return null.StringFrom(fmt.Sprintf("%d overlapping holders observed", run.Violations))
	case run.Counter != run.Expected:
		return null.StringFrom(fmt.Sprintf("lost %d updates", run.Expected-run.Counter))
	}

	return null.String{}
}

func observe(run core.Run, elapsed time.Duration) {
	strategy := string(run.Strategy)

	result := metric.ResultPassed
	if !run.Passed() {
		result = metric.ResultFailed
	}

	metric.RunsTotal.WithLabelValues(strategy, result).Inc()
	metric.Acquisitions.WithLabelValues(strategy).Add(float64(run.Counter))
	metric.Contended.WithLabelValues(strategy).Add(float64(run.Contended))
	metric.RunDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}
