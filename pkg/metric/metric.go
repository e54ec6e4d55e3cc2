package metric

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultPassed = "passed"
	ResultFailed = "failed"
)

var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spinlock_runs_total",
		Help: "The total number of contention runs by strategy and result",
	}, []string{"strategy", "result"})

	Acquisitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spinlock_acquisitions_total",
		Help: "The total number of lock acquisitions performed by contention runs",
	}, []string{"strategy"})

	Contended = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spinlock_contended_total",
		Help: "The total number of acquisitions that found the lock held on the first attempt",
	}, []string{"strategy"})

	RunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spinlock_run_duration_seconds",
		Help:    "The wall time of contention runs",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"strategy"})
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{RunsTotal, Acquisitions, Contended, RunDuration}
}

// Register registers every collector with reg. Collectors that are already
// registered are skipped.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		err := reg.Register(c)
		if err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}

	return nil
}
