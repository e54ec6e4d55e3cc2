// Package relax provides the CPU-relax hint used by spin-wait loops.
//
// A Spinner may hand its P to another goroutine via runtime.Gosched, but the
// spinning goroutine is never parked: it stays runnable and is rescheduled
// without waiting on any event.
package relax

import "runtime"

// YieldEvery is the number of spins after which a Spinner lets the Go
// scheduler run another goroutine.
const YieldEvery = 16

// Spinner paces a single spin-wait. The zero value is ready to use.
type Spinner struct {
	n uint64
}

// Spin issues one relax hint. Every YieldEvery spins it calls
// runtime.Gosched so a lock holder sharing this P can make progress; the
// calling goroutine stays runnable.
func (s *Spinner) Spin() {
	s.n++
	if s.n%YieldEvery == 0 {
		runtime.Gosched()
		return
	}
	Pause()
}
