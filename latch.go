package rendezvous

import (
	"math"
	"sync/atomic"

	"github.com/llxisdsh/rendezvous/internal/opt"
)

// Latch is a one-shot countdown gate.
//
// It starts counting at n. Each CountDown removes one; the call that brings
// the count to zero releases the latch and wakes every parked waiter. The
// transition is terminal: once released, the latch stays released and
// every current and future Wait returns immediately. CountDown calls past
// zero are no-ops, never corrupting the count.
//
// Any number of goroutines may count down and any number may wait. If a
// participant never counts down, waiters block forever; that deadlock is
// the caller's responsibility and is not detected.
//
// Size: 8 byte state + sema.
type Latch struct {
	_ noCopy
	// state 64-bit:
	//   High 32: remaining count
	//   Low 32:  parked waiters
	state atomic.Uint64
	sema  opt.Sema
}

const latchOneCount = 1 << 32

// NewLatch creates a latch expecting n count-downs.
// A latch created with n == 0 is already released.
//
// panic if n < 0 or n does not fit in 32 bits.
func NewLatch(n int) *Latch {
	if n < 0 || uint64(n) > math.MaxUint32 {
		panic("rendezvous: latch count out of range")
	}
	l := &Latch{}
	l.state.Store(uint64(n) << 32)
	return l
}

// CountDown decrements the count by one. The decrement that reaches zero
// wakes all waiters. After that CountDown does nothing.
func (l *Latch) CountDown() {
	for {
		s := l.state.Load()
		count := s >> 32
		if count == 0 {
			return
		}
		if count > 1 {
			if l.state.CompareAndSwap(s, s-latchOneCount) {
				return
			}
			continue
		}
		// Last count-down: clear count and waiter tally in one step.
		if l.state.CompareAndSwap(s, 0) {
			waiters := uint32(s)
			for range waiters {
				l.sema.Release()
			}
			return
		}
	}
}

// Wait blocks until the count reaches zero.
// If the latch is already released, it returns immediately.
func (l *Latch) Wait() {
	for {
		s := l.state.Load()
		if s>>32 == 0 {
			return
		}
		if l.state.CompareAndSwap(s, s+1) {
			l.sema.Acquire()
			return
		}
	}
}

// ArriveAndWait counts down once and then waits for release.
func (l *Latch) ArriveAndWait() {
	l.CountDown()
	l.Wait()
}

// TryWait reports whether the latch is released, without blocking.
func (l *Latch) TryWait() bool {
	return l.state.Load()>>32 == 0
}

// Count returns the remaining count.
func (l *Latch) Count() int {
	return int(l.state.Load() >> 32)
}
