package rendezvous

import (
	"math"
	"sync/atomic"

	"github.com/llxisdsh/rendezvous/internal/opt"
)

// Barrier is a reusable rendezvous point for a fixed party of goroutines.
//
// Each cycle, parties call ArriveAndWait. The last to arrive runs the
// completion action exactly once, then resets the arrival count, advances
// the phase and releases every party of that cycle together. The barrier
// is then ready for the next cycle, indefinitely.
//
// The completion action receives the finished phase number and a pointer
// to state S owned by the barrier. That state persists across cycles and
// is only ever touched by the goroutine running the completion action, so
// it needs no locking of its own; waiters released from a cycle observe
// everything the action wrote.
//
// Each party must call ArriveAndWait once per cycle. A party that never
// arrives blocks the rest forever; that is not detected. An arrival that
// lands while the completion action runs waits for it to finish and then
// counts toward the next cycle. The completion action itself must not call
// ArriveAndWait on its own barrier: it would wait for itself forever.
type Barrier[S any] struct {
	_       noCopy
	parties uint32
	// state 64-bit:
	//   High 32: Phase (completed cycles)
	//   Low 32:  Arrivals in the current phase. Equal to parties while the
	//            completion action runs.
	state atomic.Uint64

	// sema is double-buffered so a fast party cannot steal a wakeup meant
	// for the previous phase. Phase N waits on sema[N%2].
	sema [2]opt.Sema

	complete func(phase uint32, s *S)
	data     S
}

// NewBarrier creates a barrier for parties goroutines. complete, if
// non-nil, runs once per cycle on the last arriving goroutine with the
// barrier's state, which starts as state.
//
// panic if parties <= 0 or parties does not fit in 32 bits.
func NewBarrier[S any](parties int, state S, complete func(phase uint32, s *S)) *Barrier[S] {
	if parties <= 0 || uint64(parties) >= math.MaxUint32 {
		panic("rendezvous: parties out of range")
	}
	return &Barrier[S]{
		parties:  uint32(parties),
		complete: complete,
		data:     state,
	}
}

// ArriveAndWait waits until all parties have arrived in the current cycle.
//
// If the current goroutine is the last to arrive, it runs the completion
// action, resets the barrier for the next phase and wakes everyone else.
//
// Returns the arrival index (0 to parties-1), where parties-1 indicates
// the caller was the last to arrive (the one who ran the completion).
func (b *Barrier[S]) ArriveAndWait() int {
	var spins int
	for {
		s := b.state.Load()
		phase := s >> 32
		arrived := uint32(s)

		switch {
		case arrived == b.parties:
			// Completion action in progress; a party has lapped the cycle.
		case arrived == b.parties-1:
			// Last to arrive. Claim the completing state first so the
			// action runs exactly once.
			if b.state.CompareAndSwap(s, s+1) {
				if b.complete != nil {
					b.complete(uint32(phase), &b.data)
				}
				b.state.Store(uint64(uint32(phase)+1) << 32)
				// Wake the parties parked in THIS phase.
				semaPtr := &b.sema[phase%2]
				for range arrived {
					semaPtr.Release()
				}
				return int(arrived)
			}
		default:
			if b.state.CompareAndSwap(s, s+1) {
				b.sema[phase%2].Acquire()
				return int(arrived)
			}
		}
		delay(&spins)
	}
}

// Parties returns the number of parties per cycle.
func (b *Barrier[S]) Parties() int {
	return int(b.parties)
}

// Phase returns the number of completed cycles.
func (b *Barrier[S]) Phase() uint32 {
	return uint32(b.state.Load() >> 32)
}

// State returns the completion state. Only read it while no cycle is in
// flight, e.g. after all parties have been joined.
func (b *Barrier[S]) State() *S {
	return &b.data
}
