package rendezvous

import (
	"sync/atomic"
)

// TicketLock is a fair, FIFO spin lock.
//
// Goroutines acquire the lock in the exact order they called Lock, so a
// contended Counter serves its incrementers first come, first served.
// Critical sections must be short: a waiter spins (with backoff) rather
// than parking.
//
// Zero value is an unlocked lock. TicketLock satisfies sync.Locker.
type TicketLock struct {
	_       noCopy
	next    atomic.Uint32
	serving atomic.Uint32
}

// Lock takes a ticket and waits until it is served.
func (m *TicketLock) Lock() {
	my := m.next.Add(1) - 1
	var spins int
	for m.serving.Load() != my {
		delay(&spins)
	}
}

// TryLock acquires the lock only if nobody holds or waits for it.
func (m *TicketLock) TryLock() bool {
	s := m.serving.Load()
	return m.next.CompareAndSwap(s, s+1)
}

// Unlock serves the next ticket.
func (m *TicketLock) Unlock() {
	m.serving.Add(1)
}
