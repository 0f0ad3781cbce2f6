package rendezvous

import (
	"github.com/llxisdsh/rendezvous/internal/opt"
)

// Handoff is a binary semaphore: a single permit passed back and forth
// between parties. At most one party holds it at a time.
//
// Acquire blocks while the permit is taken and consumes it when granted.
// Release makes the permit available again or, if acquirers are queued,
// grants it to the oldest one directly: the permit never becomes free in
// between, so neither the releaser nor a newcomer can take it back ahead
// of that waiter. Releasing a permit that is already available is a
// no-op: capacity is fixed at 1, so Handoff never turns into a counting
// pool. Like any semaphore it has no owner; the caller contract is one
// Release per Acquire.
//
// Waiters are served in arrival order. Each parks on its own semaphore,
// so a wakeup cannot be consumed by anyone else.
//
// Zero value holds no permit (the first Acquire blocks until a Release).
type Handoff struct {
	_         noCopy
	mu        TicketLock
	available bool
	waiting   int
	head      *handoffWaiter
	tail      *handoffWaiter
}

type handoffWaiter struct {
	next *handoffWaiter
	sema opt.Sema
}

// NewHandoff creates a Handoff whose permit is initially available or not.
func NewHandoff(available bool) *Handoff {
	return &Handoff{available: available}
}

// Acquire blocks until the permit is granted to the caller.
func (h *Handoff) Acquire() {
	h.mu.Lock()
	if h.available {
		h.available = false
		h.mu.Unlock()
		return
	}
	w := &handoffWaiter{}
	if h.tail == nil {
		h.head = w
	} else {
		h.tail.next = w
	}
	h.tail = w
	h.waiting++
	h.mu.Unlock()
	w.sema.Acquire()
}

// TryAcquire takes the permit only if it is available right now.
func (h *Handoff) TryAcquire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.available {
		return false
	}
	h.available = false
	return true
}

// Release gives the permit to the oldest queued acquirer, or makes it
// available when nobody waits. It does nothing when the permit is already
// available.
func (h *Handoff) Release() {
	h.mu.Lock()
	w := h.head
	if w == nil {
		h.available = true
		h.mu.Unlock()
		return
	}
	h.head = w.next
	if h.head == nil {
		h.tail = nil
	}
	h.waiting--
	h.mu.Unlock()
	// Ownership passes to w; available stays false.
	w.sema.Release()
}

// Available reports whether the permit can be taken without blocking.
func (h *Handoff) Available() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.available
}

// Waiting returns the number of queued acquirers. Once Waiting is
// positive, the next Release goes to the oldest of them.
func (h *Handoff) Waiting() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.waiting
}
