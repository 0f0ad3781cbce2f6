package rendezvous

import (
	"sync"
)

// Signal is a single-slot payload handoff between an initiator and a
// worker, gated by two durable flags over one lock.
//
// The initiator calls Send to publish a payload and raise ready, then
// AwaitProcessed to block until the worker raises processed. The worker
// calls Receive (or Process) to block until ready, and Complete (or
// Process) to publish its result.
//
// Every wait is a condition-wait loop that re-tests its flag after each
// wakeup, so spurious wakeups and notifies issued before the wait are both
// harmless: the flag, not the notification, is the source of truth.
//
// A Signal is one-shot; create a fresh one per exchange.
// Zero value is ready to use.
type Signal[T any] struct {
	_         noCopy
	mu        sync.Mutex
	cond      sync.Cond
	payload   T
	ready     bool
	processed bool
}

// NewSignal returns a Signal with both flags lowered.
func NewSignal[T any]() *Signal[T] {
	s := &Signal[T]{}
	s.cond.L = &s.mu
	return s
}

func (s *Signal[T]) lock() {
	s.mu.Lock()
	if s.cond.L == nil {
		s.cond.L = &s.mu
	}
}

// waitFor blocks until *flag is true. s.mu must be held.
func (s *Signal[T]) waitFor(flag *bool) {
	for !*flag {
		s.cond.Wait()
	}
}

// Send stores payload, raises ready and wakes waiters.
// The lock is dropped before notifying.
func (s *Signal[T]) Send(payload T) {
	s.lock()
	s.payload = payload
	s.ready = true
	s.mu.Unlock()
	// Both directions share one condition, so wake everyone and let each
	// waiter re-test its own flag.
	s.cond.Broadcast()
}

// Receive blocks until ready and returns the payload read under the lock.
func (s *Signal[T]) Receive() T {
	s.lock()
	s.waitFor(&s.ready)
	v := s.payload
	s.mu.Unlock()
	return v
}

// Process blocks until ready, then, still holding the lock, replaces the
// payload with fn(payload), raises processed and wakes waiters.
// It returns the new payload. fn must not call back into s.
func (s *Signal[T]) Process(fn func(T) T) T {
	s.lock()
	s.waitFor(&s.ready)
	s.payload = fn(s.payload)
	s.processed = true
	v := s.payload
	s.mu.Unlock()
	s.cond.Broadcast()
	return v
}

// Complete stores the processed payload, raises processed and wakes
// waiters.
func (s *Signal[T]) Complete(payload T) {
	s.lock()
	s.payload = payload
	s.processed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// AwaitProcessed blocks until processed and returns the payload read under
// the lock.
func (s *Signal[T]) AwaitProcessed() T {
	s.lock()
	s.waitFor(&s.processed)
	v := s.payload
	s.mu.Unlock()
	return v
}

// Ready reports whether Send has been called.
func (s *Signal[T]) Ready() bool {
	s.lock()
	defer s.mu.Unlock()
	return s.ready
}

// Processed reports whether the worker has completed.
func (s *Signal[T]) Processed() bool {
	s.lock()
	defer s.mu.Unlock()
	return s.processed
}
