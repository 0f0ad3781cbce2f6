//go:build race

package opt

import "sync"

// Race_ reports whether the binary was built with -race.
const Race_ = true

// Sema is a counting parking semaphore.
//
// Under the race detector the runtime semaphore carries no happens-before
// edge, so Sema falls back to a mutex and condition pair that the detector
// can see. Zero value is ready to use.
type Sema struct {
	mu    sync.Mutex
	c     sync.Cond
	count uint32
}

// Acquire parks until a permit is available and consumes it.
func (s *Sema) Acquire() {
	s.mu.Lock()
	if s.c.L == nil {
		s.c.L = &s.mu
	}
	for s.count == 0 {
		s.c.Wait()
	}
	s.count--
	s.mu.Unlock()
}

// Release adds a permit and wakes one parked Acquire, if any.
func (s *Sema) Release() {
	s.mu.Lock()
	s.count++
	s.c.Signal()
	s.mu.Unlock()
}
