//go:build !race

package opt

import (
	_ "unsafe" // for linkname
)

// Race_ reports whether the binary was built with -race.
const Race_ = false

// Sema is a counting parking semaphore.
// In !race mode it is a direct wrapper around the runtime semaphore, so a
// Release issued before the matching Acquire is never lost.
type Sema uint32

// Acquire parks until a permit is available and consumes it.
func (s *Sema) Acquire() {
	runtime_semacquire((*uint32)(s))
}

// Release adds a permit and wakes one parked Acquire, if any.
func (s *Sema) Release() {
	runtime_semrelease((*uint32)(s), false, 0)
}

//go:linkname runtime_semacquire sync.runtime_Semacquire
func runtime_semacquire(s *uint32)

//go:linkname runtime_semrelease sync.runtime_Semrelease
func runtime_semrelease(s *uint32, handoff bool, skipframes int)
