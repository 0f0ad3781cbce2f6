package rendezvous

import (
	"runtime"
	"unsafe"

	"github.com/llxisdsh/rendezvous/internal/opt"
)

// Counter is a shared integer mutated by many goroutines.
//
// Increment is the protected read-modify-write: after K calls from any
// number of goroutines the value has grown by exactly K.
// IncrementUnsafe performs the same read-modify-write with no
// synchronization at all and loses updates under contention. It is a data
// race by construction (the race detector reports it) and exists only to
// show the failure mode.
//
// Zero value is a counter at 0.
type Counter struct {
	_  noCopy
	mu TicketLock
	// val lives on its own cache line, away from the lock words.
	_   [(opt.CacheLineSize_ - unsafe.Sizeof(TicketLock{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte
	val int
}

// NewCounter returns a counter starting at zero.
func NewCounter() *Counter {
	return &Counter{}
}

// Increment adds one while holding the lock.
func (c *Counter) Increment() {
	c.mu.Lock()
	c.val++
	c.mu.Unlock()
}

// Add adds n while holding the lock.
func (c *Counter) Add(n int) {
	c.mu.Lock()
	c.val += n
	c.mu.Unlock()
}

// IncrementUnsafe reads, yields, then writes value+1 without any lock.
// Concurrent callers overwrite each other's writes; the final value is
// anywhere between 1 and the number of calls.
func (c *Counter) IncrementUnsafe() {
	v := c.val
	runtime.Gosched()
	c.val = v + 1
}

// Value returns the current value.
func (c *Counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val
}

// Reset sets the value back to zero.
func (c *Counter) Reset() {
	c.mu.Lock()
	c.val = 0
	c.mu.Unlock()
}
