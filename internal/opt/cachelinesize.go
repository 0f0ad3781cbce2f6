package opt

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize_ is the cache line size of the target CPU as reported by
// golang.org/x/sys/cpu. Used to keep hot words on separate lines.
const CacheLineSize_ = unsafe.Sizeof(cpu.CacheLinePad{})
