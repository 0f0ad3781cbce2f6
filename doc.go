// Package rendezvous provides small blocking synchronization primitives:
// a lock-guarded Counter, a condition-variable Signal, a binary Handoff
// semaphore, a one-shot countdown Latch and a reusable Barrier with a
// per-cycle completion action.
//
// Every primitive is an explicitly constructed value owned by its caller;
// there is no package-level state. None of them time out or detect
// deadlock: a participant that never arrives blocks its peers forever.
package rendezvous
