package demo

import (
	"context"
	"time"

	"github.com/llxisdsh/rendezvous"
	"golang.org/x/sync/errgroup"
)

// runSemaphore ping-pongs one permit between main and a worker. Whoever
// holds the permit owns data.
func runSemaphore(ctx context.Context, env *Env) (Report, error) {
	h := rendezvous.NewHandoff(false)
	var data string

	env.Say("MAIN THREAD: instantiate and execute worker thread")
	var g errgroup.Group
	g.Go(func() error {
		env.Say("WORKER THREAD: blocked until main releases the binary semaphore")
		h.Acquire()
		env.Say("WORKER THREAD: Acquired binary semaphore")
		env.Say("WORKER THREAD: Worker thread is processing data")
		data += " after processing"
		env.Say("WORKER THREAD: releasing binary semaphore (0 -> 1) back to main")
		h.Release()
		return nil
	})

	env.Say("MAIN THREAD: executing expensive operation before releasing binary semaphore to worker thread")
	err := env.Sleep(ctx, env.Delay)
	// Release only once the worker is queued, so the permit is granted
	// to it rather than left free for main to take back.
	for err == nil && h.Waiting() == 0 {
		err = env.Sleep(ctx, 100*time.Microsecond)
	}
	if err != nil {
		h.Release()
		_ = g.Wait()
		return Report{}, err
	}

	data = "Example data"
	env.Say("MAIN THREAD: main() releases binary semaphore. Will be acquired by worker thread")
	h.Release()

	env.Say("MAIN THREAD: Waiting to acquire binary semaphore back from worker thread")
	h.Acquire()
	env.Say("MAIN THREAD: Acquired binary semaphore from worker thread, data = %s", data)

	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return Report{Payload: data}, nil
}
