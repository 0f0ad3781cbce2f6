package demo

import (
	"context"

	"github.com/llxisdsh/rendezvous"
	"golang.org/x/sync/errgroup"
)

// runCondVar hands a payload to a worker and waits for it to come back
// processed, one Signal flag per direction.
func runCondVar(ctx context.Context, env *Env) (Report, error) {
	sig := rendezvous.NewSignal[string]()

	env.Say("MAIN THREAD: instantiate and execute worker thread")
	var g errgroup.Group
	g.Go(func() error {
		env.Say("WORKER THREAD: release the lock and block until main signals ready")
		sig.Process(func(data string) string {
			// The lock is held again here.
			env.Say("WORKER THREAD: Back in worker thread after signal")
			env.Say("WORKER THREAD: Worker thread is processing data")
			return data + " after processing"
		})
		env.Say("WORKER THREAD: Worker thread signals data processing completed")
		return nil
	})

	env.Say("MAIN THREAD: executing expensive operation before signaling worker thread")
	if err := env.Sleep(ctx, env.Delay); err != nil {
		// Release the worker so it can be joined.
		sig.Send("")
		_ = g.Wait()
		return Report{}, err
	}

	sig.Send("Example data")
	env.Say("MAIN THREAD: main() signals data ready for processing")

	env.Say("MAIN THREAD: waiting for worker thread to finish process and signal before continuing")
	data := sig.AwaitProcessed()
	env.Say("MAIN THREAD: Back in main(), data = %s", data)

	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return Report{Payload: data}, nil
}
