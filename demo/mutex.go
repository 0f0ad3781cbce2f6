package demo

import (
	"context"
	"time"

	"github.com/llxisdsh/rendezvous"
	"github.com/llxisdsh/rendezvous/internal/opt"
)

// Counter variants reported by the mutex demo.
const (
	Sequential     = "sequential"
	Unsynchronized = "unsynchronized"
	Mutex          = "mutex"
)

// runMutex increments a counter Workers times three ways: on one
// goroutine, on Workers goroutines with no lock, and on Workers goroutines
// under the lock. Only the first and last totals are deterministic.
func runMutex(ctx context.Context, env *Env) (Report, error) {
	rep := Report{Counts: make(map[string]int, 3)}

	seq := rendezvous.NewCounter()
	start := time.Now()
	for range env.Workers {
		if err := env.Sleep(ctx, env.Work); err != nil {
			return rep, err
		}
		seq.Increment()
	}
	rep.Counts[Sequential] = seq.Value()
	counterResult(env, "Sequential (single thread)", seq.Value(), time.Since(start))

	if opt.Race_ {
		env.Say("Multi-threading without Mutex: skipped, the race detector would flag it")
	} else {
		racy := rendezvous.NewCounter()
		start = time.Now()
		err := fanOut(ctx, env.Workers, func(ctx context.Context, _ int) error {
			if err := env.Sleep(ctx, env.Work); err != nil {
				return err
			}
			racy.IncrementUnsafe()
			return nil
		})
		if err != nil {
			return rep, err
		}
		rep.Counts[Unsynchronized] = racy.Value()
		counterResult(env, "Multi-threading without Mutex", racy.Value(), time.Since(start))
	}

	guarded := rendezvous.NewCounter()
	start = time.Now()
	err := fanOut(ctx, env.Workers, func(ctx context.Context, _ int) error {
		if err := env.Sleep(ctx, env.Work); err != nil {
			return err
		}
		guarded.Increment()
		return nil
	})
	if err != nil {
		return rep, err
	}
	rep.Counts[Mutex] = guarded.Value()
	counterResult(env, "Multi-threading with Mutex", guarded.Value(), time.Since(start))
	return rep, nil
}

func counterResult(env *Env, title string, value int, elapsed time.Duration) {
	env.Say("---------------------------")
	env.Say("%s", title)
	env.Say("Elapsed time %.3g seconds.", elapsed.Seconds())
	env.Say("SharedResource value is %d", value)
	env.Say("---------------------------")
}
