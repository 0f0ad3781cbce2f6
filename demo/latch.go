package demo

import (
	"context"

	"github.com/llxisdsh/rendezvous"
	"golang.org/x/sync/errgroup"
)

// jobs are the workers of the latch and barrier demos.
var jobs = []string{"annika", "buru", "chuck"}

func runLatch(_ context.Context, env *Env) (Report, error) {
	return latchDemo(env, true)
}

// runNoLatch is the latch demo without the second gate. Workers move on to
// afternoon work as soon as they count down, so main's morning snapshot
// can already contain afternoon products. That race is the point.
func runNoLatch(_ context.Context, env *Env) (Report, error) {
	return latchDemo(env, false)
}

// latchDemo has no cancellation points: once workers are started, main
// always counts both latches down so every worker can be joined.
func latchDemo(env *Env, gated bool) (Report, error) {
	journal := NewJournal()
	workDone := rendezvous.NewLatch(len(jobs))
	startCleanUp := rendezvous.NewLatch(1)

	env.Say("MORNING: Work starting... ")
	var g errgroup.Group
	for _, job := range jobs {
		g.Go(func() error {
			journal.Record(job, Morning, job+" studied in morning")
			workDone.CountDown()
			if gated {
				startCleanUp.Wait()
			}
			journal.Record(job, Afternoon, job+" cleaned in the afternoon")
			return nil
		})
	}

	workDone.Wait()
	morning := journal.Snapshot(jobs)
	env.Say("done:")
	for _, p := range morning {
		env.Say("  %s", p)
	}

	env.Say("AFTERNOON: Workers cleaning up... ")
	// Without this count-down the gated workers would wait forever.
	startCleanUp.CountDown()
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	afternoon := journal.Snapshot(jobs)
	env.Say("done:")
	for _, p := range afternoon {
		env.Say("  %s", p)
	}

	return Report{
		Snapshots: [][]string{morning, afternoon},
		Entries:   journal.Entries(),
	}, nil
}
