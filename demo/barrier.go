package demo

import (
	"context"

	"github.com/llxisdsh/rendezvous"
)

// phaseLabel is the barrier's completion state: the label printed by the
// next completion, and how many completions ran.
type phaseLabel struct {
	next  string
	fired int
}

// runBarrier runs morning and afternoon work through one reusable barrier.
// The first completion announces the afternoon; the second reports reuse.
func runBarrier(ctx context.Context, env *Env) (Report, error) {
	journal := NewJournal()
	initial := phaseLabel{next: "**Barrier first use completed**\nAFTERNOON: Workers cleaning up... done:"}
	syncPoint := rendezvous.NewBarrier(len(jobs), initial, func(_ uint32, s *phaseLabel) {
		env.Say("%s", s.next)
		s.next = "**Barrier reuse completed**"
		s.fired++
	})

	env.Say("MORNING: Work starting... done:")
	err := fanOut(ctx, len(jobs), func(_ context.Context, i int) error {
		job := jobs[i]
		e := journal.Record(job, Morning, job+" studied in morning")
		env.Say("  %s", e.Product)
		syncPoint.ArriveAndWait()

		e = journal.Record(job, Afternoon, job+" cleaned in the afternoon")
		env.Say("  %s", e.Product)
		syncPoint.ArriveAndWait()
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	return Report{
		Snapshots:   [][]string{journal.Snapshot(jobs)},
		Entries:     journal.Entries(),
		Completions: syncPoint.State().fired,
	}, nil
}
