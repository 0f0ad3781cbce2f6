package demo

import (
	"slices"
	"strings"
	"sync/atomic"

	"github.com/llxisdsh/pb"
)

// Work phases recorded by the latch and barrier demos.
const (
	Morning   = "morning"
	Afternoon = "afternoon"
)

// Entry is one product write.
type Entry struct {
	Seq     uint64
	Job     string
	Phase   string
	Product string
}

// Journal records the products written by concurrent jobs.
//
// Each job owns one product slot holding its latest write; every write is
// also appended to an ordered log. Slots and log are concurrent maps, so
// an observer may snapshot them while jobs are still writing. Whether
// that snapshot shows morning or afternoon work depends only on the
// synchronization the demo applies.
//
// Use NewJournal; the maps are built there, before any job writes.
type Journal struct {
	seq      atomic.Uint64
	products *pb.MapOf[string, string]
	entries  *pb.MapOf[uint64, Entry]
}

// journalPresize covers a demo's writes without a table rebuild.
const journalPresize = 128

// NewJournal returns an empty journal.
func NewJournal() *Journal {
	return &Journal{
		products: pb.NewMapOf[string, string](pb.WithPresize(journalPresize)),
		entries:  pb.NewMapOf[uint64, Entry](pb.WithPresize(journalPresize)),
	}
}

// Record stores product as job's current product and logs the write.
func (j *Journal) Record(job, phase, product string) Entry {
	e := Entry{Seq: j.seq.Add(1), Job: job, Phase: phase, Product: product}
	j.products.Store(job, product)
	j.entries.Store(e.Seq, e)
	return e
}

// Product returns job's latest product, or "not worked".
func (j *Journal) Product(job string) string {
	if v, ok := j.products.Load(job); ok {
		return v
	}
	return "not worked"
}

// Snapshot returns the current product of each job, in the given order.
func (j *Journal) Snapshot(jobs []string) []string {
	out := make([]string, len(jobs))
	for i, job := range jobs {
		out[i] = j.Product(job)
	}
	return out
}

// Entries returns every logged write ordered by sequence.
func (j *Journal) Entries() []Entry {
	out := make([]Entry, 0, j.entries.Size())
	j.entries.Range(func(_ uint64, e Entry) bool {
		out = append(out, e)
		return true
	})
	slices.SortFunc(out, func(a, b Entry) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
	return out
}

// PhasesOrdered reports whether every morning write precedes every
// afternoon write.
func PhasesOrdered(entries []Entry) bool {
	seenAfternoon := false
	for _, e := range entries {
		switch e.Phase {
		case Afternoon:
			seenAfternoon = true
		case Morning:
			if seenAfternoon {
				return false
			}
		}
	}
	return true
}

// AllIn reports whether every product in snapshot was written in phase.
func AllIn(snapshot []string, phase string) bool {
	for _, p := range snapshot {
		if !strings.Contains(p, phase) {
			return false
		}
	}
	return true
}
