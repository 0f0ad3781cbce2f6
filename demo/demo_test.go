package demo

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/llxisdsh/rendezvous/internal/opt"
)

func testConfig(out *bytes.Buffer) Config {
	cfg := Config{
		Workers: 20,
		Work:    time.Microsecond,
		Delay:   5 * time.Millisecond,
	}
	if out != nil {
		cfg.Out = out
	}
	return cfg
}

// runWithin plays one demo and fails the test if it does not return in time.
func runWithin(t *testing.T, r *Runner, name string) (Report, error) {
	t.Helper()
	type result struct {
		rep Report
		err error
	}
	ch := make(chan result, 1)
	go func() {
		rep, err := r.RunDemo(context.Background(), name)
		ch <- result{rep, err}
	}()
	select {
	case res := <-ch:
		return res.rep, res.err
	case <-time.After(10 * time.Second):
		t.Fatalf("%s demo never returned", name)
		return Report{}, nil
	}
}

func TestRegistry_Default(t *testing.T) {
	want := []string{"mutex", "condvar", "semaphore", "latch", "nolatch", "barrier"}
	if got := Default().Names(); !slices.Equal(got, want) {
		t.Fatalf("Names = %v, want %v", got, want)
	}
	if n := len(Default().Demos()); n != len(want) {
		t.Fatalf("Demos = %d entries, want %d", n, len(want))
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	d := Demo{Name: "x", Run: func(context.Context, *Env) (Report, error) { return Report{}, nil }}
	if err := r.Register(d); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(d); !errors.Is(err, ErrDuplicateDemo) {
		t.Fatalf("second Register = %v, want ErrDuplicateDemo", err)
	}
	if err := r.Register(Demo{Name: "y"}); err == nil {
		t.Fatal("Register without Run succeeded")
	}
	if _, ok := r.Lookup("x"); !ok {
		t.Fatal("Lookup(x) failed")
	}
}

func TestRunner_UnknownDemo(t *testing.T) {
	r := NewRunner(nil, testConfig(nil))
	if _, err := runWithin(t, r, "spinlock"); !errors.Is(err, ErrUnknownDemo) {
		t.Fatalf("RunDemo = %v, want ErrUnknownDemo", err)
	}
	var out bytes.Buffer
	r = NewRunner(nil, testConfig(&out))
	if _, err := r.Run(context.Background(), "mutex", "nope"); !errors.Is(err, ErrUnknownDemo) {
		t.Fatalf("Run = %v, want ErrUnknownDemo", err)
	}
	if out.Len() != 0 {
		t.Fatalf("Run printed before validating names: %q", out.String())
	}
}

func TestMutexDemo(t *testing.T) {
	r := NewRunner(nil, testConfig(nil))
	for range 5 {
		rep, err := runWithin(t, r, "mutex")
		if err != nil {
			t.Fatal(err)
		}
		if got := rep.Counts[Sequential]; got != 20 {
			t.Fatalf("sequential = %d, want 20", got)
		}
		if got := rep.Counts[Mutex]; got != 20 {
			t.Fatalf("mutex = %d, want 20", got)
		}
		if !opt.Race_ {
			if got := rep.Counts[Unsynchronized]; got < 1 || got > 20 {
				t.Fatalf("unsynchronized = %d, want 1..20", got)
			}
		}
	}
}

func TestCondVarDemo(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(nil, testConfig(&out))
	rep, err := runWithin(t, r, "condvar")
	if err != nil {
		t.Fatal(err)
	}
	if rep.Payload != "Example data after processing" {
		t.Fatalf("payload = %q", rep.Payload)
	}
	if !strings.Contains(out.String(), "data = Example data after processing") {
		t.Fatalf("narration missing result:\n%s", out.String())
	}
}

func TestSemaphoreDemo(t *testing.T) {
	for i := range 20 {
		var out bytes.Buffer
		r := NewRunner(nil, testConfig(&out))
		rep, err := runWithin(t, r, "semaphore")
		if err != nil {
			t.Fatal(err)
		}
		if rep.Payload != "Example data after processing" {
			t.Fatalf("trial %d: payload = %q", i, rep.Payload)
		}
		text := out.String()
		worked := strings.Index(text, "Worker thread is processing data")
		back := strings.Index(text, "Acquired binary semaphore from worker thread")
		if worked < 0 || back < worked {
			t.Fatalf("trial %d: main got the permit back before the worker ran:\n%s", i, text)
		}
	}
}

func TestLatchDemo_Gated(t *testing.T) {
	r := NewRunner(nil, testConfig(nil))
	for i := range 100 {
		rep, err := runWithin(t, r, "latch")
		if err != nil {
			t.Fatal(err)
		}
		morning, afternoon := rep.Snapshots[0], rep.Snapshots[1]
		if !AllIn(morning, Morning) {
			t.Fatalf("trial %d: morning snapshot saw afternoon work: %v", i, morning)
		}
		if !AllIn(afternoon, Afternoon) {
			t.Fatalf("trial %d: afternoon snapshot = %v", i, afternoon)
		}
		if !PhasesOrdered(rep.Entries) {
			t.Fatalf("trial %d: entries out of phase order: %v", i, rep.Entries)
		}
		if len(rep.Entries) != 2*len(jobs) {
			t.Fatalf("trial %d: %d entries, want %d", i, len(rep.Entries), 2*len(jobs))
		}
	}
}

// Without the second gate the morning snapshot races with afternoon work.
// Some trial must show it.
func TestLatchDemo_Ungated(t *testing.T) {
	r := NewRunner(nil, testConfig(nil))
	violations := 0
	for range 200 {
		rep, err := runWithin(t, r, "nolatch")
		if err != nil {
			t.Fatal(err)
		}
		if !AllIn(rep.Snapshots[0], Morning) || !PhasesOrdered(rep.Entries) {
			violations++
		}
		// Joining still settles every job in the afternoon.
		if !AllIn(rep.Snapshots[1], Afternoon) {
			t.Fatalf("final snapshot = %v", rep.Snapshots[1])
		}
	}
	if violations == 0 {
		t.Fatal("ungated variant never let afternoon work overtake the morning snapshot")
	}
}

func TestBarrierDemo(t *testing.T) {
	for i := range 50 {
		var out bytes.Buffer
		r := NewRunner(nil, testConfig(&out))
		rep, err := runWithin(t, r, "barrier")
		if err != nil {
			t.Fatal(err)
		}
		if rep.Completions != 2 {
			t.Fatalf("trial %d: completions = %d, want 2", i, rep.Completions)
		}
		if !PhasesOrdered(rep.Entries) {
			t.Fatalf("trial %d: afternoon work before all morning work: %v", i, rep.Entries)
		}
		if !AllIn(rep.Snapshots[0], Afternoon) {
			t.Fatalf("trial %d: final snapshot = %v", i, rep.Snapshots[0])
		}
		text := out.String()
		first := strings.Index(text, "**Barrier first use completed**")
		reuse := strings.Index(text, "**Barrier reuse completed**")
		if first < 0 || reuse < first {
			t.Fatalf("trial %d: completion labels missing or out of order:\n%s", i, text)
		}
	}
}

func TestRunner_RunAll(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(nil, testConfig(&out))
	type result struct {
		reports []Report
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		reports, err := r.Run(context.Background())
		ch <- result{reports, err}
	}()
	var res result
	select {
	case res = <-ch:
	case <-time.After(30 * time.Second):
		t.Fatal("Run never returned")
	}
	reports, err := res.reports, res.err
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 6 {
		t.Fatalf("%d reports, want 6", len(reports))
	}
	for i, name := range Default().Names() {
		if reports[i].Name != name {
			t.Errorf("report %d = %q, want %q", i, reports[i].Name, name)
		}
	}
	text := out.String()
	for _, s := range []string{
		"START OF DEMO",
		"START: THREADING AND MUTEX EXAMPLE",
		"END: BARRIER EXAMPLE",
		"END OF DEMO",
	} {
		if !strings.Contains(text, s) {
			t.Errorf("output missing %q", s)
		}
	}
}

func TestRunner_Pause(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig(&out)
	cfg.Pause = true
	cfg.In = strings.NewReader("\n")
	r := NewRunner(nil, cfg)

	// One line of input, then EOF turns pacing off.
	if _, err := r.Run(context.Background(), "latch", "barrier", "latch"); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out.String(), "press enter"); n != 2 {
		t.Fatalf("prompted %d times, want 2", n)
	}
}

func TestRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(nil, testConfig(nil))
	if _, err := r.RunDemo(ctx, "latch"); !errors.Is(err, context.Canceled) {
		t.Fatalf("RunDemo = %v, want context.Canceled", err)
	}
}

func TestRunner_CancelDuringDelay(t *testing.T) {
	for _, name := range []string{"condvar", "semaphore"} {
		cfg := testConfig(nil)
		cfg.Delay = time.Hour
		r := NewRunner(nil, cfg)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		start := time.Now()
		_, err := r.RunDemo(ctx, name)
		cancel()
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("%s: err = %v, want DeadlineExceeded", name, err)
		}
		if d := time.Since(start); d > 5*time.Second {
			t.Fatalf("%s: took %v to abort", name, d)
		}
	}
}
