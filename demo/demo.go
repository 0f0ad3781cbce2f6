// Package demo is the demonstration harness for the rendezvous primitives.
//
// Each Demo spins up a few worker goroutines, applies one primitive and
// narrates what happens to the configured writer. Demos own fresh
// primitive instances per run and always join their workers before
// returning, so a Runner can play them strictly one after another.
//
// Besides narration, every run returns a Report with the observable values
// (counter totals, payloads, product snapshots, journal entries) so callers
// can check the ordering guarantees without parsing text.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/llxisdsh/rendezvous/internal/logging"
)

var (
	// ErrUnknownDemo is returned for a name that is not registered.
	ErrUnknownDemo = errors.New("unknown demo")
	// ErrDuplicateDemo is returned when registering a name twice.
	ErrDuplicateDemo = errors.New("duplicate demo")
)

// Config tunes a Runner. Zero fields take defaults.
type Config struct {
	// Workers is the goroutine count of the mutex demo. Default 100.
	Workers int
	// Work is the simulated work done before each increment. Default 1ms.
	Work time.Duration
	// Delay is the initiator's "expensive operation" before it signals a
	// worker. Default 100ms.
	Delay time.Duration
	// Pause waits for a line on In before each demo.
	Pause bool
	// Out receives narration. Default io.Discard.
	Out io.Writer
	// In is read when Pause is set. Default: empty input.
	In io.Reader
	// Logger receives lifecycle logs. Default: discard.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 100
	}
	if c.Work < 0 {
		c.Work = 0
	} else if c.Work == 0 {
		c.Work = time.Millisecond
	}
	if c.Delay < 0 {
		c.Delay = 0
	} else if c.Delay == 0 {
		c.Delay = 100 * time.Millisecond
	}
	if c.Out == nil {
		c.Out = io.Discard
	}
	if c.In == nil {
		c.In = eofReader{}
	}
	c.Logger = logging.Default(c.Logger)
	return c
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

// Report holds what a demo run observed.
type Report struct {
	Name    string
	Elapsed time.Duration
	// Counts holds counter totals keyed by variant (mutex demo).
	Counts map[string]int
	// Payload is the data the initiator read back at the end (condvar and
	// semaphore demos).
	Payload string
	// Snapshots are per-job product lists taken at the demo's checkpoints,
	// in job order.
	Snapshots [][]string
	// Entries is the journal of every product write, in write order.
	Entries []Entry
	// Completions counts barrier completion actions.
	Completions int
}

// Demo is one narrated vignette.
type Demo struct {
	Name  string
	Title string
	Run   func(ctx context.Context, env *Env) (Report, error)
}

// Env is what a running demo sees: the resolved config and a narrator
// that is safe to call from worker goroutines.
type Env struct {
	Config
	mu sync.Mutex
}

func newEnv(cfg Config) *Env {
	return &Env{Config: cfg}
}

// Say writes one narration line.
func (e *Env) Say(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.Out, format+"\n", args...)
}

// Sleep pauses for d or until ctx is done.
func (e *Env) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Registry is an ordered set of demos.
type Registry struct {
	order []string
	demos map[string]Demo
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{demos: make(map[string]Demo)}
}

// Register adds d. Names must be unique.
func (r *Registry) Register(d Demo) error {
	if d.Name == "" || d.Run == nil {
		return fmt.Errorf("register demo %q: name and run func are required", d.Name)
	}
	if _, ok := r.demos[d.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateDemo, d.Name)
	}
	r.order = append(r.order, d.Name)
	r.demos[d.Name] = d
	return nil
}

// Lookup returns the demo registered under name.
func (r *Registry) Lookup(name string) (Demo, bool) {
	d, ok := r.demos[name]
	return d, ok
}

// Names returns demo names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Demos returns demos in registration order.
func (r *Registry) Demos() []Demo {
	out := make([]Demo, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.demos[n])
	}
	return out
}

// Default returns the standard line-up, in the order it is played.
func Default() *Registry {
	r := NewRegistry()
	for _, d := range []Demo{
		{Name: "mutex", Title: "THREADING AND MUTEX", Run: runMutex},
		{Name: "condvar", Title: "CONDITION VARIABLE", Run: runCondVar},
		{Name: "semaphore", Title: "SEMAPHORE", Run: runSemaphore},
		{Name: "latch", Title: "LATCH", Run: runLatch},
		{Name: "nolatch", Title: "NO LATCH", Run: runNoLatch},
		{Name: "barrier", Title: "BARRIER", Run: runBarrier},
	} {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}
