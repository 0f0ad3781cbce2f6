package demo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Runner plays demos from a Registry strictly in sequence.
type Runner struct {
	registry *Registry
	cfg      Config
	logger   *slog.Logger
	in       *bufio.Reader
}

// NewRunner returns a Runner over reg. A nil reg means Default().
func NewRunner(reg *Registry, cfg Config) *Runner {
	if reg == nil {
		reg = Default()
	}
	cfg = cfg.withDefaults()
	return &Runner{
		registry: reg,
		cfg:      cfg,
		logger:   cfg.Logger.With("component", "demo-runner"),
		in:       bufio.NewReader(cfg.In),
	}
}

// RunDemo plays one demo and returns once all its goroutines are joined.
func (r *Runner) RunDemo(ctx context.Context, name string) (Report, error) {
	d, ok := r.registry.Lookup(name)
	if !ok {
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownDemo, name)
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	// Fresh env per run: nothing carries over between demos.
	env := newEnv(r.cfg)
	env.Say("----------START: %s EXAMPLE----------", d.Title)
	r.logger.Debug("demo started", "demo", d.Name)

	start := time.Now()
	rep, err := d.Run(ctx, env)
	rep.Name = d.Name
	rep.Elapsed = time.Since(start)
	if err != nil {
		r.logger.Warn("demo aborted", "demo", d.Name, "elapsed", rep.Elapsed, "error", err)
		return rep, fmt.Errorf("demo %s: %w", d.Name, err)
	}

	env.Say("----------END: %s EXAMPLE----------", d.Title)
	r.logger.Info("demo finished", "demo", d.Name, "elapsed", rep.Elapsed)
	return rep, nil
}

// Run plays the named demos in order, or every registered demo when no
// name is given. Unknown names are rejected before anything runs.
func (r *Runner) Run(ctx context.Context, names ...string) ([]Report, error) {
	if len(names) == 0 {
		names = r.registry.Names()
	}
	for _, n := range names {
		if _, ok := r.registry.Lookup(n); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDemo, n)
		}
	}

	fmt.Fprintln(r.cfg.Out, "-----------------START OF DEMO--------------------")
	reports := make([]Report, 0, len(names))
	for _, n := range names {
		if r.cfg.Pause {
			if err := r.pause(ctx, n); err != nil {
				return reports, err
			}
		}
		rep, err := r.RunDemo(ctx, n)
		if err != nil {
			return reports, err
		}
		reports = append(reports, rep)
	}
	fmt.Fprintln(r.cfg.Out, "-----------------END OF DEMO--------------------")
	return reports, nil
}

// pause blocks for one line of input. End of input turns pacing off.
func (r *Runner) pause(ctx context.Context, next string) error {
	fmt.Fprintf(r.cfg.Out, "press enter to run %s...\n", next)
	if _, err := r.in.ReadString('\n'); err != nil {
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("read pause input: %w", err)
		}
		r.cfg.Pause = false
	}
	return ctx.Err()
}

// fanOut starts n workers and waits for all of them. The first error
// cancels the context handed to the others.
func fanOut(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			return fn(gctx, i)
		})
	}
	return g.Wait()
}
