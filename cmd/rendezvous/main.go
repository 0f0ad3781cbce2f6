// Command rendezvous plays the synchronization demos.
//
// Logging:
//   - The base logger is built here from --log-level and written to stderr
//   - Narration goes to stdout, logs never do
//   - The logger is handed to the runner; nothing calls slog.SetDefault
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/llxisdsh/rendezvous/demo"
	"github.com/llxisdsh/rendezvous/internal/logging"
)

var version = "dev"

// pauseEnv enables pacing between demos when --pause is not given.
const pauseEnv = "RENDEZVOUS_PAUSE"

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rendezvous",
		Short:         "Narrated demos of mutexes, condition variables, semaphores, latches and barriers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	runCmd := &cobra.Command{
		Use:   "run [demo...]",
		Short: "Run the named demos in order (all when none given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			levelFlag, _ := cmd.Flags().GetString("log-level")
			level, err := logging.ParseLevel(levelFlag)
			if err != nil {
				return err
			}
			logger := logging.New(cmd.ErrOrStderr(), level)

			cfg, err := configFromFlags(cmd)
			if err != nil {
				return err
			}
			cfg.Out = cmd.OutOrStdout()
			cfg.In = cmd.InOrStdin()
			cfg.Logger = logger

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			if _, err := demo.NewRunner(demo.Default(), cfg).Run(ctx, args...); err != nil {
				logger.Error("run failed", "error", err)
				return err
			}
			return nil
		},
	}
	runCmd.Flags().Bool("pause", false, "wait for enter before each demo (also "+pauseEnv+"=1)")
	runCmd.Flags().Int("workers", 100, "goroutines in the mutex demo")
	runCmd.Flags().Duration("work", 0, "simulated work before each increment (default 1ms)")
	runCmd.Flags().Duration("delay", 0, "main's expensive operation before signaling (default 100ms)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available demos",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, d := range demo.Default().Demos() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", d.Name, d.Title)
			}
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, versionCmd)
	return rootCmd
}

func configFromFlags(cmd *cobra.Command) (demo.Config, error) {
	var cfg demo.Config
	cfg.Workers, _ = cmd.Flags().GetInt("workers")
	cfg.Work, _ = cmd.Flags().GetDuration("work")
	cfg.Delay, _ = cmd.Flags().GetDuration("delay")

	if cmd.Flags().Changed("pause") {
		cfg.Pause, _ = cmd.Flags().GetBool("pause")
	} else if v := os.Getenv(pauseEnv); v != "" {
		p, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("parse %s: %w", pauseEnv, err)
		}
		cfg.Pause = p
	}
	return cfg, nil
}
