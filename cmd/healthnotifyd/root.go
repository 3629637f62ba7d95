package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthnotify/config"
	"github.com/jonwraymond/healthnotify/notify"
)

func newRootCmd() *cobra.Command {
	var configPath string

	load := func(cmd *cobra.Command) (*app, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		return newApp(cmd.Context(), cfg)
	}

	root := &cobra.Command{
		Use:           "healthnotifyd",
		Short:         "Run health checks on a schedule and notify about the results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./healthnotify.yaml)")

	root.AddCommand(newRunCommand(load))
	root.AddCommand(newOnceCommand(load))
	root.AddCommand(newBackendsCommand(load))
	root.AddCommand(newChecksCommand(load))
	root.AddCommand(newVersionCommand())
	return root
}

type loader func(cmd *cobra.Command) (*app, error)

func newRunCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the notifier until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(cmd.Context()))
			return a.run(cmd.Context())
		},
	}
}

func newOnceCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single notification cycle and print the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(cmd.Context()))

			repeat := a.notifier.PerformRun(cmd.Context())
			return printCycle(cmd.OutOrStdout(), a, repeat)
		},
	}
}

func printCycle(out io.Writer, a *app, repeat bool) error {
	report, ok := a.notifier.LastReport()
	if !ok {
		fmt.Fprintf(out, "no cycle ran on this instance (repeat=%t)\n", repeat)
		return nil
	}
	fmt.Fprint(out, notify.Render(report, notify.VerbosityDetailed))

	outcomes := a.notifier.LastOutcomes()
	if len(outcomes) > 0 {
		fmt.Fprintln(out)
	}
	var failed int
	for _, o := range outcomes {
		switch {
		case o.Sent:
			fmt.Fprintf(out, "%-28s sent in %s\n", o.Alias, o.Duration)
		case o.Skipped:
			fmt.Fprintf(out, "%-28s skipped: %s\n", o.Alias, o.Reason)
		default:
			failed++
			fmt.Fprintf(out, "%-28s failed: %v\n", o.Alias, o.Err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d notification backend(s) failed", failed)
	}
	return nil
}

func newBackendsCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List notification backends with their enabled and circuit state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(cmd.Context()))

			out := cmd.OutOrStdout()
			for _, st := range a.backendStatuses(cmd.Context()) {
				state := "disabled"
				if st.Enabled {
					state = "enabled"
				}
				fmt.Fprintf(out, "%-28s %-9s circuit=%s\n", st.Alias, state, st.Circuit)
			}
			return nil
		},
	}
}

func newChecksCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "checks [id...]",
		Short: "List registered health checks and whether notification runs include them",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(cmd.Context()))

			checks := a.checks.All()
			if len(args) > 0 {
				checks = checks[:0]
				for _, id := range args {
					c, ok := a.checks.Lookup(id)
					if !ok {
						return fmt.Errorf("unknown health check %q", id)
					}
					checks = append(checks, c)
				}
			}

			var enabled []string
			for _, c := range a.checks.Enabled() {
				enabled = append(enabled, c.ID())
			}
			out := cmd.OutOrStdout()
			for _, c := range checks {
				state := "disabled"
				if slices.Contains(enabled, c.ID()) {
					state = "enabled"
				}
				fmt.Fprintf(out, "%-28s %-9s %s\n", c.ID(), state, c.Name())
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "healthnotifyd %s (%s)\n", version, runtime.Version())
		},
	}
}
