package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newProcessCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process FILE|DIR...",
		Short: "Process scene files and write the results to the output directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandInputs(args)
			if err != nil {
				return err
			}
			pr := newPrinter(cmd.OutOrStdout())
			if len(paths) == 0 {
				pr.info("No scene files to process.")
				return nil
			}
			p, err := c.pipeline(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			start := time.Now()
			results := p.ImportAll(ctx, paths, c.workers)

			failed := 0
			for _, r := range results {
				pr.result(r)
				if !r.Success {
					failed++
				}
			}
			pr.info("Processed %d/%d in %.1fs", len(results)-failed, len(results), time.Since(start).Seconds())
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}
	c.addPipelineFlags(cmd)
	cmd.Flags().IntVarP(&c.workers, "workers", "w", runtime.NumCPU(), "number of files processed in parallel")
	return cmd
}

func newWatchCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Process scene files as they are created or written in DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.pipeline(cmd)
			if err != nil {
				return err
			}
			pr := newPrinter(cmd.OutOrStdout())
			p.Notify = pr.result

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pr.info("Watching %s (generation %s), output %s", args[0], pr.enabled(c.force || p.Prefs.Enabled()), c.out)
			return p.Watch(ctx, args[0])
		},
	}
	c.addPipelineFlags(cmd)
	return cmd
}

func newToggleCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Flip the Better Collider Generation preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openPrefs()
			if err != nil {
				return err
			}
			on, err := store.Toggle()
			if err != nil {
				return err
			}
			pr := newPrinter(cmd.OutOrStdout())
			pr.info("Better Collider Generation: %s", pr.enabled(on))
			return nil
		},
	}
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openPrefs()
			if err != nil {
				return err
			}
			cfg := store.Prefs()
			pr := newPrinter(cmd.OutOrStdout())
			pr.info("Preferences: %s", store.Path())
			pr.info("Better Collider Generation: %s", pr.enabled(cfg.BetterColliderGeneration))
			pr.info("Rotation tolerance: %g°", cfg.RotationTolerance)
			pr.info("Preview: %dpx %s view, %d mesh cells", cfg.PreviewSize, cfg.PreviewView, cfg.MeshCells)
			return nil
		},
	}
}
