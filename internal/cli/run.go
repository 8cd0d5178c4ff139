package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fluxplot/fluxplot/pkg/archive"
	"github.com/fluxplot/fluxplot/pkg/cache"
	"github.com/fluxplot/fluxplot/pkg/dispatch"
	"github.com/fluxplot/fluxplot/pkg/energy"
	"github.com/fluxplot/fluxplot/pkg/errors"
)

func (c *CLI) runCommand() *cobra.Command {
	flags := &plotFlags{}
	var resultsOut string
	var archiveURI string

	cmd := &cobra.Command{
		Use:   "run <scenario.toml>",
		Short: "Dispatch a scenario and render its bus balances",
		Long: `Run loads a scenario, solves its dispatch with a merit-order
simulation, and renders a balance figure per bus.

Figures land in the --out directory as <bus>_balance.<format>.
Use --results to keep the dispatch output as JSON for later plotting,
and --archive to store a run summary in MongoDB.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRun(cmd.Context(), args[0], flags, resultsOut, archiveURI)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&resultsOut, "results", "", "write dispatch results as JSON to this path")
	cmd.Flags().StringVar(&archiveURI, "archive", "", "MongoDB URI to archive a run summary")
	return cmd
}

func (c *CLI) runRun(ctx context.Context, path string, flags *plotFlags, resultsOut, archiveURI string) error {
	logger := c.Logger
	ctx = withLogger(ctx, logger)

	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read scenario %s", path)
	}

	prog := newProgress(logger)
	sys, err := energy.Load(path)
	if err != nil {
		printError("Invalid scenario: %s", errors.UserMessage(err))
		return err
	}
	prog.done(fmt.Sprintf("Loaded scenario %q (%d nodes, %d periods)",
		sys.Scenario.Name, sys.NodeCount(), sys.Scenario.Periods))

	started := time.Now()
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Dispatching %q", sys.Scenario.Name))
	spinner.Start()
	res, err := dispatch.Run(sys)
	if err != nil {
		spinner.StopWithError("Dispatch failed")
		if spinner.Cancelled() {
			return ctx.Err()
		}
		printError("%s", errors.UserMessage(err))
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Dispatched %d periods in %s",
		sys.Scenario.Periods, time.Since(started).Round(time.Millisecond)))

	printSuccess("Dispatch complete")
	printKeyValue("Scenario", sys.Scenario.Name)
	printKeyValue("Objective", fmt.Sprintf("%.2f", res.Objective))
	for _, bus := range res.Buses() {
		printKeyValue(bus+" inflow", fmt.Sprintf("%.1f", busInflowTotal(res, bus)))
	}
	printStats(len(res.Keys()), sys.Scenario.Periods, false)

	if resultsOut != "" {
		if err := res.Export(resultsOut); err != nil {
			return err
		}
		printFile(resultsOut)
		printNextStep("Plot the saved results later with", "fluxplot plot "+resultsOut)
	}

	if archiveURI != "" {
		if err := archiveRun(ctx, archiveURI, res, started); err != nil {
			printWarning("Archive failed: %s", errors.UserMessage(err))
		}
	}

	return c.renderBalances(ctx, res, cache.Hash(raw), flags)
}

// busInflowTotal sums everything fed into one bus over the horizon.
func busInflowTotal(res *dispatch.Results, bus string) float64 {
	var total float64
	for _, key := range res.Keys() {
		if key.Target != bus {
			continue
		}
		values, _ := res.Values(key)
		for _, v := range values {
			total += v
		}
	}
	return total
}

func archiveRun(ctx context.Context, uri string, res *dispatch.Results, started time.Time) error {
	store, err := archive.NewMongoArchive(ctx, uri)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	rec := archive.NewRecord(res, started, time.Since(started))
	if err := store.Store(ctx, rec); err != nil {
		return err
	}
	printDetail("Archived run %s", rec.ID)
	return nil
}
