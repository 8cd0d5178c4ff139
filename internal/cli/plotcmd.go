package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fluxplot/fluxplot/pkg/cache"
	"github.com/fluxplot/fluxplot/pkg/dispatch"
	"github.com/fluxplot/fluxplot/pkg/errors"
)

func (c *CLI) plotCommand() *cobra.Command {
	flags := &plotFlags{}

	cmd := &cobra.Command{
		Use:   "plot <results.json>",
		Short: "Render bus balances from saved dispatch results",
		Long: `Plot reads dispatch results previously written with
"fluxplot run --results" and renders balance figures without
re-solving the scenario.

When --bus is omitted and the results cover more than one bus, an
interactive picker lets you choose one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlot(cmd.Context(), args[0], flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runPlot(ctx context.Context, path string, flags *plotFlags) error {
	ctx = withLogger(ctx, c.Logger)

	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read results %s", path)
	}
	res, err := dispatch.Import(path)
	if err != nil {
		printError("Invalid results file: %s", errors.UserMessage(err))
		return err
	}
	printInfo("Loaded results for %q (%d flows, %d buses)",
		res.Scenario, len(res.Keys()), len(res.Buses()))

	if len(flags.buses) == 0 && len(res.Buses()) > 1 {
		bus, ok, err := pickBus(res)
		if err != nil {
			return fmt.Errorf("bus selection: %w", err)
		}
		if !ok {
			printInfo("No bus selected")
			return nil
		}
		flags.buses = []string{bus}
	}

	return c.renderBalances(ctx, res, cache.Hash(raw), flags)
}
