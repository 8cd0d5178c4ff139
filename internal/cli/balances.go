package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fluxplot/fluxplot/pkg/cache"
	"github.com/fluxplot/fluxplot/pkg/dispatch"
	"github.com/fluxplot/fluxplot/pkg/errors"
	"github.com/fluxplot/fluxplot/pkg/plot"
	"github.com/fluxplot/fluxplot/pkg/render"
)

// artifactTTL is how long CLI-rendered figures stay cached.
const artifactTTL = 24 * time.Hour

// renderBalances renders the balance figures of the requested buses
// into the output directory, one file per bus and format. Buses whose
// flows are missing from the results are skipped with a warning; every
// other failure aborts.
func (c *CLI) renderBalances(ctx context.Context, res *dispatch.Results, inputHash string, flags *plotFlags) error {
	buses := flags.buses
	if len(buses) == 0 {
		buses = res.Buses()
	}
	if len(buses) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "results contain no buses; use --bus")
	}

	formats, err := flags.formats()
	if err != nil {
		return err
	}
	opts, err := flags.plotOptions()
	if err != nil {
		return err
	}
	store, err := newCache(flags.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := os.MkdirAll(flags.out, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create output directory %s", flags.out)
	}

	for _, bus := range buses {
		if err := c.renderBus(ctx, res, bus, inputHash, flags, opts, formats, store); err != nil {
			code := errors.GetCode(err)
			if code == errors.ErrCodeNotFound || code == errors.ErrCodeEmptyBus {
				printWarning("Skipping bus %q: %s", bus, errors.UserMessage(err))
				continue
			}
			return err
		}
	}
	return nil
}

func (c *CLI) renderBus(ctx context.Context, res *dispatch.Results, bus, inputHash string,
	flags *plotFlags, opts plot.Options, formats []string, store cache.Cache) error {

	table, err := res.Node(bus)
	if err != nil {
		return err
	}
	plan, err := plot.Balance(table, bus, opts)
	if err != nil {
		return err
	}
	c.Logger.Debugf("Composed %d series for bus %q", len(plan.Series), bus)

	renderOpts := []render.Option{render.WithTitle(bus + " balance")}
	if spec := flags.tickSpec(); spec != nil {
		renderOpts = append(renderOpts, render.WithTicks(*spec))
	}

	for _, format := range formats {
		key := cache.PlotKey(inputHash, cache.PlotKeyOpts{
			Bus:        bus,
			Mode:       flags.mode(),
			Format:     format,
			From:       flags.from,
			To:         flags.to,
			Ticks:      flags.ticks,
			TickFormat: flags.tickFormat,
			Reverse:    flags.reverse,
			PlotShare:  flags.plotShare,
			Width:      render.DefaultWidth,
			Height:     render.DefaultHeight,
		})

		data, cached, _ := store.Get(ctx, key)
		if !cached {
			if format == "png" {
				data, err = render.PNG(plan, renderOpts...)
			} else {
				data, err = render.SVG(plan, renderOpts...)
			}
			if err != nil {
				return err
			}
			_ = store.Set(ctx, key, data, artifactTTL)
		}

		path := filepath.Join(flags.out, fmt.Sprintf("%s_balance.%s", bus, format))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		printFile(path)
	}
	return nil
}
