package plot

import (
	"github.com/fluxplot/fluxplot/pkg/errors"
	"github.com/fluxplot/fluxplot/pkg/flows"
)

// Options configures one balance plot. The zero value plots the full
// horizon in step mode with default palette, encounter order, and a 0.9
// plot share.
type Options struct {
	Window    flows.Window
	Order     OrderSpec
	Style     StyleSpec
	Mode      Mode
	Reverse   bool    // reverse legend order to match the stack top-down
	PlotShare float64 // 0 means DefaultPlotShare; must be within (0, 1]
}

// Balance builds the complete render plan for one bus: slice to the
// window, partition into inflows and outflows, resolve order and
// colors, stack, and attach legend entries. Errors carry the codes
// documented on flows.Partition, flows.Slice, and Compose; on error no
// plan is returned.
func Balance(table *flows.Table, bus string, opts Options) (*RenderPlan, error) {
	if table == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "table cannot be nil")
	}
	share := opts.PlotShare
	if share == 0 {
		share = DefaultPlotShare
	}
	if share <= 0 || share > 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "plot share must be within (0, 1], got %v", opts.PlotShare)
	}

	work := table
	if !opts.Window.IsZero() {
		var err error
		work, err = flows.Slice(table, opts.Window)
		if err != nil {
			return nil, err
		}
	}

	bal, err := flows.Partition(work, bus)
	if err != nil {
		return nil, err
	}

	plan, err := Compose(work, Resolve(bal, opts.Order, opts.Style), opts.Mode)
	if err != nil {
		return nil, err
	}

	plan.Bus = bus
	plan.Legend = buildLegend(plan.Series, bus, opts.Reverse, share)
	return plan, nil
}

// buildLegend pairs cleaned labels with their series' swatches, in
// series order or reversed as requested.
func buildLegend(series []Series, bus string, reverse bool, share float64) Legend {
	labels := make([]string, len(series))
	for i, s := range series {
		labels[i] = s.Label
	}
	cleaned := LegendLabels(labels, bus, reverse)

	entries := make([]LegendEntry, len(series))
	for i := range series {
		j := i
		if reverse {
			j = len(series) - 1 - i
		}
		entries[i] = LegendEntry{Label: cleaned[i], Color: series[j].Color, Kind: series[j].Kind}
	}
	return Legend{Entries: entries, PlotShare: share}
}
