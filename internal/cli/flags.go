package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fluxplot/fluxplot/pkg/errors"
	"github.com/fluxplot/fluxplot/pkg/flows"
	"github.com/fluxplot/fluxplot/pkg/plot"
)

// timeFlagLayouts are the accepted layouts for --from and --to.
var timeFlagLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// plotFlags holds the flags shared by every figure-producing command.
type plotFlags struct {
	buses      []string
	out        string
	formatsRaw string
	smooth     bool
	from       string
	to         string
	ticks      int
	tickFormat string
	reverse    bool
	plotShare  float64
	noCache    bool
}

// register attaches the shared plotting flags to cmd.
func (f *plotFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.buses, "bus", "b", nil, "bus label to plot (repeatable; default all buses)")
	cmd.Flags().StringVarP(&f.out, "out", "o", ".", "output directory for rendered figures")
	cmd.Flags().StringVarP(&f.formatsRaw, "formats", "f", "png", "output format(s): png, svg (comma-separated)")
	cmd.Flags().BoolVar(&f.smooth, "smooth", false, "interpolate between samples instead of stepping (visual only)")
	cmd.Flags().StringVar(&f.from, "from", "", "window start (RFC 3339, 2006-01-02T15:04, or 2006-01-02)")
	cmd.Flags().StringVar(&f.to, "to", "", "window end (same layouts as --from)")
	cmd.Flags().IntVar(&f.ticks, "ticks", 0, "number of x-axis ticks (0 lets the backend choose)")
	cmd.Flags().StringVar(&f.tickFormat, "tick-format", "", "Go time layout for tick labels")
	cmd.Flags().BoolVar(&f.reverse, "reverse", false, "reverse legend order to match the stack top-down")
	cmd.Flags().Float64Var(&f.plotShare, "plotshare", 0, "fraction of figure width for the plot area (default 0.9)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "bypass the artifact cache")
}

// window parses --from and --to into a time window.
func (f *plotFlags) window() (flows.Window, error) {
	var w flows.Window
	var err error
	if w.From, err = parseTimeFlag(f.from); err != nil {
		return w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse --from")
	}
	if w.To, err = parseTimeFlag(f.to); err != nil {
		return w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse --to")
	}
	return w, nil
}

// plotOptions converts the flags into compositor options.
func (f *plotFlags) plotOptions() (plot.Options, error) {
	window, err := f.window()
	if err != nil {
		return plot.Options{}, err
	}
	mode := plot.Step
	if f.smooth {
		mode = plot.Smooth
	}
	return plot.Options{
		Window:    window,
		Mode:      mode,
		Reverse:   f.reverse,
		PlotShare: f.plotShare,
	}, nil
}

// tickSpec returns the tick placement requested by --ticks, or nil
// when the backend should choose.
func (f *plotFlags) tickSpec() *plot.TickSpec {
	if f.ticks <= 0 {
		return nil
	}
	return &plot.TickSpec{Count: f.ticks, Format: f.tickFormat}
}

// mode returns the projection mode name for cache keys and logs.
func (f *plotFlags) mode() string {
	if f.smooth {
		return "smooth"
	}
	return "step"
}

// formats parses and validates --formats.
func (f *plotFlags) formats() ([]string, error) {
	parts := strings.Split(f.formatsRaw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		switch p {
		case "png", "svg":
			out = append(out, p)
		case "":
		default:
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid format %q (must be png or svg)", p)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no output format given")
	}
	return out, nil
}

// parseTimeFlag parses a timestamp flag, trying the accepted layouts
// in order. An empty value is an open bound.
func parseTimeFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeFlagLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
