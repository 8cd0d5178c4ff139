// Package render draws balance render plans into SVG or PNG figures
// using the go-chart backend.
//
// The package owns everything pixel-adjacent: axis ticks become
// chart.Tick values, stacked areas are painted tallest-first so each
// band's visible thickness is its own value, and the plan's legend
// directive is applied exactly once by reserving the non-plot share of
// the figure width for a legend box.
package render

import (
	"bytes"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/fluxplot/fluxplot/pkg/errors"
	"github.com/fluxplot/fluxplot/pkg/observability"
	"github.com/fluxplot/fluxplot/pkg/plot"
)

// Default figure geometry.
const (
	DefaultWidth  = 1200
	DefaultHeight = 500
)

// Options control figure geometry and axis dressing.
type Options struct {
	Width  int
	Height int
	Title  string
	XLabel string
	YLabel string
	Ticks  *plot.TickSpec // nil lets the backend choose x ticks
}

// ValidateAndSetDefaults fills zero fields with defaults and rejects
// unusable geometry.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Width < 100 || o.Height < 100 {
		return errors.New(errors.ErrCodeInvalidInput,
			"figure must be at least 100x100, got %dx%d", o.Width, o.Height)
	}
	return nil
}

// Option mutates Options.
type Option func(*Options)

// WithSize sets the figure size in pixels.
func WithSize(width, height int) Option {
	return func(o *Options) {
		o.Width = width
		o.Height = height
	}
}

// WithTitle sets the figure title.
func WithTitle(title string) Option {
	return func(o *Options) { o.Title = title }
}

// WithAxisLabels sets the x and y axis names.
func WithAxisLabels(x, y string) Option {
	return func(o *Options) {
		o.XLabel = x
		o.YLabel = y
	}
}

// WithTicks places datetime ticks per spec instead of letting the
// backend choose.
func WithTicks(spec plot.TickSpec) Option {
	return func(o *Options) { o.Ticks = &spec }
}

// SVG renders the plan into an SVG document.
func SVG(plan *plot.RenderPlan, opts ...Option) ([]byte, error) {
	return renderWith(chart.SVG, "svg", plan, opts)
}

// PNG renders the plan into a PNG image.
func PNG(plan *plot.RenderPlan, opts ...Option) ([]byte, error) {
	return renderWith(chart.PNG, "png", plan, opts)
}

func renderWith(provider chart.RendererProvider, format string, plan *plot.RenderPlan, opts []Option) ([]byte, error) {
	o := Options{}
	for _, fn := range opts {
		fn(&o)
	}
	if err := o.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	started := time.Now()
	observability.Render().OnRenderStart(planBus(plan), format)

	figure, err := build(plan, o)
	if err != nil {
		observability.Render().OnRenderComplete(planBus(plan), format, time.Since(started), err)
		return nil, err
	}

	var buf bytes.Buffer
	if err := figure.Render(provider, &buf); err != nil {
		err = errors.Wrap(errors.ErrCodeRender, err, "render %s figure for bus %q", format, plan.Bus)
		observability.Render().OnRenderComplete(planBus(plan), format, time.Since(started), err)
		return nil, err
	}

	observability.Render().OnRenderComplete(planBus(plan), format, time.Since(started), nil)
	return buf.Bytes(), nil
}

func planBus(plan *plot.RenderPlan) string {
	if plan == nil {
		return ""
	}
	return plan.Bus
}
