package render

import (
	"math"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/fluxplot/fluxplot/pkg/errors"
	"github.com/fluxplot/fluxplot/pkg/plot"
)

// build assembles the go-chart figure for a plan. Area bands arrive
// bottom-to-top carrying cumulative tops; they are painted in reverse
// so every band stays visible, with outflow lines drawn over the stack.
func build(plan *plot.RenderPlan, o Options) (*chart.Chart, error) {
	if plan == nil || len(plan.Series) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "render plan has no series")
	}

	var areas, lines []plot.Series
	for _, s := range plan.Series {
		if s.Kind == plot.Area {
			areas = append(areas, s)
		} else {
			lines = append(lines, s)
		}
	}

	series := make([]chart.Series, 0, len(plan.Series))
	for i := len(areas) - 1; i >= 0; i-- {
		series = append(series, timeSeries(areas[i]))
	}
	for _, s := range lines {
		series = append(series, timeSeries(s))
	}

	share := plan.Legend.PlotShare
	if share <= 0 || share > 1 {
		share = plot.DefaultPlotShare
	}
	rightPad := int(math.Round(float64(o.Width) * (1 - share)))

	low, high := valueRange(plan)
	figure := &chart.Chart{
		Title:  o.Title,
		Width:  o.Width,
		Height: o.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 24, Left: 16, Right: rightPad, Bottom: 16},
		},
		XAxis: chart.XAxis{Name: o.XLabel},
		YAxis: chart.YAxis{
			Name:  o.YLabel,
			Range: &chart.ContinuousRange{Min: low, Max: high},
		},
		Series: series,
	}

	if o.Ticks != nil {
		ticks, err := plot.Ticks(plan.Index, *o.Ticks)
		if err != nil {
			return nil, err
		}
		xticks := make([]chart.Tick, len(ticks))
		for i, t := range ticks {
			xticks[i] = chart.Tick{
				Value: float64(plan.Index[t.Pos].UnixNano()),
				Label: t.Label,
			}
		}
		figure.XAxis.Ticks = xticks
	}

	if len(plan.Legend.Entries) > 0 {
		figure.Elements = []chart.Renderable{legendRight(plan.Legend.Entries)}
	}
	return figure, nil
}

// timeSeries converts one plan series into a drawable go-chart series.
func timeSeries(s plot.Series) chart.TimeSeries {
	xs := make([]time.Time, len(s.Points))
	ys := make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i] = p.T
		ys[i] = p.V
	}

	style := chart.Style{StrokeColor: hexColor(s.Color), StrokeWidth: 2}
	if s.Kind == plot.Area {
		style.StrokeWidth = 1
		style.FillColor = hexColor(s.Color)
	}
	return chart.TimeSeries{
		Name:    s.Label,
		XValues: xs,
		YValues: ys,
		Style:   style,
	}
}

// valueRange returns a zero-anchored y range with a little headroom so
// the stack top never touches the frame.
func valueRange(plan *plot.RenderPlan) (low, high float64) {
	for _, s := range plan.Series {
		for _, p := range s.Points {
			if p.V < low {
				low = p.V
			}
			if p.V > high {
				high = p.V
			}
		}
	}
	if high <= low {
		high = low + 1
	}
	return low, high + (high-low)*0.05
}

// legendRight draws the legend into the right margin reserved by the
// plot-share directive, vertically centered beside the plot box.
func legendRight(entries []plot.LegendEntry) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		const (
			swatch     = 10
			lineHeight = 18
			gap        = 6
		)

		style := defaults.InheritFrom(chart.Style{
			FontSize:  9.0,
			FontColor: chart.DefaultTextColor,
		})
		r.SetFont(style.GetFont())
		r.SetFontSize(style.GetFontSize())
		r.SetFontColor(style.GetFontColor())

		x := box.Right + 14
		y := box.Top + (box.Height()-len(entries)*lineHeight)/2
		if y < box.Top {
			y = box.Top
		}

		for i, e := range entries {
			top := y + i*lineHeight
			color := hexColor(e.Color)
			if e.Kind == plot.Area {
				r.SetFillColor(color)
				r.MoveTo(x, top)
				r.LineTo(x+swatch, top)
				r.LineTo(x+swatch, top+swatch)
				r.LineTo(x, top+swatch)
				r.Close()
				r.Fill()
			} else {
				r.SetStrokeColor(color)
				r.SetStrokeWidth(2)
				r.MoveTo(x, top+swatch/2)
				r.LineTo(x+swatch, top+swatch/2)
				r.Stroke()
			}
			r.Text(e.Label, x+swatch+gap, top+swatch)
		}
	}
}

// hexColor parses "#rrggbb" into a drawing color.
func hexColor(c plot.Color) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(string(c), "#"))
}
