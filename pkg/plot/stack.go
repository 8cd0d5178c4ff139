package plot

import (
	"slices"
	"time"

	"github.com/fluxplot/fluxplot/pkg/errors"
	"github.com/fluxplot/fluxplot/pkg/flows"
)

// Mode selects how discrete samples are projected into drawable points.
type Mode int

const (
	// Step holds each sample constant until the next timestamp. The
	// stacked total is exact everywhere, which keeps per-period
	// quantities readable off the chart.
	Step Mode = iota
	// Smooth connects consecutive samples with straight lines. The
	// stacked total is exact at sample timestamps only; between samples
	// it is a visual approximation. Smooth never alters data values and
	// is never applied unless requested.
	Smooth
)

// String returns the mode name used in CLI flags and URLs.
func (m Mode) String() string {
	if m == Smooth {
		return "smooth"
	}
	return "step"
}

// ParseMode converts a mode name ("step" or "smooth") back into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "step", "":
		return Step, nil
	case "smooth":
		return Smooth, nil
	default:
		return Step, errors.New(errors.ErrCodeInvalidInput, "unknown mode %q (want step or smooth)", s)
	}
}

// SeriesKind tells the backend how to draw one plan series.
type SeriesKind int

const (
	// Area is a stacked inflow band. Its points carry the cumulative
	// stack top; the band below it (or zero) is its baseline.
	Area SeriesKind = iota
	// Line is an un-stacked outflow drawn over the inflow stack.
	Line
)

// String returns the kind name used in logs and plan dumps.
func (k SeriesKind) String() string {
	if k == Line {
		return "line"
	}
	return "area"
}

// Point is one drawable coordinate.
type Point struct {
	T time.Time
	V float64
}

// Series is one drawable series of a render plan.
type Series struct {
	Key    flows.Key
	Label  string // raw tuple label; legend entries carry the cleaned form
	Color  Color
	Kind   SeriesKind
	Points []Point
}

// RenderPlan is the complete, backend-independent description of one
// bus-balance figure. Series appear in paint order: inflow areas bottom
// to top, then outflow lines. Either a complete plan is returned or an
// error; consumers never see a partial plan.
type RenderPlan struct {
	Bus    string
	Index  []time.Time
	Mode   Mode
	Series []Series
	Legend Legend
}

// Compose projects resolved flows into a render plan. Inflows are
// stacked cumulatively: band k's points hold the running sum of bands
// 0..k, so the last area's top equals the inflow total at every sample.
// Outflows keep their own values and render as lines.
func Compose(table *flows.Table, res Resolution, mode Mode) (*RenderPlan, error) {
	if table == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "table cannot be nil")
	}
	if len(res.Inflows)+len(res.Outflows) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "resolution selects no flows")
	}

	index := table.Index()
	plan := &RenderPlan{
		Index:  index,
		Mode:   mode,
		Series: make([]Series, 0, len(res.Inflows)+len(res.Outflows)),
	}

	cum := make([]float64, len(index))
	for _, k := range res.Inflows {
		values, ok := table.Values(k)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFlow, "resolution references flow %s absent from table", k)
		}
		for j, v := range values {
			cum[j] += v
		}
		plan.Series = append(plan.Series, Series{
			Key:    k,
			Label:  k.Label(),
			Color:  res.Colors[k],
			Kind:   Area,
			Points: project(index, slices.Clone(cum), mode),
		})
	}

	for _, k := range res.Outflows {
		values, ok := table.Values(k)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFlow, "resolution references flow %s absent from table", k)
		}
		plan.Series = append(plan.Series, Series{
			Key:    k,
			Label:  k.Label(),
			Color:  res.Colors[k],
			Kind:   Line,
			Points: project(index, values, mode),
		})
	}

	return plan, nil
}

// project expands samples into drawable points. Step mode emits post
// steps: each value is held until the next timestamp, producing 2n-1
// points with vertical jumps at sample boundaries. Smooth mode passes
// the samples through for straight-line interpolation by the backend.
func project(index []time.Time, values []float64, mode Mode) []Point {
	if mode == Smooth || len(index) == 1 {
		points := make([]Point, len(index))
		for i := range index {
			points[i] = Point{T: index[i], V: values[i]}
		}
		return points
	}

	points := make([]Point, 0, 2*len(index)-1)
	for i := 0; i < len(index)-1; i++ {
		points = append(points, Point{T: index[i], V: values[i]}, Point{T: index[i+1], V: values[i]})
	}
	return append(points, Point{T: index[len(index)-1], V: values[len(index)-1]})
}

// Top returns the plan's stacked inflow total at sample position i,
// i.e. the top of the highest area band. At a step boundary the value
// holding from index[i] onward wins over the segment ending there.
// It reports 0 when the plan has no inflow bands.
func (p *RenderPlan) Top(i int) float64 {
	var top Series
	found := false
	for _, s := range p.Series {
		if s.Kind == Area {
			top = s
			found = true
		}
	}
	if !found {
		return 0
	}
	v := 0.0
	for _, pt := range top.Points {
		if pt.T.Equal(p.Index[i]) {
			v = pt.V
		}
	}
	return v
}
