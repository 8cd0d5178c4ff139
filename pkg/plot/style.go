// Package plot turns a bus balance into a backend-independent render
// plan: inflows stacked cumulatively for area rendering, outflows as
// individual lines, with deterministic ordering and colors, datetime
// axis ticks, and legend layout carried as plain data.
//
// The pipeline mirrors how every bundled scenario is plotted:
//
//	plan, err := plot.Balance(table, "electricity", plot.Options{
//	    Window: flows.Window{From: from},
//	    Order:  plot.OrderSpec{Inflows: []flows.Key{{Source: "pv", Target: "electricity"}}},
//	    Style:  plot.StyleSpec{Colors: map[flows.Key]plot.Color{...}},
//	    Mode:   plot.Step,
//	})
//
// Nothing in this package draws pixels. A RenderPlan is handed to a
// chart backend (see pkg/render) which applies the legend's PlotShare
// directive exactly once per rendered figure.
package plot

import "github.com/fluxplot/fluxplot/pkg/flows"

// Color is a hex color literal of the form "#rrggbb".
type Color string

// DefaultPalette is the cyclic fallback palette used for flows without
// an explicit color override. The values match the bundled scenarios.
var DefaultPalette = []Color{
	"#5b5bae", // violet blue
	"#ffde32", // sun yellow
	"#42c77a", // emerald
	"#636f6b", // nickel gray
	"#ce4aff", // magenta
	"#20b4b6", // teal
	"#f22222", // signal red
	"#555555", // dark gray
}

// StyleSpec carries explicit per-flow color overrides and the fallback
// palette used for everything else. Two flows share a color only when
// the override mapping says so.
type StyleSpec struct {
	Colors  map[flows.Key]Color
	Palette []Color
}

// OrderSpec pins an explicit draw order for inflows and outflows.
// Listed keys come first, in the given order; unlisted keys follow in
// the balance's encounter order. Listed keys absent from the balance
// are ignored without error, so one OrderSpec can serve several buses.
type OrderSpec struct {
	Inflows  []flows.Key
	Outflows []flows.Key
}

// Resolution is the deterministic outcome of Resolve: final draw order
// for both groups and one color per flow key.
type Resolution struct {
	Inflows  []flows.Key
	Outflows []flows.Key
	Colors   map[flows.Key]Color
}

// Resolve orders and colors the flows of a balance. Identical inputs
// always yield identical output: explicit order entries filtered to the
// present keys, remaining keys in encounter order, override colors as
// given, and fallback colors assigned from the palette in first-need
// order, skipping colors an override already claimed. When every
// palette color is taken the palette cycles.
func Resolve(bal *flows.Balance, order OrderSpec, style StyleSpec) Resolution {
	res := Resolution{
		Inflows:  arrange(bal.Inflows, order.Inflows),
		Outflows: arrange(bal.Outflows, order.Outflows),
		Colors:   make(map[flows.Key]Color),
	}

	palette := style.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}

	ordered := make([]flows.Key, 0, len(res.Inflows)+len(res.Outflows))
	ordered = append(ordered, res.Inflows...)
	ordered = append(ordered, res.Outflows...)

	used := make(map[Color]bool)
	for _, k := range ordered {
		if c, ok := style.Colors[k]; ok {
			res.Colors[k] = c
			used[c] = true
		}
	}

	next := 0
	for _, k := range ordered {
		if _, done := res.Colors[k]; done {
			continue
		}
		c := palette[next%len(palette)]
		for probed := 0; used[c] && probed < len(palette); probed++ {
			next++
			c = palette[next%len(palette)]
		}
		next++
		res.Colors[k] = c
		used[c] = true
	}

	return res
}

// arrange returns the explicit keys that are present in group, in
// explicit order, followed by the rest of group in encounter order.
func arrange(group, explicit []flows.Key) []flows.Key {
	present := make(map[flows.Key]bool, len(group))
	for _, k := range group {
		present[k] = true
	}

	out := make([]flows.Key, 0, len(group))
	taken := make(map[flows.Key]bool, len(group))
	for _, k := range explicit {
		if present[k] && !taken[k] {
			out = append(out, k)
			taken[k] = true
		}
	}
	for _, k := range group {
		if !taken[k] {
			out = append(out, k)
		}
	}
	return out
}
