package plot_test

import (
	"fmt"
	"time"

	"github.com/fluxplot/fluxplot/pkg/flows"
	"github.com/fluxplot/fluxplot/pkg/plot"
)

func ExampleTicks() {
	start := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)
	index := flows.Range(start, time.Hour, 72)

	// One tick per day, centered at noon.
	ticks, _ := plot.Ticks(index, plot.TickSpec{Distance: 24, Offset: 12, Format: "02-01 15:04"})
	for _, t := range ticks {
		fmt.Println(t.Pos, t.Label)
	}
	// Output:
	// 12 01-01 12:00
	// 36 02-01 12:00
	// 60 03-01 12:00
}

func ExampleLegendLabels() {
	labels := []string{
		"(('wind', 'electricity'), flow)",
		"(('electricity', 'demand'), flow)",
	}
	for _, l := range plot.LegendLabels(labels, "electricity", false) {
		fmt.Println(l)
	}
	// Output:
	// wind
	// demand
}

func ExampleBalance() {
	start := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)
	table, _ := flows.NewTable(flows.Range(start, time.Hour, 3))
	_ = table.Add(flows.Key{Source: "wind", Target: "bel"}, []float64{1, 2, 3})
	_ = table.Add(flows.Key{Source: "pv", Target: "bel"}, []float64{4, 5, 6})
	_ = table.Add(flows.Key{Source: "bel", Target: "demand"}, []float64{2, 2, 2})

	plan, _ := plot.Balance(table, "bel", plot.Options{})
	for _, s := range plan.Series {
		fmt.Println(s.Kind, s.Key)
	}
	fmt.Println("top at t1:", plan.Top(1))
	// Output:
	// area wind -> bel
	// area pv -> bel
	// line bel -> demand
	// top at t1: 7
}
