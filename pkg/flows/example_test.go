package flows_test

import (
	"fmt"
	"time"

	"github.com/fluxplot/fluxplot/pkg/flows"
)

func ExamplePartition() {
	index := flows.Range(time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC), time.Hour, 3)
	table, _ := flows.NewTable(index)
	_ = table.Add(flows.Key{Source: "wind", Target: "electricity"}, []float64{1, 2, 3})
	_ = table.Add(flows.Key{Source: "pv", Target: "electricity"}, []float64{4, 5, 6})
	_ = table.Add(flows.Key{Source: "electricity", Target: "demand"}, []float64{2, 2, 2})

	bal, _ := flows.Partition(table, "electricity")
	for _, k := range bal.Inflows {
		fmt.Println("in: ", k)
	}
	for _, k := range bal.Outflows {
		fmt.Println("out:", k)
	}
	// Output:
	// in:  wind -> electricity
	// in:  pv -> electricity
	// out: electricity -> demand
}

func ExampleSlice() {
	start := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)
	table, _ := flows.NewTable(flows.Range(start, time.Hour, 6))
	_ = table.Add(flows.Key{Source: "wind", Target: "electricity"}, []float64{0, 1, 2, 3, 4, 5})

	window := flows.Window{From: start.Add(2 * time.Hour), To: start.Add(4 * time.Hour)}
	sliced, _ := flows.Slice(table, window)

	values, _ := sliced.Values(flows.Key{Source: "wind", Target: "electricity"})
	fmt.Println(sliced.Len(), values)
	// Output:
	// 3 [2 3 4]
}
