package topo

import (
	"strings"
	"testing"

	"github.com/fluxplot/fluxplot/pkg/energy"
)

const topoScenario = `
name = "topo"
start = 2026-01-05T00:00:00Z
periods = 2
step = "1h"

[[bus]]
label = "electricity"
excess = true

[[bus]]
label = "gas"

[[source]]
label = "gas-import"
bus = "gas"
capacity = 100.0
marginal_cost = 20.0

[[converter]]
label = "turbine"
from = "gas"
to = "electricity"
capacity = 30.0
efficiency = 0.5

[[storage]]
label = "battery"
bus = "electricity"
capacity = 50.0
power = 10.0
efficiency_in = 0.9
efficiency_out = 0.9

[[demand]]
label = "demand"
bus = "electricity"
amount = 10.0
profile = "load"
`

func TestDOT(t *testing.T) {
	sys, err := energy.Parse([]byte(topoScenario))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	sys.SetProfile("load", []float64{1, 1})
	if err := sys.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	dot := DOT(sys)

	if !strings.HasPrefix(dot, "digraph \"topo\" {") {
		t.Errorf("DOT does not open a digraph named after the scenario:\n%s", dot)
	}
	for _, want := range []string{
		`"electricity" [shape=ellipse`,
		`"turbine" [shape=trapezium]`,
		`"battery" [shape=cylinder]`,
		`"electricity-excess"`,
		`"gas" -> "turbine";`,
		`"turbine" -> "electricity";`,
		`"gas-import" -> "gas";`,
		`"electricity" -> "demand";`,
		`"electricity" -> "battery" [dir=both];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q", want)
		}
	}
	if strings.Contains(dot, `"gas-shortage"`) {
		t.Error("DOT declares a shortage node for a bus without one")
	}
}
