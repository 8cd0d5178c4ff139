package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fluxplot/fluxplot/pkg/errors"
	"github.com/fluxplot/fluxplot/pkg/flows"
	"github.com/fluxplot/fluxplot/pkg/plot"
)

func testPlan(t *testing.T) *plot.RenderPlan {
	t.Helper()
	start := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)
	table, err := flows.NewTable(flows.Range(start, time.Hour, 3))
	if err != nil {
		t.Fatalf("NewTable error: %v", err)
	}
	add := func(k flows.Key, v []float64) {
		t.Helper()
		if err := table.Add(k, v); err != nil {
			t.Fatalf("Add error: %v", err)
		}
	}
	add(flows.Key{Source: "wind", Target: "bel"}, []float64{1, 2, 3})
	add(flows.Key{Source: "pv", Target: "bel"}, []float64{4, 5, 6})
	add(flows.Key{Source: "bel", Target: "demand"}, []float64{2, 2, 2})

	plan, err := plot.Balance(table, "bel", plot.Options{})
	if err != nil {
		t.Fatalf("Balance error: %v", err)
	}
	return plan
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults error: %v", err)
	}
	if o.Width != DefaultWidth || o.Height != DefaultHeight {
		t.Errorf("defaults = %dx%d, want %dx%d", o.Width, o.Height, DefaultWidth, DefaultHeight)
	}

	bad := Options{Width: 10, Height: 10}
	if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("tiny figure code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}

func TestBuildPaintOrder(t *testing.T) {
	plan := testPlan(t)
	o := Options{}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("options error: %v", err)
	}

	figure, err := build(plan, o)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if len(figure.Series) != 3 {
		t.Fatalf("series count = %d, want 3", len(figure.Series))
	}

	// The tallest band paints first, the outflow line last.
	if got, want := figure.Series[0].GetName(), plan.Series[1].Label; got != want {
		t.Errorf("first painted series = %q, want %q", got, want)
	}
	if got, want := figure.Series[2].GetName(), plan.Series[2].Label; got != want {
		t.Errorf("last painted series = %q, want %q", got, want)
	}
}

func TestBuildTicks(t *testing.T) {
	plan := testPlan(t)
	o := Options{Ticks: &plot.TickSpec{Distance: 1, Format: "15:04"}}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("options error: %v", err)
	}

	figure, err := build(plan, o)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if len(figure.XAxis.Ticks) != 3 {
		t.Fatalf("tick count = %d, want 3", len(figure.XAxis.Ticks))
	}
	if got, want := figure.XAxis.Ticks[0].Value, float64(plan.Index[0].UnixNano()); got != want {
		t.Errorf("tick value = %v, want %v", got, want)
	}
	if figure.XAxis.Ticks[1].Label != "01:00" {
		t.Errorf("tick label = %q, want %q", figure.XAxis.Ticks[1].Label, "01:00")
	}
}

func TestBuildReservesLegendMargin(t *testing.T) {
	plan := testPlan(t)
	o := Options{Width: 1000, Height: 400}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("options error: %v", err)
	}

	figure, err := build(plan, o)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	// plotshare 0.9 on a 1000px figure leaves 100px for the legend box.
	if figure.Background.Padding.Right != 100 {
		t.Errorf("right padding = %d, want 100", figure.Background.Padding.Right)
	}
	if len(figure.Elements) != 1 {
		t.Errorf("elements = %d, want 1 legend renderable", len(figure.Elements))
	}
}

func TestSVG(t *testing.T) {
	plan := testPlan(t)

	out, err := SVG(plan, WithTitle("bel balance"), WithTicks(plot.TickSpec{Distance: 1}))
	if err != nil {
		t.Fatalf("SVG error: %v", err)
	}
	if !strings.Contains(string(out), "<svg") {
		t.Error("output does not look like an SVG document")
	}
}

func TestPNG(t *testing.T) {
	plan := testPlan(t)

	out, err := PNG(plan)
	if err != nil {
		t.Fatalf("PNG error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		t.Error("output does not carry the PNG magic")
	}
}

func TestRenderRejectsEmptyPlan(t *testing.T) {
	_, err := SVG(&plot.RenderPlan{})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}
