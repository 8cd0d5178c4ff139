package archive

import (
	"context"
	"testing"
	"time"

	"github.com/fluxplot/fluxplot/pkg/dispatch"
	"github.com/fluxplot/fluxplot/pkg/energy"
)

func runResults(t *testing.T) *dispatch.Results {
	t.Helper()
	sys, err := energy.Parse([]byte(`
name = "archive"
start = 2026-01-05T00:00:00Z
periods = 2
step = "1h"

[[bus]]
label = "electricity"

[[source]]
label = "plant"
bus = "electricity"
capacity = 10.0
marginal_cost = 5.0

[[demand]]
label = "demand"
bus = "electricity"
amount = 4.0
profile = "load"
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	sys.SetProfile("load", []float64{1, 1})
	if err := sys.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	res, err := dispatch.Run(sys)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return res
}

func TestNewRecord(t *testing.T) {
	res := runResults(t)
	started := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	rec := NewRecord(res, started, 1500*time.Millisecond)

	if rec.ID == "" {
		t.Error("NewRecord() assigned no ID")
	}
	if rec.Scenario != "archive" {
		t.Errorf("Scenario = %q, want %q", rec.Scenario, "archive")
	}
	if rec.DurationMS != 1500 {
		t.Errorf("DurationMS = %d, want 1500", rec.DurationMS)
	}
	if rec.Periods != 2 {
		t.Errorf("Periods = %d, want 2", rec.Periods)
	}
	if got := rec.FlowTotals["plant -> electricity"]; got != 8 {
		t.Errorf("plant total = %v, want 8", got)
	}

	other := NewRecord(res, started, time.Second)
	if other.ID == rec.ID {
		t.Error("NewRecord() reused an ID")
	}
}

func TestNullArchive(t *testing.T) {
	a := NewNullArchive()
	ctx := context.Background()

	if err := a.Store(ctx, Record{ID: "x"}); err != nil {
		t.Fatalf("Store() error: %v", err)
	}
	records, err := a.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Recent() = %d records, want 0", len(records))
	}
	if err := a.Close(ctx); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
