package plot

import (
	"testing"
	"time"

	"github.com/fluxplot/fluxplot/pkg/errors"
	"github.com/fluxplot/fluxplot/pkg/flows"
)

func TestTicksDistance(t *testing.T) {
	index := flows.Range(start, time.Hour, 168)

	ticks, err := Ticks(index, TickSpec{Distance: 24, Offset: 12, Format: "02"})
	if err != nil {
		t.Fatalf("Ticks error: %v", err)
	}

	if len(ticks) != 7 {
		t.Fatalf("tick count = %d, want 7", len(ticks))
	}
	if ticks[0].Pos != 12 {
		t.Errorf("first tick pos = %d, want 12", ticks[0].Pos)
	}
	for i, tick := range ticks {
		if tick.Pos != 12+24*i {
			t.Errorf("tick[%d].Pos = %d, want %d", i, tick.Pos, 12+24*i)
		}
		if tick.Pos < 0 || tick.Pos >= len(index) {
			t.Errorf("tick[%d].Pos = %d out of bounds", i, tick.Pos)
		}
	}
}

func TestTicksAmbiguous(t *testing.T) {
	index := flows.Range(start, time.Hour, 24)

	t.Run("both set", func(t *testing.T) {
		_, err := Ticks(index, TickSpec{Distance: 4, Count: 6})
		if !errors.Is(err, errors.ErrCodeAmbiguousTicks) {
			t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeAmbiguousTicks)
		}
	})

	t.Run("neither set", func(t *testing.T) {
		_, err := Ticks(index, TickSpec{})
		if !errors.Is(err, errors.ErrCodeAmbiguousTicks) {
			t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeAmbiguousTicks)
		}
	})
}

func TestTicksCount(t *testing.T) {
	index := flows.Range(start, time.Hour, 168)

	ticks, err := Ticks(index, TickSpec{Count: 7})
	if err != nil {
		t.Fatalf("Ticks error: %v", err)
	}
	if len(ticks) != 7 {
		t.Fatalf("tick count = %d, want 7", len(ticks))
	}
	for i, tick := range ticks {
		if tick.Pos != 24*i {
			t.Errorf("tick[%d].Pos = %d, want %d", i, tick.Pos, 24*i)
		}
	}
}

func TestTicksCountLargerThanIndex(t *testing.T) {
	index := flows.Range(start, time.Hour, 5)

	ticks, err := Ticks(index, TickSpec{Count: 10})
	if err != nil {
		t.Fatalf("Ticks error: %v", err)
	}
	// Spacing clamps to one position.
	if len(ticks) != 5 {
		t.Errorf("tick count = %d, want 5", len(ticks))
	}
}

func TestTicksLabels(t *testing.T) {
	index := flows.Range(start, time.Hour, 48)

	ticks, err := Ticks(index, TickSpec{Distance: 24, Format: "02-01 15:04"})
	if err != nil {
		t.Fatalf("Ticks error: %v", err)
	}
	if ticks[0].Label != "01-01 00:00" {
		t.Errorf("label[0] = %q, want %q", ticks[0].Label, "01-01 00:00")
	}
	if ticks[1].Label != "02-01 00:00" {
		t.Errorf("label[1] = %q, want %q", ticks[1].Label, "02-01 00:00")
	}
}

func TestTicksDefaultFormat(t *testing.T) {
	index := flows.Range(start, time.Hour, 24)

	ticks, err := Ticks(index, TickSpec{Distance: 24})
	if err != nil {
		t.Fatalf("Ticks error: %v", err)
	}
	if want := start.Format(DefaultTickFormat); ticks[0].Label != want {
		t.Errorf("label = %q, want %q", ticks[0].Label, want)
	}
}

func TestTicksNegativeOffset(t *testing.T) {
	index := flows.Range(start, time.Hour, 72)

	ticks, err := Ticks(index, TickSpec{Distance: 24, Offset: -24})
	if err != nil {
		t.Fatalf("Ticks error: %v", err)
	}
	if ticks[0].Pos != 0 {
		t.Errorf("first tick pos = %d, want 0 (negative positions dropped)", ticks[0].Pos)
	}
	for i := 1; i < len(ticks); i++ {
		if ticks[i].Pos <= ticks[i-1].Pos {
			t.Errorf("tick positions not strictly increasing at %d", i)
		}
	}
}

func TestTicksMonotonicity(t *testing.T) {
	index := flows.Range(start, time.Hour, 100)
	specs := []TickSpec{
		{Distance: 7},
		{Distance: 13, Offset: 5},
		{Count: 9},
		{Count: 3, Offset: 2},
	}
	for _, spec := range specs {
		ticks, err := Ticks(index, spec)
		if err != nil {
			t.Fatalf("Ticks(%+v) error: %v", spec, err)
		}
		for i, tick := range ticks {
			if tick.Pos < 0 || tick.Pos >= len(index) {
				t.Errorf("Ticks(%+v): pos %d out of bounds", spec, tick.Pos)
			}
			if i > 0 && tick.Pos <= ticks[i-1].Pos {
				t.Errorf("Ticks(%+v): positions not strictly increasing", spec)
			}
		}
	}
}

func TestTicksInvalidInput(t *testing.T) {
	if _, err := Ticks(nil, TickSpec{Distance: 4}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty index code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}

	index := flows.Range(start, time.Hour, 10)
	if _, err := Ticks(index, TickSpec{Distance: -2}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative distance code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}
