package flows

import (
	"testing"
	"time"

	"github.com/fluxplot/fluxplot/pkg/errors"
)

func sliceFixture(t *testing.T, n int) *Table {
	t.Helper()
	tab, err := NewTable(hourly(n))
	if err != nil {
		t.Fatalf("NewTable error: %v", err)
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	if err := tab.Add(Key{Source: "wind", Target: "bel"}, values); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	tab.SetScalar(Key{Source: "wind", Target: "bel"}, "capacity", 66.3)
	return tab
}

func TestSliceInclusiveBounds(t *testing.T) {
	tab := sliceFixture(t, 10)

	got, err := Slice(tab, Window{From: t0.Add(2 * time.Hour), To: t0.Add(5 * time.Hour)})
	if err != nil {
		t.Fatalf("Slice error: %v", err)
	}

	if got.Len() != 4 {
		t.Fatalf("Len() = %d, want 4 (bounds are inclusive)", got.Len())
	}
	idx := got.Index()
	if !idx[0].Equal(t0.Add(2*time.Hour)) || !idx[3].Equal(t0.Add(5*time.Hour)) {
		t.Errorf("index = [%v, %v], want [%v, %v]", idx[0], idx[3], t0.Add(2*time.Hour), t0.Add(5*time.Hour))
	}
	values, _ := got.Values(Key{Source: "wind", Target: "bel"})
	if values[0] != 2 || values[3] != 5 {
		t.Errorf("values = %v, want [2 3 4 5]", values)
	}
}

func TestSliceClipsToAvailable(t *testing.T) {
	tab := sliceFixture(t, 5)

	got, err := Slice(tab, Window{From: t0.Add(-24 * time.Hour), To: t0.Add(240 * time.Hour)})
	if err != nil {
		t.Fatalf("Slice error: %v", err)
	}
	if got.Len() != 5 {
		t.Errorf("Len() = %d, want 5 (out-of-range bounds clip, not fail)", got.Len())
	}
}

func TestSliceOpenBounds(t *testing.T) {
	tab := sliceFixture(t, 6)

	t.Run("open end", func(t *testing.T) {
		got, err := Slice(tab, Window{From: t0.Add(4 * time.Hour)})
		if err != nil {
			t.Fatalf("Slice error: %v", err)
		}
		if got.Len() != 2 {
			t.Errorf("Len() = %d, want 2", got.Len())
		}
	})

	t.Run("open start", func(t *testing.T) {
		got, err := Slice(tab, Window{To: t0.Add(1 * time.Hour)})
		if err != nil {
			t.Fatalf("Slice error: %v", err)
		}
		if got.Len() != 2 {
			t.Errorf("Len() = %d, want 2", got.Len())
		}
	})
}

func TestSliceEmptyWindow(t *testing.T) {
	tab := sliceFixture(t, 720)

	// Start is after the last sample.
	_, err := Slice(tab, Window{From: t0.Add(100000 * time.Hour)})
	if !errors.Is(err, errors.ErrCodeEmptyWindow) {
		t.Errorf("Slice code = %v, want %v", errors.GetCode(err), errors.ErrCodeEmptyWindow)
	}

	// Inverted bounds select nothing.
	_, err = Slice(tab, Window{From: t0.Add(5 * time.Hour), To: t0.Add(2 * time.Hour)})
	if !errors.Is(err, errors.ErrCodeEmptyWindow) {
		t.Errorf("Slice inverted code = %v, want %v", errors.GetCode(err), errors.ErrCodeEmptyWindow)
	}
}

func TestSlicePreservesScalarsAndOrder(t *testing.T) {
	tab := sliceFixture(t, 8)
	if err := tab.Add(Key{Source: "bel", Target: "demand"}, make([]float64, 8)); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	got, err := Slice(tab, Window{From: t0.Add(1 * time.Hour), To: t0.Add(3 * time.Hour)})
	if err != nil {
		t.Fatalf("Slice error: %v", err)
	}

	keys := got.Keys()
	if keys[0] != (Key{Source: "wind", Target: "bel"}) || keys[1] != (Key{Source: "bel", Target: "demand"}) {
		t.Errorf("Keys() = %v, order not preserved", keys)
	}
	if v, ok := got.Scalar(Key{Source: "wind", Target: "bel"}, "capacity"); !ok || v != 66.3 {
		t.Errorf("Scalar(capacity) = %v, %v, want 66.3, true", v, ok)
	}
}
