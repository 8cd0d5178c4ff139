package flows

import (
	"sort"
	"time"

	"github.com/fluxplot/fluxplot/pkg/errors"
)

// Window restricts a table to samples within [From, To], inclusive on
// both ends. A zero From extends to the first sample, a zero To to the
// last, so callers can slice with only one bound known.
type Window struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether the window leaves both bounds open.
func (w Window) IsZero() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// Slice returns a new table restricted to the samples inside w. Bounds
// outside the available index are clipped, not rejected: slicing an
// eight-week table from its sixth week with an open end is the common
// caller pattern.
//
// It fails with code EMPTY_WINDOW when no samples remain. Flow order,
// scalar summaries, and the strictly increasing index carry over.
func Slice(table *Table, w Window) (*Table, error) {
	if table == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "table cannot be nil")
	}

	n := len(table.index)
	lo := 0
	if !w.From.IsZero() {
		lo = sort.Search(n, func(i int) bool { return !table.index[i].Before(w.From) })
	}
	hi := n - 1
	if !w.To.IsZero() {
		hi = sort.Search(n, func(i int) bool { return table.index[i].After(w.To) }) - 1
	}

	if lo > hi || lo >= n {
		return nil, errors.New(errors.ErrCodeEmptyWindow,
			"window [%s, %s] selects no samples from index [%s, %s]",
			formatBound(w.From, "start"), formatBound(w.To, "end"),
			table.index[0].Format(time.RFC3339), table.index[n-1].Format(time.RFC3339))
	}

	out, err := NewTable(table.index[lo : hi+1])
	if err != nil {
		return nil, err
	}
	for _, k := range table.order {
		v, _ := table.values(k)
		if err := out.Add(k, v[lo:hi+1]); err != nil {
			return nil, err
		}
	}
	for key, m := range table.scalars {
		for name, v := range m {
			out.SetScalar(key, name, v)
		}
	}
	return out, nil
}

func formatBound(t time.Time, open string) string {
	if t.IsZero() {
		return open
	}
	return t.Format(time.RFC3339)
}
