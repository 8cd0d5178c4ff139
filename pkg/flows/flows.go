// Package flows provides the normalized in-memory representation of
// dispatch results: directed, time-indexed commodity flows between the
// nodes of an energy system.
//
// A Table maps flow keys (source label, target label) to numeric sample
// sequences that all share one strictly increasing time index. Tables are
// built once from a results source, then read by the plotting pipeline:
//
//	table, _ := results.Node("electricity")
//	bal, err := flows.Partition(table, "electricity")
//	win, err := flows.Slice(table, flows.Window{From: from})
//
// Tables are not safe for concurrent mutation; once populated they are
// treated as read-only by every consumer in this module.
package flows

import (
	"fmt"
	"slices"
	"time"

	"github.com/fluxplot/fluxplot/pkg/errors"
)

// Key identifies a directed flow from a source node to a target node.
// The zero Target, by convention, addresses node-level scalar values
// (e.g. a storage's installed energy capacity) rather than a flow.
type Key struct {
	Source string
	Target string
}

// NodeKey returns the key addressing node-level scalars for label.
func NodeKey(label string) Key {
	return Key{Source: label}
}

// String returns a compact arrow form, e.g. "wind -> electricity".
func (k Key) String() string {
	if k.Target == "" {
		return k.Source
	}
	return k.Source + " -> " + k.Target
}

// Label returns the tuple form used for raw chart series labels,
// e.g. "(('wind', 'electricity'), flow)". Legend rewriting reduces this
// to the name of the endpoint opposite the plotted bus.
func (k Key) Label() string {
	return fmt.Sprintf("(('%s', '%s'), flow)", k.Source, k.Target)
}

// Table holds every flow series of one results view plus optional scalar
// summaries. All series share the table's time index; keys keep their
// first-seen order so downstream ordering stays deterministic.
type Table struct {
	index   []time.Time
	order   []Key
	series  map[Key][]float64
	scalars map[Key]map[string]float64
}

// NewTable creates an empty table over the given time index. The index
// must be non-empty and strictly increasing.
func NewTable(index []time.Time) (*Table, error) {
	if len(index) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFlow, "time index cannot be empty")
	}
	for i := 1; i < len(index); i++ {
		if !index[i].After(index[i-1]) {
			return nil, errors.New(errors.ErrCodeInvalidFlow,
				"time index must be strictly increasing (violated at position %d)", i)
		}
	}
	return &Table{
		index:   slices.Clone(index),
		series:  make(map[Key][]float64),
		scalars: make(map[Key]map[string]float64),
	}, nil
}

// Range builds a time index of n samples starting at start, spaced step
// apart. It is the common way to construct hourly indexes for scenarios.
func Range(start time.Time, step time.Duration, n int) []time.Time {
	index := make([]time.Time, n)
	for i := range index {
		index[i] = start.Add(time.Duration(i) * step)
	}
	return index
}

// Add registers the sample sequence for key. The sequence length must
// match the table index; keys must be unique and name both endpoints.
func (t *Table) Add(key Key, values []float64) error {
	if key.Source == "" || key.Target == "" {
		return errors.New(errors.ErrCodeInvalidFlow, "flow key must name source and target, got %s", key)
	}
	if _, dup := t.series[key]; dup {
		return errors.New(errors.ErrCodeInvalidFlow, "duplicate flow %s", key)
	}
	if len(values) != len(t.index) {
		return errors.New(errors.ErrCodeInvalidFlow,
			"flow %s has %d samples, table index has %d", key, len(values), len(t.index))
	}
	t.order = append(t.order, key)
	t.series[key] = slices.Clone(values)
	return nil
}

// SetScalar records a named scalar summary for key. Use NodeKey for
// node-level values.
func (t *Table) SetScalar(key Key, name string, value float64) {
	m, ok := t.scalars[key]
	if !ok {
		m = make(map[string]float64)
		t.scalars[key] = m
	}
	m[name] = value
}

// Scalar looks up a named scalar summary for key.
func (t *Table) Scalar(key Key, name string) (float64, bool) {
	v, ok := t.scalars[key][name]
	return v, ok
}

// Scalars returns a copy of all scalar summaries recorded for key.
func (t *Table) Scalars(key Key) map[string]float64 {
	src, ok := t.scalars[key]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(src))
	for name, v := range src {
		out[name] = v
	}
	return out
}

// Len returns the number of samples in the time index.
func (t *Table) Len() int {
	return len(t.index)
}

// FlowCount returns the number of flow series in the table.
func (t *Table) FlowCount() int {
	return len(t.order)
}

// Index returns a copy of the shared time index.
func (t *Table) Index() []time.Time {
	return slices.Clone(t.index)
}

// Keys returns every flow key in first-seen order.
func (t *Table) Keys() []Key {
	return slices.Clone(t.order)
}

// Values returns a copy of the sample sequence for key.
func (t *Table) Values(key Key) ([]float64, bool) {
	v, ok := t.series[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// values returns the backing sequence for key without copying. Callers
// within this module must not mutate the result.
func (t *Table) values(key Key) ([]float64, bool) {
	v, ok := t.series[key]
	return v, ok
}
