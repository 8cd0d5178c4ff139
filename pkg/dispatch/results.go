// Package dispatch runs a deterministic merit-order simulation of an
// energy system and exposes the outcome as time-indexed flow series.
//
// The simulator is a stand-in for a real optimization collaborator: it
// implements the same output contract (flow sequences keyed by source
// and target, scalar summaries, an objective value) without solving a
// linear program. Per period it lets renewables feed in, draws demand,
// covers deficits in ascending marginal-cost order and routes surplus
// into storage and excess sinks. Identical inputs always produce
// identical results, including flow ordering.
package dispatch

import (
	"slices"
	"time"

	"github.com/fluxplot/fluxplot/pkg/errors"
	"github.com/fluxplot/fluxplot/pkg/flows"
)

// Results holds the complete outcome of one dispatch run: every flow
// series over the scenario horizon, scalar summaries per flow, and the
// total dispatch cost. Flow keys keep registration order, which follows
// the scenario declaration order, so plots are reproducible run to run.
type Results struct {
	Scenario  string
	Objective float64

	index   []time.Time
	buses   []string
	order   []flows.Key
	series  map[flows.Key][]float64
	scalars map[flows.Key]map[string]float64
}

func newResults(scenario string, index []time.Time, buses []string) *Results {
	return &Results{
		Scenario: scenario,
		index:    slices.Clone(index),
		buses:    slices.Clone(buses),
		series:   make(map[flows.Key][]float64),
		scalars:  make(map[flows.Key]map[string]float64),
	}
}

// register creates a zero-filled series for key. Registering every
// possible flow up front, before any values are known, pins the
// first-seen order to the scenario declaration order.
func (r *Results) register(key flows.Key) {
	if _, ok := r.series[key]; ok {
		return
	}
	r.order = append(r.order, key)
	r.series[key] = make([]float64, len(r.index))
}

// add accumulates quantity onto key's series at period t.
func (r *Results) add(key flows.Key, t int, quantity float64) {
	r.series[key][t] += quantity
}

// setScalar records a named scalar summary for key.
func (r *Results) setScalar(key flows.Key, name string, value float64) {
	m, ok := r.scalars[key]
	if !ok {
		m = make(map[string]float64)
		r.scalars[key] = m
	}
	m[name] = value
}

// Index returns a copy of the run's time index.
func (r *Results) Index() []time.Time {
	return slices.Clone(r.index)
}

// Buses returns the system's bus labels in declaration order.
func (r *Results) Buses() []string {
	return slices.Clone(r.buses)
}

// Keys returns every flow key in registration order.
func (r *Results) Keys() []flows.Key {
	return slices.Clone(r.order)
}

// Values returns a copy of the series for key.
func (r *Results) Values(key flows.Key) ([]float64, bool) {
	v, ok := r.series[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// Scalar looks up a named scalar summary for key.
func (r *Results) Scalar(key flows.Key, name string) (float64, bool) {
	v, ok := r.scalars[key][name]
	return v, ok
}

// Node materializes the flow table of one node: every flow that enters
// or leaves it, in registration order, with the matching scalar
// summaries attached. This is the handover point into the plotting
// pipeline.
//
// It fails with code NOT_FOUND when no flow references label.
func (r *Results) Node(label string) (*flows.Table, error) {
	if label == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "node label cannot be empty")
	}

	table, err := flows.NewTable(r.index)
	if err != nil {
		return nil, err
	}

	matched := false
	for _, k := range r.order {
		if k.Source != label && k.Target != label {
			continue
		}
		matched = true
		if err := table.Add(k, r.series[k]); err != nil {
			return nil, err
		}
		for name, v := range r.scalars[k] {
			table.SetScalar(k, name, v)
		}
	}
	if !matched {
		return nil, errors.New(errors.ErrCodeNotFound, "no flow references node %q", label)
	}
	return table, nil
}
