package dispatch

import (
	"sort"
	"time"

	"github.com/fluxplot/fluxplot/pkg/energy"
	"github.com/fluxplot/fluxplot/pkg/errors"
	"github.com/fluxplot/fluxplot/pkg/flows"
	"github.com/fluxplot/fluxplot/pkg/observability"
)

// eps is the tolerance below which a residual balance counts as closed.
const eps = 1e-9

// Run dispatches sys over its full horizon. The system must already be
// validated; Run assumes well-formed references and capacities.
//
// Per period and bus: renewables feed in and demand draws, then any
// deficit is covered by the bus's supply candidates in ascending
// marginal-cost order (label as tiebreak) and any surplus charges
// storage before spilling to the excess sink. Deficit drawn through a
// converter or line propagates to the upstream bus, which is balanced
// later in the same period; the bus order is derived from the converter
// and line topology.
//
// A deficit that no candidate can cover on a bus without a shortage
// source fails with a ShortfallError carrying code DISPATCH_ERROR.
func Run(sys *energy.System) (*Results, error) {
	sc := sys.Scenario
	started := time.Now()
	observability.Dispatch().OnRunStart(sc.Name, sc.Periods)

	res, err := run(sys)
	observability.Dispatch().OnRunComplete(sc.Name, sc.Periods, time.Since(started), err)
	return res, err
}

func run(sys *energy.System) (*Results, error) {
	sc := sys.Scenario
	res := newResults(sc.Name, sys.Index(), busLabels(sc))
	registerFlows(sc, res)

	st := &state{
		sys:   sys,
		res:   res,
		order: busOrder(sc),
		fill:  make(map[string]float64, len(sc.Storages)),
		merit: make(map[string][]candidate, len(sc.Buses)),
	}
	for _, s := range sc.Storages {
		st.fill[s.Label] = s.Initial * s.Capacity
	}
	for _, b := range sc.Buses {
		st.merit[b.Label] = meritOrder(sc, b.Label)
	}

	for t := 0; t < sc.Periods; t++ {
		st.pending = make(map[string]float64)
		st.processed = make(map[string]bool)
		for _, bus := range st.order {
			if err := st.balance(bus, t); err != nil {
				return nil, err
			}
		}
	}

	recordScalars(sc, res)
	return res, nil
}

// state carries the mutable run context: storage fills, per-period
// cross-bus draws, and which buses the current period already balanced.
type state struct {
	sys   *energy.System
	res   *Results
	order []string
	fill  map[string]float64
	merit map[string][]candidate

	pending   map[string]float64 // signed extra draw per bus, reset per period
	processed map[string]bool    // buses balanced this period
}

// candidate is one deficit-covering option on a bus.
type candidate struct {
	kind  candidateKind
	label string
	cost  float64
	index int // position in the scenario's declaration slice
}

type candidateKind int

const (
	kindStorage candidateKind = iota
	kindSource
	kindConverter
	kindLine
)

// balance closes one bus for one period.
func (st *state) balance(bus string, t int) error {
	sc := st.sys.Scenario
	b, _ := st.sys.Bus(bus)

	net := -st.pending[bus]
	for _, r := range sc.Renewables {
		if r.Bus != bus {
			continue
		}
		feed := r.Capacity * st.sys.Profile(r.Profile)[t]
		st.res.add(flows.Key{Source: r.Label, Target: bus}, t, feed)
		net += feed
	}
	for _, d := range sc.Demands {
		if d.Bus != bus {
			continue
		}
		draw := d.Amount * st.sys.Profile(d.Profile)[t]
		st.res.add(flows.Key{Source: bus, Target: d.Label}, t, draw)
		net -= draw
	}

	if net < -eps {
		if err := st.cover(b, t, -net); err != nil {
			return err
		}
	} else if net > eps {
		st.absorb(b, t, net)
	}

	st.processed[bus] = true
	return nil
}

// cover meets a deficit from the bus's merit-order candidates.
func (st *state) cover(b energy.Bus, t int, need float64) error {
	sc := st.sys.Scenario
	for _, c := range st.merit[b.Label] {
		if need <= eps {
			break
		}
		switch c.kind {
		case kindStorage:
			s := sc.Storages[c.index]
			q := min3(need, s.Power, st.fill[s.Label]*s.EfficiencyOut)
			if q <= eps {
				continue
			}
			st.fill[s.Label] -= q / s.EfficiencyOut
			st.res.add(flows.Key{Source: s.Label, Target: b.Label}, t, q)
			need -= q

		case kindSource:
			s := sc.Sources[c.index]
			q := need
			if q > s.Capacity {
				q = s.Capacity
			}
			st.res.add(flows.Key{Source: s.Label, Target: b.Label}, t, q)
			st.res.Objective += q * s.MarginalCost
			need -= q

		case kindConverter:
			cv := sc.Converters[c.index]
			// Drawing through a converter only works while its input
			// bus still awaits balancing this period.
			if st.processed[cv.From] {
				continue
			}
			q := need
			if q > cv.Capacity {
				q = cv.Capacity
			}
			input := q / cv.Efficiency
			st.res.add(flows.Key{Source: cv.From, Target: cv.Label}, t, input)
			st.res.add(flows.Key{Source: cv.Label, Target: b.Label}, t, q)
			st.pending[cv.From] += input
			if cv.To2 != "" {
				byproduct := input * cv.Efficiency2
				st.res.add(flows.Key{Source: cv.Label, Target: cv.To2}, t, byproduct)
				st.pending[cv.To2] -= byproduct
			}
			st.res.Objective += q * cv.MarginalCost
			need -= q

		case kindLine:
			l := sc.Lines[c.index]
			if st.processed[l.From] {
				continue
			}
			q := need
			if limit := l.Capacity * l.Efficiency; q > limit {
				q = limit
			}
			sent := q / l.Efficiency
			st.res.add(flows.Key{Source: l.From, Target: l.Label}, t, sent)
			st.res.add(flows.Key{Source: l.Label, Target: b.Label}, t, q)
			st.pending[l.From] += sent
			need -= q
		}
	}

	if need <= eps {
		return nil
	}
	if b.Shortage {
		st.res.add(flows.Key{Source: b.ShortageLabel(), Target: b.Label}, t, need)
		st.res.Objective += need * b.ShortageCost
		return nil
	}
	return errors.Wrap(errors.ErrCodeDispatch,
		&errors.ShortfallError{Bus: b.Label, Period: t, Missing: need},
		"dispatch failed on bus %q", b.Label)
}

// absorb routes a surplus into storage, then the excess sink. Surplus
// on a bus without an excess sink is curtailed unrecorded.
func (st *state) absorb(b energy.Bus, t int, surplus float64) {
	for _, s := range st.sys.Scenario.Storages {
		if s.Bus != b.Label || surplus <= eps {
			continue
		}
		room := (s.Capacity - st.fill[s.Label]) / s.EfficiencyIn
		q := min3(surplus, s.Power, room)
		if q <= eps {
			continue
		}
		st.fill[s.Label] += q * s.EfficiencyIn
		st.res.add(flows.Key{Source: b.Label, Target: s.Label}, t, q)
		surplus -= q
	}
	if surplus > eps && b.Excess {
		st.res.add(flows.Key{Source: b.Label, Target: b.ExcessLabel()}, t, surplus)
		st.res.Objective += surplus * b.ExcessCost
	}
}

// meritOrder lists the deficit-covering candidates of one bus, sorted
// by ascending cost with the label as a stable tiebreak. Storage
// discharge and line imports carry no marginal cost of their own.
func meritOrder(sc *energy.Scenario, bus string) []candidate {
	var cands []candidate
	for i, s := range sc.Storages {
		if s.Bus == bus {
			cands = append(cands, candidate{kindStorage, s.Label, 0, i})
		}
	}
	for i, s := range sc.Sources {
		if s.Bus == bus {
			cands = append(cands, candidate{kindSource, s.Label, s.MarginalCost, i})
		}
	}
	for i, c := range sc.Converters {
		if c.To == bus {
			cands = append(cands, candidate{kindConverter, c.Label, c.MarginalCost, i})
		}
	}
	for i, l := range sc.Lines {
		if l.To == bus {
			cands = append(cands, candidate{kindLine, l.Label, 0, i})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].cost != cands[j].cost {
			return cands[i].cost < cands[j].cost
		}
		return cands[i].label < cands[j].label
	})
	return cands
}

// busOrder sequences buses so that a bus is balanced before any bus it
// draws from through a converter or line, and after the primary output
// bus of any converter feeding it as a byproduct. Cycles (for example
// lines in both directions) fall back to declaration order for the
// remaining buses.
func busOrder(sc *energy.Scenario) []string {
	labels := busLabels(sc)

	// after[x] holds buses that must be balanced before x.
	after := make(map[string]map[string]bool, len(labels))
	add := func(x, y string) {
		if x == y {
			return
		}
		if after[x] == nil {
			after[x] = make(map[string]bool)
		}
		after[x][y] = true
	}
	for _, c := range sc.Converters {
		add(c.From, c.To)
		if c.To2 != "" {
			add(c.From, c.To2)
			add(c.To2, c.To)
		}
	}
	for _, l := range sc.Lines {
		add(l.From, l.To)
	}

	order := make([]string, 0, len(labels))
	placed := make(map[string]bool, len(labels))
	for len(order) < len(labels) {
		progressed := false
		for _, label := range labels {
			if placed[label] {
				continue
			}
			ready := true
			for dep := range after[label] {
				if !placed[dep] {
					ready = false
					break
				}
			}
			if ready {
				order = append(order, label)
				placed[label] = true
				progressed = true
			}
		}
		if !progressed {
			for _, label := range labels {
				if !placed[label] {
					order = append(order, label)
					placed[label] = true
				}
			}
		}
	}
	return order
}

// registerFlows pre-registers every flow the run can produce, by node
// type in declaration order, so series ordering never depends on which
// flows happen to carry quantity first.
func registerFlows(sc *energy.Scenario, res *Results) {
	for _, r := range sc.Renewables {
		res.register(flows.Key{Source: r.Label, Target: r.Bus})
	}
	for _, s := range sc.Sources {
		res.register(flows.Key{Source: s.Label, Target: s.Bus})
	}
	for _, s := range sc.Storages {
		res.register(flows.Key{Source: s.Label, Target: s.Bus})
		res.register(flows.Key{Source: s.Bus, Target: s.Label})
	}
	for _, c := range sc.Converters {
		res.register(flows.Key{Source: c.From, Target: c.Label})
		res.register(flows.Key{Source: c.Label, Target: c.To})
		if c.To2 != "" {
			res.register(flows.Key{Source: c.Label, Target: c.To2})
		}
	}
	for _, l := range sc.Lines {
		res.register(flows.Key{Source: l.From, Target: l.Label})
		res.register(flows.Key{Source: l.Label, Target: l.To})
	}
	for _, d := range sc.Demands {
		res.register(flows.Key{Source: d.Bus, Target: d.Label})
	}
	for _, b := range sc.Buses {
		if b.Shortage {
			res.register(flows.Key{Source: b.ShortageLabel(), Target: b.Label})
		}
		if b.Excess {
			res.register(flows.Key{Source: b.Label, Target: b.ExcessLabel()})
		}
	}
}

// recordScalars attaches installed capacities and per-flow totals.
func recordScalars(sc *energy.Scenario, res *Results) {
	for _, r := range sc.Renewables {
		res.setScalar(flows.Key{Source: r.Label, Target: r.Bus}, "capacity", r.Capacity)
	}
	for _, s := range sc.Sources {
		res.setScalar(flows.Key{Source: s.Label, Target: s.Bus}, "capacity", s.Capacity)
	}
	for _, s := range sc.Storages {
		res.setScalar(flows.Key{Source: s.Label, Target: s.Bus}, "capacity", s.Capacity)
		res.setScalar(flows.Key{Source: s.Label, Target: s.Bus}, "power", s.Power)
	}
	for _, c := range sc.Converters {
		res.setScalar(flows.Key{Source: c.Label, Target: c.To}, "capacity", c.Capacity)
	}
	for _, l := range sc.Lines {
		res.setScalar(flows.Key{Source: l.Label, Target: l.To}, "capacity", l.Capacity)
	}
	for _, k := range res.order {
		total := 0.0
		for _, v := range res.series[k] {
			total += v
		}
		res.setScalar(k, "total", total)
	}
}

func busLabels(sc *energy.Scenario) []string {
	labels := make([]string, len(sc.Buses))
	for i, b := range sc.Buses {
		labels[i] = b.Label
	}
	return labels
}

func min3(a, b, c float64) float64 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
