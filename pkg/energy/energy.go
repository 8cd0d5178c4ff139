// Package energy models dispatch scenarios: the buses, supply units,
// demands, converters, storages and lines of one energy system, loaded
// from a TOML scenario file plus a CSV profile table.
//
// A scenario is declarative data. Loading validates it fully (unique
// labels, resolvable bus references, sane capacities and efficiencies,
// profile columns of the right length) so that the dispatch simulator
// and the plotting pipeline can assume a well-formed system.
//
//	sys, err := energy.Load("examples/dispatch/scenario.toml")
//	if err != nil { ... }
//	index := sys.Index() // hourly timestamps for the whole horizon
package energy

import (
	"time"

	"github.com/fluxplot/fluxplot/pkg/flows"
)

// Bus is a commodity balance point. Every flow in a system enters or
// leaves a bus. An excess sink absorbs surplus at ExcessCost per unit; a
// shortage source covers unmet demand at ShortageCost per unit. Without
// a shortage source, unmet demand fails the dispatch run.
type Bus struct {
	Label        string  `toml:"label"`
	Excess       bool    `toml:"excess"`
	ExcessCost   float64 `toml:"excess_cost"`
	Shortage     bool    `toml:"shortage"`
	ShortageCost float64 `toml:"shortage_cost"`
}

// ExcessLabel names the implicit excess sink of the bus.
func (b Bus) ExcessLabel() string { return b.Label + "-excess" }

// ShortageLabel names the implicit shortage source of the bus.
func (b Bus) ShortageLabel() string { return b.Label + "-shortage" }

// Source is a dispatchable commodity supply: up to Capacity per period
// at MarginalCost per unit. Fuel deliveries are modeled as sources on
// their fuel bus.
type Source struct {
	Label        string  `toml:"label"`
	Bus          string  `toml:"bus"`
	Capacity     float64 `toml:"capacity"`
	MarginalCost float64 `toml:"marginal_cost"`
}

// Renewable is a profile-driven feed-in: per period it injects
// Capacity times the profile value (a capacity factor in [0, 1]).
type Renewable struct {
	Label    string  `toml:"label"`
	Bus      string  `toml:"bus"`
	Capacity float64 `toml:"capacity"`
	Profile  string  `toml:"profile"`
}

// Demand is a profile-driven fixed load: per period it draws Amount
// times the profile value.
type Demand struct {
	Label   string  `toml:"label"`
	Bus     string  `toml:"bus"`
	Amount  float64 `toml:"amount"`
	Profile string  `toml:"profile"`
}

// Converter turns commodity from one bus into one or two output
// commodities, e.g. a gas turbine (gas to electricity) or a CHP unit
// (gas to electricity and heat). Capacity limits the primary output per
// period; the secondary output follows at Efficiency2/Efficiency times
// the primary. Input drawn per unit of primary output is 1/Efficiency.
type Converter struct {
	Label        string  `toml:"label"`
	From         string  `toml:"from"`
	To           string  `toml:"to"`
	To2          string  `toml:"to2"`
	Capacity     float64 `toml:"capacity"`
	Efficiency   float64 `toml:"efficiency"`
	Efficiency2  float64 `toml:"efficiency2"`
	MarginalCost float64 `toml:"marginal_cost"`
}

// Storage buffers commodity on one bus. Capacity is the energy content
// limit; Power limits charge and discharge per period. Charging books
// EfficiencyIn, discharging EfficiencyOut; Initial is the starting fill
// as a fraction of Capacity.
type Storage struct {
	Label         string  `toml:"label"`
	Bus           string  `toml:"bus"`
	Capacity      float64 `toml:"capacity"`
	Power         float64 `toml:"power"`
	EfficiencyIn  float64 `toml:"efficiency_in"`
	EfficiencyOut float64 `toml:"efficiency_out"`
	Initial       float64 `toml:"initial"`
}

// Line is a directed bus-to-bus transfer with a per-period capacity
// and a transfer efficiency. Bidirectional links are two lines.
type Line struct {
	Label      string  `toml:"label"`
	From       string  `toml:"from"`
	To         string  `toml:"to"`
	Capacity   float64 `toml:"capacity"`
	Efficiency float64 `toml:"efficiency"`
}

// Scenario is the decoded form of one scenario TOML file.
type Scenario struct {
	Name       string      `toml:"name"`
	Start      time.Time   `toml:"start"`
	Periods    int         `toml:"periods"`
	Step       duration    `toml:"step"`
	Profiles   string      `toml:"profiles"`
	Buses      []Bus       `toml:"bus"`
	Sources    []Source    `toml:"source"`
	Renewables []Renewable `toml:"renewable"`
	Demands    []Demand    `toml:"demand"`
	Converters []Converter `toml:"converter"`
	Storages   []Storage   `toml:"storage"`
	Lines      []Line      `toml:"line"`
}

// duration decodes TOML duration strings like "1h" or "15m".
type duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// System is a validated scenario together with its resolved profiles.
// Systems are immutable after Load; the dispatch simulator and the
// topology renderer read them concurrently without locking.
type System struct {
	Scenario *Scenario
	profiles map[string][]float64
}

// Index returns the scenario's full time index: Periods timestamps
// starting at Start, spaced Step apart.
func (s *System) Index() []time.Time {
	return flows.Range(s.Scenario.Start, time.Duration(s.Scenario.Step), s.Scenario.Periods)
}

// Profile returns the named profile column. The column exists and has
// Periods samples for every name a validated scenario references.
func (s *System) Profile(name string) []float64 {
	return s.profiles[name]
}

// Bus looks up a bus by label.
func (s *System) Bus(label string) (Bus, bool) {
	for _, b := range s.Scenario.Buses {
		if b.Label == label {
			return b, true
		}
	}
	return Bus{}, false
}

// BusLabels returns every bus label in declaration order.
func (s *System) BusLabels() []string {
	labels := make([]string, len(s.Scenario.Buses))
	for i, b := range s.Scenario.Buses {
		labels[i] = b.Label
	}
	return labels
}

// NodeCount returns the number of declared nodes, buses included.
func (s *System) NodeCount() int {
	sc := s.Scenario
	return len(sc.Buses) + len(sc.Sources) + len(sc.Renewables) +
		len(sc.Demands) + len(sc.Converters) + len(sc.Storages) + len(sc.Lines)
}
