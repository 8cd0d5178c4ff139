package energy

import (
	"github.com/fluxplot/fluxplot/pkg/errors"
)

// Validate checks the whole system: horizon parameters, label syntax
// and uniqueness, bus references, capacities, efficiencies, and that
// every referenced profile column exists with one value per period.
func (s *System) Validate() error {
	sc := s.Scenario
	if sc.Name == "" {
		return errors.New(errors.ErrCodeInvalidScenario, "scenario name is required")
	}
	if err := errors.ValidateScenarioName(sc.Name); err != nil {
		return err
	}
	if sc.Periods <= 0 {
		return errors.New(errors.ErrCodeInvalidScenario, "periods must be positive, got %d", sc.Periods)
	}
	if sc.Step <= 0 {
		return errors.New(errors.ErrCodeInvalidScenario, "step must be a positive duration")
	}
	if sc.Start.IsZero() {
		return errors.New(errors.ErrCodeInvalidScenario, "start timestamp is required")
	}
	if len(sc.Buses) == 0 {
		return errors.New(errors.ErrCodeInvalidScenario, "at least one bus is required")
	}

	labels := make(map[string]bool)
	buses := make(map[string]bool)
	register := func(label string) error {
		if err := errors.ValidateNodeLabel(label); err != nil {
			return err
		}
		if labels[label] {
			return errors.New(errors.ErrCodeInvalidScenario, "duplicate node label %q", label)
		}
		labels[label] = true
		return nil
	}

	for _, b := range sc.Buses {
		if err := register(b.Label); err != nil {
			return err
		}
		buses[b.Label] = true
		// Implicit sinks and sources claim their labels too.
		if b.Excess {
			if err := register(b.ExcessLabel()); err != nil {
				return err
			}
		}
		if b.Shortage {
			if err := register(b.ShortageLabel()); err != nil {
				return err
			}
		}
	}

	busRef := func(owner, bus string) error {
		if !buses[bus] {
			return errors.New(errors.ErrCodeInvalidScenario, "%q references unknown bus %q", owner, bus)
		}
		return nil
	}
	positive := func(owner, field string, v float64) error {
		if v <= 0 {
			return errors.New(errors.ErrCodeInvalidScenario, "%q needs a positive %s, got %v", owner, field, v)
		}
		return nil
	}
	efficiency := func(owner, field string, v float64) error {
		if v <= 0 || v > 1 {
			return errors.New(errors.ErrCodeInvalidScenario,
				"%q needs %s within (0, 1], got %v", owner, field, v)
		}
		return nil
	}

	for _, src := range sc.Sources {
		if err := register(src.Label); err != nil {
			return err
		}
		if err := busRef(src.Label, src.Bus); err != nil {
			return err
		}
		if err := positive(src.Label, "capacity", src.Capacity); err != nil {
			return err
		}
		if src.MarginalCost < 0 {
			return errors.New(errors.ErrCodeInvalidScenario,
				"%q needs a non-negative marginal cost, got %v", src.Label, src.MarginalCost)
		}
	}

	for _, r := range sc.Renewables {
		if err := register(r.Label); err != nil {
			return err
		}
		if err := busRef(r.Label, r.Bus); err != nil {
			return err
		}
		if err := positive(r.Label, "capacity", r.Capacity); err != nil {
			return err
		}
		if err := s.validateProfile(r.Label, r.Profile); err != nil {
			return err
		}
	}

	for _, d := range sc.Demands {
		if err := register(d.Label); err != nil {
			return err
		}
		if err := busRef(d.Label, d.Bus); err != nil {
			return err
		}
		if err := positive(d.Label, "amount", d.Amount); err != nil {
			return err
		}
		if err := s.validateProfile(d.Label, d.Profile); err != nil {
			return err
		}
	}

	for _, c := range sc.Converters {
		if err := register(c.Label); err != nil {
			return err
		}
		if err := busRef(c.Label, c.From); err != nil {
			return err
		}
		if err := busRef(c.Label, c.To); err != nil {
			return err
		}
		if err := positive(c.Label, "capacity", c.Capacity); err != nil {
			return err
		}
		if err := efficiency(c.Label, "efficiency", c.Efficiency); err != nil {
			return err
		}
		if c.From == c.To {
			return errors.New(errors.ErrCodeInvalidScenario,
				"%q converts bus %q onto itself", c.Label, c.From)
		}
		if c.To2 != "" {
			if err := busRef(c.Label, c.To2); err != nil {
				return err
			}
			if err := efficiency(c.Label, "efficiency2", c.Efficiency2); err != nil {
				return err
			}
			if c.To2 == c.From || c.To2 == c.To {
				return errors.New(errors.ErrCodeInvalidScenario,
					"%q secondary output bus %q collides with its other buses", c.Label, c.To2)
			}
		} else if c.Efficiency2 != 0 {
			return errors.New(errors.ErrCodeInvalidScenario,
				"%q sets efficiency2 without a secondary output bus", c.Label)
		}
	}

	for _, st := range sc.Storages {
		if err := register(st.Label); err != nil {
			return err
		}
		if err := busRef(st.Label, st.Bus); err != nil {
			return err
		}
		if err := positive(st.Label, "capacity", st.Capacity); err != nil {
			return err
		}
		if err := positive(st.Label, "power", st.Power); err != nil {
			return err
		}
		if err := efficiency(st.Label, "efficiency_in", st.EfficiencyIn); err != nil {
			return err
		}
		if err := efficiency(st.Label, "efficiency_out", st.EfficiencyOut); err != nil {
			return err
		}
		if st.Initial < 0 || st.Initial > 1 {
			return errors.New(errors.ErrCodeInvalidScenario,
				"%q needs an initial fill within [0, 1], got %v", st.Label, st.Initial)
		}
	}

	for _, l := range sc.Lines {
		if err := register(l.Label); err != nil {
			return err
		}
		if err := busRef(l.Label, l.From); err != nil {
			return err
		}
		if err := busRef(l.Label, l.To); err != nil {
			return err
		}
		if l.From == l.To {
			return errors.New(errors.ErrCodeInvalidScenario, "%q connects bus %q to itself", l.Label, l.From)
		}
		if err := positive(l.Label, "capacity", l.Capacity); err != nil {
			return err
		}
		if err := efficiency(l.Label, "efficiency", l.Efficiency); err != nil {
			return err
		}
	}

	return nil
}

// validateProfile checks that owner's profile column exists and covers
// the full horizon.
func (s *System) validateProfile(owner, profile string) error {
	if profile == "" {
		return errors.New(errors.ErrCodeInvalidScenario, "%q needs a profile column", owner)
	}
	values, ok := s.profiles[profile]
	if !ok {
		return errors.New(errors.ErrCodeInvalidScenario,
			"%q references profile column %q which does not exist", owner, profile)
	}
	if len(values) != s.Scenario.Periods {
		return errors.New(errors.ErrCodeInvalidScenario,
			"profile column %q has %d values, scenario has %d periods", profile, len(values), s.Scenario.Periods)
	}
	return nil
}
