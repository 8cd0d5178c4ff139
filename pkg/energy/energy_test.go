package energy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fluxplot/fluxplot/pkg/errors"
)

const minimalScenario = `
name = "mini"
start = 2026-01-05T00:00:00Z
periods = 3
step = "1h"

[[bus]]
label = "electricity"
excess = true

[[source]]
label = "gas-plant"
bus = "electricity"
capacity = 50.0
marginal_cost = 30.0

[[renewable]]
label = "wind"
bus = "electricity"
capacity = 20.0
profile = "wind"

[[demand]]
label = "demand"
bus = "electricity"
amount = 40.0
profile = "load"
`

func parseMinimal(t *testing.T) *System {
	t.Helper()
	sys, err := Parse([]byte(minimalScenario))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	sys.SetProfile("wind", []float64{0.5, 0.9, 0.1})
	sys.SetProfile("load", []float64{1.0, 0.8, 0.6})
	return sys
}

func TestParseAndValidate(t *testing.T) {
	sys := parseMinimal(t)
	if err := sys.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	if got, want := sys.Scenario.Name, "mini"; got != want {
		t.Errorf("Name = %q, want %q", got, want)
	}
	if got, want := time.Duration(sys.Scenario.Step), time.Hour; got != want {
		t.Errorf("Step = %v, want %v", got, want)
	}
	if got, want := sys.NodeCount(), 4; got != want {
		t.Errorf("NodeCount() = %d, want %d", got, want)
	}

	index := sys.Index()
	if len(index) != 3 {
		t.Fatalf("Index() has %d timestamps, want 3", len(index))
	}
	if got, want := index[2].Sub(index[0]), 2*time.Hour; got != want {
		t.Errorf("Index() spans %v, want %v", got, want)
	}

	bus, ok := sys.Bus("electricity")
	if !ok {
		t.Fatal("Bus(electricity) not found")
	}
	if !bus.Excess {
		t.Error("Bus(electricity).Excess = false, want true")
	}
	if got, want := bus.ExcessLabel(), "electricity-excess"; got != want {
		t.Errorf("ExcessLabel() = %q, want %q", got, want)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(minimalScenario + "\nsolver = \"cbc\"\n"))
	if err == nil {
		t.Fatal("Parse() accepted an unknown key")
	}
	if !strings.Contains(err.Error(), "solver") {
		t.Errorf("error %q does not name the unknown key", err)
	}
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*System)
	}{
		{"missing profile column", func(s *System) {
			s.profiles = map[string][]float64{"wind": {0.5, 0.9, 0.1}}
		}},
		{"profile length mismatch", func(s *System) {
			s.SetProfile("load", []float64{1.0})
		}},
		{"duplicate label", func(s *System) {
			s.Scenario.Sources[0].Label = "wind"
		}},
		{"unknown bus", func(s *System) {
			s.Scenario.Demands[0].Bus = "heat"
		}},
		{"zero capacity", func(s *System) {
			s.Scenario.Renewables[0].Capacity = 0
		}},
		{"negative marginal cost", func(s *System) {
			s.Scenario.Sources[0].MarginalCost = -1
		}},
		{"label collides with excess sink", func(s *System) {
			s.Scenario.Sources[0].Label = "electricity-excess"
		}},
		{"label breaks legend syntax", func(s *System) {
			s.Scenario.Sources[0].Label = "gas,plant"
		}},
		{"zero periods", func(s *System) {
			s.Scenario.Periods = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := parseMinimal(t)
			tt.mutate(sys)
			if err := sys.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestValidateConverterAndStorage(t *testing.T) {
	extra := minimalScenario + `
[[bus]]
label = "gas"

[[source]]
label = "gas-import"
bus = "gas"
capacity = 1000.0
marginal_cost = 20.0

[[converter]]
label = "turbine"
from = "gas"
to = "electricity"
capacity = 30.0
efficiency = 0.45
marginal_cost = 2.0

[[storage]]
label = "battery"
bus = "electricity"
capacity = 100.0
power = 25.0
efficiency_in = 0.95
efficiency_out = 0.95
initial = 0.5
`
	sys, err := Parse([]byte(extra))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	sys.SetProfile("wind", []float64{0.5, 0.9, 0.1})
	sys.SetProfile("load", []float64{1.0, 0.8, 0.6})
	if err := sys.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	sys.Scenario.Converters[0].Efficiency = 1.5
	if err := sys.Validate(); err == nil {
		t.Error("Validate() accepted efficiency > 1")
	}
	sys.Scenario.Converters[0].Efficiency = 0.45
	sys.Scenario.Storages[0].Initial = 1.2
	if err := sys.Validate(); err == nil {
		t.Error("Validate() accepted initial fill > 1")
	}
}

func TestLoadWithProfiles(t *testing.T) {
	dir := t.TempDir()

	csv := "timestamp,wind,load\n"
	rows := []string{"0.5,1.0", "0.9,0.8", "0.1,0.6"}
	for i, r := range rows {
		csv += time.Date(2026, 1, 5, i, 0, 0, 0, time.UTC).Format(time.RFC3339) + "," + r + "\n"
	}
	if err := os.WriteFile(filepath.Join(dir, "profiles.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write profiles: %v", err)
	}

	// The profiles key is top level, so it must come before the first
	// [[table]] section of the fixture.
	scenario := strings.Replace(minimalScenario, "step = \"1h\"", "step = \"1h\"\nprofiles = \"profiles.csv\"", 1)
	path := filepath.Join(dir, "scenario.toml")
	if err := os.WriteFile(path, []byte(scenario), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	sys, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	wind := sys.Profile("wind")
	if len(wind) != 3 || wind[1] != 0.9 {
		t.Errorf("Profile(wind) = %v, want [0.5 0.9 0.1]", wind)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("Load() = nil error for a missing file")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeInvalidScenario {
		t.Errorf("GetCode() = %q, want %q", got, errors.ErrCodeInvalidScenario)
	}
}
