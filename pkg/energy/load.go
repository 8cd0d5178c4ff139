package energy

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fluxplot/fluxplot/pkg/errors"
)

// Load reads and validates a scenario TOML file. Profile CSV paths are
// resolved relative to the scenario file. The returned system is fully
// validated: every error later stages could hit on malformed input is
// reported here instead.
func Load(path string) (*System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "read scenario %s", path)
	}
	sys, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "scenario %s", path)
	}
	if sys.Scenario.Profiles != "" {
		profiles, err := loadProfiles(filepath.Join(filepath.Dir(path), sys.Scenario.Profiles))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "scenario %s", path)
		}
		sys.profiles = profiles
	}
	if err := sys.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "scenario %s", path)
	}
	return sys, nil
}

// Parse decodes scenario TOML without touching the filesystem or
// validating profile references. Callers that attach profiles manually
// (tests, the HTTP server's upload path) run Validate afterwards.
func Parse(data []byte) (*System, error) {
	var sc Scenario
	meta, err := toml.Decode(string(data), &sc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "decode TOML")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidScenario,
			"unknown scenario keys: %s", strings.Join(keys, ", "))
	}
	return &System{Scenario: &sc, profiles: map[string][]float64{}}, nil
}

// SetProfile attaches a profile column, replacing any previous column
// of the same name. Intended for callers of Parse.
func (s *System) SetProfile(name string, values []float64) {
	s.profiles[name] = values
}

// loadProfiles reads a CSV profile table: a header row of profile
// names followed by one row per period. A leading "timestamp" column,
// if present, is skipped; timestamps come from the scenario itself.
func loadProfiles(path string) (map[string][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "open profiles %s", path)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "read profiles %s", path)
	}
	if len(records) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidScenario,
			"profiles %s needs a header row and at least one data row", path)
	}

	header := records[0]
	skip := 0
	if len(header) > 0 && strings.EqualFold(header[0], "timestamp") {
		skip = 1
	}

	profiles := make(map[string][]float64, len(header)-skip)
	for col := skip; col < len(header); col++ {
		name := strings.TrimSpace(header[col])
		if name == "" {
			return nil, errors.New(errors.ErrCodeInvalidScenario,
				"profiles %s has an empty column name at position %d", path, col)
		}
		if _, dup := profiles[name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidScenario,
				"profiles %s declares column %q twice", path, name)
		}
		values := make([]float64, len(records)-1)
		for row := 1; row < len(records); row++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(records[row][col]), 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err,
					"profiles %s: column %q row %d", path, name, row)
			}
			values[row-1] = v
		}
		profiles[name] = values
	}
	return profiles, nil
}
