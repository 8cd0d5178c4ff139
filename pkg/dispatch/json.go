package dispatch

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/fluxplot/fluxplot/pkg/errors"
	"github.com/fluxplot/fluxplot/pkg/flows"
)

// resultsDoc is the JSON wire form of a Results value.
type resultsDoc struct {
	Scenario  string    `json:"scenario"`
	Objective float64   `json:"objective"`
	Buses     []string  `json:"buses"`
	Index     []string  `json:"index"`
	Flows     []flowDoc `json:"flows"`
}

type flowDoc struct {
	Source  string             `json:"source"`
	Target  string             `json:"target"`
	Values  []float64          `json:"values"`
	Scalars map[string]float64 `json:"scalars,omitempty"`
}

// WriteJSON encodes the results as JSON and writes them to w. The
// output preserves flow registration order and round-trips through
// [ReadJSON], so a run can be re-plotted without re-dispatching.
func (r *Results) WriteJSON(w io.Writer) error {
	doc := resultsDoc{
		Scenario:  r.Scenario,
		Objective: r.Objective,
		Buses:     r.buses,
		Index:     make([]string, len(r.index)),
		Flows:     make([]flowDoc, len(r.order)),
	}
	for i, t := range r.index {
		doc.Index[i] = t.Format(time.RFC3339)
	}
	for i, k := range r.order {
		doc.Flows[i] = flowDoc{
			Source:  k.Source,
			Target:  k.Target,
			Values:  r.series[k],
			Scalars: r.scalars[k],
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode results")
	}
	return nil
}

// Export writes the results to a JSON file at path.
func (r *Results) Export(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	defer f.Close()
	return r.WriteJSON(f)
}

// ReadJSON decodes results previously written with [WriteJSON]. It
// validates the index and series lengths so a decoded Results is as
// trustworthy as a freshly dispatched one.
func ReadJSON(r io.Reader) (*Results, error) {
	var doc resultsDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode results")
	}

	index := make([]time.Time, len(doc.Index))
	for i, s := range doc.Index {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "timestamp %d", i)
		}
		if i > 0 && !t.After(index[i-1]) {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"time index must be strictly increasing (violated at position %d)", i)
		}
		index[i] = t
	}

	res := newResults(doc.Scenario, index, doc.Buses)
	res.Objective = doc.Objective
	for _, f := range doc.Flows {
		key := flows.Key{Source: f.Source, Target: f.Target}
		if f.Source == "" || f.Target == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "flow %s is missing an endpoint", key)
		}
		if _, dup := res.series[key]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate flow %s", key)
		}
		if len(f.Values) != len(index) {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"flow %s has %d values, index has %d", key, len(f.Values), len(index))
		}
		res.order = append(res.order, key)
		res.series[key] = f.Values
		if len(f.Scalars) > 0 {
			res.scalars[key] = f.Scalars
		}
	}
	return res, nil
}

// Import reads a results JSON file at path.
func Import(path string) (*Results, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
