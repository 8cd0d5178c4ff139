package plot

import (
	"time"

	"github.com/fluxplot/fluxplot/pkg/errors"
)

// DefaultTickFormat is the Go layout applied when a TickSpec leaves
// Format empty.
const DefaultTickFormat = "02-01-2006 15:04"

// TickSpec describes how to place ticks on a datetime axis. Exactly one
// of Distance (fixed index positions between ticks) or Count (desired
// number of ticks, spacing derived as len(index)/count) must be set.
// Offset shifts the first tick; offset 12 centers a daily tick under an
// hourly index.
type TickSpec struct {
	Distance int
	Count    int
	Format   string
	Offset   int
}

// Tick is one labeled axis position.
type Tick struct {
	Pos   int
	Label string
}

// Ticks computes strictly increasing tick positions within the index
// bounds, each labeled by formatting the timestamp at that position.
//
// Setting both or neither of Distance and Count is a caller bug and
// fails with code AMBIGUOUS_TICKS rather than guessing.
func Ticks(index []time.Time, spec TickSpec) ([]Tick, error) {
	if len(index) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "index cannot be empty")
	}
	if spec.Distance < 0 || spec.Count < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"tick distance and count cannot be negative (distance=%d, count=%d)", spec.Distance, spec.Count)
	}
	if (spec.Distance == 0) == (spec.Count == 0) {
		return nil, errors.New(errors.ErrCodeAmbiguousTicks,
			"exactly one of distance or count must be set (distance=%d, count=%d)", spec.Distance, spec.Count)
	}

	dist := spec.Distance
	if dist == 0 {
		dist = len(index) / spec.Count
		if dist < 1 {
			dist = 1
		}
	}

	format := spec.Format
	if format == "" {
		format = DefaultTickFormat
	}

	var ticks []Tick
	for pos := spec.Offset; pos < len(index); pos += dist {
		if pos < 0 {
			continue
		}
		ticks = append(ticks, Tick{Pos: pos, Label: index[pos].Format(format)})
	}
	return ticks, nil
}
