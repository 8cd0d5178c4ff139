package plot

import (
	"slices"
	"strings"
)

// DefaultPlotShare is the fraction of the figure width reserved for the
// plot area when the caller does not choose one; the remaining share
// holds the legend box.
const DefaultPlotShare = 0.9

// Legend describes the legend box of a render plan. PlotShare is a
// layout directive, not a mutation: the chart backend applies it
// exactly once per figure (applying it twice compounds the shrink).
type Legend struct {
	Entries   []LegendEntry
	PlotShare float64
}

// LegendEntry pairs a cleaned label with the swatch it explains.
type LegendEntry struct {
	Label string
	Color Color
	Kind  SeriesKind
}

// LegendLabels rewrites raw tuple labels like
// "(('electricity', 'demand'), flow)" into the name of the endpoint
// opposite bus ("demand"). With reverse set the sequence is returned in
// reverse order, so a bottom-to-top area stack reads top-to-bottom in
// the legend. Callers reversing labels must reverse the matching
// graphical handles the same way.
func LegendLabels(labels []string, bus string, reverse bool) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = cleanLabel(l, bus)
	}
	if reverse {
		slices.Reverse(out)
	}
	return out
}

// cleanLabel strips the tuple punctuation, the flow marker, and every
// occurrence of the bus label, leaving the opposite endpoint's name.
func cleanLabel(label, bus string) string {
	s := strings.ReplaceAll(label, "(", "")
	s = strings.ReplaceAll(s, "), flow)", "")
	s = strings.ReplaceAll(s, bus, "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "'", "")
}
