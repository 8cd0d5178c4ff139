package flows

import "github.com/fluxplot/fluxplot/pkg/errors"

// Balance groups the flows of one table by their relation to a bus:
// inflows target the bus, outflows leave it. The two groups are disjoint
// and together cover every flow in the table that references the bus.
// Each group keeps the table's first-seen key order.
type Balance struct {
	Bus      string
	Inflows  []Key
	Outflows []Key
}

// Partition splits table into the inflow and outflow groups of bus.
//
// It fails with code EMPTY_BUS when no flow references bus, and with code
// SELF_LOOP when the table contains a flow from bus to itself, which
// indicates corrupt upstream results rather than a plottable condition.
func Partition(table *Table, bus string) (*Balance, error) {
	if table == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "table cannot be nil")
	}
	if bus == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "bus label cannot be empty")
	}

	bal := &Balance{Bus: bus}
	for _, k := range table.order {
		switch {
		case k.Source == bus && k.Target == bus:
			return nil, errors.New(errors.ErrCodeSelfLoop, "flow %s is a self-loop on bus %q", k, bus)
		case k.Target == bus:
			bal.Inflows = append(bal.Inflows, k)
		case k.Source == bus:
			bal.Outflows = append(bal.Outflows, k)
		}
	}

	if len(bal.Inflows)+len(bal.Outflows) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyBus, "no flows reference bus %q", bus)
	}
	return bal, nil
}
