// Package topo renders the topology of an energy system as a Graphviz
// graph: buses as ellipses, converters as trapeziums, storages as
// cylinders, sources and sinks as boxes, with edges following the flow
// direction. The DOT output can be rendered to SVG or PNG via the
// embedded Graphviz engine.
package topo

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/fluxplot/fluxplot/pkg/energy"
	"github.com/fluxplot/fluxplot/pkg/errors"
)

// DOT converts a system's topology to Graphviz DOT format. The result
// renders with [SVG] or [PNG], or with any external Graphviz install.
func DOT(sys *energy.System) string {
	sc := sys.Scenario

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", sc.Name)
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=12, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("\n")

	for _, b := range sc.Buses {
		fmt.Fprintf(&buf, "  %q [shape=ellipse, fillcolor=lightblue];\n", b.Label)
		if b.Excess {
			fmt.Fprintf(&buf, "  %q [shape=box, fillcolor=lightgrey];\n", b.ExcessLabel())
		}
		if b.Shortage {
			fmt.Fprintf(&buf, "  %q [shape=box, fillcolor=mistyrose];\n", b.ShortageLabel())
		}
	}
	for _, s := range sc.Sources {
		fmt.Fprintf(&buf, "  %q [shape=box];\n", s.Label)
	}
	for _, r := range sc.Renewables {
		fmt.Fprintf(&buf, "  %q [shape=box, fillcolor=palegreen];\n", r.Label)
	}
	for _, d := range sc.Demands {
		fmt.Fprintf(&buf, "  %q [shape=box, fillcolor=khaki];\n", d.Label)
	}
	for _, c := range sc.Converters {
		fmt.Fprintf(&buf, "  %q [shape=trapezium];\n", c.Label)
	}
	for _, s := range sc.Storages {
		fmt.Fprintf(&buf, "  %q [shape=cylinder];\n", s.Label)
	}
	for _, l := range sc.Lines {
		fmt.Fprintf(&buf, "  %q [shape=cds];\n", l.Label)
	}

	buf.WriteString("\n")
	for _, b := range sc.Buses {
		if b.Excess {
			fmt.Fprintf(&buf, "  %q -> %q;\n", b.Label, b.ExcessLabel())
		}
		if b.Shortage {
			fmt.Fprintf(&buf, "  %q -> %q;\n", b.ShortageLabel(), b.Label)
		}
	}
	for _, s := range sc.Sources {
		fmt.Fprintf(&buf, "  %q -> %q;\n", s.Label, s.Bus)
	}
	for _, r := range sc.Renewables {
		fmt.Fprintf(&buf, "  %q -> %q;\n", r.Label, r.Bus)
	}
	for _, d := range sc.Demands {
		fmt.Fprintf(&buf, "  %q -> %q;\n", d.Bus, d.Label)
	}
	for _, c := range sc.Converters {
		fmt.Fprintf(&buf, "  %q -> %q;\n", c.From, c.Label)
		fmt.Fprintf(&buf, "  %q -> %q;\n", c.Label, c.To)
		if c.To2 != "" {
			fmt.Fprintf(&buf, "  %q -> %q;\n", c.Label, c.To2)
		}
	}
	for _, s := range sc.Storages {
		fmt.Fprintf(&buf, "  %q -> %q [dir=both];\n", s.Bus, s.Label)
	}
	for _, l := range sc.Lines {
		fmt.Fprintf(&buf, "  %q -> %q;\n", l.From, l.Label)
		fmt.Fprintf(&buf, "  %q -> %q;\n", l.Label, l.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// SVG renders a DOT graph to SVG using the embedded Graphviz engine.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.SVG)
}

// PNG renders a DOT graph to PNG using the embedded Graphviz engine.
func PNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render %s", format)
	}
	return buf.Bytes(), nil
}
