// Package pkg provides the core libraries for Fluxplot energy-system
// visualization.
//
// # Overview
//
// Fluxplot simulates the dispatch of small energy systems and turns the
// resulting commodity flows into stacked bus-balance figures. The pkg
// directory is organized into these areas:
//
//  1. [energy] - Scenario model (TOML loading, validation, profiles)
//  2. [dispatch] - Merit-order dispatch simulation and results
//  3. [flows] - Flow tables, time windows, balance partitioning
//  4. [plot] - Balance compositing (stacking, colors, ticks, legend)
//  5. [render] - Chart backends producing SVG and PNG
//  6. [topo] - Topology graphs via Graphviz
//  7. [cache] / [archive] - Artifact caching and run archival
//
// # Architecture
//
// The typical data flow through Fluxplot:
//
//	scenario.toml + profiles.csv
//	         ↓
//	    [energy] package (load + validate)
//	         ↓
//	    [dispatch] package (merit-order simulation)
//	         ↓
//	    [flows] package (per-bus flow tables)
//	         ↓
//	    [plot] package (balance composition)
//	         ↓
//	    [render] package (SVG/PNG output)
//
// # Quick Start
//
// Dispatch a scenario and render one bus balance:
//
//	import (
//	    "github.com/fluxplot/fluxplot/pkg/dispatch"
//	    "github.com/fluxplot/fluxplot/pkg/energy"
//	    "github.com/fluxplot/fluxplot/pkg/plot"
//	    "github.com/fluxplot/fluxplot/pkg/render"
//	)
//
//	// 1. Load and validate the scenario
//	sys, _ := energy.Load("examples/dispatch/scenario.toml")
//
//	// 2. Solve the dispatch
//	res, _ := dispatch.Run(sys)
//
//	// 3. Compose the balance of one bus
//	table, _ := res.Node("electricity")
//	plan, _ := plot.Balance(table, "electricity", plot.Options{})
//
//	// 4. Render to SVG
//	svg, _ := render.SVG(plan, render.WithTitle("electricity balance"))
//
// # Main Packages
//
// [energy] - Scenario model. Decodes TOML scenario files, resolves CSV
// profile columns, and validates labels, capacities, and references up
// front so downstream packages can assume a coherent system.
//
// [dispatch] - Deterministic merit-order dispatch. Balances each bus
// per period by activating candidates in cost order, propagating draws
// across buses, and recording every flow as a time series.
//
// [flows] - Flow tables keyed by from/to label pairs, time-window
// slicing, and the balance partition that splits a bus's flows into
// feeders and draws.
//
// [plot] - Turns a partitioned balance into a render plan: stacking
// order, contiguous color assignment, tick placement, and legend
// layout.
//
// [render] - Chart backends. Produces SVG and PNG figures from a
// render plan using go-chart.
//
// [topo] - Node-and-bus topology graphs rendered with Graphviz.
//
// [cache] - Content-addressed artifact cache with file, Redis, and
// null backends. Keys hash every input that affects the artifact.
//
// [archive] - Run summaries stored in MongoDB for later inspection.
//
// [errors] - Coded errors shared by every package; codes map to CLI
// messages and HTTP status codes.
//
// [observability] - Pluggable hooks for dispatch, render, and cache
// events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/dispatch/...  # Specific package
//
// [energy]: https://pkg.go.dev/github.com/fluxplot/fluxplot/pkg/energy
// [dispatch]: https://pkg.go.dev/github.com/fluxplot/fluxplot/pkg/dispatch
// [flows]: https://pkg.go.dev/github.com/fluxplot/fluxplot/pkg/flows
// [plot]: https://pkg.go.dev/github.com/fluxplot/fluxplot/pkg/plot
// [render]: https://pkg.go.dev/github.com/fluxplot/fluxplot/pkg/render
// [topo]: https://pkg.go.dev/github.com/fluxplot/fluxplot/pkg/topo
// [cache]: https://pkg.go.dev/github.com/fluxplot/fluxplot/pkg/cache
// [archive]: https://pkg.go.dev/github.com/fluxplot/fluxplot/pkg/archive
// [errors]: https://pkg.go.dev/github.com/fluxplot/fluxplot/pkg/errors
// [observability]: https://pkg.go.dev/github.com/fluxplot/fluxplot/pkg/observability
package pkg
