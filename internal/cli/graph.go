package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fluxplot/fluxplot/pkg/cache"
	"github.com/fluxplot/fluxplot/pkg/energy"
	"github.com/fluxplot/fluxplot/pkg/errors"
	"github.com/fluxplot/fluxplot/pkg/topo"
)

func (c *CLI) graphCommand() *cobra.Command {
	var format string
	var output string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "graph <scenario.toml>",
		Short: "Render the scenario topology as a graph",
		Long: `Graph draws the node-and-bus topology of a scenario with
Graphviz. Buses become ellipses, plants and demands boxes, storages
cylinders.

Formats: svg, png, dot (dot skips Graphviz and prints the source).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), args[0], format, output, noCache)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg, png, dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default <scenario>.<format>)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the artifact cache")
	return cmd
}

func (c *CLI) runGraph(ctx context.Context, path, format, output string, noCache bool) error {
	switch format {
	case "svg", "png", "dot":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (want svg, png, or dot)", format)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read scenario %s", path)
	}
	sys, err := energy.Load(path)
	if err != nil {
		printError("Invalid scenario: %s", errors.UserMessage(err))
		return err
	}

	if output == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		output = base + "." + format
	}

	dot := topo.DOT(sys)
	if format == "dot" {
		if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", output)
		}
		printFile(output)
		return nil
	}

	store, err := newCache(noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	key := cache.TopoKey(cache.Hash(raw), format)
	data, cached, _ := store.Get(ctx, key)
	if !cached {
		if format == "png" {
			data, err = topo.PNG(ctx, dot)
		} else {
			data, err = topo.SVG(ctx, dot)
		}
		if err != nil {
			return err
		}
		_ = store.Set(ctx, key, data, artifactTTL)
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", output)
	}
	printFile(output)
	printNextStep("Inspect the dispatch next with", "fluxplot run "+path)
	return nil
}
