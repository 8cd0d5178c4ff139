package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fluxplot/fluxplot/pkg/energy"
)

func (c *CLI) scenariosCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios [dir]",
		Short: "List the scenarios in a directory",
		Long: `Scenarios scans a directory for subdirectories holding a
scenario.toml and prints each scenario's name, node count, and horizon.
Directories that fail to load are reported and skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "examples"
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runScenarios(dir)
		},
	}
	return cmd
}

func (c *CLI) runScenarios(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read scenario directory: %w", err)
	}

	found := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name(), "scenario.toml")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		sys, err := energy.Load(path)
		if err != nil {
			printWarning("%s: %v", entry.Name(), err)
			continue
		}
		found++
		printInline("%s %s\n",
			StyleHighlight.Render(fmt.Sprintf("%-20s", entry.Name())),
			StyleDim.Render(fmt.Sprintf("%q  %d nodes, %d buses, %d periods of %s",
				sys.Scenario.Name, sys.NodeCount(), len(sys.Scenario.Buses),
				sys.Scenario.Periods, time.Duration(sys.Scenario.Step))))
	}

	if found == 0 {
		printInfo("No scenarios found in %s", dir)
		return nil
	}
	printNewline()
	printNextStep("Run one with", "fluxplot run "+filepath.Join(dir, "<name>", "scenario.toml"))
	return nil
}
