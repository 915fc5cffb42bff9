package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgen/pkg/flow"
	"github.com/matzehuels/flowgen/pkg/pipeline"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output    string
		direction string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "layout <diagram.json>",
		Short: "Compute node positions for a diagram",
		Long: `Compute node positions for a diagram.

The layout command reads a diagram (as written by 'generate' or by hand),
places every node with the layered layout engine and writes the diagram
back with positions, sizes and connector sides filled in.

Use "-" to read from stdin or write to stdout. Results are cached locally.`,
		Example: `  flowgen layout signup.json
  flowgen layout signup.json -d LR -o signup.lr.json
  cat signup.json | flowgen layout - -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], direction, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "flow direction: TB, LR, RL, BT (default: the diagram's own)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runLayout loads the diagram, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, direction, output string, noCache bool) error {
	d, err := readDiagram(input)
	if err != nil {
		return fmt.Errorf("load diagram %s: %w", input, err)
	}
	opts := pipeline.Options{Input: &d, Direction: direction, Logger: c.Logger}
	if err := opts.ValidateForGenerate(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	done := timed(c.Logger, "layout complete")
	laid, hit, err := runner.LayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	done("nodes", len(laid.Nodes), "cached", hit)

	if output == stdio {
		return flow.Write(stdout(), laid)
	}
	if output == "" {
		output = outputBase("", input, "diagram") + ".layout.json"
	}
	if err := flow.WriteFile(output, laid); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	w, h := laid.Bounds()
	printSuccess("Laid out %s", StyleValue.Render(string(laid.LayoutDirection)))
	printFile(output)
	printStats(len(laid.Nodes), len(laid.Edges), stage{name: "layout", cached: hit})
	printDetail("%.0f × %.0f", w, h)
	printNewline()
	printNextStep("Export", appName+" export "+output+" -f png")
	return nil
}
