package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgen/pkg/pipeline"
)

// exportFlags holds the command-line flags for the export command.
type exportFlags struct {
	output    string
	formats   string
	direction string
	scale     float64
	relayout  bool
	noCache   bool
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	f := exportFlags{scale: pipeline.DefaultScale, relayout: true}

	cmd := &cobra.Command{
		Use:   "export <diagram.json>",
		Short: "Export a diagram to draw.io, Graphviz, SVG, PNG or GIF",
		Long: `Export a diagram to one or more file formats.

Formats:
  json    the diagram with positions
  drawio  draw.io / diagrams.net XML
  dot     Graphviz source with pinned positions
  svg     vector image rendered by Graphviz
  png     raster image
  gif     animated image; animated edges march along their path

The diagram is laid out first. Pass --layout=false to keep the positions
stored in the file, for example after editing them by hand.`,
		Example: `  flowgen export signup.json -f png
  flowgen export signup.json -f drawio,svg,gif -o out/signup
  flowgen export signup.json -f png --scale 4 -o -  > signup.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "png", "output format(s): json, drawio, dot, svg, png, gif (comma-separated)")
	cmd.Flags().StringVarP(&f.direction, "direction", "d", "", "flow direction: TB, LR, RL, BT (default: the diagram's own)")
	cmd.Flags().Float64Var(&f.scale, "scale", f.scale, "raster scale for png and gif")
	cmd.Flags().BoolVar(&f.relayout, "layout", f.relayout, "recompute positions before export")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runExport lays out (unless disabled) and renders the diagram.
func (c *CLI) runExport(ctx context.Context, input string, f exportFlags) error {
	formats, err := normalizeFormats(parseFormats(f.formats))
	if err != nil {
		return err
	}
	d, err := readDiagram(input)
	if err != nil {
		return fmt.Errorf("load diagram %s: %w", input, err)
	}
	opts := pipeline.Options{
		Input:     &d,
		Direction: f.direction,
		Formats:   formats,
		Scale:     f.scale,
		Logger:    c.Logger,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, f.noCache, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()

	layoutStage := stage{name: "layout"}
	if f.relayout {
		start := time.Now()
		if d, layoutStage.cached, err = runner.LayoutWithCacheInfo(ctx, d, opts); err != nil {
			spinner.Fail("Layout failed")
			return fmt.Errorf("compute layout: %w", err)
		}
		layoutStage.took = time.Since(start)
	}

	spinner.SetMessage(fmt.Sprintf("Rendering %d format(s)...", len(formats)))
	start := time.Now()
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		spinner.Fail("Export failed")
		return err
	}
	spinner.Stop()
	renderStage := stage{name: "render", cached: hit, took: time.Since(start)}

	base := outputBase(f.output, input, "diagram")
	paths, err := writeArtifacts(artifacts, formats, f.output, base, input)
	if err != nil {
		return err
	}
	if f.output == stdio {
		return nil
	}

	printSuccess("Exported %d file(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	if f.relayout {
		printStats(len(d.Nodes), len(d.Edges), layoutStage, renderStage)
	} else {
		printStats(len(d.Nodes), len(d.Edges), renderStage)
	}
	return nil
}
