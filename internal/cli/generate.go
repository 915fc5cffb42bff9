package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgen/pkg/pipeline"
)

// generateFlags holds the flags shared by generate runs.
type generateFlags struct {
	input     string
	output    string
	formats   string
	direction string
	scale     float64
	refresh   bool
	noCache   bool
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a diagram from a prompt",
		Long: `Generate a diagram from a text prompt.

The prompt is sent to the configured language model, the reply is laid out
and written in every requested format. With --input the prompt describes
changes to an existing diagram instead.

The API key is read from GEMINI_API_KEY, GOOGLE_API_KEY or API_KEY, or from
the variable named by ai.api_key_env in the config file.

Model replies and layouts are cached; pass --refresh to ask again.`,
		Example: `  flowgen generate "user signup with email verification"
  flowgen generate "add a password reset path" -i signup.json -f json,png
  flowgen generate "microservice architecture for a shop" -d LR -f drawio -o shop.drawio`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), strings.Join(args, " "), f)
		},
	}

	cmd.Flags().StringVarP(&f.input, "input", "i", "", "existing diagram to revise")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (default: diagram)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): json (default), drawio, dot, svg, png, gif (comma-separated)")
	cmd.Flags().StringVarP(&f.direction, "direction", "d", "", "flow direction: TB, LR, RL, BT (default: chosen by the model)")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "raster scale for png and gif")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached model replies")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runGenerate asks the model for a diagram and writes the outputs.
func (c *CLI) runGenerate(ctx context.Context, prompt string, f generateFlags) error {
	formats, err := normalizeFormats(parseFormats(f.formats))
	if err != nil {
		return err
	}
	opts := pipeline.Options{
		Prompt:    prompt,
		Direction: f.direction,
		Formats:   formats,
		Scale:     f.scale,
		Refresh:   f.refresh,
		Logger:    c.Logger,
	}
	if f.input != "" {
		d, err := readDiagram(f.input)
		if err != nil {
			return fmt.Errorf("load diagram %s: %w", f.input, err)
		}
		opts.Input = &d
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, f.noCache, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	message := "Generating diagram..."
	if opts.Input != nil {
		message = "Updating diagram..."
	}
	spinner := newSpinner(ctx, message)
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.Fail("Generation failed")
		return err
	}
	spinner.Stop()

	base := outputBase(f.output, "", "diagram")
	paths, err := writeArtifacts(result.Artifacts, formats, f.output, base, f.input)
	if err != nil {
		return err
	}
	if f.output == stdio {
		return nil
	}

	printSuccess("Generated %s", StyleValue.Render(string(result.Diagram.DiagramType)))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount,
		stage{"model", result.CacheInfo.GenerateHit, result.Stats.GenerateTime},
		stage{"layout", result.CacheInfo.LayoutHit, result.Stats.LayoutTime},
		stage{"render", result.CacheInfo.RenderHit, result.Stats.RenderTime})
	printNewline()
	if jsonPath := artifactPath(f.output, base, "json", len(formats) == 1); slices.Contains(paths, jsonPath) {
		printNextStep("Preview", appName+" edit "+jsonPath)
	}
	return nil
}
