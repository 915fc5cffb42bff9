package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgen/pkg/editor"
	"github.com/matzehuels/flowgen/pkg/layout"
)

// editCommand creates the edit command for previewing a diagram in the
// terminal.
func (c *CLI) editCommand() *cobra.Command {
	var (
		output    string
		direction string
	)

	cmd := &cobra.Command{
		Use:   "edit <diagram.json>",
		Short: "Preview and adjust a diagram in the terminal",
		Long: `Preview a diagram in the terminal.

The diagram is laid out and drawn with box characters. Keys:

  tab / shift+tab   select the next / previous node
  arrows or hjkl    move the selected node
  d                 toggle between vertical and horizontal flow
  r                 recompute the layout, dropping moved positions
  a / x             add a node / delete the selected node
  s                 save
  q                 quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], direction, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to save to (default: the input file)")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "initial flow direction: TB, LR, RL, BT")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, input, direction, output string) error {
	if input == stdio {
		return fmt.Errorf("edit needs a file, not stdin")
	}
	if direction != "" && !layout.ValidDirection(direction) {
		return fmt.Errorf("invalid direction %q (must be one of: TB, LR, RL, BT)", direction)
	}
	d, err := readDiagram(input)
	if err != nil {
		return fmt.Errorf("load diagram %s: %w", input, err)
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("diagram %s: %w", input, err)
	}

	doc := editor.New(d, c.newEngine())
	if direction != "" {
		doc.SetDirection(layout.Direction(direction))
	}
	if output == "" {
		output = input
	}

	final, err := tea.NewProgram(NewPreviewModel(doc, output), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if m, ok := final.(PreviewModel); ok && m.Saved {
		printSuccess("Saved diagram")
		printFile(output)
	}
	return nil
}
