package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/graph"
	"github.com/matzehuels/swimlane/pkg/pipeline"
)

// renderCommand exports a laid-out document without running the layout
// again.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output   string
		formats  string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "render <graph.layout.json>",
		Short: "Export a laid-out document",
		Long: `Export a document produced by 'swimlane layout' as BPMN 2.0 XML, DOT, SVG,
JSON or YAML. Positions and waypoints are taken from the document as is.`,
		Example: `  swimlane render order.layout.json -f bpmn
  swimlane render order.layout.json -f svg,dot --detailed -o diagrams/order`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := pipeline.ParseFormats(formats)
			if len(fs) == 0 {
				return errors.New(errors.ErrCodeInvalidFormat, "no output format given")
			}
			if err := pipeline.ValidateFormats(fs); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], output, fs, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or base path for several formats (default: next to the input)")
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatBPMN, "output formats: "+strings.Join(pipeline.Formats, ", ")+" (comma-separated)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label DOT/SVG nodes with layer and order")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(pipeline.Formats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, output string, formats []string, detailed bool) error {
	g, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}
	if !isLaidOut(g) {
		printWarning("%s has no layout; run 'swimlane layout' first", input)
	}

	artifacts, err := pipeline.Render(ctx, g, formats, detailed)
	if err != nil {
		return err
	}

	paths := outputPaths(input, output, "", formats)
	for _, format := range formats {
		if err := writeArtifact(paths[format], artifacts[format]); err != nil {
			return err
		}
	}
	c.Logger.Debug("rendered", "input", input, "formats", formats)

	printSuccess("Rendered %s", strings.Join(formats, ", "))
	for _, format := range formats {
		printFile(paths[format])
	}
	return nil
}

// isLaidOut reports whether any lane of g has a size.
func isLaidOut(g *graph.Graph) bool {
	for _, l := range g.Lanes() {
		if l.W > 0 && l.H > 0 {
			return true
		}
	}
	return false
}
