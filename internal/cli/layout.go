package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/swimlane/pkg/layout/ordering"
	"github.com/matzehuels/swimlane/pkg/layout/routing"
	"github.com/matzehuels/swimlane/pkg/pipeline"
)

type layoutFlags struct {
	output   string
	formats  string
	ordering string
	sweeps   int
	router   string
	noCache  bool
	refresh  bool
	detailed bool
	strict   bool
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout <graph.json|graph.yaml>",
		Short: "Lay out a process graph",
		Long: `Lay out a process graph.

Assigns every node a layer within its lane, orders nodes to reduce edge
crossings, computes coordinates for nodes, lanes and pools, and routes
every edge around the nodes in its way. The positioned document is written
next to the input as <input>.layout.json unless -o is given.

A lane whose layering problem is infeasible (for example a cycle among its
nodes) falls back to a longest-path layering and is reported as a
diagnostic. Edges that cannot be routed keep no waypoints. Use --strict to
exit non-zero on any diagnostic.

Results are cached; --no-cache bypasses the cache and --refresh recomputes
and overwrites the cached entry.`,
		Example: `  swimlane layout order.yaml
  swimlane layout order.yaml -f json,bpmn,svg -o out/order
  swimlane layout order.yaml --ordering barycentric --sweeps 12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.layoutOptions(cmd, f)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file, or base path for several formats (default: <input>.layout)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", pipeline.FormatJSON, "output formats: "+strings.Join(pipeline.Formats, ", ")+" (comma-separated)")
	cmd.Flags().StringVar(&f.ordering, "ordering", "", "ordering strategy: auto, alignment, barycentric (default from config)")
	cmd.Flags().IntVar(&f.sweeps, "sweeps", 0, "barycentric sweeps (default from config)")
	cmd.Flags().StringVar(&f.router, "router", "", "edge router: grid, elbow (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "label DOT/SVG nodes with layer and order")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail when the layout has diagnostics")

	_ = cmd.RegisterFlagCompletionFunc("ordering", cobra.FixedCompletions(
		[]string{ordering.NameAuto, ordering.NameAlignment, ordering.NameBarycentric}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("router", cobra.FixedCompletions(
		[]string{routing.NameGrid, routing.NameElbow}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(pipeline.Formats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// layoutOptions starts from the config and applies the flags that were set.
func (c *CLI) layoutOptions(cmd *cobra.Command, f layoutFlags) (pipeline.Options, error) {
	opts := pipeline.OptionsFromConfig(c.cfg)
	flags := cmd.Flags()
	if flags.Changed("ordering") {
		opts.Ordering = f.ordering
	}
	if flags.Changed("sweeps") {
		opts.Sweeps = f.sweeps
	}
	if flags.Changed("router") {
		opts.Router = f.router
	}
	opts.Formats = pipeline.ParseFormats(f.formats)
	opts.Detailed = f.detailed
	opts.Refresh = f.refresh
	opts.Logger = c.Logger

	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return opts, err
	}
	return opts, opts.ValidateAndSetDefaults()
}

func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, f layoutFlags) error {
	prog := newProgress(c.Logger)
	g, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d nodes...", g.NodeCount()))
	spinner.Start()
	res, err := runner.Execute(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(input, f.output, ".layout", opts.Formats)
	for _, format := range opts.Formats {
		if err := writeArtifact(paths[format], res.Artifacts[format]); err != nil {
			return err
		}
	}
	prog.done("layout finished", "lanes", len(res.Report.Lanes), "crossings", res.Report.Crossings)

	printSuccess("Layout complete")
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.Report, res.CacheInfo.LayoutHit)
	printReport(res.Report)

	if f.strict && !res.Report.OK() {
		return res.Report.Err()
	}
	if p, ok := paths[pipeline.FormatJSON]; ok {
		printNewline()
		printNextStep("Export", "swimlane render "+p+" -f bpmn")
	}
	return nil
}

// outputPaths maps each format to its file. A single format writes to
// output as given; several formats use output as a base path. Without
// output, files are named <input><suffix>.<ext>.
func outputPaths(input, output, suffix string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input)) + suffix
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for _, f := range formats {
		paths[f] = base + pipeline.Extensions[f]
	}
	return paths
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
