package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linearmesh/pkg/graph"
	"github.com/matzehuels/linearmesh/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render artifacts from a computed layout",
		Long: `Render artifacts from a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
renders it to SVG, PNG, JSON or DOT. The layout contains all positioning
information, so this step is purely about rendering.

Use 'render' as a shortcut to go directly from flow data to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			c.cfg.Apply(&opts)
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg, png, json, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.Style, "style", "", "visual style: ribbon (default), curve")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG pixel density (default 2)")
	cmd.Flags().BoolVar(&opts.Interactive, "interactive", false, "highlight links on hover (svg)")
	cmd.Flags().StringVar(&opts.Background, "background", "", "background color (svg)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title (svg)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show node counts in DOT labels")

	return cmd
}

// runVisualize loads the layout and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	layout, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.StopWithSuccess("Visualization complete")

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     trimLayoutExt(input),
		output:    output,
	})
	if err != nil {
		return err
	}

	for _, p := range paths {
		printFile(p)
	}
	printStats(pipeline.Stats{LayerCount: len(layout.Layers), NodeCount: layout.NodeCount()}, cacheHit)
	return nil
}

// trimLayoutExt maps flows.layout.json to flows.json so artifacts land next
// to the input they were computed from.
func trimLayoutExt(path string) string {
	const suffix = ".layout.json"
	if base, ok := strings.CutSuffix(path, suffix); ok && base != "" {
		return base + ".json"
	}
	return path
}
