package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linearmesh/pkg/graph"
	"github.com/matzehuels/linearmesh/pkg/pipeline"
)

// layoutCommand creates the layout command for computing mesh layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output   string
		snapshot string
		noCache  bool
		flags    meshFlags
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [flows.json]",
		Short: "Compute a mesh layout from flow data",
		Long: `Compute a mesh layout from flow data.

The layout command reads points and links from a JSON, YAML or TOML file and
computes the positioned mesh. The output is a layout.json file that can be
rendered with the 'visualize' command or browsed with 'inspect'.

Mesh options come from, lowest first: built-in defaults, the "options" block
of the input, the config file, and the flags below.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Source = args[0]
			opts.Overrides = flags.overrides(cmd)
			c.cfg.Apply(&opts)
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), opts, output, snapshot, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "also write the intermediate mesh snapshot to this file")
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "", "input format: json, yaml, toml (default: from extension)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when a cached layout exists")
	flags.register(cmd)

	return cmd
}

// runLayout loads the flow data, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output, snapshot string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)

	in, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.Source, err)
	}

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	layout, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, in, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if spinner.Cancelled() {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", opts.Source) + ".layout.json"
	}

	if err := graph.WriteLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)

	if snapshot != "" {
		snap, err := pipeline.GenerateSnapshot(in, opts.EffectiveOverrides(in))
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		if err := graph.WriteSnapshotFile(snap, snapshot); err != nil {
			return fmt.Errorf("write snapshot %s: %w", snapshot, err)
		}
		printFile(snapshot)
	}

	printStats(pipeline.Stats{
		PointCount: len(in.Points),
		LinkCount:  in.LinkCount(),
		LayerCount: len(layout.Layers),
		NodeCount:  layout.NodeCount(),
	}, cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
