package cli

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/linearmesh/pkg/pipeline"
)

// renderJob holds the command-line settings of the render command.
type renderJob struct {
	opts     pipeline.Options
	output   string // output file (single input and format) or base path
	noCache  bool
	graphviz bool // also write a Graphviz node-link SVG per input
	jobs     int  // inputs rendered concurrently
}

// renderCommand creates the render command, a shortcut from flow data to
// rendered artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		watch      bool
		flags      meshFlags
	)
	job := renderJob{jobs: runtime.NumCPU()}

	cmd := &cobra.Command{
		Use:   "render [flows.json...]",
		Short: "Render flow data to SVG, PNG, JSON or DOT",
		Long: `Render flow data to SVG, PNG, JSON or DOT.

The render command runs the full pipeline: it loads each input, computes its
layout and writes <input>.<format> for every requested format. Several
inputs are rendered concurrently.

With --watch the inputs are re-rendered whenever they change on disk.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if job.output != "" && len(args) > 1 {
				return fmt.Errorf("--output requires a single input, got %d", len(args))
			}
			job.opts.Formats = parseFormats(formatsStr)
			job.opts.Overrides = flags.overrides(cmd)
			c.cfg.Apply(&job.opts)
			if err := job.opts.ValidateForRender(); err != nil {
				return err
			}
			if err := job.opts.ValidateForLayout(); err != nil {
				return err
			}
			if job.jobs < 1 {
				job.jobs = 1
			}

			if watch {
				return c.watchRender(cmd.Context(), args, job)
			}
			return c.runRender(cmd.Context(), args, job)
		},
	}

	cmd.Flags().StringVarP(&job.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg, png, json, dot (comma-separated)")
	cmd.Flags().StringVar(&job.opts.InputFormat, "input-format", "", "input format: json, yaml, toml (default: from extension)")
	cmd.Flags().BoolVar(&job.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&job.opts.Refresh, "refresh", false, "recompute even when cached results exist")
	cmd.Flags().IntVarP(&job.jobs, "jobs", "j", job.jobs, "number of inputs rendered concurrently")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render inputs when they change")

	cmd.Flags().StringVar(&job.opts.Style, "style", "", "visual style: ribbon (default), curve")
	cmd.Flags().Float64Var(&job.opts.Scale, "scale", 0, "PNG pixel density (default 2)")
	cmd.Flags().BoolVar(&job.opts.Interactive, "interactive", false, "highlight links on hover (svg)")
	cmd.Flags().StringVar(&job.opts.Background, "background", "", "background color (svg)")
	cmd.Flags().StringVar(&job.opts.Title, "title", "", "document title (svg)")
	cmd.Flags().BoolVar(&job.opts.Detailed, "detailed", false, "show node counts in DOT labels")
	cmd.Flags().BoolVar(&job.graphviz, "graphviz", false, "also write a Graphviz node-link SVG (<input>.graphviz.svg)")
	flags.register(cmd)

	return cmd
}

// runRender renders every input and writes its artifacts. Inputs are
// processed concurrently; output is reported in argument order.
func (c *CLI) runRender(ctx context.Context, inputs []string, job renderJob) error {
	runner, err := c.newRunner(ctx, job.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d input(s)...", len(inputs)))
	spinner.Start()

	var finished atomic.Int32
	results := make([]*pipeline.Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(job.jobs)
	for i, input := range inputs {
		g.Go(func() error {
			opts := job.opts
			opts.Source = input
			opts.Logger = logger.With("input", input)

			prog := newProgress(opts.Logger)
			res, err := runner.Execute(gctx, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			prog.done("Rendered " + input)
			spinner.SetMessage(fmt.Sprintf("Rendered %d/%d inputs...", finished.Add(1), len(inputs)))
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	for i, input := range inputs {
		if err := c.writeResult(ctx, input, results[i], job); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) writeResult(ctx context.Context, input string, res *pipeline.Result, job renderJob) error {
	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   job.opts.Formats,
		input:     input,
		output:    job.output,
	})
	if err != nil {
		return err
	}

	if job.graphviz {
		data, err := pipeline.RenderNodelink(ctx, res.Layout, job.opts.Detailed)
		if err != nil {
			return fmt.Errorf("graphviz %s: %w", input, err)
		}
		path := basePath(job.output, input) + ".graphviz.svg"
		if err := writeOutput(path, data); err != nil {
			return err
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %s", input)
	for _, p := range paths {
		printFile(p)
	}
	printStats(res.Stats, res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit)
	return nil
}
