package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/linearmesh/pkg/graph"
	"github.com/matzehuels/linearmesh/pkg/render/nodelink"
	"github.com/matzehuels/linearmesh/pkg/render/sink"
	"github.com/matzehuels/linearmesh/pkg/render/styles"
)

// Render generates output artifacts in the requested formats.
// opts must have passed ValidateForRender.
func Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, buildSVGOptions(opts)...)
		case FormatPNG:
			data, err = sink.RenderPNG(l, sink.WithScale(opts.Scale), sink.WithPNGStyle(opts.Style))
		case FormatJSON:
			data, err = sink.RenderJSON(l, sink.WithJSONStyle(opts.Style))
		case FormatDOT:
			data = []byte(nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed}))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// RenderNodelink renders the layout as a Graphviz node-link diagram (SVG).
func RenderNodelink(ctx context.Context, l graph.Layout, detailed bool) ([]byte, error) {
	dot := nodelink.ToDOT(l, nodelink.Options{Detailed: detailed})
	return nodelink.RenderSVG(ctx, dot)
}

// buildSVGOptions constructs SVG rendering options from pipeline options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	style, _ := styles.ByName(opts.Style)
	svgOpts := []sink.SVGOption{sink.WithStyle(style)}
	if opts.Interactive {
		svgOpts = append(svgOpts, sink.WithInteraction())
	}
	if opts.Background != "" {
		svgOpts = append(svgOpts, sink.WithBackground(opts.Background))
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	return svgOpts
}
