package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/linearmesh/pkg/graph"
	"github.com/matzehuels/linearmesh/pkg/render/styles"
)

const maxPenWidth = 12.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node count and link values to labels.
	// When false, only point names are shown.
	Detailed bool
}

// ToDOT converts a layout to Graphviz DOT format. Every layer becomes a
// rank=same subgraph so Graphviz keeps the mesh's columns, and every edge's
// pen width follows the link's stroke width.
func ToDOT(l graph.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#55555599\", arrowsize=0.6];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.4;\n")

	for _, layer := range l.Layers {
		fmt.Fprintf(&buf, "\n  subgraph layer_%d {\n    rank=same;\n", layer.Depth)
		for _, n := range layer.Nodes {
			fmt.Fprintf(&buf, "    %q [label=%q];\n", n.ID, fmtLabel(n, opts.Detailed))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range l.Links {
		attrs := []string{fmt.Sprintf("penwidth=%s", strconv.FormatFloat(penWidth(e.Stroke, l.Scale.Height), 'f', 2, 64))}
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", e.SourceName+" to "+e.TargetName))
		if opts.Detailed {
			attrs = append(attrs, fmt.Sprintf("label=%q", styles.FormatCount(e.Value)))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}
	return n.Name + "\n" + styles.FormatCount(n.Count)
}

// penWidth maps a stroke width in [0, maxStroke] onto [1, maxPenWidth].
func penWidth(stroke, maxStroke float64) float64 {
	if maxStroke <= 0 {
		return 1
	}
	return 1 + (maxPenWidth-1)*min(1, stroke/maxStroke)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
