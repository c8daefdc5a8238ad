package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/linearmesh/pkg/graph"
	"github.com/matzehuels/linearmesh/pkg/render/styles"
)

const linkInteractionCSS = `
    .link { transition: fill-opacity 0.2s ease, stroke-opacity 0.2s ease; }
    .link:hover, .link.highlight { fill-opacity: 0.8; stroke-opacity: 0.9; }
    .node-bg.highlight { stroke: #e0a000; stroke-width: 3; }`

const linkInteractionJS = `
    function highlight(id) {
      document.querySelectorAll('.link').forEach(l => l.classList.toggle('highlight', l.dataset.from === id || l.dataset.to === id));
      document.querySelectorAll('.node-bg').forEach(n => n.classList.toggle('highlight', n.id === 'node-' + id));
    }
    function clearHighlight() {
      document.querySelectorAll('.highlight').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.node-bg').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.id.replace('node-', '')));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       styles.Style
	interactive bool
	background  string
	title       string
}

// WithStyle sets the visual style (default [styles.Ribbon]).
func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithInteraction embeds hover highlighting of a node's links.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithBackground fills the canvas with the given color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithTitle sets the document <title>.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// RenderSVG renders a positioned layout as an SVG document. Links are drawn
// beneath nodes; labels are drawn last.
func RenderSVG(l graph.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", styles.EscapeXML(r.title))
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", styles.EscapeXML(r.background))
	}

	r.style.RenderDefs(&buf)
	renderContent(&buf, r.style, l)
	if r.interactive {
		renderInteraction(&buf)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: styles.Ribbon{}}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderContent(buf *bytes.Buffer, s styles.Style, l graph.Layout) {
	buf.WriteString(`  <g class="links">` + "\n")
	for _, link := range buildLinks(l) {
		s.RenderLink(buf, link)
	}
	buf.WriteString("  </g>\n")

	nodes := buildNodes(l)
	for i, layer := range l.Layers {
		fmt.Fprintf(buf, `  <g class="layer" data-depth="%d">`+"\n", layer.Depth)
		for _, n := range nodes[i] {
			s.RenderNode(buf, n)
		}
		for _, n := range nodes[i] {
			s.RenderText(buf, n)
		}
		buf.WriteString("  </g>\n")
	}
}

func renderInteraction(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", linkInteractionCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", linkInteractionJS)
}

func buildNodes(l graph.Layout) [][]styles.Node {
	out := make([][]styles.Node, len(l.Layers))
	for i, layer := range l.Layers {
		nodes := make([]styles.Node, 0, len(layer.Nodes))
		for _, n := range layer.Nodes {
			nodes = append(nodes, styles.Node{
				ID:    n.ID,
				Label: n.Name,
				Count: n.Count,
				X:     n.X, Y: n.Y,
				W: n.Width, H: n.Height,
				Padding: l.Options.NodePadding,
			})
		}
		out[i] = nodes
	}
	return out
}

func buildLinks(l graph.Layout) []styles.Link {
	links := make([]styles.Link, 0, len(l.Links))
	for _, link := range l.Links {
		links = append(links, styles.Link{
			FromID: link.Source, ToID: link.Target,
			FromLabel: link.SourceName, ToLabel: link.TargetName,
			Value:  link.Value,
			Path:   link.Path,
			Curve:  link.Curve,
			Stroke: link.Stroke,
		})
	}
	return links
}
