// Package render groups the output stages of the layout pipeline.
//
// Renderers never compute geometry. They consume a positioned
// [graph.Layout] and draw what is already there, so a cached layout can be
// rendered into any format without touching the mesh engine again.
//
// Subpackages:
//
//   - [sink]: Sankey output as SVG, PNG (rasterized in-process) and JSON
//   - [styles]: visual styles (ribbon, curve) shared by the sinks
//   - [nodelink]: the layout as a Graphviz node-link diagram (DOT, SVG, PNG)
//
// Typical use:
//
//	style, _ := styles.ByName("curve")
//	svg := sink.RenderSVG(l, sink.WithStyle(style))
//	png, err := sink.RenderPNG(l, sink.WithScale(2))
//	dot := nodelink.ToDOT(l, nodelink.Options{Detailed: true})
//
// [graph.Layout]: github.com/matzehuels/linearmesh/pkg/graph.Layout
// [sink]: github.com/matzehuels/linearmesh/pkg/render/sink
// [styles]: github.com/matzehuels/linearmesh/pkg/render/styles
// [nodelink]: github.com/matzehuels/linearmesh/pkg/render/nodelink
package render
