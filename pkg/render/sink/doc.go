// Package sink provides output format renderers for flow layouts.
//
// A "sink" transforms a positioned [graph.Layout] into a final output:
//
//   - SVG: [RenderSVG], styled by a [styles.Style] with optional hover highlighting
//   - PNG: [RenderPNG], rasterized natively with golang.org/x/image
//   - JSON: [RenderJSON], the layout plus the style it was rendered with
//
// Basic usage:
//
//	svg := sink.RenderSVG(layout,
//	    sink.WithStyle(styles.Curve{}),
//	    sink.WithInteraction(),
//	)
//	png, err := sink.RenderPNG(layout, sink.WithScale(2), sink.WithPNGStyle("curve"))
//
// Every link carries a <title> naming its endpoints ("Hall to Shop") so
// viewers show a tooltip on hover without any script.
package sink
