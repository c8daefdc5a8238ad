// Package styles defines visual styles for flow diagrams.
//
//   - [Style]: the interface every style implements
//   - [Ribbon]: filled bands whose height follows the flow (default)
//   - [Curve]: stroked centerlines whose width is the scaled link value
//
// Styles only write SVG fragments; the document frame and element order are
// owned by pkg/render/sink:
//
//	svg := sink.RenderSVG(layout, sink.WithStyle(styles.Curve{}))
package styles
