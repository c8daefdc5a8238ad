// Package nodelink renders flow layouts as node-link diagrams with Graphviz.
//
// The diagram keeps the mesh's structure: each layer is a rank=same column,
// nodes are labelled with their point name, and edge thickness follows the
// link's scaled value. It is useful when ribbons get crowded.
//
// # Usage
//
//	dot := nodelink.ToDOT(layout, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
