// Package pkg holds the libraries behind the linearmesh CLI and server.
//
// # Overview
//
// Linearmesh lays out weighted flows as layered Sankey diagrams. Input is a
// catalogue of named points and a tree of link descriptors; every depth of
// the tree becomes a column and every point visited at that depth a node.
//
// # Architecture
//
//	flow data (JSON, YAML, TOML)
//	         ↓
//	    [graph] decode and validate
//	         ↓
//	    [mesh] expand, size and position
//	         ↓
//	    [graph] serializable layout
//	         ↓
//	    [render] SVG, PNG, JSON, DOT
//
// [pipeline] runs these stages behind a [cache] and is shared by the CLI and
// the HTTP API, so both cache the same way.
//
// # Quick Start
//
//	in, err := graph.ReadInputFile("flows.yaml")
//	if err != nil {
//	    return err
//	}
//	l, err := pipeline.GenerateLayout(in, mesh.Overrides{})
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(l)
//
// # Main Packages
//
// [mesh] is the layout engine. It has no dependencies on the rest of the
// module and can be used on its own.
//
// [graph] defines the wire formats: flow input, layouts and snapshots.
//
// [pipeline] orchestrates load → layout → render with caching.
//
// [cache] stores layouts and artifacts in a directory, Redis or MongoDB.
//
// [config] loads linearmesh.yaml and .env files.
//
// [observability] exposes hooks for metrics, with a Prometheus implementation.
//
// [errors] defines error codes shared by the CLI and the API.
//
// [mesh]: https://pkg.go.dev/github.com/matzehuels/linearmesh/pkg/mesh
// [graph]: https://pkg.go.dev/github.com/matzehuels/linearmesh/pkg/graph
// [render]: https://pkg.go.dev/github.com/matzehuels/linearmesh/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/linearmesh/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/linearmesh/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/linearmesh/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/linearmesh/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/linearmesh/pkg/errors
package pkg
