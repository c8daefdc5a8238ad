// Package graph provides the wire formats of linearmesh: flow data going in
// and positioned layouts coming out.
//
// # Architecture
//
// The package sits at the serialization boundary around the layout engine:
//
//   - [Input]: flow data as stored in JSON, YAML or TOML files
//   - pkg/mesh.Mesh: the in-memory layout (positions, counts, links)
//   - [Layout]: the positioned mesh as JSON for renderers, caches and the API
//
// Use [Input.MeshInput] and [FromMesh] to convert between them.
//
// # Input Format
//
// Points are referenced by their position in the catalogue. Nested links
// continue a chain one layer deeper:
//
//	{
//	  "points": [{"name": "Entrance"}, {"name": "Hall"}, {"name": "Shop"}],
//	  "links": [
//	    {"source": 0, "target": 1, "value": 120,
//	     "links": [{"source": 1, "target": 2, "value": 80}]}
//	  ]
//	}
//
// An optional "options" object carries mesh overrides next to the data.
//
// Common operations:
//
//	in, _ := graph.ReadInputFile("visits.yaml")   // File → Input
//	err := in.Validate()                          // names, references, values
//	m, _ := mesh.New(in.MeshInput(), in.Overrides())
//
// # Layout Serialization
//
//	layout := graph.FromMesh(m)
//	graph.WriteLayoutFile(layout, "visits.layout.json")
//	layout, _ = graph.ReadLayoutFile("visits.layout.json")
//
// Node IDs have the form "<depth>:<point index>" and are unique per layout.
//
// # Concurrency
//
// All functions are safe for concurrent use on distinct values.
package graph
