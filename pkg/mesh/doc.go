// Package mesh computes layered flow-diagram layouts.
//
// A mesh is built from a catalogue of named points and a tree of weighted,
// directed link descriptors. Every (point, depth) pair that appears in the
// tree becomes one [Node]; nodes sharing a depth form a [Layer]. The engine
// then sizes every node by its aggregate flow and derives ribbon geometry for
// each [Link] so renderers only need to draw what is already positioned.
//
// # Construction
//
// [New] runs three phases in strict order:
//
//  1. [Mesh.Expand] walks the link tree depth-first, creating layers, nodes
//     and links on demand. Nested links continue a chain one layer deeper.
//  2. [Mesh.RecalculateNodeSizes] builds the value-to-height [Scale] and fits
//     the column width and horizontal spacing into the container width.
//  3. [Mesh.RecalculatePositions] assigns coordinates to layers and nodes and
//     splits every node edge into one band per link.
//
// Changing options after construction requires running phases 2 and 3 again;
// there is no partial invalidation.
//
// # Counts
//
// A node's count is the sum of its input values, or the sum of its output
// values when it has no inputs. Counts are never cached. Interior nodes are
// not required to balance inputs against outputs.
//
// # Layers
//
// Layers store nodes sparsely by point index so link descriptors resolve in
// constant time. [Layer.Nodes] returns only present nodes in layout order;
// [Layer.Slots] exposes the sparse view with nil holes.
//
// # Geometry
//
// [Link.Path] returns a closed ribbon spanning the source node's gutter, and
// [Link.CurvePath] a single centerline curve for stroke-based styles. Both are
// recomputed from the current node positions on every call.
//
// # Concurrency
//
// A Mesh is not safe for concurrent use. Distinct meshes share no state.
package mesh
