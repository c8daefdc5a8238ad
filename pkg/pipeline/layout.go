package pipeline

import (
	"github.com/matzehuels/linearmesh/pkg/graph"
	"github.com/matzehuels/linearmesh/pkg/mesh"
)

// BuildMesh expands and positions the mesh for in with ov merged over the
// defaults.
func BuildMesh(in graph.Input, ov mesh.Overrides) (*mesh.Mesh, error) {
	return mesh.New(in.MeshInput(), ov)
}

// GenerateLayout builds the mesh and exports its geometry.
func GenerateLayout(in graph.Input, ov mesh.Overrides) (graph.Layout, error) {
	m, err := BuildMesh(in, ov)
	if err != nil {
		return graph.Layout{}, err
	}
	return graph.FromMesh(m), nil
}

// GenerateSnapshot builds the mesh and returns its structural snapshot.
func GenerateSnapshot(in graph.Input, ov mesh.Overrides) (mesh.Snapshot, error) {
	m, err := BuildMesh(in, ov)
	if err != nil {
		return mesh.Snapshot{}, err
	}
	return m.Snapshot(), nil
}
