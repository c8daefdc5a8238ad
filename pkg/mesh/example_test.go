package mesh_test

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/linearmesh/pkg/mesh"
)

func ExampleNew() {
	m, err := mesh.New(mesh.Input{
		Points: []mesh.PointSpec{{Name: "Lobby"}, {Name: "Gallery"}},
		Links:  []mesh.LinkSpec{{Source: 0, Target: 1, Value: 10}},
	}, mesh.Overrides{})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	for _, layer := range m.Layers {
		for _, n := range layer.Nodes() {
			fmt.Printf("layer %d x=%v: %s count=%v y=%v h=%v\n",
				layer.Depth, layer.Position.X, n.Name(), n.Count(), n.Position.Y, n.Position.Height)
		}
	}
	fmt.Println(m.Links[0].Path())
	// Output:
	// layer 0 x=0: Lobby count=10 y=50 h=250
	// layer 1 x=400: Gallery count=10 y=50 h=250
	// M 200,50 C 270,50 330,50 400,50 L 400,300 C 330,300 270,300 200,300 Z
}

func ExampleMesh_Snapshot() {
	m, _ := mesh.New(mesh.Input{
		Points: []mesh.PointSpec{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		Links: []mesh.LinkSpec{
			{Source: 0, Target: 2, Value: 4},
			{Source: 1, Target: 2, Value: 6},
		},
	}, mesh.Overrides{})

	data, _ := json.Marshal(m.Snapshot().Layers[1])
	fmt.Println(string(data))
	// Output:
	// [{"name":"C","value":10,"inputs":[{"source":"A","target":"C","value":4},{"source":"B","target":"C","value":6}],"outputs":[]}]
}

func ExampleMesh_RecalculateNodeSizes() {
	in := mesh.Input{Points: []mesh.PointSpec{{Name: "A"}, {Name: "B"}}}
	in.Links = []mesh.LinkSpec{{Source: 0, Target: 1, Value: 1}}

	m, _ := mesh.New(in, mesh.Overrides{})
	fmt.Println(m.Options.NodeWidth, m.Options.NodeSpacingX)

	// Narrow the container and rerun sizing and positioning.
	m.Options.ContainerWidth = 300
	m.RecalculateNodeSizes()
	m.RecalculatePositions()
	fmt.Println(m.Options.NodeWidth, m.Options.NodeSpacingX)
	// Output:
	// 200 200
	// 110 80
}
