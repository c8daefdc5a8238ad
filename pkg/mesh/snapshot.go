package mesh

// Snapshot is a plain nested view of a mesh: one entry per present node,
// grouped by layer in layout order.
type Snapshot struct {
	Layers [][]NodeSnapshot `json:"layers"`
}

// NodeSnapshot describes a node by name with its count as Value.
type NodeSnapshot struct {
	Name    string         `json:"name"`
	Value   float64        `json:"value"`
	Inputs  []LinkSnapshot `json:"inputs"`
	Outputs []LinkSnapshot `json:"outputs"`
}

// LinkSnapshot names the endpoints of a link.
type LinkSnapshot struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

// Snapshot returns the plain nested structure of m.
func (m *Mesh) Snapshot() Snapshot {
	s := Snapshot{Layers: make([][]NodeSnapshot, 0, len(m.Layers))}
	for _, layer := range m.Layers {
		nodes := make([]NodeSnapshot, 0, layer.Len())
		for _, n := range layer.order {
			nodes = append(nodes, NodeSnapshot{
				Name:    n.Name(),
				Value:   n.Count(),
				Inputs:  snapshotLinks(n.Inputs),
				Outputs: snapshotLinks(n.Outputs),
			})
		}
		s.Layers = append(s.Layers, nodes)
	}
	return s
}

func snapshotLinks(links []*Link) []LinkSnapshot {
	out := make([]LinkSnapshot, 0, len(links))
	for _, l := range links {
		out = append(out, LinkSnapshot{Source: l.Source.Name(), Target: l.Target.Name(), Value: l.Value})
	}
	return out
}

// Sum returns the total value of links.
func Sum(links []LinkSnapshot) float64 {
	var sum float64
	for _, l := range links {
		sum += l.Value
	}
	return sum
}

// Count recomputes a node's count from its snapshot links using the same
// rule as [Node.Count].
func (n NodeSnapshot) Count() float64 {
	if len(n.Inputs) > 0 {
		return Sum(n.Inputs)
	}
	return Sum(n.Outputs)
}
