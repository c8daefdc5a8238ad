package graph

import (
	"fmt"

	"github.com/matzehuels/linearmesh/pkg/mesh"
)

// =============================================================================
// Layout - Positioned Flow Diagram
// =============================================================================

// Layout is the serialized form of a positioned mesh. It carries everything
// a renderer needs, so layouts can be cached and rendered without the input.
type Layout struct {
	Width   float64      `json:"width" bson:"width"`
	Height  float64      `json:"height" bson:"height"`
	Options mesh.Options `json:"options" bson:"options"`
	Scale   mesh.Scale   `json:"scale" bson:"scale"`
	Layers  []Layer      `json:"layers" bson:"layers"`
	Links   []Link       `json:"links" bson:"links"`
}

// Layer is one column of the layout.
type Layer struct {
	Depth int     `json:"depth" bson:"depth"`
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
	Nodes []Node  `json:"nodes" bson:"nodes"`
}

// Node is a positioned point occurrence.
type Node struct {
	ID     string  `json:"id" bson:"id"` // "<depth>:<point index>"
	Name   string  `json:"name" bson:"name"`
	Index  int     `json:"index" bson:"index"`
	Depth  int     `json:"depth" bson:"depth"`
	Count  float64 `json:"count" bson:"count"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Gutter float64 `json:"gutter" bson:"gutter"`
}

// CenterY returns the vertical midpoint of the node.
func (n Node) CenterY() float64 { return n.Y + n.Height/2 }

// Link is a link with its cut-points and precomputed geometry.
type Link struct {
	Source     string  `json:"source" bson:"source"`
	Target     string  `json:"target" bson:"target"`
	SourceName string  `json:"source_name" bson:"source_name"`
	TargetName string  `json:"target_name" bson:"target_name"`
	Value      float64 `json:"value" bson:"value"`
	X0         float64 `json:"x0" bson:"x0"`
	X1         float64 `json:"x1" bson:"x1"`
	Y0         float64 `json:"y0" bson:"y0"`
	Y1         float64 `json:"y1" bson:"y1"`
	Y2         float64 `json:"y2" bson:"y2"`
	Y3         float64 `json:"y3" bson:"y3"`
	Path       string  `json:"path" bson:"path"`
	Curve      string  `json:"curve" bson:"curve"`
	Stroke     float64 `json:"stroke" bson:"stroke"`
}

// NodeID returns the layout identifier of the node of point index at depth.
func NodeID(depth, index int) string {
	return fmt.Sprintf("%d:%d", depth, index)
}

// FromMesh serializes a positioned mesh.
func FromMesh(m *mesh.Mesh) Layout {
	w, h := m.Bounds()
	l := Layout{
		Width:   w,
		Height:  h,
		Options: m.Options,
		Scale:   m.Scale,
		Layers:  make([]Layer, 0, len(m.Layers)),
		Links:   make([]Link, 0, len(m.Links)),
	}

	for _, layer := range m.Layers {
		nodes := layer.Nodes()
		out := Layer{Depth: layer.Depth, X: layer.Position.X, Y: layer.Position.Y, Nodes: make([]Node, 0, len(nodes))}
		for _, n := range nodes {
			p := n.Position
			out.Nodes = append(out.Nodes, Node{
				ID:    NodeID(n.Depth, n.Point.Index),
				Name:  n.Name(),
				Index: n.Point.Index,
				Depth: n.Depth,
				Count: n.Count(),
				X:     p.X, Y: p.Y,
				Width: p.Width, Height: p.Height,
				Gutter: p.Gutter,
			})
		}
		l.Layers = append(l.Layers, out)
	}

	for _, link := range m.Links {
		path := link.Path()
		p := link.Position
		l.Links = append(l.Links, Link{
			Source:     NodeID(link.Source.Depth, link.Source.Point.Index),
			Target:     NodeID(link.Target.Depth, link.Target.Point.Index),
			SourceName: link.Source.Name(),
			TargetName: link.Target.Name(),
			Value:      link.Value,
			X0:         p.X0, X1: p.X1,
			Y0: p.Y0, Y1: p.Y1, Y2: p.Y2, Y3: p.Y3,
			Path:   path,
			Curve:  link.CurvePath(),
			Stroke: m.StrokeWidth(link),
		})
	}
	return l
}

// Nodes returns every node of the layout, layer by layer.
func (l Layout) Nodes() []Node {
	var out []Node
	for _, layer := range l.Layers {
		out = append(out, layer.Nodes...)
	}
	return out
}

// NodeIndex maps node IDs to nodes.
func (l Layout) NodeIndex() map[string]Node {
	idx := make(map[string]Node)
	for _, layer := range l.Layers {
		for _, n := range layer.Nodes {
			idx[n.ID] = n
		}
	}
	return idx
}

// NodeCount returns the number of nodes in the layout.
func (l Layout) NodeCount() int {
	var n int
	for _, layer := range l.Layers {
		n += len(layer.Nodes)
	}
	return n
}
