package mesh

import (
	"math"

	errs "github.com/matzehuels/linearmesh/pkg/errors"
)

// MaxDepth bounds the nesting of link descriptors.
const MaxDepth = 512

// Mesh is a layered flow layout. It owns its points, layers, nodes and links.
//
// Use [New] to build a positioned mesh. A Mesh is not safe for concurrent use.
type Mesh struct {
	Points  []*Point
	Layers  []*Layer // dense, indexed by depth
	Links   []*Link  // insertion order
	Options Options
	Scale   Scale

	input  Input
	nextID int
}

// New builds a mesh from in with ov merged over [DefaultOptions], then runs
// expansion, sizing and positioning. No mesh is returned on error.
func New(in Input, ov Overrides) (*Mesh, error) {
	opts := DefaultOptions().Merge(ov)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	m := &Mesh{
		Points:  make([]*Point, len(in.Points)),
		Options: opts,
		input:   in,
	}
	for i, p := range in.Points {
		m.Points[i] = &Point{Name: p.Name, Index: i}
	}

	if err := m.Expand(); err != nil {
		return nil, err
	}
	m.RecalculateNodeSizes()
	m.RecalculatePositions()
	return m, nil
}

// Expand rebuilds layers, nodes and links from the input. Descriptors are
// checked before anything is created, so a failed expansion leaves the mesh
// empty rather than half built.
func (m *Mesh) Expand() error {
	m.Layers, m.Links, m.nextID = nil, nil, 0

	if err := m.check(m.input.Links, 0); err != nil {
		return err
	}
	if err := m.expand(m.input.Links, 0); err != nil {
		m.Layers, m.Links = nil, nil
		return err
	}

	if m.Options.NodeOrder == OrderPoints {
		for _, l := range m.Layers {
			l.sortByPoint()
		}
	}
	return nil
}

func (m *Mesh) check(specs []LinkSpec, depth int) error {
	if specs != nil && depth >= MaxDepth {
		return errs.New(errs.ErrCodeInvalidInput, "links nested deeper than %d levels", MaxDepth)
	}
	for _, s := range specs {
		if s.Source < 0 || s.Source >= len(m.Points) {
			return errs.New(errs.ErrCodeInvalidReference, "source index %d out of range [0, %d)", s.Source, len(m.Points))
		}
		if s.Target < 0 || s.Target >= len(m.Points) {
			return errs.New(errs.ErrCodeInvalidReference, "target index %d out of range [0, %d)", s.Target, len(m.Points))
		}
		if s.Value < 0 || math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			return errs.New(errs.ErrCodeInvalidInput, "link %s -> %s: value must be a finite number >= 0, got %v",
				m.Points[s.Source].Name, m.Points[s.Target].Name, s.Value)
		}
		if err := m.check(s.Links, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// expand walks specs depth first. A non-nil specs slice claims the layers at
// depth and depth+1 even when it is empty, so an explicit empty nested list
// adds a trailing empty column.
func (m *Mesh) expand(specs []LinkSpec, depth int) error {
	if specs == nil {
		return nil
	}
	sourceLayer := m.ensureLayer(depth)
	targetLayer := m.ensureLayer(depth + 1)

	for _, s := range specs {
		src, err := m.resolve(sourceLayer, s.Source)
		if err != nil {
			return err
		}
		dst, err := m.resolve(targetLayer, s.Target)
		if err != nil {
			return err
		}

		link := &Link{Source: src, Target: dst, Value: s.Value, Curvature: m.Options.Curvature}
		m.Links = append(m.Links, link)
		src.addOutput(link)
		dst.addInput(link)

		if err := m.expand(s.Links, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mesh) ensureLayer(depth int) *Layer {
	for len(m.Layers) <= depth {
		m.Layers = append(m.Layers, newLayer(len(m.Layers)))
	}
	return m.Layers[depth]
}

// resolve returns the node for point index in layer, creating it on first use.
func (m *Mesh) resolve(layer *Layer, index int) (*Node, error) {
	if n := layer.Node(index); n != nil {
		return n, nil
	}
	m.nextID++
	n := &Node{ID: m.nextID, Point: m.Points[index], Depth: layer.Depth}
	if err := layer.AddNode(index, n); err != nil {
		return nil, err
	}
	return n, nil
}

// RecalculateNodeSizes builds the height scale and fits the column width and
// horizontal spacing into Options.ContainerWidth. The results are written to
// Options.NodeWidth and Options.NodeSpacingX.
func (m *Mesh) RecalculateNodeSizes() {
	o := &m.Options
	m.Scale = NewScale(m.MaxCount(), o.MaxNodeHeight)

	layerCount := float64(len(m.Layers))
	nodeWidth := o.NodeWidth
	if o.FitWidth || nodeWidth <= 0 {
		nodeWidth = o.ContainerWidth / max(1, 2*layerCount-1)
	}
	nodeWidth = min(o.MaxNodeWidth, max(o.MinNodeWidth, nodeWidth))

	spacing := nodeWidth
	if o.FitWidth {
		for rowWidth(nodeWidth, spacing, layerCount) > o.ContainerWidth && spacing > o.MinNodeSpacingX {
			spacing = max(o.MinNodeSpacingX, spacing-spacingStep)
		}
	} else if o.NodeSpacingX > 0 {
		spacing = o.NodeSpacingX
	}

	o.NodeWidth = nodeWidth
	o.NodeSpacingX = max(o.MinNodeSpacingX, spacing)
}

func rowWidth(nodeWidth, spacing, layerCount float64) float64 {
	return nodeWidth*layerCount + spacing*(layerCount-1)
}

// RecalculatePositions positions every layer and node, then recomputes the
// link bands of each node.
func (m *Mesh) RecalculatePositions() {
	o := m.Options
	for _, layer := range m.Layers {
		layer.Position = LayerPosition{X: float64(layer.Depth) * (o.NodeWidth + o.NodeSpacingX)}

		y := o.NodeSpacingY
		var prev *Node
		for _, n := range layer.order {
			if prev != nil {
				y += prev.Position.Height + o.NodeSpacingY
			}
			n.Position = NodePosition{
				X:      layer.Position.X,
				Y:      y,
				Width:  o.NodeWidth,
				Height: max(o.MinNodeHeight, m.Scale.Apply(n.Count())),
				Gutter: o.NodeSpacingX,
			}
			n.RepositionLinks()
			prev = n
		}
	}
	for _, l := range m.Links {
		l.calculatePosition()
	}
}

// MaxCount returns the largest node count in the mesh.
func (m *Mesh) MaxCount() float64 {
	var maxCount float64
	for _, layer := range m.Layers {
		for _, n := range layer.order {
			maxCount = max(maxCount, n.Count())
		}
	}
	return maxCount
}

// StrokeWidth returns the stroke width of l in curve mode.
func (m *Mesh) StrokeWidth(l *Link) float64 {
	return m.Scale.Apply(l.Value)
}

// Layer returns the layer at depth, or nil.
func (m *Mesh) Layer(depth int) *Layer {
	if depth < 0 || depth >= len(m.Layers) {
		return nil
	}
	return m.Layers[depth]
}

// Node returns the node of point index at depth, or nil.
func (m *Mesh) Node(depth, index int) *Node {
	if l := m.Layer(depth); l != nil {
		return l.Node(index)
	}
	return nil
}

// Nodes returns every present node, layer by layer in layout order.
func (m *Mesh) Nodes() []*Node {
	var out []*Node
	for _, l := range m.Layers {
		out = append(out, l.order...)
	}
	return out
}

// Bounds returns the extent of the positioned mesh: the right edge of the
// deepest column and the bottom of the tallest stack plus one NodeSpacingY.
func (m *Mesh) Bounds() (width, height float64) {
	if len(m.Layers) == 0 {
		return 0, 0
	}
	last := m.Layers[len(m.Layers)-1]
	width = last.Position.X + m.Options.NodeWidth

	for _, n := range m.Nodes() {
		height = max(height, n.Position.Y+n.Position.Height)
	}
	if height > 0 {
		height += m.Options.NodeSpacingY
	}
	return width, height
}
