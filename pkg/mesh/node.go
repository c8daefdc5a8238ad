package mesh

// NodePosition is the rectangle of a node. Gutter is the horizontal space to
// the right of the node reserved for its outgoing ribbons.
type NodePosition struct {
	X, Y          float64
	Width, Height float64
	Gutter        float64
}

// Node is one occurrence of a [Point] at a given depth.
//
// ID is a per-mesh counter useful for debugging; it carries no layout meaning.
type Node struct {
	ID       int
	Point    *Point
	Depth    int
	Inputs   []*Link
	Outputs  []*Link
	Position NodePosition
}

// Name returns the name of the node's point.
func (n *Node) Name() string { return n.Point.Name }

// Count returns the node's aggregate flow: the sum of its input values, or
// the sum of its output values when it has no inputs. A node without links
// counts 0.
func (n *Node) Count() float64 {
	links := n.Inputs
	if len(links) == 0 {
		links = n.Outputs
	}
	var sum float64
	for _, l := range links {
		sum += l.Value
	}
	return sum
}

// RepositionLinks splits the node's height into one band per link, stacked in
// link order. Inputs receive (Y1, Y2) and outputs (Y0, Y3); the two sides use
// independent offsets.
func (n *Node) RepositionLinks() {
	count := n.Count()
	p := n.Position

	offset := 0.0
	for _, l := range n.Inputs {
		cover := band(l.Value, count, p.Height)
		l.Position.Y1 = p.Y + offset
		l.Position.Y2 = p.Y + offset + cover
		offset += cover
	}

	offset = 0
	for _, l := range n.Outputs {
		cover := band(l.Value, count, p.Height)
		l.Position.Y0 = p.Y + offset
		l.Position.Y3 = p.Y + offset + cover
		offset += cover
	}
}

func (n *Node) addInput(l *Link)  { n.Inputs = append(n.Inputs, l) }
func (n *Node) addOutput(l *Link) { n.Outputs = append(n.Outputs, l) }

// band returns the share of height covered by value. A zero count yields a
// zero band.
func band(value, count, height float64) float64 {
	if count == 0 {
		return 0
	}
	return value / count * height
}
