package mesh

import (
	"cmp"
	"slices"

	errs "github.com/matzehuels/linearmesh/pkg/errors"
)

// LayerPosition is the origin of a layer's column.
type LayerPosition struct {
	X, Y float64
}

// Layer holds the nodes at one depth. Nodes are stored sparsely by point
// index; a separate list keeps them in layout order.
type Layer struct {
	Depth    int
	Position LayerPosition

	slots []*Node // indexed by point index, nil for holes
	order []*Node
}

func newLayer(depth int) *Layer {
	return &Layer{Depth: depth}
}

// AddNode registers n under the given point index. It fails if n is nil,
// the index is negative, or the slot is already taken.
func (l *Layer) AddNode(index int, n *Node) error {
	if n == nil {
		return errs.New(errs.ErrCodeInvalidNode, "layer %d: cannot add nil node at index %d", l.Depth, index)
	}
	if index < 0 {
		return errs.New(errs.ErrCodeInvalidNode, "layer %d: negative slot index %d", l.Depth, index)
	}
	if index < len(l.slots) && l.slots[index] != nil {
		return errs.New(errs.ErrCodeInvalidNode, "layer %d: slot %d already holds %q", l.Depth, index, l.slots[index].Name())
	}
	if index >= len(l.slots) {
		l.slots = append(l.slots, make([]*Node, index+1-len(l.slots))...)
	}
	l.slots[index] = n
	l.order = append(l.order, n)
	return nil
}

// Node returns the node stored under index, or nil.
func (l *Layer) Node(index int) *Node {
	if index < 0 || index >= len(l.slots) {
		return nil
	}
	return l.slots[index]
}

// RemoveNode removes n from the layer and returns it, or returns nil if n is
// not part of the layer. The slot it occupied becomes a hole.
func (l *Layer) RemoveNode(n *Node) *Node {
	i := slices.Index(l.order, n)
	if n == nil || i < 0 {
		return nil
	}
	l.order = slices.Delete(l.order, i, i+1)
	if j := slices.Index(l.slots, n); j >= 0 {
		l.slots[j] = nil
	}
	return n
}

// Nodes returns the present nodes in layout order.
func (l *Layer) Nodes() []*Node {
	return slices.Clone(l.order)
}

// Slots returns the sparse node storage indexed by point index. Holes are nil.
func (l *Layer) Slots() []*Node {
	return slices.Clone(l.slots)
}

// Len returns the number of present nodes.
func (l *Layer) Len() int { return len(l.order) }

func (l *Layer) sortByPoint() {
	slices.SortStableFunc(l.order, func(a, b *Node) int {
		return cmp.Compare(a.Point.Index, b.Point.Index)
	})
}
