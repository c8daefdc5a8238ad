package styles

import "bytes"

// Style defines the visual appearance of a flow diagram.
// Implementations control how links, nodes and labels are drawn.
type Style interface {
	// Name returns the identifier used on the command line and in the API.
	Name() string
	// RenderDefs writes SVG <defs> content (filters, gradients).
	RenderDefs(buf *bytes.Buffer)
	// RenderLink writes the SVG for a single link.
	RenderLink(buf *bytes.Buffer, l Link)
	// RenderNode writes the SVG for a node body and its header band.
	RenderNode(buf *bytes.Buffer, n Node)
	// RenderText writes the SVG for a node's name and count labels.
	RenderText(buf *bytes.Buffer, n Node)
}

// Node contains all data needed to render a single node.
type Node struct {
	ID         string  // Layout node ID
	Label      string  // Point name
	Count      float64 // Aggregate flow
	X, Y, W, H float64 // Body rectangle
	Padding    float64 // Label inset
}

// Link contains all data needed to render a single link.
type Link struct {
	FromID, ToID       string
	FromLabel, ToLabel string
	Value              float64
	Path               string  // Closed ribbon outline
	Curve              string  // Centerline curve
	Stroke             float64 // Centerline stroke width
}

// Title returns the tooltip text of the link.
func (l Link) Title() string { return l.FromLabel + " to " + l.ToLabel }

// Style names.
const (
	NameRibbon = "ribbon"
	NameCurve  = "curve"
)

// Names lists the available styles.
var Names = []string{NameRibbon, NameCurve}

// ByName returns the style registered under name. An empty name selects
// the ribbon style.
func ByName(name string) (Style, bool) {
	switch name {
	case NameRibbon, "":
		return Ribbon{}, true
	case NameCurve:
		return Curve{}, true
	}
	return nil, false
}
