package styles

import (
	"bytes"
	"fmt"
)

const (
	curveStroke     = "#4a6fa5"
	curveOpacity    = 0.55
	curveMinStroke  = 1.0
	curveNodeFill   = "white"
	curveHeaderFill = "#4a6fa5"
)

// Curve draws every link as a single stroked centerline whose stroke width
// is the scaled link value.
type Curve struct{}

func (Curve) Name() string { return NameCurve }

func (Curve) RenderDefs(buf *bytes.Buffer) {}

func (Curve) RenderLink(buf *bytes.Buffer, l Link) {
	fmt.Fprintf(buf, `  <path class="link" data-from="%s" data-to="%s" d="%s" fill="none" stroke="%s" stroke-width="%.2f" stroke-opacity="%.2f"><title>%s</title></path>`+"\n",
		EscapeXML(l.FromID), EscapeXML(l.ToID), l.Curve, curveStroke, max(curveMinStroke, l.Stroke), curveOpacity, EscapeXML(l.Title()))
}

func (Curve) RenderNode(buf *bytes.Buffer, n Node) {
	fmt.Fprintf(buf, `  <rect id="node-%s" class="node-bg" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s"/>`+"\n",
		EscapeXML(n.ID), n.X, n.Y, n.W, n.H, curveNodeFill, curveHeaderFill)
	fmt.Fprintf(buf, `  <rect class="node-header" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
		n.X, n.Y-HeaderHeight, n.W, HeaderHeight, curveHeaderFill)
}

func (Curve) RenderText(buf *bytes.Buffer, n Node) {
	renderLabels(buf, n, "white", curveHeaderFill)
}
