package styles

import (
	"bytes"
	"fmt"
)

const (
	ribbonFill       = "#555"
	ribbonOpacity    = 0.45
	ribbonNodeFill   = "#f2f2f2"
	ribbonHeaderFill = "#2b2b2b"
	ribbonShadowID   = "drop-shadow"
)

// Ribbon draws every link as a filled band whose width follows the flow.
type Ribbon struct{}

func (Ribbon) Name() string { return NameRibbon }

func (Ribbon) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <filter id="%s" height="130%%" width="130%%">`+"\n", ribbonShadowID)
	buf.WriteString(`      <feGaussianBlur in="SourceAlpha" stdDeviation="2" result="blur"/>` + "\n")
	buf.WriteString(`      <feOffset in="blur" dx="3" dy="3" result="offsetBlur"/>` + "\n")
	buf.WriteString(`      <feComponentTransfer><feFuncA type="linear" slope="0.3"/></feComponentTransfer>` + "\n")
	buf.WriteString(`      <feMerge><feMergeNode/><feMergeNode in="SourceGraphic"/></feMerge>` + "\n")
	buf.WriteString("    </filter>\n")
	buf.WriteString("  </defs>\n")
}

func (Ribbon) RenderLink(buf *bytes.Buffer, l Link) {
	fmt.Fprintf(buf, `  <path class="link" data-from="%s" data-to="%s" d="%s" fill="%s" fill-opacity="%.2f"><title>%s</title></path>`+"\n",
		EscapeXML(l.FromID), EscapeXML(l.ToID), l.Path, ribbonFill, ribbonOpacity, EscapeXML(l.Title()))
}

func (Ribbon) RenderNode(buf *bytes.Buffer, n Node) {
	renderNodeRects(buf, n, ribbonNodeFill, ribbonHeaderFill, ribbonShadowID)
}

func (Ribbon) RenderText(buf *bytes.Buffer, n Node) {
	renderLabels(buf, n, "white", "#333")
}
