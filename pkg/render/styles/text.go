package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
)

// HeaderHeight is the height of the band drawn above every node.
const HeaderHeight = 25.0

const (
	labelFontSize = 13.0
	countFontSize = 20.0
	fontCharWidth = 0.55
)

// TruncateLabel shortens a label so it fits inside a node of width w with
// padding on both sides.
func TruncateLabel(label string, w, padding float64) string {
	avail := w - 2*padding
	maxChars := int(avail / (labelFontSize * fontCharWidth))
	if maxChars < 3 {
		maxChars = 3
	}
	r := []rune(label)
	if len(r) <= maxChars {
		return label
	}
	return string(r[:maxChars-2]) + ".."
}

// FormatCount renders a node count without trailing zeros.
func FormatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// renderLabels writes the name label in the header band and the count label
// inside the node body.
func renderLabels(buf *bytes.Buffer, n Node, nameColor, countColor string) {
	fmt.Fprintf(buf, `  <text class="node-name" data-node="%s" x="%.2f" y="%.2f" font-family="Helvetica, Arial, sans-serif" font-size="%.0f" fill="%s">%s</text>`+"\n",
		EscapeXML(n.ID), n.X+n.Padding, n.Y-HeaderHeight/4, labelFontSize, nameColor, EscapeXML(TruncateLabel(n.Label, n.W, n.Padding)))
	fmt.Fprintf(buf, `  <text class="node-count" data-node="%s" x="%.2f" y="%.2f" font-family="Helvetica, Arial, sans-serif" font-size="%.0f" fill="%s">%s</text>`+"\n",
		EscapeXML(n.ID), n.X+n.Padding, n.Y+n.Padding*5, countFontSize, countColor, FormatCount(n.Count))
}

// renderNodeRects writes the node body and the header band above it.
func renderNodeRects(buf *bytes.Buffer, n Node, bodyFill, headerFill, filter string) {
	attr := ""
	if filter != "" {
		attr = fmt.Sprintf(` filter="url(#%s)"`, filter)
	}
	fmt.Fprintf(buf, `  <rect id="node-%s" class="node-bg" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"%s/>`+"\n",
		EscapeXML(n.ID), n.X, n.Y, n.W, n.H, bodyFill, attr)
	fmt.Fprintf(buf, `  <rect class="node-header" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
		n.X, n.Y-HeaderHeight, n.W, HeaderHeight, headerFill)
}
