package mesh

import (
	"math"
	"strconv"
	"strings"
)

// LinkPosition holds the cut-points of a ribbon. X0 and X1 bound the source
// node's gutter. (Y0, Y3) is the band on the source's output edge and
// (Y1, Y2) the band on the target's input edge.
type LinkPosition struct {
	X0, X1         float64
	Y0, Y1, Y2, Y3 float64
}

// Link is a weighted edge from a node to a node one layer deeper.
type Link struct {
	Source    *Node
	Target    *Node
	Value     float64
	Curvature float64
	Position  LinkPosition
}

// calculatePosition derives the horizontal span from the source node.
func (l *Link) calculatePosition() {
	s := l.Source.Position
	l.Position.X0 = s.X + s.Width
	l.Position.X1 = s.X + s.Width + s.Gutter
}

// Path returns the closed ribbon outline of the link as SVG path data.
// The horizontal span is recomputed from the source node on every call.
func (l *Link) Path() string {
	l.calculatePosition()
	p := l.Position
	xc0, xc1 := controlPoints(p.X0, p.X1, l.Curvature)

	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, p.X0, p.Y0)
	b.WriteString(" C ")
	writePoint(&b, xc0, p.Y0)
	b.WriteByte(' ')
	writePoint(&b, xc1, p.Y1)
	b.WriteByte(' ')
	writePoint(&b, p.X1, p.Y1)
	b.WriteString(" L ")
	writePoint(&b, p.X1, p.Y2)
	b.WriteString(" C ")
	writePoint(&b, xc1, p.Y2)
	b.WriteByte(' ')
	writePoint(&b, xc0, p.Y3)
	b.WriteByte(' ')
	writePoint(&b, p.X0, p.Y3)
	b.WriteString(" Z")
	return b.String()
}

// CurvePath returns an open cubic curve from the vertical midpoint of the
// source's right edge to the vertical midpoint of the target's left edge.
func (l *Link) CurvePath() string {
	x0, y0, x1, y1 := l.CurveEnds()
	xc0, xc1 := controlPoints(x0, x1, l.Curvature)

	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, x0, y0)
	b.WriteString(" C ")
	writePoint(&b, xc0, y0)
	b.WriteByte(' ')
	writePoint(&b, xc1, y1)
	b.WriteByte(' ')
	writePoint(&b, x1, y1)
	return b.String()
}

// CurveEnds returns the endpoints used by [Link.CurvePath].
func (l *Link) CurveEnds() (x0, y0, x1, y1 float64) {
	s, t := l.Source.Position, l.Target.Position
	return s.X + s.Width, s.Y + s.Height/2, t.X, t.Y + t.Height/2
}

func controlPoints(x0, x1, c float64) (float64, float64) {
	return lerp(x0, x1, c), lerp(x0, x1, 1-c)
}

func lerp(a, b, t float64) float64 { return a + t*(b-a) }

func writePoint(b *strings.Builder, x, y float64) {
	b.WriteString(FormatNumber(x))
	b.WriteByte(',')
	b.WriteString(FormatNumber(y))
}

// FormatNumber renders v with at most four decimals and no trailing zeros.
func FormatNumber(v float64) string {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		r = 0 // normalizes -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
