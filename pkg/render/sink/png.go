package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	errs "github.com/matzehuels/linearmesh/pkg/errors"
	"github.com/matzehuels/linearmesh/pkg/graph"
	"github.com/matzehuels/linearmesh/pkg/render/styles"
)

const (
	supersample  = 2
	maxPixels    = 64 << 20
	curveSamples = 48
	labelPt      = 13.0
	countPt      = 20.0
)

var (
	colorBackground = color.RGBA{255, 255, 255, 255}
	colorRibbon     = color.NRGBA{0x55, 0x55, 0x55, 115}
	colorCurve      = color.NRGBA{0x4a, 0x6f, 0xa5, 140}
	colorNodeBody   = color.RGBA{0xf2, 0xf2, 0xf2, 255}
	colorCurveBody  = color.RGBA{255, 255, 255, 255}
	colorHeader     = color.RGBA{0x2b, 0x2b, 0x2b, 255}
	colorCurveHead  = color.RGBA{0x4a, 0x6f, 0xa5, 255}
	colorCount      = color.RGBA{0x33, 0x33, 0x33, 255}
)

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
	style string
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGStyle selects the link drawing mode by style name.
func WithPNGStyle(name string) PNGOption {
	return func(r *pngRenderer) { r.style = name }
}

// RenderPNG rasterizes the layout directly, without an SVG round trip.
// The image is drawn at twice the requested scale and downsampled.
func RenderPNG(l graph.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, style: styles.NameRibbon}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, errs.New(errs.ErrCodeInvalidOptions, "png scale must be positive, got %v", r.scale)
	}
	if _, ok := styles.ByName(r.style); !ok {
		return nil, errs.New(errs.ErrCodeInvalidStyle, "unknown style %q", r.style)
	}
	// An empty mesh still yields an image, at least one pixel on each side.
	k := r.scale * supersample
	w, h := pixels(l.Width, k), pixels(l.Height, k)
	if w*h > maxPixels {
		return nil, errs.New(errs.ErrCodeInvalidOptions, "png of %dx%d pixels is too large; lower the scale", w, h)
	}

	large := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(large, large.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	c, err := newCanvas(large, k)
	if err != nil {
		return nil, err
	}
	defer c.close()

	if r.style == styles.NameCurve {
		c.drawCurves(l)
	} else {
		c.drawRibbons(l)
	}
	c.drawNodes(l, r.style == styles.NameCurve)

	final := image.NewRGBA(image.Rect(0, 0, pixels(l.Width, r.scale), pixels(l.Height, r.scale)))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, final); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// canvas draws layout coordinates onto an image scaled by k.
type canvas struct {
	img   *image.RGBA
	k     float64
	label font.Face
	count font.Face
}

func newCanvas(img *image.RGBA, k float64) (*canvas, error) {
	fnt, err := goRegular()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	label, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: labelPt * k, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("label face: %w", err)
	}
	count, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: countPt * k, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		label.Close()
		return nil, fmt.Errorf("count face: %w", err)
	}
	return &canvas{img: img, k: k, label: label, count: count}, nil
}

func (c *canvas) close() {
	c.label.Close()
	c.count.Close()
}

func (c *canvas) rasterizer() *vector.Rasterizer {
	b := c.img.Bounds()
	return vector.NewRasterizer(b.Dx(), b.Dy())
}

func (c *canvas) pt(x, y float64) (float32, float32) {
	return float32(x * c.k), float32(y * c.k)
}

func (c *canvas) fill(z *vector.Rasterizer, col color.Color) {
	z.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

// drawRibbons fills every link band with the same outline as the SVG path.
func (c *canvas) drawRibbons(l graph.Layout) {
	curvature := l.Options.Curvature
	for _, link := range l.Links {
		xc0 := link.X0 + curvature*(link.X1-link.X0)
		xc1 := link.X0 + (1-curvature)*(link.X1-link.X0)

		z := c.rasterizer()
		z.MoveTo(c.pt(link.X0, link.Y0))
		cubeTo(z, c, xc0, link.Y0, xc1, link.Y1, link.X1, link.Y1)
		z.LineTo(c.pt(link.X1, link.Y2))
		cubeTo(z, c, xc1, link.Y2, xc0, link.Y3, link.X0, link.Y3)
		z.ClosePath()
		c.fill(z, colorRibbon)
	}
}

func cubeTo(z *vector.Rasterizer, c *canvas, bx, by, cx, cy, dx, dy float64) {
	x1, y1 := c.pt(bx, by)
	x2, y2 := c.pt(cx, cy)
	x3, y3 := c.pt(dx, dy)
	z.CubeTo(x1, y1, x2, y2, x3, y3)
}

// drawCurves strokes every link centerline by filling the polygon swept by
// the curve's normals.
func (c *canvas) drawCurves(l graph.Layout) {
	idx := l.NodeIndex()
	curvature := l.Options.Curvature
	for _, link := range l.Links {
		s, okS := idx[link.Source]
		t, okT := idx[link.Target]
		if !okS || !okT {
			continue
		}
		x0, y0 := s.X+s.Width, s.CenterY()
		x1, y1 := t.X, t.CenterY()
		xc0 := x0 + curvature*(x1-x0)
		xc1 := x0 + (1-curvature)*(x1-x0)
		half := max(1, link.Stroke) / 2

		left := make([][2]float64, 0, curveSamples+1)
		right := make([][2]float64, 0, curveSamples+1)
		for i := 0; i <= curveSamples; i++ {
			u := float64(i) / curveSamples
			px, py := cubic(x0, xc0, xc1, x1, u), cubic(y0, y0, y1, y1, u)
			dx, dy := cubicDeriv(x0, xc0, xc1, x1, u), cubicDeriv(y0, y0, y1, y1, u)
			n := math.Hypot(dx, dy)
			if n == 0 {
				dx, dy, n = 1, 0, 1
			}
			nx, ny := -dy/n*half, dx/n*half
			left = append(left, [2]float64{px + nx, py + ny})
			right = append(right, [2]float64{px - nx, py - ny})
		}

		z := c.rasterizer()
		z.MoveTo(c.pt(left[0][0], left[0][1]))
		for _, p := range left[1:] {
			z.LineTo(c.pt(p[0], p[1]))
		}
		for i := len(right) - 1; i >= 0; i-- {
			z.LineTo(c.pt(right[i][0], right[i][1]))
		}
		z.ClosePath()
		c.fill(z, colorCurve)
	}
}

func cubic(p0, p1, p2, p3, t float64) float64 {
	u := 1 - t
	return u*u*u*p0 + 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t*p3
}

func cubicDeriv(p0, p1, p2, p3, t float64) float64 {
	u := 1 - t
	return 3*u*u*(p1-p0) + 6*u*t*(p2-p1) + 3*t*t*(p3-p2)
}

func (c *canvas) drawNodes(l graph.Layout, curve bool) {
	body, head := colorNodeBody, colorHeader
	if curve {
		body, head = colorCurveBody, colorCurveHead
	}
	pad := l.Options.NodePadding
	for _, n := range l.Nodes() {
		c.rect(n.X, n.Y, n.Width, n.Height, body)
		c.rect(n.X, n.Y-styles.HeaderHeight, n.Width, styles.HeaderHeight, head)

		name := styles.TruncateLabel(n.Name, n.Width, pad)
		c.text(c.label, n.X+pad, n.Y-styles.HeaderHeight/4, name, color.White)
		c.text(c.count, n.X+pad, n.Y+pad*5, styles.FormatCount(n.Count), colorCount)
	}
}

func (c *canvas) rect(x, y, w, h float64, col color.Color) {
	r := image.Rect(
		int(math.Round(x*c.k)), int(math.Round(y*c.k)),
		int(math.Round((x+w)*c.k)), int(math.Round((y+h)*c.k)),
	)
	draw.Draw(c.img, r.Intersect(c.img.Bounds()), image.NewUniform(col), image.Point{}, draw.Over)
}

// text draws s with its baseline at (x, y) in layout coordinates.
func (c *canvas) text(face font.Face, x, y float64, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * c.k * 64), Y: fixed.Int26_6(y * c.k * 64)},
	}
	d.DrawString(s)
}

func pixels(size, scale float64) int {
	return max(1, int(math.Ceil(size*scale)))
}
