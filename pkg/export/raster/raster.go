package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/draw"

	"github.com/matzehuels/flowgen/pkg/export"
	"github.com/matzehuels/flowgen/pkg/flow"
	"github.com/matzehuels/flowgen/pkg/layout"
)

const (
	// Frames is the number of frames in an animated export.
	Frames = 15
	// FrameDelay is the delay between frames in hundredths of a second.
	FrameDelay = 10
	// DashTravel is the dash offset covered over one animation loop.
	DashTravel = 20.0

	supersample = 2
	// maxSide caps the supersampled canvas edge.
	maxSide = 8192
)

// Options configures raster output.
type Options struct {
	// Scale is the number of output pixels per diagram pixel.
	Scale float64
	// Padding is the margin around the diagram in diagram pixels. Zero or
	// less selects the default.
	Padding float64
	// Background is the canvas color as "#rrggbb".
	Background string
}

// DefaultOptions returns the options used by the CLI and server.
func DefaultOptions() Options {
	return Options{Scale: 2, Padding: 40, Background: export.BackgroundColor}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Scale <= 0 {
		o.Scale = def.Scale
	}
	if o.Padding <= 0 {
		o.Padding = def.Padding
	}
	if o.Background == "" {
		o.Background = def.Background
	}
	return o
}

// EncodePNG writes d as a PNG image.
func EncodePNG(w io.Writer, d flow.Diagram, opts Options) error {
	img, err := Render(d, opts, 0)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// RenderPNG returns d as PNG bytes.
func RenderPNG(d flow.Diagram, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, d, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeGIF writes d as a looping animated GIF.
func EncodeGIF(w io.Writer, d flow.Diagram, opts Options) error {
	anim := &gif.GIF{LoopCount: 0}
	for i := range Frames {
		img, err := Render(d, opts, DashOffset(i))
		if err != nil {
			return err
		}
		frame := image.NewPaletted(img.Bounds(), palette.Plan9)
		draw.Draw(frame, frame.Rect, img, image.Point{}, draw.Src)
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, FrameDelay)
	}
	return gif.EncodeAll(w, anim)
}

// RenderGIF returns d as animated GIF bytes.
func RenderGIF(d flow.Diagram, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeGIF(&buf, d, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders d to path, as a GIF if animated is set and a PNG
// otherwise.
func WriteFile(path string, d flow.Diagram, opts Options, animated bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	encode := EncodePNG
	if animated {
		encode = EncodeGIF
	}
	if err := encode(f, d, opts); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// DashOffset returns the dash offset of animated edges in frame i.
func DashOffset(i int) float64 {
	return DashTravel - float64(i)/Frames*DashTravel
}

// Render draws one frame of d with animated edges shifted by dashOffset.
func Render(d flow.Diagram, opts Options, dashOffset float64) (*image.RGBA, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	opts = opts.withDefaults()

	minX, minY, maxX, maxY := extent(d)
	w := maxX - minX + 2*opts.Padding
	h := maxY - minY + 2*opts.Padding
	scale := opts.Scale
	if side := math.Max(w, h) * scale * supersample; side > maxSide {
		scale *= maxSide / side
	}

	outW := max(1, int(math.Ceil(w*scale)))
	outH := max(1, int(math.Ceil(h*scale)))
	bg := hexColor(opts.Background)
	c := newCanvas(outW*supersample, outH*supersample, scale*supersample,
		minX-opts.Padding, minY-opts.Padding, bg)
	defer c.close()

	nodes := make(map[string]flow.Node, len(d.Nodes))
	for _, n := range d.Nodes {
		if _, dup := nodes[n.ID]; !dup {
			nodes[n.ID] = n
		}
	}
	edges := d.ValidEdges()
	target, source := d.LayoutDirection.Sides()

	paths := make([]edgePath, len(edges))
	for i, e := range edges {
		paths[i] = route(nodes[e.Source], nodes[e.Target], source, target)
		drawEdge(c, e, paths[i], dashOffset)
	}
	seen := make(map[string]bool, len(nodes))
	for _, n := range d.Nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		drawNode(c, n)
	}
	for i, e := range edges {
		if e.Label != "" {
			drawEdgeLabel(c, e.Label, paths[i])
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, outW, outH))
	draw.CatmullRom.Scale(out, out.Bounds(), c.img, c.img.Bounds(), draw.Src, nil)
	return out, nil
}

// extent returns the bounding box of all nodes in diagram pixels.
func extent(d flow.Diagram) (minX, minY, maxX, maxY float64) {
	if len(d.Nodes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range d.Nodes {
		w, h := size(n)
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X+w)
		maxY = math.Max(maxY, n.Position.Y+h)
	}
	return minX, minY, maxX, maxY
}

func size(n flow.Node) (float64, float64) {
	if n.Width > 0 && n.Height > 0 {
		return n.Width, n.Height
	}
	return flow.DefaultSize(n.Shape)
}

// =============================================================================
// Nodes
// =============================================================================

var shadowOffset = map[flow.Shadow]float64{
	flow.ShadowSm: 1,
	flow.ShadowMd: 3,
	flow.ShadowLg: 6,
	flow.ShadowXl: 10,
}

func drawNode(c *canvas, n flow.Node) {
	w, h := size(n)
	x, y := c.pt(n.Position.X, n.Position.Y)
	dw, dh := w*c.scale, h*c.scale
	sw := export.SwatchFor(n.Color)
	border := 2 * c.scale

	if off, ok := shadowOffset[n.Shadow]; ok {
		o := off * c.scale
		c.fillMask(x, y+o, dw, dh, shapeMask(n.Shape, dw, dh, c.scale), color.RGBA{15, 23, 42, 255}, 0.12)
	}

	stroke := hexColor(sw.Stroke)
	c.fillMask(x, y, dw, dh, shapeMask(n.Shape, dw, dh, c.scale), stroke, 1)
	ix, iy, iw, ih := inset(x, y, dw, dh, border)
	c.fillMask(ix, iy, iw, ih, shapeMask(n.Shape, iw, ih, c.scale), hexColor(sw.Fill), 1)
	if n.BorderStyle == flow.BorderDashed || n.BorderStyle == flow.BorderDotted {
		breakBorder(c, n, x, y, dw, dh, border, hexColor(sw.Fill))
	}
	if n.Shape == flow.ShapeCylinder {
		ry := cylinderCap(dw, dh, c.scale)
		rim := make([][2]float64, 0, 65)
		for i := 0; i <= 64; i++ {
			a := math.Pi * float64(i) / 64
			rim = append(rim, [2]float64{x + dw/2 - (dw/2-border/2)*math.Cos(a), y + ry + (ry-border/2)*math.Sin(a)})
		}
		c.stroke(rim, border, stroke, nil, 0)
	}

	face := c.face(true, float64(n.FontSize.Points()))
	pad := 12 * c.scale
	lines := wrap(face, n.Label, dw-2*pad)
	align := 0.0
	switch n.TextAlign {
	case flow.AlignLeft:
		align = -1
	case flow.AlignRight:
		align = 1
	}
	c.text(face, lines, x+dw/2, y+dh/2, align, dw-2*pad, hexColor(sw.Font))
}

// breakBorder repaints gaps into the outline so dashed and dotted borders
// read as such.
func breakBorder(c *canvas, n flow.Node, x, y, w, h, border float64, fill color.RGBA) {
	on, off := 6*c.scale, 4*c.scale
	if n.BorderStyle == flow.BorderDotted {
		on, off = 2*c.scale, 3*c.scale
	}
	outer := shapeMask(n.Shape, w, h, c.scale)
	ix, iy, iw, ih := inset(x, y, w, h, border)
	inner := shapeMask(n.Shape, iw, ih, c.scale)
	cx, cy := w/2, h/2
	perim := math.Pi * (w + h) / 2
	period := on + off
	c.fillMask(x, y, w, h, func(px, py float64) bool {
		if !outer(px, py) || inner(px+x-ix, py+y-iy) {
			return false
		}
		a := math.Atan2((py-cy)/h, (px-cx)/w)
		s := (a + math.Pi) / (2 * math.Pi) * perim
		return math.Mod(s, period) >= on
	}, fill, 1)
}

// =============================================================================
// Edges
// =============================================================================

type edgePath struct {
	p0, c1, c2, p3 [2]float64
}

func (p edgePath) at(t float64) [2]float64 {
	u := 1 - t
	var out [2]float64
	for i := range out {
		out[i] = u*u*u*p.p0[i] + 3*u*u*t*p.c1[i] + 3*u*t*t*p.c2[i] + t*t*t*p.p3[i]
	}
	return out
}

func (p edgePath) points(n int) [][2]float64 {
	pts := make([][2]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, p.at(float64(i)/float64(n)))
	}
	return pts
}

// route builds the bezier from the source connector of s to the target
// connector of t, in diagram pixels. Sides stored on the nodes win over the
// defaults of the flow direction.
func route(s, t flow.Node, defSource, defTarget layout.Side) edgePath {
	ss, ts := s.SourcePosition, t.TargetPosition
	if ss == "" {
		ss = defSource
	}
	if ts == "" {
		ts = defTarget
	}
	p0, p3 := anchor(s, ss), anchor(t, ts)
	return edgePath{
		p0: p0,
		c1: control(ss, p0, p3),
		c2: control(ts, p3, p0),
		p3: p3,
	}
}

func anchor(n flow.Node, side layout.Side) [2]float64 {
	w, h := size(n)
	x, y := n.Position.X, n.Position.Y
	switch side {
	case layout.SideTop:
		return [2]float64{x + w/2, y}
	case layout.SideLeft:
		return [2]float64{x, y + h/2}
	case layout.SideRight:
		return [2]float64{x + w, y + h/2}
	}
	return [2]float64{x + w/2, y + h}
}

// control places a bezier control point away from from along the side
// normal, further when the other end lies behind the side.
func control(side layout.Side, from, to [2]float64) [2]float64 {
	const curvature = 0.25
	offset := func(dist float64) float64 {
		if dist >= 0 {
			return 0.5 * dist
		}
		return curvature * 25 * math.Sqrt(-dist)
	}
	switch side {
	case layout.SideTop:
		return [2]float64{from[0], from[1] - offset(from[1]-to[1])}
	case layout.SideLeft:
		return [2]float64{from[0] - offset(from[0]-to[0]), from[1]}
	case layout.SideRight:
		return [2]float64{from[0] + offset(to[0]-from[0]), from[1]}
	}
	return [2]float64{from[0], from[1] + offset(to[1]-from[1])}
}

func drawEdge(c *canvas, e flow.Edge, p edgePath, dashOffset float64) {
	col := hexColor(export.EdgeColor)
	dev := edgePath{}
	dev.p0[0], dev.p0[1] = c.pt(p.p0[0], p.p0[1])
	dev.c1[0], dev.c1[1] = c.pt(p.c1[0], p.c1[1])
	dev.c2[0], dev.c2[1] = c.pt(p.c2[0], p.c2[1])
	dev.p3[0], dev.p3[1] = c.pt(p.p3[0], p.p3[1])

	var dash []float64
	phase := 0.0
	if e.Dashed() || e.IsAnimated() {
		dash = []float64{5 * c.scale, 5 * c.scale}
	}
	if e.IsAnimated() {
		phase = dashOffset * c.scale
	}

	head := 10 * c.scale
	tip := dev.p3
	tangent := [2]float64{tip[0] - dev.at(0.97)[0], tip[1] - dev.at(0.97)[1]}
	if l := math.Hypot(tangent[0], tangent[1]); l > 0 {
		tangent[0], tangent[1] = tangent[0]/l, tangent[1]/l
	} else {
		tangent = [2]float64{0, 1}
	}
	base := [2]float64{tip[0] - tangent[0]*head, tip[1] - tangent[1]*head}

	pts := dev.points(64)
	pts[len(pts)-1] = base
	c.stroke(pts, 2*c.scale, col, dash, phase)

	half := head * 0.5
	a := [2]float64{base[0] + tangent[1]*half, base[1] - tangent[0]*half}
	b := [2]float64{base[0] - tangent[1]*half, base[1] + tangent[0]*half}
	c.triangle(a, b, tip, col)
}

func drawEdgeLabel(c *canvas, label string, p edgePath) {
	face := c.face(false, 11)
	if face == nil {
		return
	}
	mid := p.at(0.5)
	x, y := c.pt(mid[0], mid[1])
	lines := wrap(face, label, 160*c.scale)
	w := measure(face, lines) + 8*c.scale
	h := float64(face.Metrics().Height.Ceil()*len(lines)) + 4*c.scale
	c.fillMask(x-w/2, y-h/2, w, h, roundedRect(w, h, 4*c.scale), color.RGBA{255, 255, 255, 255}, 1)
	c.text(face, lines, x, y, 0, w, hexColor(export.EdgeLabelColor))
}
