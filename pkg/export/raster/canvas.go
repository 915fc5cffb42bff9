package raster

import (
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// canvas draws in device pixels onto an RGBA image.
type canvas struct {
	img   *image.RGBA
	scale float64 // device pixels per diagram pixel
	ox    float64 // diagram x drawn at device 0
	oy    float64
	faces map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size float64
}

var (
	fontsOnce     sync.Once
	regular, bold *sfnt.Font
	fontsErr      error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regular, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		bold, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

func newCanvas(w, h int, scale, ox, oy float64, bg color.RGBA) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}
	return &canvas{img: img, scale: scale, ox: ox, oy: oy, faces: map[faceKey]font.Face{}}
}

// pt maps a diagram point to device pixels.
func (c *canvas) pt(x, y float64) (float64, float64) {
	return (x - c.ox) * c.scale, (y - c.oy) * c.scale
}

func (c *canvas) face(isBold bool, points float64) font.Face {
	key := faceKey{isBold, points * c.scale}
	if f, ok := c.faces[key]; ok {
		return f
	}
	src := regular
	if isBold {
		src = bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    key.size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		f = nil
	}
	c.faces[key] = f
	return f
}

func (c *canvas) close() {
	for _, f := range c.faces {
		if f != nil {
			f.Close()
		}
	}
}

// blend composites col over the pixel at (x, y) with the given coverage.
func (c *canvas) blend(x, y int, col color.RGBA, alpha float64) {
	if !(image.Point{x, y}).In(c.img.Rect) || alpha <= 0 {
		return
	}
	i := c.img.PixOffset(x, y)
	p := c.img.Pix[i : i+4 : i+4]
	a := alpha * float64(col.A) / 255
	if a >= 1 {
		p[0], p[1], p[2], p[3] = col.R, col.G, col.B, 255
		return
	}
	mix := func(dst, src uint8) uint8 {
		return uint8(math.Round(float64(dst)*(1-a) + float64(src)*a))
	}
	p[0], p[1], p[2] = mix(p[0], col.R), mix(p[1], col.G), mix(p[2], col.B)
	p[3] = 255
}

// fillMask paints every pixel of the box whose centre lies inside mask.
// Mask coordinates are relative to the box origin.
func (c *canvas) fillMask(x0, y0, w, h float64, mask func(x, y float64) bool, col color.RGBA, alpha float64) {
	if w <= 0 || h <= 0 {
		return
	}
	minX, minY := int(math.Floor(x0)), int(math.Floor(y0))
	maxX, maxY := int(math.Ceil(x0+w)), int(math.Ceil(y0+h))
	for py := minY; py < maxY; py++ {
		for px := minX; px < maxX; px++ {
			lx, ly := float64(px)+0.5-x0, float64(py)+0.5-y0
			if lx < 0 || ly < 0 || lx > w || ly > h {
				continue
			}
			if mask(lx, ly) {
				c.blend(px, py, col, alpha)
			}
		}
	}
}

// dot stamps a filled disc.
func (c *canvas) dot(cx, cy, r float64, col color.RGBA) {
	c.fillMask(cx-r, cy-r, 2*r, 2*r, func(x, y float64) bool {
		dx, dy := x-r, y-r
		return dx*dx+dy*dy <= r*r
	}, col, 1)
}

// stroke draws a polyline of the given width. A non-empty dash pattern
// (on, off lengths in device pixels) is applied along the arc length,
// shifted by phase.
func (c *canvas) stroke(pts [][2]float64, width float64, col color.RGBA, dash []float64, phase float64) {
	period := 0.0
	for _, d := range dash {
		period += d
	}
	r := width / 2
	s := 0.0
	for i := 1; i < len(pts); i++ {
		x1, y1 := pts[i-1][0], pts[i-1][1]
		x2, y2 := pts[i][0], pts[i][1]
		seg := math.Hypot(x2-x1, y2-y1)
		steps := max(1, int(math.Ceil(seg*2)))
		for k := 0; k <= steps; k++ {
			t := float64(k) / float64(steps)
			if period > 0 && !dashOn(s+seg*t+phase, dash, period) {
				continue
			}
			c.dot(x1+(x2-x1)*t, y1+(y2-y1)*t, r, col)
		}
		s += seg
	}
}

func dashOn(pos float64, dash []float64, period float64) bool {
	pos = math.Mod(pos, period)
	if pos < 0 {
		pos += period
	}
	on := true
	for _, d := range dash {
		if pos < d {
			return on
		}
		pos -= d
		on = !on
	}
	return on
}

// triangle fills the triangle a, b, tip.
func (c *canvas) triangle(a, b, tip [2]float64, col color.RGBA) {
	minX := math.Min(a[0], math.Min(b[0], tip[0]))
	minY := math.Min(a[1], math.Min(b[1], tip[1]))
	maxX := math.Max(a[0], math.Max(b[0], tip[0]))
	maxY := math.Max(a[1], math.Max(b[1], tip[1]))
	cross := func(p, q, r [2]float64) float64 {
		return (q[0]-p[0])*(r[1]-p[1]) - (q[1]-p[1])*(r[0]-p[0])
	}
	c.fillMask(minX, minY, maxX-minX, maxY-minY, func(x, y float64) bool {
		p := [2]float64{x + minX, y + minY}
		d1, d2, d3 := cross(a, b, p), cross(b, tip, p), cross(tip, a, p)
		neg := d1 < 0 || d2 < 0 || d3 < 0
		pos := d1 > 0 || d2 > 0 || d3 > 0
		return !(neg && pos)
	}, col, 1)
}

// text draws lines of text centered on (cx, cy).
func (c *canvas) text(face font.Face, lines []string, cx, cy float64, align float64, maxWidth float64, col color.RGBA) {
	if face == nil || len(lines) == 0 {
		return
	}
	m := face.Metrics()
	lineH := float64(m.Height.Ceil())
	ascent := float64(m.Ascent.Ceil())
	top := cy - lineH*float64(len(lines))/2
	d := &font.Drawer{Dst: c.img, Src: image.NewUniform(col), Face: face}
	for i, line := range lines {
		w := float64(font.MeasureString(face, line).Ceil())
		x := cx - w/2
		switch {
		case align < 0:
			x = cx - maxWidth/2
		case align > 0:
			x = cx + maxWidth/2 - w
		}
		y := top + lineH*float64(i) + ascent
		d.Dot = fixed.Point26_6{X: fixed.I(int(math.Round(x))), Y: fixed.I(int(math.Round(y)))}
		d.DrawString(line)
	}
}

// wrap splits s into lines no wider than maxWidth. Words longer than the
// width get a line of their own.
func wrap(face font.Face, s string, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			next := line + " " + w
			if face != nil && float64(font.MeasureString(face, next).Ceil()) > maxWidth {
				lines = append(lines, line)
				line = w
				continue
			}
			line = next
		}
		lines = append(lines, line)
	}
	return lines
}

// measure returns the width of the widest line.
func measure(face font.Face, lines []string) float64 {
	w := 0
	for _, l := range lines {
		w = max(w, font.MeasureString(face, l).Ceil())
	}
	return float64(w)
}

// hexColor parses "#rrggbb". Anything else yields opaque black.
func hexColor(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{A: 255}
	}
	var v [3]uint8
	for i := range v {
		hi, ok1 := hexDigit(s[2*i])
		lo, ok2 := hexDigit(s[2*i+1])
		if !ok1 || !ok2 {
			return color.RGBA{A: 255}
		}
		v[i] = hi<<4 | lo
	}
	return color.RGBA{v[0], v[1], v[2], 255}
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
