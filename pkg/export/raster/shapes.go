package raster

import (
	"math"

	"github.com/matzehuels/flowgen/pkg/flow"
)

// mask reports whether a point relative to the top-left corner of a w×h
// box lies inside the shape.
type mask func(x, y float64) bool

func roundedRect(w, h, r float64) mask {
	r = math.Min(r, math.Min(w, h)/2)
	return func(x, y float64) bool {
		cx := math.Max(r, math.Min(x, w-r))
		cy := math.Max(r, math.Min(y, h-r))
		dx, dy := x-cx, y-cy
		return dx*dx+dy*dy <= r*r
	}
}

func ellipse(w, h float64) mask {
	rx, ry := w/2, h/2
	return func(x, y float64) bool {
		dx, dy := (x-rx)/rx, (y-ry)/ry
		return dx*dx+dy*dy <= 1
	}
}

func diamond(w, h float64) mask {
	return func(x, y float64) bool {
		return math.Abs(x-w/2)/(w/2)+math.Abs(y-h/2)/(h/2) <= 1
	}
}

func parallelogram(w, h, skew float64) mask {
	return func(x, y float64) bool {
		t := y / h
		return x >= skew*(1-t) && x <= w-skew*t
	}
}

func cylinder(w, h, ry float64) mask {
	top, bottom := ellipseAt(w/2, ry, w/2, ry), ellipseAt(w/2, h-ry, w/2, ry)
	return func(x, y float64) bool {
		return (y >= ry && y <= h-ry) || top(x, y) || bottom(x, y)
	}
}

func ellipseAt(cx, cy, rx, ry float64) mask {
	return func(x, y float64) bool {
		dx, dy := (x-cx)/rx, (y-cy)/ry
		return dx*dx+dy*dy <= 1
	}
}

// shapeMask returns the mask of s at the given device size. unit is the
// device size of one diagram pixel.
func shapeMask(s flow.Shape, w, h, unit float64) mask {
	if w <= 0 || h <= 0 {
		return func(float64, float64) bool { return false }
	}
	switch s {
	case flow.ShapePill:
		return roundedRect(w, h, h/2)
	case flow.ShapeDiamond:
		return diamond(w, h)
	case flow.ShapeCircle, flow.ShapeCloud:
		return ellipse(w, h)
	case flow.ShapeParallelogram:
		return parallelogram(w, h, math.Min(w*0.2, 20*unit))
	case flow.ShapeCylinder:
		return cylinder(w, h, cylinderCap(w, h, unit))
	}
	return roundedRect(w, h, 8*unit)
}

func cylinderCap(w, h, unit float64) float64 {
	return math.Min(h*0.15, math.Min(w/2, 12*unit))
}

// inset returns where a box shrunk by d on every side starts and its size.
func inset(x, y, w, h, d float64) (float64, float64, float64, float64) {
	return x + d, y + d, w - 2*d, h - 2*d
}
