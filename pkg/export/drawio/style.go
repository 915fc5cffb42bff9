package drawio

import (
	"strconv"
	"strings"

	"github.com/matzehuels/flowgen/pkg/export"
	"github.com/matzehuels/flowgen/pkg/flow"
	"github.com/matzehuels/flowgen/pkg/layout"
)

var shapeStyles = map[flow.Shape]string{
	flow.ShapeRectangle:     "rounded=1;absoluteArcSize=1;arcSize=10;",
	flow.ShapePill:          "rounded=1;absoluteArcSize=1;arcSize=50;",
	flow.ShapeCircle:        "ellipse;aspect=fixed;",
	flow.ShapeDiamond:       "rhombus;",
	flow.ShapeParallelogram: "shape=parallelogram;perimeter=parallelogramPerimeter;fixedSize=1;",
	flow.ShapeCloud:         "ellipse;shape=cloud;",
	flow.ShapeCylinder:      "shape=cylinder3;boundedLbl=1;backgroundOutline=1;size=10;",
}

// NodeStyle returns the mxGraph style string of n.
func NodeStyle(n flow.Node) string {
	var b strings.Builder
	b.WriteString("whiteSpace=wrap;html=1;")

	if n.Shadow != "" && n.Shadow != flow.ShadowNone {
		b.WriteString("shadow=1;")
	} else {
		b.WriteString("shadow=0;")
	}

	switch n.BorderStyle {
	case flow.BorderDashed:
		b.WriteString("dashed=1;")
	case flow.BorderDotted:
		b.WriteString("dashed=1;dashPattern=1 2;")
	}

	switch n.TextAlign {
	case flow.AlignLeft, flow.AlignRight:
		b.WriteString("align=" + string(n.TextAlign) + ";")
	default:
		b.WriteString("align=center;")
	}

	b.WriteString("fontSize=" + strconv.Itoa(n.FontSize.Points()) + ";")

	shape, ok := shapeStyles[n.Shape]
	if !ok {
		shape = shapeStyles[flow.ShapeRectangle]
	}
	b.WriteString(shape)

	sw := export.SwatchFor(n.Color)
	b.WriteString("fillColor=" + sw.Fill + ";strokeColor=" + sw.Stroke + ";fontColor=" + sw.Font + ";")
	b.WriteString("strokeWidth=2;fontStyle=1;")
	return b.String()
}

const baseEdgeStyle = "edgeStyle=orthogonalEdgeStyle;rounded=1;orthogonalLoop=1;jettySize=auto;html=1;" +
	"strokeWidth=2;endArrow=block;endFill=1;fontSize=11;fontColor=" + export.EdgeLabelColor + ";labelBackgroundColor=#ffffff;"

// EdgeStyle returns the mxGraph style string of e. Entry and exit points
// follow the connector sides of the diagram's direction.
func EdgeStyle(e flow.Edge, target, source flow.Node) string {
	var b strings.Builder
	b.WriteString(baseEdgeStyle)
	b.WriteString(anchor("exit", source.SourcePosition))
	b.WriteString(anchor("entry", target.TargetPosition))
	if e.Dashed() {
		b.WriteString("dashed=1;")
	}
	b.WriteString("strokeColor=" + export.EdgeColor + ";")
	return b.String()
}

// anchor returns the relative attachment point of a box face.
func anchor(prefix string, side layout.Side) string {
	var x, y string
	switch side {
	case layout.SideTop:
		x, y = "0.5", "0"
	case layout.SideBottom:
		x, y = "0.5", "1"
	case layout.SideLeft:
		x, y = "0", "0.5"
	case layout.SideRight:
		x, y = "1", "0.5"
	default:
		return ""
	}
	return prefix + "X=" + x + ";" + prefix + "Y=" + y + ";" + prefix + "Dx=0;" + prefix + "Dy=0;"
}
