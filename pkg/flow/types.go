package flow

import (
	"strings"

	"github.com/matzehuels/flowgen/pkg/layout"
)

// =============================================================================
// Enumerations
// =============================================================================

// Shape is the outline drawn for a node.
type Shape string

const (
	ShapeRectangle     Shape = "rectangle"
	ShapePill          Shape = "pill"
	ShapeDiamond       Shape = "diamond"
	ShapeCylinder      Shape = "cylinder"
	ShapeCloud         Shape = "cloud"
	ShapeCircle        Shape = "circle"
	ShapeParallelogram Shape = "parallelogram"
)

// Shapes lists every node shape.
var Shapes = []Shape{ShapeRectangle, ShapePill, ShapeDiamond, ShapeCylinder, ShapeCloud, ShapeCircle, ShapeParallelogram}

// Color names one of the palette entries.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
	ColorPurple Color = "purple"
	ColorYellow Color = "yellow"
	ColorSlate  Color = "slate"
)

// Colors lists every palette color.
var Colors = []Color{ColorBlue, ColorGreen, ColorOrange, ColorRed, ColorPurple, ColorYellow, ColorSlate}

// FontSize is the label size class.
type FontSize string

const (
	FontSmall  FontSize = "sm"
	FontBase   FontSize = "base"
	FontLarge  FontSize = "lg"
	FontXLarge FontSize = "xl"
)

// Points returns the size of the class in points.
func (f FontSize) Points() int {
	switch f {
	case FontSmall:
		return 10
	case FontLarge:
		return 14
	case FontXLarge:
		return 16
	default:
		return 12
	}
}

// TextAlign is the horizontal label alignment.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Shadow is the drop shadow class.
type Shadow string

const (
	ShadowNone Shadow = "none"
	ShadowSm   Shadow = "sm"
	ShadowMd   Shadow = "md"
	ShadowLg   Shadow = "lg"
	ShadowXl   Shadow = "xl"
)

// BorderStyle is the node outline stroke.
type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
)

// DiagramType is the kind of diagram the model detected.
type DiagramType string

const (
	TypeFlowchart    DiagramType = "flowchart"
	TypeMindmap      DiagramType = "mindmap"
	TypeArchitecture DiagramType = "architecture"
	TypeSequence     DiagramType = "sequence"
	TypeHierarchy    DiagramType = "hierarchy"
)

// DiagramTypes lists every diagram type.
var DiagramTypes = []DiagramType{TypeFlowchart, TypeMindmap, TypeArchitecture, TypeSequence, TypeHierarchy}

// oneOf returns the allowed value equal to s (case-insensitive), or def.
func oneOf[T ~string](s T, def T, allowed ...T) T {
	v := T(strings.ToLower(strings.TrimSpace(string(s))))
	for _, a := range allowed {
		if v == a {
			return a
		}
	}
	return def
}

// ParseShape returns the shape named by s, or rectangle.
func ParseShape(s string) Shape { return oneOf(Shape(s), ShapeRectangle, Shapes...) }

// ParseColor returns the color named by s, or slate.
func ParseColor(s string) Color { return oneOf(Color(s), ColorSlate, Colors...) }

// ParseDiagramType returns the type named by s, or flowchart.
func ParseDiagramType(s string) DiagramType {
	return oneOf(DiagramType(s), TypeFlowchart, DiagramTypes...)
}

// =============================================================================
// Diagram
// =============================================================================

// Diagram is a styled graph. Its JSON form is the one the language model
// produces; after [Arrange] nodes also carry position, size and connector
// sides.
type Diagram struct {
	LayoutDirection layout.Direction `json:"layoutDirection,omitempty"`
	DiagramType     DiagramType      `json:"diagramType,omitempty"`
	Nodes           []Node           `json:"nodes"`
	Edges           []Edge           `json:"edges"`
}

// Node is a labelled, styled box.
type Node struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Shape       Shape       `json:"shape,omitempty"`
	Color       Color       `json:"color,omitempty"`
	FontSize    FontSize    `json:"fontSize,omitempty"`
	TextAlign   TextAlign   `json:"textAlign,omitempty"`
	Shadow      Shadow      `json:"shadow,omitempty"`
	BorderStyle BorderStyle `json:"borderStyle,omitempty"`

	Position       Position    `json:"position"`
	Width          float64     `json:"width,omitempty"`
	Height         float64     `json:"height,omitempty"`
	TargetPosition layout.Side `json:"targetPosition,omitempty"`
	SourcePosition layout.Side `json:"sourcePosition,omitempty"`
}

// Position is the top-left corner of a node box.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a directed, optionally labelled connection.
type Edge struct {
	ID       string    `json:"id,omitempty"`
	Source   string    `json:"source"`
	Target   string    `json:"target"`
	Label    string    `json:"label,omitempty"`
	Animated *bool     `json:"animated,omitempty"`
	Style    EdgeStyle `json:"style,omitzero"`
}

// EdgeStyle carries the stroke pattern of an edge.
type EdgeStyle struct {
	StrokeDasharray string `json:"strokeDasharray,omitempty"`
}

// DashPattern is the dash array used for dashed edges.
const DashPattern = "5,5"

// IsAnimated reports whether the edge is drawn with a moving dash. Edges
// are animated unless explicitly turned off.
func (e Edge) IsAnimated() bool { return e.Animated == nil || *e.Animated }

// Dashed reports whether the edge stroke is dashed.
func (e Edge) Dashed() bool {
	d := strings.TrimSpace(e.Style.StrokeDasharray)
	return d != "" && d != "0"
}

// EdgeID returns the canonical ID of an edge: "e" + source + "-" + target.
func EdgeID(source, target string) string {
	return "e" + source + "-" + target
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Node returns the node with the given ID.
func (d Diagram) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge with the given ID.
func (d Diagram) Edge(id string) (Edge, bool) {
	for _, e := range d.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// Clone returns a deep copy.
func (d Diagram) Clone() Diagram {
	out := d
	out.Nodes = append([]Node{}, d.Nodes...)
	out.Edges = make([]Edge, len(d.Edges))
	for i, e := range d.Edges {
		if e.Animated != nil {
			e.Animated = Bool(*e.Animated)
		}
		out.Edges[i] = e
	}
	return out
}

// Bounds returns the size of the box spanning all nodes from the origin.
func (d Diagram) Bounds() (width, height float64) {
	for _, n := range d.Nodes {
		width = max(width, n.Position.X+n.Width)
		height = max(height, n.Position.Y+n.Height)
	}
	return width, height
}
