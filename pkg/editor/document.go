package editor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/flowgen/pkg/flow"
	"github.com/matzehuels/flowgen/pkg/layout"
)

var (
	// ErrNodeNotFound is returned when an operation names an unknown node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound is returned when an operation names an unknown edge.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrNotFound is returned by [Document.Delete] when the ID matches
	// neither a node nor an edge.
	ErrNotFound = errors.New("no node or edge with that ID")

	// ErrDuplicateEdge is returned by [Document.Connect] when the two nodes
	// are already connected in that direction.
	ErrDuplicateEdge = errors.New("nodes are already connected")
)

// DefaultNodeLabel is the label of a node added without one.
const DefaultNodeLabel = "New Node"

// Placement of nodes added by hand: the first goes to Origin, each later
// one is offset from the last node by Step on both axes.
const (
	AddOrigin = 100
	AddStep   = 40
)

// Document is an editable diagram.
type Document struct {
	eng       *layout.Engine
	diagram   flow.Diagram
	result    layout.Result
	overrides layout.Overrides
	newID     func() string
}

// Option configures a Document.
type Option func(*Document)

// WithIDFunc replaces the generator used for IDs of added nodes.
func WithIDFunc(fn func() string) Option {
	return func(doc *Document) { doc.newID = fn }
}

// NewNodeID returns a fresh node ID of the form "node-<uuid>".
func NewNodeID() string {
	return "node-" + uuid.NewString()
}

// New creates a Document holding a normalized copy of d, laid out by eng.
// A nil eng uses the default options.
func New(d flow.Diagram, eng *layout.Engine, opts ...Option) *Document {
	if eng == nil {
		eng = layout.New(layout.DefaultOptions())
	}
	doc := &Document{eng: eng, newID: NewNodeID}
	for _, opt := range opts {
		opt(doc)
	}
	doc.load(d)
	return doc
}

// Diagram returns the current diagram with computed positions, dragged
// positions substituted for pinned nodes.
func (doc *Document) Diagram() flow.Diagram {
	res := doc.result
	res.Nodes = doc.overrides.Apply(res.Nodes)
	return flow.ApplyResult(doc.diagram, res)
}

// Direction returns the active flow direction.
func (doc *Document) Direction() layout.Direction { return doc.diagram.LayoutDirection }

// Len returns the number of nodes.
func (doc *Document) Len() int { return len(doc.diagram.Nodes) }

// Empty reports whether the document has no nodes.
func (doc *Document) Empty() bool { return len(doc.diagram.Nodes) == 0 }

// Pinned reports whether id was moved by hand.
func (doc *Document) Pinned(id string) bool {
	_, ok := doc.overrides.Get(id)
	return ok
}

// Result returns the last engine result, before overrides.
func (doc *Document) Result() layout.Result { return doc.result }

// =============================================================================
// Whole-diagram operations
// =============================================================================

// Replace swaps in a new diagram, typically a fresh generator result.
// Dragged positions are discarded.
func (doc *Document) Replace(d flow.Diagram) {
	doc.overrides.Clear()
	doc.load(d)
}

// Clear removes every node and edge. The direction is kept.
func (doc *Document) Clear() {
	doc.diagram.Nodes = []flow.Node{}
	doc.diagram.Edges = []flow.Edge{}
	doc.overrides.Clear()
	doc.relayout()
}

// SetDirection lays the diagram out along dir. Dragged positions belong to
// the old arrangement and are discarded.
func (doc *Document) SetDirection(dir layout.Direction) {
	doc.diagram.LayoutDirection = layout.ParseDirection(string(dir))
	doc.overrides.Clear()
	doc.relayout()
}

// ToggleDirection switches between vertical and horizontal flow and
// returns the new direction.
func (doc *Document) ToggleDirection() layout.Direction {
	doc.SetDirection(doc.Direction().Toggle())
	return doc.Direction()
}

// Relayout recomputes the layout. Unless keepManual is set, dragged
// positions are discarded.
func (doc *Document) Relayout(keepManual bool) {
	if !keepManual {
		doc.overrides.Clear()
	}
	doc.relayout()
}

func (doc *Document) load(d flow.Diagram) {
	d = d.Clone()
	d.Normalize()
	d.Nodes = dedupe(d.Nodes)
	doc.diagram = d
	doc.relayout()
}

func (doc *Document) relayout() {
	nodes, edges := doc.diagram.LayoutInput()
	doc.result = doc.eng.Layout(nodes, edges, doc.diagram.LayoutDirection)
	doc.overrides.Retain(doc.diagram.HasNode)
}

// dedupe keeps the first node of every ID and drops nodes without one.
func dedupe(nodes []flow.Node) []flow.Node {
	seen := make(map[string]bool, len(nodes))
	return slices.DeleteFunc(nodes, func(n flow.Node) bool {
		if n.ID == "" || seen[n.ID] {
			return true
		}
		seen[n.ID] = true
		return false
	})
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode appends a rectangle labelled label and returns its ID. The node
// is pinned next to the most recently added node so it appears beside the
// existing drawing rather than wherever the engine would rank it.
func (doc *Document) AddNode(label string) string {
	if label == "" {
		label = DefaultNodeLabel
	}
	pos := layout.Point{X: AddOrigin, Y: AddOrigin}
	if n := len(doc.diagram.Nodes); n > 0 {
		last := doc.position(doc.diagram.Nodes[n-1].ID)
		pos = layout.Point{X: last.X + AddStep, Y: last.Y + AddStep}
	}

	id := doc.uniqueID()
	doc.diagram.Nodes = append(doc.diagram.Nodes, flow.Node{
		ID:          id,
		Label:       label,
		Shape:       flow.ShapeRectangle,
		Color:       flow.ColorSlate,
		FontSize:    flow.FontBase,
		TextAlign:   flow.AlignCenter,
		Shadow:      flow.ShadowSm,
		BorderStyle: flow.BorderSolid,
		Width:       flow.DefaultWidth,
		Height:      flow.DefaultHeight,
	})
	doc.relayout()
	doc.overrides.Set(id, pos)
	return id
}

func (doc *Document) uniqueID() string {
	for {
		id := doc.newID()
		if !doc.diagram.HasNode(id) {
			return id
		}
	}
}

// position returns where id is currently drawn.
func (doc *Document) position(id string) layout.Point {
	if p, ok := doc.overrides.Get(id); ok {
		return p
	}
	n, _ := doc.result.Node(id)
	return layout.Point{X: n.X, Y: n.Y}
}

// NodePatch lists node fields to change. Nil fields are left alone.
type NodePatch struct {
	Label       *string
	Shape       *flow.Shape
	Color       *flow.Color
	FontSize    *flow.FontSize
	TextAlign   *flow.TextAlign
	Shadow      *flow.Shadow
	BorderStyle *flow.BorderStyle
	Width       *float64
	Height      *float64
}

// UpdateNode applies p to the node with the given ID. Changing the shape
// of a node without an explicit size resets it to the shape's default box.
func (doc *Document) UpdateNode(id string, p NodePatch) error {
	i := doc.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	n := &doc.diagram.Nodes[i]
	if p.Label != nil {
		n.Label = *p.Label
	}
	if p.Shape != nil && *p.Shape != n.Shape {
		n.Shape = flow.ParseShape(string(*p.Shape))
		if p.Width == nil && p.Height == nil {
			n.Width, n.Height = flow.DefaultSize(n.Shape)
		}
	}
	if p.Color != nil {
		n.Color = flow.ParseColor(string(*p.Color))
	}
	if p.FontSize != nil {
		n.FontSize = *p.FontSize
	}
	if p.TextAlign != nil {
		n.TextAlign = *p.TextAlign
	}
	if p.Shadow != nil {
		n.Shadow = *p.Shadow
	}
	if p.BorderStyle != nil {
		n.BorderStyle = *p.BorderStyle
	}
	if p.Width != nil {
		n.Width = *p.Width
	}
	if p.Height != nil {
		n.Height = *p.Height
	}
	// re-normalize so unknown enum values and bad sizes fall back
	doc.diagram.Normalize()
	doc.relayout()
	return nil
}

// Move pins the node at the given top-left position.
func (doc *Document) Move(id string, x, y float64) error {
	if !doc.diagram.HasNode(id) {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	doc.overrides.Set(id, layout.Point{X: x, Y: y})
	return nil
}

// Unpin returns the given nodes to their computed positions.
func (doc *Document) Unpin(ids ...string) {
	if len(ids) == 0 {
		return
	}
	doc.overrides.Clear(ids...)
}

// ZOrder is a paint-order change for [Document.Reorder].
type ZOrder string

const (
	ToFront  ZOrder = "front"
	ToBack   ZOrder = "back"
	Forward  ZOrder = "up"
	Backward ZOrder = "down"
)

// Reorder moves a node within the paint order; later nodes are drawn on
// top. Since the node list also seeds rank ordering, a later relayout may
// place the node differently.
func (doc *Document) Reorder(id string, z ZOrder) error {
	i := doc.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	nodes := doc.diagram.Nodes
	n := nodes[i]
	nodes = slices.Delete(nodes, i, i+1)

	switch z {
	case ToFront:
		nodes = append(nodes, n)
	case ToBack:
		nodes = slices.Insert(nodes, 0, n)
	case Forward:
		nodes = slices.Insert(nodes, min(i+1, len(nodes)), n)
	case Backward:
		nodes = slices.Insert(nodes, max(i-1, 0), n)
	default:
		nodes = slices.Insert(nodes, i, n)
		doc.diagram.Nodes = nodes
		return fmt.Errorf("unknown z-order %q", z)
	}
	doc.diagram.Nodes = nodes
	return nil
}

func (doc *Document) nodeIndex(id string) int {
	return slices.IndexFunc(doc.diagram.Nodes, func(n flow.Node) bool { return n.ID == id })
}

// =============================================================================
// Edges
// =============================================================================

// Connect adds an animated edge from source to target and returns its ID.
// Both nodes must exist and must not already be connected in that
// direction.
func (doc *Document) Connect(source, target, label string) (string, error) {
	for _, id := range []string{source, target} {
		if !doc.diagram.HasNode(id) {
			return "", fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
	}
	for _, e := range doc.diagram.Edges {
		if e.Source == source && e.Target == target {
			return "", fmt.Errorf("%w: %s -> %s", ErrDuplicateEdge, source, target)
		}
	}

	id := flow.EdgeID(source, target)
	if _, taken := doc.diagram.Edge(id); taken {
		id += "-" + uuid.NewString()[:8]
	}
	doc.diagram.Edges = append(doc.diagram.Edges, flow.Edge{
		ID:       id,
		Source:   source,
		Target:   target,
		Label:    label,
		Animated: flow.Bool(true),
	})
	doc.relayout()
	return id, nil
}

// EdgePatch lists edge fields to change. Nil fields are left alone.
type EdgePatch struct {
	Label    *string
	Animated *bool
	Dashed   *bool
}

// UpdateEdge applies p to the edge with the given ID. Edge styling has no
// effect on placement, so the layout is not recomputed.
func (doc *Document) UpdateEdge(id string, p EdgePatch) error {
	i := slices.IndexFunc(doc.diagram.Edges, func(e flow.Edge) bool { return e.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	}
	e := &doc.diagram.Edges[i]
	if p.Label != nil {
		e.Label = *p.Label
	}
	if p.Animated != nil {
		e.Animated = flow.Bool(*p.Animated)
	}
	if p.Dashed != nil {
		e.Style.StrokeDasharray = "0"
		if *p.Dashed {
			e.Style.StrokeDasharray = flow.DashPattern
		}
	}
	return nil
}

// Delete removes the node with the given ID together with its edges, or
// else the edge with that ID.
func (doc *Document) Delete(id string) error {
	if i := doc.nodeIndex(id); i >= 0 {
		doc.diagram.Nodes = slices.Delete(doc.diagram.Nodes, i, i+1)
		doc.diagram.Edges = slices.DeleteFunc(doc.diagram.Edges, func(e flow.Edge) bool {
			return e.Source == id || e.Target == id
		})
		doc.relayout()
		return nil
	}
	n := len(doc.diagram.Edges)
	doc.diagram.Edges = slices.DeleteFunc(doc.diagram.Edges, func(e flow.Edge) bool { return e.ID == id })
	if len(doc.diagram.Edges) == n {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	doc.relayout()
	return nil
}
