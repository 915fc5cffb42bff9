package flow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/flowgen/pkg/layout"
)

// Default box sizes.
const (
	DefaultWidth  = 160
	DefaultHeight = 70
	CircleSize    = 128
)

var (
	// ErrEmptyNodeID is returned by [Diagram.Validate] for a node without ID.
	ErrEmptyNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Diagram.Validate] when two nodes
	// share an ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")
)

// DefaultSize returns the box size a node of the given shape gets when none
// is set.
func DefaultSize(s Shape) (width, height float64) {
	if s == ShapeCircle {
		return CircleSize, CircleSize
	}
	return DefaultWidth, DefaultHeight
}

// Normalize fills in defaults in place:
//
//   - direction TB, type flowchart; unknown tokens map to the defaults
//   - node shape rectangle, color slate, font base, align center,
//     shadow sm, border solid
//   - node size from [DefaultSize] when unset or non-positive
//   - edge ID from [EdgeID] when unset, edges animated unless disabled
//
// Nil node and edge slices become empty ones.
func (d *Diagram) Normalize() {
	d.LayoutDirection = layout.ParseDirection(string(d.LayoutDirection))
	d.DiagramType = ParseDiagramType(string(d.DiagramType))
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Edges == nil {
		d.Edges = []Edge{}
	}

	for i := range d.Nodes {
		n := &d.Nodes[i]
		n.ID = strings.TrimSpace(n.ID)
		n.Shape = ParseShape(string(n.Shape))
		n.Color = ParseColor(string(n.Color))
		n.FontSize = oneOf(n.FontSize, FontBase, FontSmall, FontBase, FontLarge, FontXLarge)
		n.TextAlign = oneOf(n.TextAlign, AlignCenter, AlignLeft, AlignCenter, AlignRight)
		n.Shadow = oneOf(n.Shadow, ShadowSm, ShadowNone, ShadowSm, ShadowMd, ShadowLg, ShadowXl)
		n.BorderStyle = oneOf(n.BorderStyle, BorderSolid, BorderSolid, BorderDashed, BorderDotted)
		w, h := DefaultSize(n.Shape)
		if n.Width <= 0 {
			n.Width = w
		}
		if n.Height <= 0 {
			n.Height = h
		}
	}

	for i := range d.Edges {
		e := &d.Edges[i]
		e.Source = strings.TrimSpace(e.Source)
		e.Target = strings.TrimSpace(e.Target)
		if e.ID == "" {
			e.ID = EdgeID(e.Source, e.Target)
		}
		if e.Animated == nil {
			e.Animated = Bool(true)
		}
	}
}

// Validate checks that every node has a unique, non-empty ID. Edges are not
// checked: dangling edges are tolerated by layout and skipped by exporters.
func (d Diagram) Validate() error {
	seen := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: %w", i, ErrEmptyNodeID)
		}
		if seen[n.ID] {
			return fmt.Errorf("node %q: %w", n.ID, ErrDuplicateNodeID)
		}
		seen[n.ID] = true
	}
	return nil
}

// HasNode reports whether a node with the given ID exists.
func (d Diagram) HasNode(id string) bool {
	_, ok := d.Node(id)
	return ok
}

// ValidEdges returns the edges whose endpoints both exist.
func (d Diagram) ValidEdges() []Edge {
	ids := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		ids[n.ID] = true
	}
	var out []Edge
	for _, e := range d.Edges {
		if ids[e.Source] && ids[e.Target] {
			out = append(out, e)
		}
	}
	return out
}
