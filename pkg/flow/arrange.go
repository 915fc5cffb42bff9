package flow

import "github.com/matzehuels/flowgen/pkg/layout"

// LayoutInput converts the diagram into engine input. Node sizes are passed
// as they are; the engine clamps non-positive ones.
func (d Diagram) LayoutInput() ([]layout.Node, []layout.Edge) {
	nodes := make([]layout.Node, len(d.Nodes))
	for i, n := range d.Nodes {
		nodes[i] = layout.Node{ID: n.ID, Width: n.Width, Height: n.Height}
	}
	edges := make([]layout.Edge, len(d.Edges))
	for i, e := range d.Edges {
		edges[i] = layout.Edge{Source: e.Source, Target: e.Target}
	}
	return nodes, edges
}

// Arrange returns a normalized copy of d laid out by eng along the
// diagram's own direction. A nil eng uses the default options.
//
// Nodes repeating an earlier ID are dropped, since only the first one can
// be placed. d itself is not modified.
func Arrange(d Diagram, eng *layout.Engine) Diagram {
	out := d.Clone()
	out.Normalize()
	res := run(out, eng)
	return applyResult(out, res)
}

// ApplyResult copies positions, sizes and connector sides from res onto a
// copy of d. Nodes absent from res are dropped.
func ApplyResult(d Diagram, res layout.Result) Diagram {
	return applyResult(d.Clone(), res)
}

func run(d Diagram, eng *layout.Engine) layout.Result {
	nodes, edges := d.LayoutInput()
	if eng == nil {
		return layout.Layout(nodes, edges, d.LayoutDirection)
	}
	return eng.Layout(nodes, edges, d.LayoutDirection)
}

func applyResult(d Diagram, res layout.Result) Diagram {
	placed := make(map[string]layout.Node, len(res.Nodes))
	for _, n := range res.Nodes {
		placed[n.ID] = n
	}

	nodes := make([]Node, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		p, ok := placed[n.ID]
		if !ok {
			continue
		}
		delete(placed, n.ID)
		n.Position = Position{X: p.X, Y: p.Y}
		n.Width, n.Height = p.Width, p.Height
		n.TargetPosition, n.SourcePosition = p.TargetSide, p.SourceSide
		nodes = append(nodes, n)
	}
	d.Nodes = nodes
	d.LayoutDirection = res.Direction
	return d
}
