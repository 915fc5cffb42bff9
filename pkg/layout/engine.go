package layout

import (
	"math"

	"github.com/matzehuels/flowgen/pkg/dag"
	"github.com/matzehuels/flowgen/pkg/dag/transform"
)

// MinSize is the extent a non-positive or non-finite width or height is
// clamped to.
const MinSize = 1

// Node is a box to place. Callers fill ID, Width and Height; [Engine.Layout]
// returns copies with the remaining fields set.
type Node struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// X and Y are the top-left corner of the box.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	Rank  int `json:"rank"`
	Order int `json:"order"`

	TargetSide Side `json:"targetPosition"`
	SourceSide Side `json:"sourcePosition"`
}

// Center returns the midpoint of the node's box.
func (n Node) Center() (x, y float64) {
	return n.X + n.Width/2, n.Y + n.Height/2
}

// Edge is a directed connection by node ID. Endpoints need not exist.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Result is the output of a layout run.
type Result struct {
	Direction Direction `json:"direction"`
	// Nodes are the placed nodes, in input order with duplicates removed.
	Nodes []Node `json:"nodes"`
	// Edges is a copy of the input edges.
	Edges []Edge `json:"edges"`
	// BackEdges lists the edges ignored while ranking to break cycles,
	// self-loops included.
	BackEdges []Edge `json:"backEdges,omitempty"`
	// Width and Height span the bounding box of all nodes, which starts at
	// the origin.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node returns the placed node with the given ID.
func (r Result) Node(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Bounds returns the bounding box of the placed nodes as min and max
// corners. An empty result has a zero box.
func (r Result) Bounds() (minX, minY, maxX, maxY float64) {
	if len(r.Nodes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range r.Nodes {
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
		maxX = math.Max(maxX, n.X+n.Width)
		maxY = math.Max(maxY, n.Y+n.Height)
	}
	return minX, minY, maxX, maxY
}

// Engine computes layered layouts. It holds only configuration, so one
// Engine may serve concurrent calls.
type Engine struct {
	opts Options
}

// New returns an Engine. Zero fields of opts take their defaults.
func New(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

var defaultEngine = New(DefaultOptions())

// Layout places nodes with the default options.
func Layout(nodes []Node, edges []Edge, dir Direction) Result {
	return defaultEngine.Layout(nodes, edges, dir)
}

// Layout places nodes in ranks along dir and returns annotated copies.
//
// The phases are:
//
//  1. break cycles by dropping back-edges, then rank every node by the
//     longest path from a source;
//  2. subdivide edges spanning several ranks and order each rank with
//     barycenter sweeps, keeping the ordering with the fewest crossings;
//  3. assign cross-axis coordinates by pulling nodes toward the median of
//     their neighbours while holding sibling separation, and rank-axis
//     coordinates from the thickest box of each rank plus the rank gap;
//  4. mirror the rank axis for BT and RL, and set connector sides.
//
// Layout never fails and never mutates its inputs. Edges with a missing
// endpoint are ignored, duplicate edges count once, duplicate node IDs keep
// the first occurrence, and non-positive or non-finite sizes are clamped to
// [MinSize]. An unknown dir is treated as TB.
func (e *Engine) Layout(nodes []Node, edges []Edge, dir Direction) Result {
	dir = ParseDirection(string(dir))
	res := Result{
		Direction: dir,
		Nodes:     []Node{},
		Edges:     append([]Edge{}, edges...),
	}

	g, placed := buildGraph(nodes, edges)
	if len(placed) == 0 {
		return res
	}

	for _, be := range transform.BreakCycles(g) {
		res.BackEdges = append(res.BackEdges, Edge{Source: be.From, Target: be.To})
	}
	transform.AssignLayers(g)
	transform.Subdivide(g)

	orders := e.order(g)
	p := e.newPlacer(g, orders, dir)
	p.assignCross()
	p.assignRank()

	target, source := dir.Sides()
	for i := range placed {
		n := &placed[i]
		cross, rank := p.cross[n.ID], p.rank[n.ID]
		gn, _ := g.Node(n.ID)
		n.Rank = gn.Row
		n.Order = p.pos[n.ID]
		if dir.Horizontal() {
			n.X, n.Y = rank-n.Width/2, cross-n.Height/2
		} else {
			n.X, n.Y = cross-n.Width/2, rank-n.Height/2
		}
		n.TargetSide, n.SourceSide = target, source
	}

	res.Nodes = placed
	res.Width, res.Height = normalizeOrigin(res.Nodes)
	return res
}

// buildGraph copies the input into a fresh DAG in input order. It returns
// the deduplicated, clamped node copies that will receive positions.
func buildGraph(nodes []Node, edges []Edge) (*dag.DAG, []Node) {
	g := dag.New()
	placed := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			continue
		}
		if _, dup := g.Node(n.ID); dup {
			continue
		}
		n.Width = clamp(n.Width)
		n.Height = clamp(n.Height)
		n.X, n.Y, n.Rank, n.Order = 0, 0, 0, 0
		_ = g.AddNode(dag.Node{ID: n.ID, Width: n.Width, Height: n.Height})
		placed = append(placed, n)
	}

	for _, e := range edges {
		if g.HasEdge(e.Source, e.Target) {
			continue
		}
		// dangling endpoints are rejected by AddEdge and simply skipped
		_ = g.AddEdge(dag.Edge{From: e.Source, To: e.Target})
	}
	return g, placed
}

func clamp(v float64) float64 {
	if v < MinSize || math.IsNaN(v) || math.IsInf(v, 0) {
		return MinSize
	}
	return v
}

// normalizeOrigin shifts nodes so the bounding box starts at (0, 0) and
// returns its size.
func normalizeOrigin(nodes []Node) (width, height float64) {
	r := Result{Nodes: nodes}
	minX, minY, maxX, maxY := r.Bounds()
	for i := range nodes {
		nodes[i].X -= minX
		nodes[i].Y -= minY
	}
	return maxX - minX, maxY - minY
}
