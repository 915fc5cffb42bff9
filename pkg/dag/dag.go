package dag

import (
	"errors"
	"slices"
)

var (
	ErrInvalidNodeID     = errors.New("node ID must not be empty")
	ErrDuplicateNodeID   = errors.New("duplicate node ID")
	ErrUnknownSourceNode = errors.New("unknown source node")
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrNonConsecutiveRows means some edge does not run from row r to r+1.
	ErrNonConsecutiveRows = errors.New("edges must connect consecutive rows")
	ErrGraphHasCycle      = errors.New("graph contains a cycle")
)

// NodeKind tells caller boxes from virtual nodes.
type NodeKind int

const (
	NodeKindRegular NodeKind = iota
	// NodeKindSubdivider reserves a lane for a long edge in one
	// intermediate row. It has no size.
	NodeKindSubdivider
)

// Node is a box with a size and, once layers are assigned, a row.
type Node struct {
	ID     string
	Row    int
	Width  float64
	Height float64
	Kind   NodeKind
	// MasterID is the source of the long edge a subdivider belongs to.
	MasterID string
}

func (n Node) IsSubdivider() bool { return n.Kind == NodeKindSubdivider }

// Edge is a directed from→to pair.
type Edge struct {
	From, To string
}

// DAG is a directed graph whose nodes are grouped into rows. Cycles and
// long edges are allowed while the graph is built; the transform package
// removes them and [DAG.Validate] confirms the result.
//
// All listings follow insertion order. A DAG is not safe for concurrent
// use.
type DAG struct {
	byID     map[string]*Node
	nodes    []*Node
	edges    []Edge
	children map[string][]string
	parents  map[string][]string
}

// New returns an empty graph.
func New() *DAG {
	return &DAG{
		byID:     make(map[string]*Node),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// AddNode appends a copy of n.
func (d *DAG) AddNode(n Node) error {
	switch {
	case n.ID == "":
		return ErrInvalidNodeID
	case d.byID[n.ID] != nil:
		return ErrDuplicateNodeID
	}
	node := &n
	d.byID[n.ID] = node
	d.nodes = append(d.nodes, node)
	return nil
}

// AddEdge appends from→to. Both endpoints must exist; parallel edges and
// self-loops are accepted.
func (d *DAG) AddEdge(e Edge) error {
	if d.byID[e.From] == nil {
		return ErrUnknownSourceNode
	}
	if d.byID[e.To] == nil {
		return ErrUnknownTargetNode
	}
	d.edges = append(d.edges, e)
	d.children[e.From] = append(d.children[e.From], e.To)
	d.parents[e.To] = append(d.parents[e.To], e.From)
	return nil
}

// RemoveEdge drops every from→to edge.
func (d *DAG) RemoveEdge(from, to string) {
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool { return e == Edge{From: from, To: to} })
	d.children[from] = slices.DeleteFunc(d.children[from], func(id string) bool { return id == to })
	d.parents[to] = slices.DeleteFunc(d.parents[to], func(id string) bool { return id == from })
}

func (d *DAG) HasEdge(from, to string) bool { return slices.Contains(d.children[from], to) }

// Node returns the stored node. Changes through the pointer are visible to
// the graph, except that Row changes need [DAG.SetRows] to stay consistent.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.byID[id]
	return n, ok
}

// Nodes returns the stored nodes in insertion order.
func (d *DAG) Nodes() []*Node { return slices.Clone(d.nodes) }

func (d *DAG) Edges() []Edge          { return slices.Clone(d.edges) }
func (d *DAG) NodeCount() int         { return len(d.nodes) }
func (d *DAG) EdgeCount() int         { return len(d.edges) }
func (d *DAG) InDegree(id string) int { return len(d.parents[id]) }

// Children and Parents return adjacency lists with one entry per edge.
// Callers must not modify them.
func (d *DAG) Children(id string) []string { return d.children[id] }
func (d *DAG) Parents(id string) []string  { return d.parents[id] }

// Sources returns the nodes without incoming edges.
func (d *DAG) Sources() []*Node {
	var out []*Node
	for _, n := range d.nodes {
		if len(d.parents[n.ID]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// SetRows assigns rows by node ID. Nodes missing from rows keep theirs.
func (d *DAG) SetRows(rows map[string]int) {
	for id, r := range rows {
		if n := d.byID[id]; n != nil {
			n.Row = r
		}
	}
}

// Rows groups node IDs by row, each group in insertion order.
func (d *DAG) Rows() map[int][]string {
	rows := make(map[int][]string)
	for _, n := range d.nodes {
		rows[n.Row] = append(rows[n.Row], n.ID)
	}
	return rows
}

// MaxRow returns the deepest row, 0 for an empty graph.
func (d *DAG) MaxRow() int {
	deepest := 0
	for _, n := range d.nodes {
		deepest = max(deepest, n.Row)
	}
	return deepest
}

// Validate reports whether the graph is properly layered: acyclic, with
// every edge joining row r to row r+1.
func (d *DAG) Validate() error {
	if err := d.checkAcyclic(); err != nil {
		return err
	}
	for _, e := range d.edges {
		if d.byID[e.To].Row != d.byID[e.From].Row+1 {
			return ErrNonConsecutiveRows
		}
	}
	return nil
}

// checkAcyclic peels nodes of in-degree zero; anything left sits on or
// behind a cycle.
func (d *DAG) checkAcyclic() error {
	indeg := make(map[string]int, len(d.nodes))
	var ready []string
	for _, n := range d.nodes {
		indeg[n.ID] = len(d.parents[n.ID])
		if indeg[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}
	seen := 0
	for len(ready) > 0 {
		id := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		seen++
		for _, c := range d.children[id] {
			if indeg[c]--; indeg[c] == 0 {
				ready = append(ready, c)
			}
		}
	}
	if seen != len(d.nodes) {
		return ErrGraphHasCycle
	}
	return nil
}

// PosMap maps each ID to its index in ids.
func PosMap(ids []string) map[string]int {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	return pos
}

// NodeIDs lists the IDs of nodes.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
