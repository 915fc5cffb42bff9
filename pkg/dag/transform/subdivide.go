package transform

import (
	"fmt"

	"github.com/matzehuels/flowgen/pkg/dag"
)

// Subdivide routes every edge that skips rows through one zero-size
// subdivider per intermediate row and returns how many it inserted.
//
//	api (row 0) → db (row 3)   becomes   api → api_sub_1 → api_sub_2 → db
//
// The subdividers reserve a lane for the edge in each row they occupy, so
// ordering treats the edge like any other neighbour and coordinate
// assignment keeps boxes off its path. Each carries the source as MasterID.
// IDs that already exist get a "__n" suffix. Parallel long edges share one
// chain.
//
// A node fanning out to k rows below it gets a chain per edge, so the
// number of subdividers grows with the square of the graph depth. That is
// fine for diagrams of a few hundred nodes; deep graphs with wide fan-out
// from the top rows get slow to lay out.
func Subdivide(g *dag.DAG) int {
	var long []dag.Edge
	for _, e := range g.Edges() {
		src, ok1 := g.Node(e.From)
		dst, ok2 := g.Node(e.To)
		if ok1 && ok2 && dst.Row > src.Row+1 {
			long = append(long, e)
		}
	}

	// remove first so RemoveEdge scans the original edges, not the chains
	var chains []dag.Edge
	done := make(map[dag.Edge]bool)
	for _, e := range long {
		if !done[e] {
			done[e] = true
			g.RemoveEdge(e.From, e.To)
			chains = append(chains, e)
		}
	}

	fresh := freshIDs(g)
	inserted := 0
	for _, e := range chains {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)
		prev := e.From
		for row := src.Row + 1; row < dst.Row; row++ {
			id := fresh(fmt.Sprintf("%s_sub_%d", e.From, row))
			mustAdd(g.AddNode(dag.Node{ID: id, Row: row, Kind: dag.NodeKindSubdivider, MasterID: e.From}))
			mustAdd(g.AddEdge(dag.Edge{From: prev, To: id}))
			prev = id
			inserted++
		}
		mustAdd(g.AddEdge(dag.Edge{From: prev, To: e.To}))
	}
	return inserted
}

// freshIDs returns a generator of IDs unused in g, suffixing "__n" to a
// taken base. Suffixes continue from the last one handed out per base.
func freshIDs(g *dag.DAG) func(base string) string {
	taken := make(map[string]bool, g.NodeCount())
	for _, n := range g.Nodes() {
		taken[n.ID] = true
	}
	next := make(map[string]int)
	return func(base string) string {
		id, i := base, next[base]
		for taken[id] {
			i++
			id = fmt.Sprintf("%s__%d", base, i)
		}
		next[base] = i
		taken[id] = true
		return id
	}
}

// mustAdd panics on an insertion error; endpoints here always exist.
func mustAdd(err error) {
	if err != nil {
		panic(err)
	}
}
