package transform

import "github.com/matzehuels/flowgen/pkg/dag"

// AssignLayers sets each node's Row to the length of the longest path
// reaching it from a source: sources sit on row 0 and every other node one
// row below its deepest parent. Every edge u→v then has row(v) > row(u).
//
// g should be acyclic (run [BreakCycles] first). A parent reached back
// through a remaining cycle does not push its child down.
func AssignLayers(g *dag.DAG) {
	// pending+1 == 0, so a parent still being resolved adds nothing.
	const pending = -1
	rows := make(map[string]int, g.NodeCount())

	var depth func(id string) int
	depth = func(id string) int {
		if r, ok := rows[id]; ok {
			return r
		}
		rows[id] = pending
		r := 0
		for _, p := range g.Parents(id) {
			r = max(r, depth(p)+1)
		}
		rows[id] = r
		return r
	}

	for _, n := range g.Nodes() {
		depth(n.ID)
	}
	g.SetRows(rows)
}
