package transform

import "github.com/matzehuels/flowgen/pkg/dag"

// BreakCycles removes the back-edges of g and returns them, each from→to
// pair once, in the order a depth-first search finds them.
//
// The search starts at every source in insertion order and then at any
// node left unvisited, which only happens for nodes that sit on a cycle. An
// edge into a node still on the search path closes a cycle; self-loops
// always do. Parallel copies of a back-edge go together.
func BreakCycles(g *dag.DAG) []dag.Edge {
	const (
		unvisited = iota
		onPath
		finished
	)
	state := make(map[string]int, g.NodeCount())
	found := make(map[dag.Edge]bool)
	var back []dag.Edge

	type frame struct {
		id   string
		next int
	}
	visit := func(root string) {
		stack := []frame{{id: root}}
		state[root] = onPath
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.id)
			if top.next == len(children) {
				state[top.id] = finished
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch state[child] {
			case unvisited:
				state[child] = onPath
				stack = append(stack, frame{id: child})
			case onPath:
				if e := (dag.Edge{From: top.id, To: child}); !found[e] {
					found[e] = true
					back = append(back, e)
				}
			}
		}
	}

	for _, n := range g.Sources() {
		if state[n.ID] == unvisited {
			visit(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if state[n.ID] == unvisited {
			visit(n.ID)
		}
	}
	for _, e := range back {
		g.RemoveEdge(e.From, e.To)
	}
	return back
}
