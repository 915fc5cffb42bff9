// Package transform prepares an arbitrary directed graph for layered
// drawing.
//
// Graphs produced by a language model or by hand editing are not layered:
// they may contain cycles, self-loops and edges that jump several ranks.
// The functions here turn such a graph into one where every edge runs from
// a row to the next row, which is what the ordering and coordinate phases
// of the layout engine expect.
//
// Apply them in this order:
//
//	back := transform.BreakCycles(g) // drop back-edges, report them
//	transform.AssignLayers(g)        // longest-path rows
//	transform.Subdivide(g)           // virtual nodes on long edges
//
// After these three steps g.Validate() returns nil.
//
// # Cycle Breaking
//
// [BreakCycles] removes every edge that closes a cycle during a
// depth-first search from the sources. These back-edges contribute no
// ordering constraint; the caller still draws them.
//
// # Layer Assignment
//
// [AssignLayers] places each node one row past its deepest parent, so rank
// 0 holds exactly the nodes without an unresolved ancestor.
//
// # Edge Subdivision
//
// [Subdivide] breaks long edges into chains of zero-size subdivider nodes.
// Each distinct long edge gets its own chain, so a node that fans out deep into
// the graph adds on the order of depth² subdividers. Diagrams of a few
// hundred nodes lay out quickly; thousands of ranks with wide fan-out do
// not.
package transform
