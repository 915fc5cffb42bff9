// Package dag provides the row-based directed graph the layout engine works
// on.
//
// # Overview
//
// Layered graph drawing assigns every vertex to a row (a rank along the flow
// axis) and then orders and spaces the vertices of each row. This package
// holds that intermediate structure. Nodes carry their box size and row,
// edges are plain from/to pairs, and every listing preserves insertion
// order so the algorithms built on top stay deterministic.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "start", Width: 160, Height: 70})
//	g.AddNode(dag.Node{ID: "check", Width: 160, Height: 70, Row: 1})
//	g.AddEdge(dag.Edge{From: "start", To: "check"})
//
// Query the structure with [DAG.Children], [DAG.Parents] and [DAG.Rows].
// [DAG.Validate] checks that no cycle remains and that edges only join
// consecutive rows.
//
// # Node Types
//
//   - [NodeKindRegular]: boxes supplied by the caller
//   - [NodeKindSubdivider]: zero-size virtual nodes that break an edge which
//     spans several rows into single-row hops
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count crossings between
// consecutive rows with a Fenwick tree in O(E log V). The ordering phase of
// the layout engine uses them to keep the best ordering seen across sweeps.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. The layout engine builds a
// fresh DAG per call, so separate calls never share one.
//
// The [transform] subpackage breaks cycles, assigns rows and subdivides long
// edges.
//
// [transform]: github.com/matzehuels/flowgen/pkg/dag/transform
package dag
