// Package layout places the nodes of a directed graph in ranks.
//
// Given boxes of fixed size, directed edges between them and a flow
// direction, [Engine.Layout] returns a deterministic, non-overlapping
// placement in the layered (Sugiyama) style:
//
//   - Ranking: cycles are broken by ignoring back-edges, then each node is
//     ranked by the longest path that reaches it from a source.
//   - Ordering: edges that skip ranks get virtual nodes, and each rank is
//     reordered by barycenter sweeps to untangle edges.
//   - Coordinates: nodes are pulled toward the median of their neighbours
//     while keeping the sibling gap; ranks are separated by the rank gap.
//
// # Directions
//
// [TopBottom] and [BottomTop] stack ranks vertically, [LeftRight] and
// [RightLeft] horizontally. The reversed directions mirror the rank axis
// and nothing else. Every node gets the same connector sides:
//
//	TB  in=top     out=bottom
//	BT  in=bottom  out=top
//	LR  in=left    out=right
//	RL  in=right   out=left
//
// # Usage
//
//	res := layout.Layout(
//	    []layout.Node{{ID: "a", Width: 160, Height: 70}, {ID: "b", Width: 160, Height: 70}},
//	    []layout.Edge{{Source: "a", Target: "b"}},
//	    layout.TopBottom,
//	)
//	for _, n := range res.Nodes {
//	    fmt.Println(n.ID, n.X, n.Y) // top-left corner
//	}
//
// # Input Tolerance
//
// Layout never fails. Dangling edges are skipped, duplicate edges count
// once, the first of several nodes with one ID wins, sizes below 1 are
// clamped to 1 and unknown directions fall back to TB. Inputs are never
// modified.
//
// # Manual Positions
//
// The engine always lays out the full graph. [Overrides] keeps dragged
// positions apart from it and layers them onto a fresh result.
package layout
