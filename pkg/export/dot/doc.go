// Package dot writes diagrams as Graphviz DOT and renders them to SVG.
//
// # Usage
//
//	src := dot.ToDOT(d, dot.Options{Pinned: true})
//	svg, err := dot.RenderSVG(ctx, src, dot.Options{Pinned: true})
//
// With Pinned set every node carries its computed position (pos="x,y!")
// and rendering uses the neato engine, so the SVG shows the same placement
// as every other export. Without it the graph is handed to the dot engine
// with only rankdir set, which is handy for comparing layouts.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package dot
