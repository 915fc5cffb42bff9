// Package pkg provides the libraries behind flowgen, a diagram generator
// built around a deterministic layered layout engine.
//
// # Overview
//
// A diagram is a list of styled nodes and the edges between them. A
// language model produces one from a prompt, the layout engine gives every
// node a position, and exporters encode the result for draw.io, Graphviz or
// as an image. The packages are arranged in three groups:
//
//  1. Layout: [dag], [dag/transform] and [layout]
//  2. Diagram model and editing: [flow] and [editor]
//  3. Services: [ai], [export], [cache], [pipeline], [server], [config]
//
// # Architecture
//
//	prompt
//	   ↓
//	[ai] package (language model → flow.Diagram)
//	   ↓
//	[flow] package (normalize, validate)
//	   ↓
//	[layout] package (break cycles → rank → order → place)
//	   ↓
//	[export] packages (json, drawio, dot, svg, png, gif)
//
// [pipeline] runs these stages with caching; the CLI and [server] both
// sit on top of it.
//
// # Quick Start
//
// Lay out and export a hand-written diagram:
//
//	import (
//	    "github.com/matzehuels/flowgen/pkg/export/drawio"
//	    "github.com/matzehuels/flowgen/pkg/export/raster"
//	    "github.com/matzehuels/flowgen/pkg/flow"
//	)
//
//	d := flow.Diagram{
//	    LayoutDirection: "LR",
//	    Nodes: []flow.Node{{ID: "a", Label: "Order"}, {ID: "b", Label: "Ship"}},
//	    Edges: []flow.Edge{{Source: "a", Target: "b"}},
//	}
//	d = flow.Arrange(d, nil)
//	xml, _ := drawio.Marshal(d, drawio.Options{})
//	png, _ := raster.RenderPNG(d, raster.DefaultOptions())
//
// # Main Packages
//
// [dag] - Row-based directed graph with insertion-ordered listings and a
// Fenwick-tree crossing counter.
//
// [dag/transform] - Cycle breaking, longest-path layering and subdivision of
// edges that span several rows.
//
// [layout] - The engine: barycenter ordering with transposition,
// isotonic coordinate assignment and direction-aware connector sides.
//
// [flow] - Diagram data model, JSON wire format, normalization and defaults.
//
// [editor] - Manual edits on top of a layout: adding, connecting, moving
// and deleting nodes, with dragged positions kept across relayouts.
//
// [ai] - Generator interface and the Gemini client.
//
// [export] - Output formats. [export/drawio], [export/dot] and
// [export/raster] hold the encoders.
//
// [cache] - File, Redis and null caches with content-hash keys.
//
// [pipeline] - Generate → layout → render with caching and observability
// hooks.
//
// [server] - HTTP API on chi.
//
// [config] - TOML configuration file.
//
// [dag]: https://pkg.go.dev/github.com/matzehuels/flowgen/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/flowgen/pkg/dag/transform
// [layout]: https://pkg.go.dev/github.com/matzehuels/flowgen/pkg/layout
// [flow]: https://pkg.go.dev/github.com/matzehuels/flowgen/pkg/flow
// [editor]: https://pkg.go.dev/github.com/matzehuels/flowgen/pkg/editor
// [ai]: https://pkg.go.dev/github.com/matzehuels/flowgen/pkg/ai
// [export]: https://pkg.go.dev/github.com/matzehuels/flowgen/pkg/export
// [export/drawio]: https://pkg.go.dev/github.com/matzehuels/flowgen/pkg/export/drawio
// [export/dot]: https://pkg.go.dev/github.com/matzehuels/flowgen/pkg/export/dot
// [export/raster]: https://pkg.go.dev/github.com/matzehuels/flowgen/pkg/export/raster
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowgen/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flowgen/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/flowgen/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/flowgen/pkg/config
package pkg
