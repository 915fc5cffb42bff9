package layout_test

import (
	"fmt"

	"github.com/matzehuels/flowgen/pkg/layout"
)

func ExampleLayout() {
	nodes := []layout.Node{
		{ID: "request", Width: 160, Height: 70},
		{ID: "auth", Width: 160, Height: 70},
		{ID: "cache", Width: 160, Height: 70},
	}
	edges := []layout.Edge{
		{Source: "request", Target: "auth"},
		{Source: "request", Target: "cache"},
	}

	res := layout.Layout(nodes, edges, layout.TopBottom)
	for _, n := range res.Nodes {
		fmt.Printf("%s rank=%d at (%.0f, %.0f) in=%s out=%s\n", n.ID, n.Rank, n.X, n.Y, n.TargetSide, n.SourceSide)
	}
	fmt.Printf("size %.0fx%.0f\n", res.Width, res.Height)
	// Output:
	// request rank=0 at (130, 0) in=top out=bottom
	// auth rank=1 at (0, 190) in=top out=bottom
	// cache rank=1 at (260, 190) in=top out=bottom
	// size 420x260
}

func ExampleOverrides() {
	res := layout.Layout([]layout.Node{{ID: "a", Width: 100, Height: 40}}, nil, layout.LeftRight)

	var pins layout.Overrides
	pins.Set("a", layout.Point{X: 12, Y: 34})
	placed := pins.Apply(res.Nodes)

	fmt.Println(res.Nodes[0].X, res.Nodes[0].Y)
	fmt.Println(placed[0].X, placed[0].Y)
	// Output:
	// 0 0
	// 12 34
}
