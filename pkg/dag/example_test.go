package dag_test

import (
	"fmt"

	"github.com/matzehuels/flowgen/pkg/dag"
)

func ExampleDAG_Rows() {
	// checkout → (pay, ship) → done
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "checkout", Row: 0})
	_ = g.AddNode(dag.Node{ID: "pay", Row: 1})
	_ = g.AddNode(dag.Node{ID: "ship", Row: 1})
	_ = g.AddNode(dag.Node{ID: "done", Row: 2})
	_ = g.AddEdge(dag.Edge{From: "checkout", To: "pay"})
	_ = g.AddEdge(dag.Edge{From: "checkout", To: "ship"})
	_ = g.AddEdge(dag.Edge{From: "pay", To: "done"})
	_ = g.AddEdge(dag.Edge{From: "ship", To: "done"})

	rows := g.Rows()
	for r := 0; r <= g.MaxRow(); r++ {
		fmt.Println(r, rows[r])
	}
	fmt.Println("valid:", g.Validate() == nil)
	// Output:
	// 0 [checkout]
	// 1 [pay ship]
	// 2 [done]
	// valid: true
}

func ExampleCountLayerCrossings() {
	//  a   b
	//   \ /
	//    X
	//   / \
	//  c   d
	g := dag.New()
	for _, id := range []string{"a", "b", "c", "d"} {
		_ = g.AddNode(dag.Node{ID: id})
	}
	_ = g.AddEdge(dag.Edge{From: "a", To: "d"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "c"})

	fmt.Println(dag.CountLayerCrossings(g, []string{"a", "b"}, []string{"c", "d"}))
	fmt.Println(dag.CountLayerCrossings(g, []string{"a", "b"}, []string{"d", "c"}))
	// Output:
	// 1
	// 0
}
