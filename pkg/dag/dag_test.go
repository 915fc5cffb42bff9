package dag

import (
	"errors"
	"slices"
	"testing"
)

func graph(t *testing.T, nodes map[string]int, edges ...[2]string) *DAG {
	t.Helper()
	g := New()
	// map iteration is random; add in ID order for stable listings
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if err := g.AddNode(Node{ID: id, Row: nodes[id], Width: 160, Height: 70}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestAddNodeErrors(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v", err)
	}
	g.AddNode(Node{ID: "start"})
	if err := g.AddNode(Node{ID: "start"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v", err)
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d", g.NodeCount())
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a"})
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(x→a) = %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(a→x) = %v", err)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d", g.EdgeCount())
	}
}

func TestListingsFollowInsertionOrder(t *testing.T) {
	g := New()
	ids := []string{"zeta", "alpha", "mid", "beta"}
	for _, id := range ids {
		g.AddNode(Node{ID: id})
	}
	g.AddEdge(Edge{From: "mid", To: "alpha"})
	g.SetRows(map[string]int{"alpha": 1, "ghost": 4})

	if got := NodeIDs(g.Nodes()); !slices.Equal(got, ids) {
		t.Errorf("Nodes() = %v", got)
	}
	if got := NodeIDs(g.Sources()); !slices.Equal(got, []string{"zeta", "mid", "beta"}) {
		t.Errorf("Sources() = %v", got)
	}
	rows := g.Rows()
	if !slices.Equal(rows[0], []string{"zeta", "mid", "beta"}) || !slices.Equal(rows[1], []string{"alpha"}) {
		t.Errorf("Rows() = %v", rows)
	}
	if g.MaxRow() != 1 {
		t.Errorf("MaxRow() = %d", g.MaxRow())
	}
}

func TestRemoveEdgeDropsParallelCopies(t *testing.T) {
	g := graph(t, map[string]int{"a": 0, "b": 1}, [2]string{"a", "b"}, [2]string{"a", "b"})
	if got := g.Children("a"); len(got) != 2 {
		t.Fatalf("Children(a) = %v", got)
	}
	g.RemoveEdge("a", "b")
	g.RemoveEdge("b", "a")
	if g.HasEdge("a", "b") || g.EdgeCount() != 0 || g.InDegree("b") != 0 || len(g.Parents("b")) != 0 {
		t.Errorf("edges left: %v", g.Edges())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		nodes map[string]int
		edges [][2]string
		want  error
	}{
		{"Layered", map[string]int{"a": 0, "b": 1, "c": 1}, [][2]string{{"a", "b"}, {"a", "c"}}, nil},
		{"SkipsRow", map[string]int{"a": 0, "b": 2}, [][2]string{{"a", "b"}}, ErrNonConsecutiveRows},
		{"Upward", map[string]int{"a": 1, "b": 0}, [][2]string{{"a", "b"}}, ErrNonConsecutiveRows},
		{"Cycle", map[string]int{"a": 0, "b": 1}, [][2]string{{"a", "b"}, {"b", "a"}}, ErrGraphHasCycle},
		{"SelfLoop", map[string]int{"a": 0}, [][2]string{{"a", "a"}}, ErrGraphHasCycle},
		{"Empty", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph(t, tt.nodes, tt.edges...)
			if err := g.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCountCrossings(t *testing.T) {
	g := graph(t, map[string]int{"a": 0, "b": 0, "c": 1, "d": 1, "e": 2, "f": 2},
		[2]string{"a", "d"}, [2]string{"b", "c"}, [2]string{"c", "f"}, [2]string{"d", "e"})

	crossed := map[int][]string{0: {"a", "b"}, 1: {"c", "d"}, 2: {"e", "f"}}
	if got := CountCrossings(g, crossed); got != 2 {
		t.Errorf("CountCrossings(crossed) = %d, want 2", got)
	}
	untangled := map[int][]string{0: {"a", "b"}, 1: {"d", "c"}, 2: {"e", "f"}}
	if got := CountCrossings(g, untangled); got != 0 {
		t.Errorf("CountCrossings(untangled) = %d, want 0", got)
	}
}

func TestCountLayerCrossingsFan(t *testing.T) {
	// a fans out to x and y, b to x: b→x crosses a→y only
	g := graph(t, map[string]int{"a": 0, "b": 0, "x": 1, "y": 1},
		[2]string{"a", "x"}, [2]string{"a", "y"}, [2]string{"b", "x"})
	if got := CountLayerCrossings(g, []string{"a", "b"}, []string{"x", "y"}); got != 1 {
		t.Errorf("CountLayerCrossings = %d, want 1", got)
	}
	if got := CountLayerCrossings(g, []string{"b", "a"}, []string{"x", "y"}); got != 0 {
		t.Errorf("CountLayerCrossings(swapped) = %d, want 0", got)
	}
	if got := CountLayerCrossings(g, nil, []string{"x"}); got != 0 {
		t.Errorf("empty upper row = %d", got)
	}
}

func TestCountPairCrossings(t *testing.T) {
	g := graph(t, map[string]int{"p": 0, "q": 0, "x": 1, "y": 1}, [2]string{"p", "y"}, [2]string{"q", "x"})

	if got := CountPairCrossings(g, "p", "q", []string{"x", "y"}, false); got != 1 {
		t.Errorf("p before q = %d, want 1", got)
	}
	if got := CountPairCrossings(g, "q", "p", []string{"x", "y"}, false); got != 0 {
		t.Errorf("q before p = %d, want 0", got)
	}
	if got := CountPairCrossings(g, "x", "y", []string{"p", "q"}, true); got != 1 {
		t.Errorf("x before y (parents) = %d, want 1", got)
	}
}
