package layout

import (
	"slices"
	"testing"
)

func TestOverrides(t *testing.T) {
	var o Overrides
	res := Layout(boxes("a", "b"), edges("a", "b"), TopBottom)

	if got := o.Apply(res.Nodes); !slices.Equal(got, res.Nodes) {
		t.Error("empty overrides changed positions")
	}

	o.Set("b", Point{X: 500, Y: 20})
	o.Set("ghost", Point{X: 1, Y: 1})
	got := o.Apply(res.Nodes)

	if b := got[1]; b.X != 500 || b.Y != 20 {
		t.Errorf("b = (%v, %v), want (500, 20)", b.X, b.Y)
	}
	if got[0] != res.Nodes[0] {
		t.Error("a should keep its computed position")
	}
	if res.Nodes[1].X == 500 {
		t.Error("Apply modified its input")
	}

	o.Retain(func(id string) bool { return id != "ghost" })
	if !slices.Equal(o.IDs(), []string{"b"}) {
		t.Errorf("IDs() = %v, want [b]", o.IDs())
	}

	c := o.Clone()
	o.Clear("b")
	if _, ok := o.Get("b"); ok {
		t.Error("Clear(b) left b pinned")
	}
	if c.Len() != 1 {
		t.Error("Clone shares state with original")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Clear() left %d overrides", c.Len())
	}
}
