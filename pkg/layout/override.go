package layout

import (
	"maps"
	"slices"
)

// Point is a top-left position set by hand.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Overrides records positions the user dragged nodes to. It sits on top of
// the engine: a layout is always computed in full, then Apply replaces the
// computed position of every overridden node.
//
// The zero value is ready to use. Overrides is not safe for concurrent use.
type Overrides struct {
	points map[string]Point
}

// Set pins id at p.
func (o *Overrides) Set(id string, p Point) {
	if o.points == nil {
		o.points = make(map[string]Point)
	}
	o.points[id] = p
}

// Get returns the pinned position of id.
func (o *Overrides) Get(id string) (Point, bool) {
	p, ok := o.points[id]
	return p, ok
}

// Clear unpins the given IDs, or every node when called without arguments.
func (o *Overrides) Clear(ids ...string) {
	if len(ids) == 0 {
		clear(o.points)
		return
	}
	for _, id := range ids {
		delete(o.points, id)
	}
}

// Len returns the number of pinned nodes.
func (o *Overrides) Len() int { return len(o.points) }

// IDs returns the pinned node IDs in sorted order.
func (o *Overrides) IDs() []string {
	return slices.Sorted(maps.Keys(o.points))
}

// Retain drops every override whose ID is not in keep.
func (o *Overrides) Retain(keep func(id string) bool) {
	maps.DeleteFunc(o.points, func(id string, _ Point) bool { return !keep(id) })
}

// Apply returns a copy of nodes with overridden positions substituted.
// The input slice is not modified.
func (o *Overrides) Apply(nodes []Node) []Node {
	out := slices.Clone(nodes)
	if len(o.points) == 0 {
		return out
	}
	for i := range out {
		if p, ok := o.points[out[i].ID]; ok {
			out[i].X, out[i].Y = p.X, p.Y
		}
	}
	return out
}

// Clone returns an independent copy.
func (o *Overrides) Clone() *Overrides {
	return &Overrides{points: maps.Clone(o.points)}
}
