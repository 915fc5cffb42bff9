package layout

import (
	"slices"

	"github.com/matzehuels/flowgen/pkg/dag"
)

// coordPasses is the number of alternating down/up alignment passes. The
// last pass is upward so parents settle over their children.
const coordPasses = 8

// placer assigns center coordinates. "cross" is the within-rank axis (x for
// vertical flow), "rank" the axis ranks advance along.
type placer struct {
	g       *dag.DAG
	orders  map[int][]string
	maxRow  int
	dir     Direction
	spacing Spacing
	edgeSep float64

	cross map[string]float64
	rank  map[string]float64
	pos   map[string]int
}

func (e *Engine) newPlacer(g *dag.DAG, orders map[int][]string, dir Direction) *placer {
	p := &placer{
		g:       g,
		orders:  orders,
		maxRow:  g.MaxRow(),
		dir:     dir,
		spacing: e.opts.Spacing(dir),
		edgeSep: e.opts.EdgeSep,
		cross:   make(map[string]float64, g.NodeCount()),
		rank:    make(map[string]float64, g.NodeCount()),
		pos:     make(map[string]int, g.NodeCount()),
	}
	for _, row := range orders {
		for i, id := range row {
			p.pos[id] = i
		}
	}
	return p
}

// crossSize is the node's extent along the within-rank axis.
func (p *placer) crossSize(id string) float64 {
	n, _ := p.g.Node(id)
	if p.dir.Horizontal() {
		return n.Height
	}
	return n.Width
}

// rankSize is the node's extent along the rank axis.
func (p *placer) rankSize(id string) float64 {
	n, _ := p.g.Node(id)
	if p.dir.Horizontal() {
		return n.Width
	}
	return n.Height
}

// halfGap is the share of the separation a node claims on each side.
// Boxes claim half the sibling gap, subdivider lanes half the edge gap.
func (p *placer) halfGap(id string) float64 {
	if n, _ := p.g.Node(id); n.IsSubdivider() {
		return p.edgeSep / 2
	}
	return p.spacing.NodeSep / 2
}

// minSep is the minimum center distance between neighbours a and b.
func (p *placer) minSep(a, b string) float64 {
	return p.crossSize(a)/2 + p.halfGap(a) + p.halfGap(b) + p.crossSize(b)/2
}

// assignCross packs every rank from zero, then runs the alignment passes.
func (p *placer) assignCross() {
	for r := 0; r <= p.maxRow; r++ {
		row := p.orders[r]
		x := 0.0
		for i, id := range row {
			if i > 0 {
				x += p.minSep(row[i-1], id)
			}
			p.cross[id] = x
		}
	}

	for pass := 0; pass < coordPasses; pass++ {
		if pass%2 == 0 {
			for r := 1; r <= p.maxRow; r++ {
				p.align(p.orders[r], true)
			}
		} else {
			for r := p.maxRow - 1; r >= 0; r-- {
				p.align(p.orders[r], false)
			}
		}
	}
}

// align moves the nodes of one rank as close as possible to the median
// position of their neighbours in the adjacent rank (parents when
// useParents, children otherwise) without breaking minimum separation.
//
// Substituting y[i] = x[i] - offset[i], where offset is the running sum of
// minimum separations, turns the separation constraints into y being
// non-decreasing. The least-squares fit of a non-decreasing sequence to the
// targets is an isotonic regression, solved by pool-adjacent-violators.
func (p *placer) align(row []string, useParents bool) {
	if len(row) == 0 {
		return
	}

	offsets := make([]float64, len(row))
	targets := make([]float64, len(row))
	weights := make([]float64, len(row))
	for i, id := range row {
		if i > 0 {
			offsets[i] = offsets[i-1] + p.minSep(row[i-1], id)
		}
		want, ok := p.neighbourMedian(id, useParents)
		weights[i] = 1
		if !ok {
			// unconstrained nodes stay put but yield easily
			want = p.cross[id]
			weights[i] = 0.01
		}
		targets[i] = want - offsets[i]
	}

	fitted := isotonic(targets, weights)
	for i, id := range row {
		p.cross[id] = fitted[i] + offsets[i]
	}
}

// neighbourMedian returns the median cross coordinate of the node's
// neighbours one rank up (useParents) or down. For an even count it is the
// mean of the two middle values.
func (p *placer) neighbourMedian(id string, useParents bool) (float64, bool) {
	neighbours := p.g.Children(id)
	if useParents {
		neighbours = p.g.Parents(id)
	}
	if len(neighbours) == 0 {
		return 0, false
	}

	xs := make([]float64, 0, len(neighbours))
	for _, nb := range neighbours {
		xs = append(xs, p.cross[nb])
	}
	slices.Sort(xs)
	m := len(xs) / 2
	if len(xs)%2 == 1 {
		return xs[m], true
	}
	return (xs[m-1] + xs[m]) / 2, true
}

// isotonic returns the weighted least-squares non-decreasing fit of ys
// using the pool-adjacent-violators algorithm.
func isotonic(ys, ws []float64) []float64 {
	type block struct {
		mean, weight float64
		size         int
	}
	blocks := make([]block, 0, len(ys))
	for i, y := range ys {
		blocks = append(blocks, block{mean: y, weight: ws[i], size: 1})
		for len(blocks) > 1 {
			last, prev := blocks[len(blocks)-1], blocks[len(blocks)-2]
			if prev.mean <= last.mean {
				break
			}
			w := prev.weight + last.weight
			merged := block{
				mean:   (prev.mean*prev.weight + last.mean*last.weight) / w,
				weight: w,
				size:   prev.size + last.size,
			}
			blocks = append(blocks[:len(blocks)-2], merged)
		}
	}

	out := make([]float64, 0, len(ys))
	for _, b := range blocks {
		for j := 0; j < b.size; j++ {
			out = append(out, b.mean)
		}
	}
	return out
}

// assignRank places rank centers: every rank is as thick as its largest box
// and consecutive ranks are RankSep apart. Boxes are centered on their rank
// line. Reversed directions mirror the axis.
func (p *placer) assignRank() {
	thickness := make([]float64, p.maxRow+1)
	for r := 0; r <= p.maxRow; r++ {
		for _, id := range p.orders[r] {
			if s := p.rankSize(id); s > thickness[r] {
				thickness[r] = s
			}
		}
	}

	centers := make([]float64, p.maxRow+1)
	edge := 0.0
	for r := 0; r <= p.maxRow; r++ {
		if r > 0 {
			edge += p.spacing.RankSep
		}
		centers[r] = edge + thickness[r]/2
		edge += thickness[r]
	}

	for r := 0; r <= p.maxRow; r++ {
		c := centers[r]
		if p.dir.Reversed() {
			c = edge - c
		}
		for _, id := range p.orders[r] {
			p.rank[id] = c
		}
	}
}
