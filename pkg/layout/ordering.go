package layout

import (
	"slices"

	"github.com/matzehuels/flowgen/pkg/dag"
)

// order arranges the nodes of each rank to reduce edge crossings.
//
// Ranks start in insertion order. Each sweep reorders ranks by the
// barycenter of their neighbours in the rank just fixed, alternating
// downward (against parents) and upward (against children), followed by a
// transpose pass that swaps adjacent pairs while that lowers crossings. The
// ordering with the fewest crossings seen is kept; on ties the earlier one
// wins.
func (e *Engine) order(g *dag.DAG) map[int][]string {
	orders := g.Rows()
	maxRow := g.MaxRow()

	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, orders)

	for i := 0; i < e.opts.Sweeps && bestCrossings > 0; i++ {
		if i%2 == 0 {
			for r := 1; r <= maxRow; r++ {
				orders[r] = byBarycenter(g, orders[r], orders[r-1], true)
			}
		} else {
			for r := maxRow - 1; r >= 0; r-- {
				orders[r] = byBarycenter(g, orders[r], orders[r+1], false)
			}
		}
		transpose(g, orders, maxRow)

		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			best = cloneOrders(orders)
			bestCrossings = c
		}
	}
	return best
}

// byBarycenter sorts row by the mean position of each node's neighbours in
// adj. A node without neighbours there keeps its current index as its key.
// The sort is stable, so equal keys keep their relative order.
func byBarycenter(g *dag.DAG, row, adj []string, useParents bool) []string {
	adjPos := dag.PosMap(adj)
	keys := make(map[string]float64, len(row))
	for i, id := range row {
		neighbours := g.Children(id)
		if useParents {
			neighbours = g.Parents(id)
		}
		sum, n := 0.0, 0
		for _, nb := range neighbours {
			if p, ok := adjPos[nb]; ok {
				sum += float64(p)
				n++
			}
		}
		if n == 0 {
			keys[id] = float64(i)
			continue
		}
		keys[id] = sum / float64(n)
	}

	out := slices.Clone(row)
	slices.SortStableFunc(out, func(a, b string) int {
		switch ka, kb := keys[a], keys[b]; {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
	return out
}

// transpose swaps adjacent nodes of a rank whenever the swap strictly lowers
// the crossings against both neighbouring ranks, repeating until no swap
// helps.
func transpose(g *dag.DAG, orders map[int][]string, maxRow int) {
	for improved := true; improved; {
		improved = false
		for r := 0; r <= maxRow; r++ {
			row := orders[r]
			var above, below map[string]int
			if r > 0 {
				above = dag.PosMap(orders[r-1])
			}
			if r < maxRow {
				below = dag.PosMap(orders[r+1])
			}
			for i := 0; i+1 < len(row); i++ {
				a, b := row[i], row[i+1]
				before := pairCrossings(g, a, b, above, below)
				after := pairCrossings(g, b, a, above, below)
				if after < before {
					row[i], row[i+1] = b, a
					improved = true
				}
			}
		}
	}
}

func pairCrossings(g *dag.DAG, left, right string, above, below map[string]int) int {
	c := 0
	if above != nil {
		c += dag.CountPairCrossingsWithPos(g, left, right, above, true)
	}
	if below != nil {
		c += dag.CountPairCrossingsWithPos(g, left, right, below, false)
	}
	return c
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, row := range orders {
		out[r] = slices.Clone(row)
	}
	return out
}
