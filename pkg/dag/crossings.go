package dag

import (
	"maps"
	"slices"
)

// CountCrossings sums [CountLayerCrossings] over every pair of consecutive
// rows in orders. Rows absent from orders count as empty.
func CountCrossings(g *DAG, orders map[int][]string) int {
	total := 0
	for _, r := range slices.Sorted(maps.Keys(orders)) {
		if next, ok := orders[r+1]; ok {
			total += CountLayerCrossings(g, orders[r], next)
		}
	}
	return total
}

// CountLayerCrossings counts crossing edge pairs between an upper row and
// the row below it.
//
// With edges sorted by (upper position, lower position), two edges cross
// exactly when the later one lands strictly left of the earlier one, so
// the count is the number of inversions in the lower positions. A Fenwick
// tree finds them in O(E log V).
func CountLayerCrossings(g *DAG, upper, lower []string) int {
	lowerPos := PosMap(lower)

	type hop struct{ from, to int }
	var hops []hop
	for i, id := range upper {
		for _, c := range g.Children(id) {
			if j, ok := lowerPos[c]; ok {
				hops = append(hops, hop{i, j})
			}
		}
	}
	if len(hops) < 2 {
		return 0
	}
	slices.SortFunc(hops, func(a, b hop) int {
		if a.from != b.from {
			return a.from - b.from
		}
		return a.to - b.to
	})

	seen := newFenwick(len(lower))
	crossings := 0
	for k, h := range hops {
		crossings += k - seen.prefix(h.to)
		seen.add(h.to)
	}
	return crossings
}

// CountPairCrossings counts crossings between the edges of left and right,
// two nodes of one row with left placed first, against the adjacent row
// adjOrder. useParents selects the row above instead of the row below.
func CountPairCrossings(g *DAG, left, right string, adjOrder []string, useParents bool) int {
	return CountPairCrossingsWithPos(g, left, right, PosMap(adjOrder), useParents)
}

// CountPairCrossingsWithPos is [CountPairCrossings] with the adjacent row
// given as a position map.
func CountPairCrossingsWithPos(g *DAG, left, right string, adjPos map[string]int, useParents bool) int {
	neighbours := g.Children
	if useParents {
		neighbours = g.Parents
	}
	n := 0
	for _, a := range neighbours(left) {
		pa, ok := adjPos[a]
		if !ok {
			continue
		}
		for _, b := range neighbours(right) {
			if pb, ok := adjPos[b]; ok && pb < pa {
				n++
			}
		}
	}
	return n
}

// fenwick counts inserted positions in [0, n) with prefix queries.
type fenwick []int

func newFenwick(n int) fenwick { return make(fenwick, n+1) }

func (f fenwick) add(pos int) {
	for i := pos + 1; i < len(f); i += i & -i {
		f[i]++
	}
}

// prefix returns how many inserted positions are <= pos.
func (f fenwick) prefix(pos int) int {
	sum := 0
	for i := pos + 1; i > 0; i -= i & -i {
		sum += f[i]
	}
	return sum
}
