package ordering

import (
	"slices"

	"github.com/matzehuels/swimlane/pkg/graph"
)

// CountCrossings returns the number of edge crossings between consecutive
// layers of the lane, using each node's Order as its position.
func CountCrossings(lane *graph.Lane, edges []*graph.Edge) int {
	return countLayers(orderedLayers(lane), edges)
}

func countLayers(layers [][]*graph.Node, edges []*graph.Edge) int {
	children := make(map[int][]int)
	for _, e := range edges {
		children[e.From] = append(children[e.From], e.To)
	}
	crossings := 0
	for i := 0; i < len(layers)-1; i++ {
		crossings += countLayerCrossings(children, layers[i], layers[i+1])
	}
	return crossings
}

// countLayerCrossings counts crossings between edges from upper to lower
// using a Fenwick tree over target positions.
func countLayerCrossings(children map[int][]int, upper, lower []*graph.Node) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	lowerPos := make(map[int]int, len(lower))
	for i, n := range lower {
		lowerPos[n.ID] = i
	}

	type edge struct{ upper, lower int }
	var edges []edge
	for i, n := range upper {
		for _, child := range children[n.ID] {
			if pos, ok := lowerPos[child]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}
