package ordering

import (
	"cmp"
	"slices"

	"github.com/matzehuels/swimlane/pkg/graph"
)

// Barycentric refines the [Alignment] ordering with alternating barycenter
// sweeps and keeps the ordering with the fewest crossings.
//
// When no sweep improves on the alignment, the alignment slots are kept.
// Otherwise every node's slot becomes its index in the layer.
type Barycentric struct {
	// Sweeps is the number of down/up sweep pairs. Zero means DefaultSweeps.
	Sweeps int
}

// ReorderLane runs the alignment, then the sweeps.
func (b Barycentric) ReorderLane(lane *graph.Lane, edges []*graph.Edge) {
	Alignment{}.ReorderLane(lane, edges)

	layers := orderedLayers(lane)
	if len(layers) < 2 {
		return
	}
	sweeps := b.Sweeps
	if sweeps <= 0 {
		sweeps = DefaultSweeps
	}

	preds, succs := neighbors(lane, edges)
	pos := make(map[int]int, len(lane.Nodes))
	for _, layer := range layers {
		for i, n := range layer {
			pos[n.ID] = i
		}
	}

	initial := countLayers(layers, edges)
	best, bestCrossings := cloneLayers(layers), initial
	for range sweeps {
		if bestCrossings == 0 {
			break
		}
		for i := 1; i < len(layers); i++ {
			sortByBarycenter(layers[i], preds, pos)
		}
		if c := countLayers(layers, edges); c < bestCrossings {
			best, bestCrossings = cloneLayers(layers), c
		}
		for i := len(layers) - 2; i >= 0; i-- {
			sortByBarycenter(layers[i], succs, pos)
		}
		if c := countLayers(layers, edges); c < bestCrossings {
			best, bestCrossings = cloneLayers(layers), c
		}
	}
	if bestCrossings == initial {
		return
	}
	for _, layer := range best {
		for i, n := range layer {
			n.Order, n.Slot = i, i
		}
	}
}

// neighbors indexes, for every lane node, its neighbors in earlier layers
// (preds) and in later layers (succs).
func neighbors(lane *graph.Lane, edges []*graph.Edge) (preds, succs map[int][]int) {
	layerOf := make(map[int]int, len(lane.Nodes))
	for _, n := range lane.Nodes {
		layerOf[n.ID] = n.Layer
	}
	preds, succs = make(map[int][]int), make(map[int][]int)
	for _, e := range edges {
		lu, ok1 := layerOf[e.From]
		lv, ok2 := layerOf[e.To]
		if !ok1 || !ok2 || lu == lv {
			continue
		}
		early, late := e.From, e.To
		if lu > lv {
			early, late = late, early
		}
		preds[late] = append(preds[late], early)
		succs[early] = append(succs[early], late)
	}
	return preds, succs
}

// sortByBarycenter orders layer by the mean position of each node's
// neighbors, ties by node id. Nodes without neighbors keep their current
// position as key. pos is updated with the new indices.
func sortByBarycenter(layer []*graph.Node, nbrs map[int][]int, pos map[int]int) {
	key := make(map[int]float64, len(layer))
	for _, n := range layer {
		ids := nbrs[n.ID]
		if len(ids) == 0 {
			key[n.ID] = float64(pos[n.ID])
			continue
		}
		var sum float64
		for _, id := range ids {
			sum += float64(pos[id])
		}
		key[n.ID] = sum / float64(len(ids))
	}
	slices.SortStableFunc(layer, func(a, b *graph.Node) int {
		if c := cmp.Compare(key[a.ID], key[b.ID]); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	for i, n := range layer {
		pos[n.ID] = i
	}
}

func cloneLayers(layers [][]*graph.Node) [][]*graph.Node {
	out := make([][]*graph.Node, len(layers))
	for i, l := range layers {
		out[i] = slices.Clone(l)
	}
	return out
}

// orderedLayers groups the lane by layer with each layer sorted by Order.
func orderedLayers(lane *graph.Lane) [][]*graph.Node {
	layers := lane.Layers()
	for _, layer := range layers {
		slices.SortStableFunc(layer, func(a, b *graph.Node) int { return a.Order - b.Order })
	}
	return layers
}
