package ordering

import (
	"fmt"
	"slices"

	"github.com/matzehuels/swimlane/pkg/graph"
)

// Orderer assigns Slot and Order to the nodes of one lane. Edges holds the
// lane's internal edges. Implementations must be deterministic and must not
// change node layers.
type Orderer interface {
	ReorderLane(lane *graph.Lane, edges []*graph.Edge)
}

// Names accepted by [New].
const (
	NameAuto        = "auto"
	NameAlignment   = "alignment"
	NameBarycentric = "barycentric"
)

// DefaultSweeps is the number of barycentric sweeps when none is configured.
const DefaultSweeps = 8

// New returns the orderer registered under name.
func New(name string, sweeps int) (Orderer, error) {
	switch name {
	case "", NameAuto:
		return Auto{Sweeps: sweeps}, nil
	case NameAlignment:
		return Alignment{}, nil
	case NameBarycentric:
		return Barycentric{Sweeps: sweeps}, nil
	}
	return nil, fmt.Errorf("unknown ordering %q", name)
}

// LaneCrossings reports the crossings left in a lane after ordering.
type LaneCrossings struct {
	Pool, Lane string
	Crossings  int
}

// Apply reorders every lane of g with o and sorts each lane by layer and
// order. It returns the remaining crossings per lane.
func Apply(g *graph.Graph, o Orderer) []LaneCrossings {
	var out []LaneCrossings
	for _, lane := range g.Lanes() {
		edges := g.LaneEdges(lane)
		o.ReorderLane(lane, edges)
		lane.SortByLayer()
		out = append(out, LaneCrossings{
			Pool:      lane.Pool,
			Lane:      lane.Name,
			Crossings: CountCrossings(lane, edges),
		})
	}
	return out
}

// Auto uses [Barycentric] for lanes with more than two layers and
// [Alignment] otherwise.
type Auto struct {
	Sweeps int
}

// ReorderLane picks the strategy by the lane's layer count.
func (a Auto) ReorderLane(lane *graph.Lane, edges []*graph.Edge) {
	if len(lane.Layers()) > 2 {
		Barycentric{Sweeps: a.Sweeps}.ReorderLane(lane, edges)
		return
	}
	Alignment{}.ReorderLane(lane, edges)
}

// Alignment aligns each node to the slot of a connected predecessor in an
// earlier layer. The first node of a layer to claim a slot keeps it; later
// nodes fall back to a fresh slot.
type Alignment struct{}

// ReorderLane assigns slots layer by layer in insertion order.
func (Alignment) ReorderLane(lane *graph.Lane, edges []*graph.Edge) {
	layerOf := make(map[int]int, len(lane.Nodes))
	for _, n := range lane.Nodes {
		layerOf[n.ID] = n.Layer
	}
	preds := make(map[int][]int)
	for _, e := range edges {
		preds[e.To] = append(preds[e.To], e.From)
	}

	slot := make(map[int]int, len(lane.Nodes))
	next := 0
	for _, layer := range lane.Layers() {
		claimed := make(map[int]bool)
		for _, n := range layer {
			s, ok := alignedSlot(n, preds[n.ID], layerOf, slot, claimed)
			if !ok {
				s = next
				next++
			}
			claimed[s] = true
			slot[n.ID] = s
			n.Slot = s
		}
		slices.SortStableFunc(layer, func(a, b *graph.Node) int { return a.Slot - b.Slot })
		for i, n := range layer {
			n.Order = i
		}
	}
}

func alignedSlot(n *graph.Node, preds []int, layerOf, slot map[int]int, claimed map[int]bool) (int, bool) {
	for _, p := range preds {
		if layerOf[p] >= n.Layer {
			continue
		}
		s, ok := slot[p]
		if ok && !claimed[s] {
			return s, true
		}
	}
	return 0, false
}
