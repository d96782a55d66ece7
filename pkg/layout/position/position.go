// Package position converts layers and slots into pixel coordinates and
// computes lane and pool bounding boxes.
//
// Pools are stacked vertically with a gap between them and lanes are stacked
// vertically inside their pool, below each other and right of the pool
// header. Inside a lane, layer l occupies column l and slot s occupies the
// s-th distinct slot row. Columns are as wide as the layer width, or wider
// when a node needs it; rows are as tall as the reference node, or taller.
// Nodes smaller than their cell get XOffset/YOffset so they sit centered.
//
// Every pool reserves at least MinLayers columns so that lanes with a single
// layer still leave room for gateway branches.
package position

import (
	"slices"

	"github.com/matzehuels/swimlane/pkg/graph"
)

// Options holds the layout constants, all in pixels.
type Options struct {
	OriginX, OriginY float64
	PoolHeader       float64
	LayerWidth       float64
	RefWidth         float64
	RefHeight        float64
	Spacing          float64
	LanePadding      float64
	PoolGap          float64
	MinLayers        int
}

// DefaultOptions returns the standard layout constants.
func DefaultOptions() Options {
	return Options{
		OriginX:     50,
		OriginY:     50,
		PoolHeader:  30,
		LayerWidth:  150,
		RefWidth:    graph.SizeTask.W,
		RefHeight:   graph.SizeTask.H,
		Spacing:     20,
		LanePadding: 20,
		PoolGap:     40,
		MinLayers:   2,
	}
}

// Assign positions every node, lane and pool of g.
func Assign(g *graph.Graph, opts Options) {
	y := opts.OriginY
	width := 0.0
	for _, p := range g.Pools {
		p.X, p.Y = opts.OriginX, y
		cols := columns(p, opts)

		laneY := p.Y
		for _, lane := range p.Lanes {
			lane.X, lane.Y = p.X+opts.PoolHeader, laneY
			lane.H = placeLane(lane, cols, opts)
			laneY += lane.H
		}
		if len(p.Lanes) == 0 {
			laneY += opts.RefHeight + 2*opts.LanePadding
		}
		p.H = laneY - p.Y
		p.W = opts.PoolHeader + opts.LanePadding + cols.total()
		width = max(width, p.W)
		y = p.Y + p.H + opts.PoolGap
	}

	for _, p := range g.Pools {
		p.W = width
		for _, lane := range p.Lanes {
			lane.W = width - opts.PoolHeader
		}
	}
}

// columnLayout holds the x origin and width of each layer column in a pool.
type columnLayout struct {
	x, width []float64
}

func (c columnLayout) total() float64 {
	var sum float64
	for _, w := range c.width {
		sum += w
	}
	return sum
}

func (c columnLayout) at(layer int) (x, w float64) {
	layer = min(max(layer, 0), len(c.x)-1)
	return c.x[layer], c.width[layer]
}

func columns(p *graph.Pool, opts Options) columnLayout {
	maxLayer := 0
	for _, lane := range p.Lanes {
		maxLayer = max(maxLayer, lane.MaxLayer())
	}
	n := max(maxLayer+1, opts.MinLayers, 1)

	c := columnLayout{x: make([]float64, n), width: make([]float64, n)}
	for i := range c.width {
		c.width[i] = opts.LayerWidth
	}
	for _, lane := range p.Lanes {
		for _, node := range lane.Nodes {
			l := max(node.Layer, 0)
			c.width[l] = max(c.width[l], node.Size().W+opts.Spacing)
		}
	}
	x := p.X + opts.PoolHeader + opts.LanePadding
	for i, w := range c.width {
		c.x[i] = x
		x += w
	}
	return c
}

// placeLane positions the lane's nodes and returns the lane height.
func placeLane(lane *graph.Lane, cols columnLayout, opts Options) float64 {
	separateSlots(lane)

	var slots []int
	rowHeight := make(map[int]float64)
	for _, n := range lane.Nodes {
		if _, ok := rowHeight[n.Slot]; !ok {
			slots = append(slots, n.Slot)
			rowHeight[n.Slot] = opts.RefHeight
		}
		rowHeight[n.Slot] = max(rowHeight[n.Slot], n.Size().H)
	}
	slices.Sort(slots)

	rowY := make(map[int]float64, len(slots))
	y := lane.Y + opts.LanePadding
	for _, s := range slots {
		rowY[s] = y
		y += rowHeight[s] + opts.Spacing
	}

	bottom := lane.Y + opts.RefHeight + opts.LanePadding
	for _, n := range lane.Nodes {
		size := n.Size()
		x, w := cols.at(n.Layer)
		cell := max(opts.RefWidth, w-opts.Spacing)
		n.X, n.Y = x, rowY[n.Slot]
		n.XOffset = max((cell-size.W)/2, 0)
		n.YOffset = max((rowHeight[n.Slot]-size.H)/2, 0)
		bottom = max(bottom, n.Y+n.YOffset+size.H)
	}
	return bottom + opts.LanePadding - lane.Y
}

// separateSlots makes slots strictly increasing by Order within every layer,
// so no two nodes of a layer share a row.
func separateSlots(lane *graph.Lane) {
	for _, layer := range lane.Layers() {
		slices.SortStableFunc(layer, func(a, b *graph.Node) int {
			if a.Slot != b.Slot {
				return a.Slot - b.Slot
			}
			return a.Order - b.Order
		})
		for i := 1; i < len(layer); i++ {
			if layer[i].Slot <= layer[i-1].Slot {
				layer[i].Slot = layer[i-1].Slot + 1
			}
		}
	}
}
