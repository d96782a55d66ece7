package position

import (
	"testing"

	"github.com/matzehuels/swimlane/pkg/graph"
)

func newGraph(t *testing.T, nodes []graph.Node) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%d) error = %v", n.ID, err)
		}
	}
	return g
}

func TestAssign_Chain(t *testing.T) {
	g := newGraph(t, []graph.Node{
		{ID: 1, Kind: graph.KindStart, Pool: "P", Lane: "L", Layer: 0},
		{ID: 2, Kind: graph.KindTask, Pool: "P", Lane: "L", Layer: 1},
		{ID: 3, Kind: graph.KindEnd, Pool: "P", Lane: "L", Layer: 2},
	})
	opts := DefaultOptions()
	Assign(g, opts)

	n1, _ := g.Node(1)
	n2, _ := g.Node(2)
	n3, _ := g.Node(3)
	if !(n1.X < n2.X && n2.X < n3.X) {
		t.Errorf("x = %v, %v, %v, want increasing", n1.X, n2.X, n3.X)
	}
	if n2.X-n1.X != opts.LayerWidth {
		t.Errorf("layer pitch = %v, want %v", n2.X-n1.X, opts.LayerWidth)
	}
	// The 36px start event is centered on the 80px task row.
	c1, c2 := n1.Bounds().Center(), n2.Bounds().Center()
	if c1.Y != c2.Y {
		t.Errorf("center y = %v, want %v", c1.Y, c2.Y)
	}
	if n1.YOffset != 22 {
		t.Errorf("YOffset = %v, want 22", n1.YOffset)
	}
	if n2.Y != opts.OriginY+opts.LanePadding {
		t.Errorf("y = %v, want %v", n2.Y, opts.OriginY+opts.LanePadding)
	}
}

func TestAssign_NonNegativeAndDisjoint(t *testing.T) {
	g := newGraph(t, []graph.Node{
		{ID: 1, Kind: graph.KindGatewayParallel, Pool: "P", Lane: "L", Layer: 0, Slot: 0},
		{ID: 2, Kind: graph.KindSubprocess, Pool: "P", Lane: "L", Layer: 1, Slot: 0, Order: 0},
		{ID: 3, Kind: graph.KindTask, Pool: "P", Lane: "L", Layer: 1, Slot: 1, Order: 1},
		{ID: 4, Kind: graph.KindDataObject, Pool: "P", Lane: "L", Layer: 1, Slot: 1, Order: 2},
		{ID: 5, Kind: graph.KindTask, Pool: "Q", Lane: "M", Layer: 0},
	})
	Assign(g, DefaultOptions())

	for _, n := range g.Nodes() {
		if n.X < 0 || n.Y < 0 || n.X+n.XOffset < 0 || n.Y+n.YOffset < 0 {
			t.Errorf("node %d at (%v,%v) is negative", n.ID, n.X, n.Y)
		}
	}
	layer1 := []int{2, 3, 4}
	for i := range layer1 {
		for j := i + 1; j < len(layer1); j++ {
			a, _ := g.Node(layer1[i])
			b, _ := g.Node(layer1[j])
			ra, rb := a.Bounds(), b.Bounds()
			if ra.Y < rb.Bottom() && rb.Y < ra.Bottom() {
				t.Errorf("nodes %d and %d overlap vertically: %v %v", a.ID, b.ID, ra, rb)
			}
		}
	}
}

func TestAssign_NodesInsideLane(t *testing.T) {
	g := newGraph(t, []graph.Node{
		{ID: 1, Kind: graph.KindTask, Pool: "P", Lane: "A", Layer: 0},
		{ID: 2, Kind: graph.KindSubprocess, Pool: "P", Lane: "A", Layer: 1},
		{ID: 3, Kind: graph.KindTask, Pool: "P", Lane: "B", Layer: 0},
	})
	Assign(g, DefaultOptions())

	for _, n := range g.Nodes() {
		lane := g.LaneOf(n)
		lb, nb := lane.Bounds(), n.Bounds()
		if nb.X < lb.X || nb.Right() > lb.Right() || nb.Y < lb.Y || nb.Bottom() > lb.Bottom() {
			t.Errorf("node %d %v outside lane %s %v", n.ID, nb, lane.Name, lb)
		}
	}
	a, b := g.Pool("P").Lane("A"), g.Pool("P").Lane("B")
	if b.Y != a.Y+a.H {
		t.Errorf("lane B y = %v, want %v", b.Y, a.Y+a.H)
	}
	p := g.Pool("P")
	if p.H != a.H+b.H {
		t.Errorf("pool height = %v, want %v", p.H, a.H+b.H)
	}
}

func TestAssign_MinimumWidth(t *testing.T) {
	opts := DefaultOptions()
	g := newGraph(t, []graph.Node{{ID: 1, Kind: graph.KindTask, Pool: "P", Lane: "L", Layer: 0}})
	Assign(g, opts)

	p := g.Pool("P")
	want := opts.PoolHeader + opts.LanePadding + 2*opts.LayerWidth
	if p.W != want {
		t.Errorf("single-layer pool width = %v, want %v", p.W, want)
	}
}

func TestAssign_PoolsStack(t *testing.T) {
	opts := DefaultOptions()
	g := newGraph(t, []graph.Node{
		{ID: 1, Pool: "P", Lane: "L", Layer: 0},
		{ID: 2, Pool: "Q", Lane: "L", Layer: 0},
		{ID: 3, Pool: "Q", Lane: "L", Layer: 4},
	})
	Assign(g, opts)

	p, q := g.Pool("P"), g.Pool("Q")
	if q.Y != p.Y+p.H+opts.PoolGap {
		t.Errorf("pool Q y = %v, want %v", q.Y, p.Y+p.H+opts.PoolGap)
	}
	if p.W != q.W {
		t.Errorf("pool widths differ: %v vs %v", p.W, q.W)
	}
	if p.Lanes[0].W != p.W-opts.PoolHeader {
		t.Errorf("lane width = %v, want %v", p.Lanes[0].W, p.W-opts.PoolHeader)
	}
}

func TestAssign_WideColumn(t *testing.T) {
	opts := DefaultOptions()
	g := newGraph(t, []graph.Node{
		{ID: 1, Kind: graph.KindSubprocess, Pool: "P", Lane: "L", Layer: 0},
		{ID: 2, Kind: graph.KindTask, Pool: "P", Lane: "L", Layer: 1},
	})
	Assign(g, opts)

	n1, _ := g.Node(1)
	n2, _ := g.Node(2)
	if n1.Bounds().Right()+opts.Spacing > n2.Bounds().X {
		t.Errorf("subprocess %v overlaps next column %v", n1.Bounds(), n2.Bounds())
	}
}
