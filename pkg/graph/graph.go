package graph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the id is not positive.
	ErrInvalidNodeID = errors.New("node id must be positive")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when the id is already in use.
	ErrDuplicateNodeID = errors.New("duplicate node id")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that is not in the graph.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
)

// NoLayer marks a node whose layer has not been assigned yet.
const NoLayer = -1

// Node is a process element placed in exactly one pool and lane.
//
// ID, Kind, Label, Pool and Lane are inputs. The remaining fields are layout
// state written by the layout stages.
type Node struct {
	ID    int
	Kind  Kind
	Label string
	Pool  string
	Lane  string

	// Layer is the column index within the lane, or NoLayer.
	Layer int
	// Slot is the row index within the lane written by crossing minimization.
	// Nodes of different layers sharing a slot are vertically aligned.
	Slot int
	// Order is the position of the node inside its layer, top to bottom.
	Order int

	// X and Y locate the node's layer cell; XOffset and YOffset center the
	// node inside the cell. See [Node.Bounds].
	X, Y             float64
	XOffset, YOffset float64

	// CrossesLanes is set when an outgoing edge targets a node in another
	// lane or pool. CrossTarget is that edge's target id.
	CrossesLanes bool
	CrossTarget  int
}

// Size returns the rendered size of the node.
func (n *Node) Size() Size { return n.Kind.Size() }

// Bounds returns the rectangle the node is rendered in.
func (n *Node) Bounds() Rect {
	s := n.Size()
	return Rect{n.X + n.XOffset, n.Y + n.YOffset, s.W, s.H}
}

// DisplayLabel returns the label, or the kind and id when the label is empty.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	k := n.Kind
	if k == "" {
		k = KindTask
	}
	return fmt.Sprintf("%s %d", k, n.ID)
}

// Edge is a directed sequence flow between two nodes.
type Edge struct {
	From  int
	To    int
	Label string
	Pool  string
	Lane  string

	// Points is the routed polyline from the source boundary to the target
	// boundary. It is empty until edge routing runs, and stays empty when the
	// edge cannot be routed.
	Points []Point
}

func (e *Edge) String() string { return fmt.Sprintf("%d->%d", e.From, e.To) }

// Lane is a sub-partition of a pool. Layer assignment and in-layer ordering
// are computed per lane.
type Lane struct {
	Name  string
	Pool  string
	Nodes []*Node

	X, Y, W, H float64
}

// Bounds returns the lane rectangle computed by coordinate assignment.
func (l *Lane) Bounds() Rect { return Rect{l.X, l.Y, l.W, l.H} }

// Layers groups the lane's nodes by layer in ascending layer order. Nodes
// keep their relative order within a group. Nodes without a layer are
// omitted.
func (l *Lane) Layers() [][]*Node {
	byLayer := make(map[int][]*Node)
	var ids []int
	for _, n := range l.Nodes {
		if n.Layer == NoLayer {
			continue
		}
		if _, ok := byLayer[n.Layer]; !ok {
			ids = append(ids, n.Layer)
		}
		byLayer[n.Layer] = append(byLayer[n.Layer], n)
	}
	slices.Sort(ids)
	out := make([][]*Node, len(ids))
	for i, id := range ids {
		out[i] = byLayer[id]
	}
	return out
}

// MaxLayer returns the highest assigned layer in the lane, or NoLayer.
func (l *Lane) MaxLayer() int {
	m := NoLayer
	for _, n := range l.Nodes {
		m = max(m, n.Layer)
	}
	return m
}

// SortByLayer orders the lane's nodes by layer, then in-layer order.
// The sort is stable so ties keep insertion order.
func (l *Lane) SortByLayer() {
	slices.SortStableFunc(l.Nodes, func(a, b *Node) int {
		if a.Layer != b.Layer {
			return a.Layer - b.Layer
		}
		return a.Order - b.Order
	})
}

// Pool is an independent participant holding one or more lanes.
type Pool struct {
	Name  string
	Lanes []*Lane

	X, Y, W, H float64
}

// Bounds returns the pool rectangle computed by coordinate assignment.
func (p *Pool) Bounds() Rect { return Rect{p.X, p.Y, p.W, p.H} }

// Lane returns the lane with the given name, or nil.
func (p *Pool) Lane(name string) *Lane {
	for _, l := range p.Lanes {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Graph is the mutable root passed through every layout stage.
//
// The zero value is not usable; create graphs with [New].
// Graph is not safe for concurrent use.
type Graph struct {
	Pools []*Pool
	Edges []*Edge

	// LastNodeID is the highest node id handed out or added so far.
	// [Graph.AddNodeAuto] allocates ids above it.
	LastNodeID int

	nodes    map[int]*Node
	order    []*Node
	outgoing map[int][]*Edge
	incoming map[int][]*Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[int]*Node),
		outgoing: make(map[int][]*Edge),
		incoming: make(map[int][]*Edge),
	}
}

// AddNode adds a copy of n, creating its pool and lane if they do not exist.
// Returns ErrInvalidNodeID for ids ≤ 0 and ErrDuplicateNodeID when the id is
// taken.
func (g *Graph) AddNode(n Node) error {
	if n.ID <= 0 {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateNodeID, n.ID)
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node)
	lane := g.ensureLane(node.Pool, node.Lane)
	lane.Nodes = append(lane.Nodes, node)
	g.LastNodeID = max(g.LastNodeID, node.ID)
	return nil
}

// AddNodeAuto adds a node with the next free id and returns it.
// The node's layer is NoLayer.
func (g *Graph) AddNodeAuto(kind Kind, label, pool, lane string) *Node {
	id := g.NextNodeID()
	_ = g.AddNode(Node{ID: id, Kind: kind, Label: label, Pool: pool, Lane: lane, Layer: NoLayer})
	return g.nodes[id]
}

// NextNodeID returns the id [Graph.AddNodeAuto] would allocate next.
func (g *Graph) NextNodeID() int { return g.LastNodeID + 1 }

// AddPool creates an empty pool, or returns the existing one with that name.
// Pools created before any node fix the pool order.
func (g *Graph) AddPool(name string) *Pool {
	if p := g.Pool(name); p != nil {
		return p
	}
	p := &Pool{Name: name}
	g.Pools = append(g.Pools, p)
	return p
}

func (g *Graph) ensureLane(pool, lane string) *Lane {
	p := g.AddPool(pool)
	if l := p.Lane(lane); l != nil {
		return l
	}
	l := &Lane{Name: lane, Pool: pool}
	p.Lanes = append(p.Lanes, l)
	return l
}

// AddLane creates an empty lane in the named pool, or returns the existing one.
func (g *Graph) AddLane(pool, lane string) *Lane { return g.ensureLane(pool, lane) }

// AddEdge appends a copy of e. Both endpoints must already exist.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSourceNode, e.From)
	}
	if _, ok := g.nodes[e.To]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTargetNode, e.To)
	}
	edge := &e
	g.Edges = append(g.Edges, edge)
	g.outgoing[e.From] = append(g.outgoing[e.From], edge)
	g.incoming[e.To] = append(g.incoming[e.To], edge)
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id int) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node { return g.order }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// Outgoing returns the edges leaving id in insertion order.
func (g *Graph) Outgoing(id int) []*Edge { return g.outgoing[id] }

// Incoming returns the edges entering id in insertion order.
func (g *Graph) Incoming(id int) []*Edge { return g.incoming[id] }

// Pool returns the pool with the given name, or nil.
func (g *Graph) Pool(name string) *Pool {
	for _, p := range g.Pools {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Lanes returns every lane in pool order.
func (g *Graph) Lanes() []*Lane {
	var out []*Lane
	for _, p := range g.Pools {
		out = append(out, p.Lanes...)
	}
	return out
}

// LaneOf returns the lane holding n.
func (g *Graph) LaneOf(n *Node) *Lane {
	if p := g.Pool(n.Pool); p != nil {
		return p.Lane(n.Lane)
	}
	return nil
}

// SameLane reports whether both endpoints of e sit in the same pool and lane.
// Edges with a missing endpoint are never in the same lane.
func (g *Graph) SameLane(e *Edge) bool {
	from, ok1 := g.nodes[e.From]
	to, ok2 := g.nodes[e.To]
	return ok1 && ok2 && from.Pool == to.Pool && from.Lane == to.Lane
}

// LaneEdges returns the edges whose endpoints both belong to l.
func (g *Graph) LaneEdges(l *Lane) []*Edge {
	var out []*Edge
	for _, e := range g.Edges {
		from, ok := g.nodes[e.From]
		if !ok || from.Pool != l.Pool || from.Lane != l.Name {
			continue
		}
		if g.SameLane(e) {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks that every edge references existing nodes and that every
// node is held by the lane it names.
func (g *Graph) Validate() error {
	for _, e := range g.Edges {
		if _, ok := g.nodes[e.From]; !ok {
			return fmt.Errorf("edge %s: source %d: %w", e, e.From, ErrInvalidEdgeEndpoint)
		}
		if _, ok := g.nodes[e.To]; !ok {
			return fmt.Errorf("edge %s: target %d: %w", e, e.To, ErrInvalidEdgeEndpoint)
		}
	}
	for _, n := range g.order {
		l := g.LaneOf(n)
		if l == nil || !slices.Contains(l.Nodes, n) {
			return fmt.Errorf("node %d: not in lane %q of pool %q", n.ID, n.Lane, n.Pool)
		}
	}
	return nil
}

// Bounds returns the smallest rectangle containing every pool, or the zero
// Rect for a graph without pools.
func (g *Graph) Bounds() Rect {
	if len(g.Pools) == 0 {
		return Rect{}
	}
	r := g.Pools[0].Bounds()
	for _, p := range g.Pools[1:] {
		r = r.hull(p.Bounds())
	}
	return r
}
