package routing

import (
	"container/heap"
	"math"

	"github.com/matzehuels/swimlane/pkg/graph"
)

// Grid routes edges around node obstacles with A* search on a pixel grid.
type Grid struct {
	Options
}

// side is an attachment point on a node: the true boundary point and the
// point Margin pixels further out.
type side struct {
	boundary graph.Point
	outer    graph.Point
}

func exits(r graph.Rect, m float64) []side {
	return []side{
		{r.Top(), graph.Point{X: r.Top().X, Y: r.Y - m}},
		{r.RightMid(), graph.Point{X: r.Right() + m, Y: r.RightMid().Y}},
		{r.BottomMid(), graph.Point{X: r.BottomMid().X, Y: r.Bottom() + m}},
	}
}

func entries(r graph.Rect, m float64) []side {
	return []side{
		{r.Top(), graph.Point{X: r.Top().X, Y: r.Y - m}},
		{r.Left(), graph.Point{X: r.X - m, Y: r.Left().Y}},
		{r.BottomMid(), graph.Point{X: r.BottomMid().X, Y: r.Bottom() + m}},
	}
}

// Route searches a path for every edge. When the grid would exceed
// MaxCells every edge is reported unroutable.
func (gr *Grid) Route(g *graph.Graph) *Result {
	opts := gr.Options
	if opts.MaxExpansions <= 0 {
		opts.MaxExpansions = DefaultOptions().MaxExpansions
	}
	if opts.MaxCells <= 0 || opts.MaxCells > MaxGridCells {
		opts.MaxCells = MaxGridCells
	}
	res := &Result{}
	obs := newObstacleMap(g, opts)

	for _, e := range g.Edges {
		e.Points = nil
		from, ok1 := g.Node(e.From)
		to, ok2 := g.Node(e.To)
		if !ok1 || !ok2 || obs == nil {
			res.Unroutable = append(res.Unroutable, e)
			continue
		}
		if pts := obs.route(from, to, opts); pts != nil {
			e.Points = pts
			res.Routed++
			continue
		}
		res.Unroutable = append(res.Unroutable, e)
	}
	return res
}

// obstacleMap is the rasterized diagram shared by all searches.
type obstacleMap struct {
	margin  float64
	ox, oy  int
	w, h    int
	blocked []bool
	rects   map[int]graph.Rect

	// search scratch, valid where the stamp matches
	stamp  uint32
	opened []uint32
	closed []uint32
	gScore []int32
	parent []int32
}

// newObstacleMap rasterizes g, or returns nil when g is empty or the grid
// would exceed opts.MaxCells.
func newObstacleMap(g *graph.Graph, opts Options) *obstacleMap {
	if g.NodeCount() == 0 {
		return nil
	}
	margin := opts.Margin
	rects := make(map[int]graph.Rect, g.NodeCount())
	var bounds graph.Rect
	for i, n := range g.Nodes() {
		r := n.Bounds().Expand(margin)
		rects[n.ID] = r
		if i == 0 {
			bounds = r
		} else {
			bounds = bounds.Union(r)
		}
	}
	bounds = bounds.Expand(opts.Padding)
	if (bounds.W+2)*(bounds.H+2) > float64(opts.MaxCells) {
		return nil
	}

	m := &obstacleMap{
		margin: margin,
		ox:     int(math.Floor(bounds.X)),
		oy:     int(math.Floor(bounds.Y)),
		rects:  rects,
	}
	m.w = int(math.Ceil(bounds.Right())) - m.ox + 1
	m.h = int(math.Ceil(bounds.Bottom())) - m.oy + 1
	size := m.w * m.h
	m.blocked = make([]bool, size)
	m.opened = make([]uint32, size)
	m.closed = make([]uint32, size)
	m.gScore = make([]int32, size)
	m.parent = make([]int32, size)

	for _, r := range rects {
		x0, x1 := int(math.Ceil(r.X))-m.ox, int(math.Floor(r.Right()))-m.ox
		y0, y1 := int(math.Ceil(r.Y))-m.oy, int(math.Floor(r.Bottom()))-m.oy
		for y := max(y0, 0); y <= min(y1, m.h-1); y++ {
			row := y * m.w
			for x := max(x0, 0); x <= min(x1, m.w-1); x++ {
				m.blocked[row+x] = true
			}
		}
	}
	return m
}

func (m *obstacleMap) cell(p graph.Point) (x, y int, ok bool) {
	x = int(math.Round(p.X)) - m.ox
	y = int(math.Round(p.Y)) - m.oy
	return x, y, x >= 0 && y >= 0 && x < m.w && y < m.h
}

func (m *obstacleMap) point(idx int) graph.Point {
	return graph.Point{X: float64(idx%m.w + m.ox), Y: float64(idx/m.w + m.oy)}
}

// insideOther reports whether p lies in the expanded rectangle of a node
// other than the given ones.
func (m *obstacleMap) insideOther(p graph.Point, a, b int) bool {
	for id, r := range m.rects {
		if id != a && id != b && r.Contains(p) {
			return true
		}
	}
	return false
}

// route searches every exit/entry pair and returns the shortest path, or nil.
func (m *obstacleMap) route(from, to *graph.Node, opts Options) []graph.Point {
	var (
		best      []int
		bestSteps = -1
		bestExit  side
		bestEntry side
	)
	for _, ex := range exits(from.Bounds(), m.margin) {
		if m.insideOther(ex.outer, from.ID, to.ID) {
			continue
		}
		sx, sy, ok := m.cell(ex.outer)
		if !ok {
			continue
		}
		for _, en := range entries(to.Bounds(), m.margin) {
			if m.insideOther(en.outer, from.ID, to.ID) {
				continue
			}
			tx, ty, ok := m.cell(en.outer)
			if !ok {
				continue
			}
			bound := math.MaxInt32
			if bestSteps >= 0 {
				bound = bestSteps - 1
			}
			path, steps := m.search(sx, sy, tx, ty, opts.MaxExpansions, bound)
			if path == nil {
				continue
			}
			if bestSteps < 0 || steps < bestSteps {
				best, bestSteps, bestExit, bestEntry = path, steps, ex, en
			}
		}
	}
	if best == nil {
		return nil
	}

	pts := make([]graph.Point, 0, len(best)+3)
	pts = append(pts, bestExit.boundary)
	for _, idx := range best {
		pts = append(pts, m.point(idx))
	}
	tx, ty, _ := m.cell(bestEntry.outer)
	if last := best[len(best)-1]; last != ty*m.w+tx {
		pts = append(pts, m.point(ty*m.w+tx))
	}
	pts = append(pts, bestEntry.boundary)
	return simplify(pts)
}

// search runs A* from (sx,sy) to any free cell orthogonally adjacent to
// (tx,ty). The start cell is exempt from blocking. It returns the cells of
// the path and the number of steps, or nil when no path exists within limit
// expansions and bound steps.
func (m *obstacleMap) search(sx, sy, tx, ty, limit, bound int) ([]int, int) {
	m.stamp++
	if m.stamp == 0 {
		clear(m.opened)
		clear(m.closed)
		m.stamp = 1
	}
	stamp := m.stamp
	start := sy*m.w + sx

	h := func(idx int) int32 {
		x, y := idx%m.w, idx/m.w
		return int32(abs(x-tx) + abs(y-ty))
	}
	isGoal := func(idx int) bool {
		return h(idx) <= 1 && (idx == start || !m.blocked[idx])
	}

	open := &cellQueue{}
	m.opened[start] = stamp
	m.gScore[start] = 0
	m.parent[start] = -1
	var seq uint32
	heap.Push(open, cellItem{idx: int32(start), f: h(start), g: 0, seq: seq})

	expansions := 0
	for open.Len() > 0 {
		cur := heap.Pop(open).(cellItem)
		idx := int(cur.idx)
		if m.closed[idx] == stamp || cur.g != m.gScore[idx] {
			continue
		}
		// goals lie within one step of (tx,ty), so f-1 never overestimates
		if int(cur.f)-1 > bound {
			return nil, 0
		}
		if isGoal(idx) {
			return m.reconstruct(idx), int(cur.g)
		}
		expansions++
		if expansions > limit {
			return nil, 0
		}
		m.closed[idx] = stamp

		x, y := idx%m.w, idx/m.w
		for _, d := range m.directions(idx) {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || ny < 0 || nx >= m.w || ny >= m.h {
				continue
			}
			next := ny*m.w + nx
			if m.blocked[next] || m.closed[next] == stamp {
				continue
			}
			g := cur.g + 1
			if m.opened[next] == stamp && g >= m.gScore[next] {
				continue
			}
			m.opened[next] = stamp
			m.gScore[next] = g
			m.parent[next] = int32(idx)
			seq++
			heap.Push(open, cellItem{idx: int32(next), f: g + h(next), g: g, seq: seq})
		}
	}
	return nil, 0
}

var steps = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// directions lists the four moves with the current heading first, so equal
// cost paths prefer fewer bends.
func (m *obstacleMap) directions(idx int) [4][2]int {
	p := m.parent[idx]
	if p < 0 {
		return steps
	}
	dx, dy := idx%m.w-int(p)%m.w, idx/m.w-int(p)/m.w
	out := [4][2]int{{dx, dy}}
	i := 1
	for _, d := range steps {
		if d != [2]int{dx, dy} {
			out[i] = d
			i++
		}
	}
	return out
}

func (m *obstacleMap) reconstruct(idx int) []int {
	var path []int
	for i := int32(idx); i >= 0; i = m.parent[i] {
		path = append(path, int(i))
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

// simplify drops points that lie on the straight line through their
// neighbors, and repeated points.
func simplify(pts []graph.Point) []graph.Point {
	out := make([]graph.Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		if n := len(out); n >= 2 && collinear(out[n-2], out[n-1], p) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func collinear(a, b, c graph.Point) bool {
	return (a.X == b.X && b.X == c.X) || (a.Y == b.Y && b.Y == c.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type cellItem struct {
	idx  int32
	f, g int32
	seq  uint32
}

// cellQueue orders cells by f, then lower g, then insertion.
type cellQueue []cellItem

func (q cellQueue) Len() int { return len(q) }
func (q cellQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].g != q[j].g {
		return q[i].g < q[j].g
	}
	return q[i].seq < q[j].seq
}
func (q cellQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *cellQueue) Push(x any)   { *q = append(*q, x.(cellItem)) }
func (q *cellQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
