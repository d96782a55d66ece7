package routing

import (
	"math"

	"github.com/matzehuels/swimlane/pkg/graph"
)

// Elbow routes every edge from boundary to boundary with at most one bend.
// It does not avoid obstacles.
type Elbow struct{}

// Route gives every edge with known endpoints an elbow path.
func (Elbow) Route(g *graph.Graph) *Result {
	res := &Result{}
	for _, e := range g.Edges {
		from, ok1 := g.Node(e.From)
		to, ok2 := g.Node(e.To)
		if !ok1 || !ok2 {
			e.Points = nil
			res.Unroutable = append(res.Unroutable, e)
			continue
		}
		e.Points = elbow(from.Bounds(), to.Bounds())
		res.Routed++
	}
	return res
}

func elbow(src, dst graph.Rect) []graph.Point {
	cs, ct := src.Center(), dst.Center()
	dx, dy := ct.X-cs.X, ct.Y-cs.Y

	if math.Abs(dx) >= math.Abs(dy) {
		start := src.RightMid()
		if dx < 0 {
			start = src.Left()
		}
		if dy == 0 {
			end := dst.Left()
			if dx < 0 {
				end = dst.RightMid()
			}
			return []graph.Point{start, end}
		}
		end := dst.Top()
		if dy < 0 {
			end = dst.BottomMid()
		}
		return []graph.Point{start, {X: ct.X, Y: cs.Y}, end}
	}

	start := src.BottomMid()
	if dy < 0 {
		start = src.Top()
	}
	if dx == 0 {
		end := dst.Top()
		if dy < 0 {
			end = dst.BottomMid()
		}
		return []graph.Point{start, end}
	}
	end := dst.Left()
	if dx < 0 {
		end = dst.RightMid()
	}
	return []graph.Point{start, {X: cs.X, Y: ct.Y}, end}
}
