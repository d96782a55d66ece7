package layering

import "github.com/matzehuels/swimlane/pkg/graph"

// LongestPath layers the lane by longest path from its sources using Kahn's
// algorithm. Each node lands one layer after its deepest predecessor.
//
// Nodes on a cycle never reach in-degree zero and keep the deepest layer
// pushed onto them before the traversal stalled.
func LongestPath(lane *graph.Lane, edges []*graph.Edge) {
	layer := make(map[int]int, len(lane.Nodes))
	inDegree := make(map[int]int, len(lane.Nodes))
	children := make(map[int][]int)
	for _, e := range edges {
		inDegree[e.To]++
		children[e.From] = append(children[e.From], e.To)
	}

	queue := make([]int, 0, len(lane.Nodes))
	for _, n := range lane.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range children[curr] {
			if l := layer[curr] + 1; l > layer[child] {
				layer[child] = l
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	for _, n := range lane.Nodes {
		n.Layer = layer[n.ID]
	}
}

// FindCycle returns the node ids of the first cycle among edges, found by a
// depth-first search in lane order. It returns nil for acyclic edge sets.
func FindCycle(lane *graph.Lane, edges []*graph.Edge) []int {
	const (
		white = iota
		gray
		black
	)

	children := make(map[int][]int)
	for _, e := range edges {
		children[e.From] = append(children[e.From], e.To)
	}

	color := make(map[int]int)
	var (
		stack []int
		cycle []int
	)
	var dfs func(id int) bool
	dfs = func(id int) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, child := range children[id] {
			switch color[child] {
			case white:
				if dfs(child) {
					return true
				}
			case gray:
				for i, s := range stack {
					if s == child {
						cycle = append([]int(nil), stack[i:]...)
						break
					}
				}
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, n := range lane.Nodes {
		if color[n.ID] == white && dfs(n.ID) {
			return cycle
		}
	}
	return nil
}
