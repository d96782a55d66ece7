package layering

import (
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/graph"
	"github.com/matzehuels/swimlane/pkg/milp"
)

// Options configures layer assignment.
type Options struct {
	// MaxNodes bounds the branch-and-bound search per lane.
	// Zero uses milp.DefaultMaxNodes.
	MaxNodes int
}

// LaneResult summarizes the program solved for one lane.
type LaneResult struct {
	Pool, Lane  string
	Variables   int
	Constraints int
	// Objective is the total edge span Σ(layer(v) − layer(u)).
	Objective int
	// Fallback is set when the lane was layered by longest path after the
	// solver failed.
	Fallback bool
}

// Result collects per-lane outcomes of [Assign].
type Result struct {
	Lanes  []LaneResult
	Errors []*LaneError
}

// Objective returns the summed edge span over all lanes.
func (r *Result) Objective() int {
	var sum int
	for _, l := range r.Lanes {
		sum += l.Objective
	}
	return sum
}

// LaneError reports a lane whose program could not be solved.
type LaneError struct {
	Pool, Lane string
	// Cycle lists the node ids of one intra-lane cycle, if any.
	Cycle []int
	Err   error
}

func (e *LaneError) Error() string {
	return fmt.Sprintf("pool %q lane %q: %v", e.Pool, e.Lane, e.Err)
}

func (e *LaneError) Unwrap() error { return e.Err }

// Assign computes layers for every lane of g, then sorts each lane by layer.
//
// The returned error is non-nil only when an edge references a missing node.
// Per-lane failures are listed in Result.Errors.
func Assign(g *graph.Graph, opts Options) (*Result, error) {
	for _, e := range g.Edges {
		for _, id := range []int{e.From, e.To} {
			if _, ok := g.Node(id); !ok {
				return nil, errors.New(errors.ErrCodeMissingNode, "edge %s references missing node %d", e, id)
			}
		}
	}

	MarkCrossings(g)

	res := &Result{}
	for _, p := range g.Pools {
		for _, lane := range p.Lanes {
			lr, lerr := assignLane(g, lane, opts)
			res.Lanes = append(res.Lanes, lr)
			if lerr != nil {
				res.Errors = append(res.Errors, lerr)
			}
			resetOrder(lane)
			lane.SortByLayer()
		}
	}
	return res, nil
}

// MarkCrossings sets CrossesLanes and CrossTarget on every node from the first
// outgoing edge that targets another lane or pool, and clears them elsewhere.
func MarkCrossings(g *graph.Graph) {
	for _, n := range g.Nodes() {
		n.CrossesLanes, n.CrossTarget = false, 0
	}
	for _, e := range g.Edges {
		from, ok := g.Node(e.From)
		if !ok || from.CrossesLanes || g.SameLane(e) {
			continue
		}
		from.CrossesLanes, from.CrossTarget = true, e.To
	}
}

func assignLane(g *graph.Graph, lane *graph.Lane, opts Options) (LaneResult, *LaneError) {
	lr := LaneResult{Pool: lane.Pool, Lane: lane.Name}
	edges := g.LaneEdges(lane)

	for _, n := range lane.Nodes {
		n.Layer = 0
	}
	if len(edges) == 0 {
		return lr, nil
	}

	for _, e := range edges {
		if e.From == e.To {
			return fallback(lane, edges, lr, []int{e.From}, milp.ErrInfeasible)
		}
	}

	prob, vars := buildProgram(lane, edges, opts)
	lr.Variables, lr.Constraints = prob.NumVars(), prob.NumConstraints()

	sol, err := prob.Solve()
	if err != nil {
		var cycle []int
		if stderrors.Is(err, milp.ErrInfeasible) {
			cycle = FindCycle(lane, edges)
		}
		return fallback(lane, edges, lr, cycle, err)
	}

	for id, v := range vars {
		n, _ := g.Node(id)
		n.Layer = sol.Int(v)
	}
	lr.Objective = span(g, edges)
	return lr, nil
}

// buildProgram creates one variable per node touching an edge, in lane order.
func buildProgram(lane *graph.Lane, edges []*graph.Edge, opts Options) (*milp.Problem, map[int]milp.Var) {
	touched := make(map[int]bool)
	for _, e := range edges {
		touched[e.From], touched[e.To] = true, true
	}

	prob := &milp.Problem{MaxNodes: opts.MaxNodes}
	vars := make(map[int]milp.Var, len(touched))
	for _, n := range lane.Nodes {
		if touched[n.ID] {
			vars[n.ID] = prob.AddVar(strconv.Itoa(n.ID), 0)
		}
	}

	size := float64(len(vars))
	eps := 1 / (size*size + 1)
	for _, v := range vars {
		prob.AddCost(v, eps)
	}
	for _, e := range edges {
		from, to := vars[e.From], vars[e.To]
		prob.AddConstraint([]milp.Term{{Var: to, Coeff: 1}, {Var: from, Coeff: -1}}, milp.GreaterEq, 1)
		prob.AddCost(to, 1)
		prob.AddCost(from, -1)
	}
	return prob, vars
}

func fallback(lane *graph.Lane, edges []*graph.Edge, lr LaneResult, cycle []int, cause error) (LaneResult, *LaneError) {
	code := errors.ErrCodeSolverFailure
	msg := "solver failed"
	if stderrors.Is(cause, milp.ErrInfeasible) {
		code = errors.ErrCodeInfeasibleLayers
		msg = fmt.Sprintf("no layer assignment exists: cycle %v", cycle)
	}
	LongestPath(lane, edges)
	lr.Fallback = true
	lr.Objective = 0
	for _, e := range edges {
		lr.Objective += layerOf(lane, e.To) - layerOf(lane, e.From)
	}
	return lr, &LaneError{
		Pool:  lane.Pool,
		Lane:  lane.Name,
		Cycle: cycle,
		Err:   errors.Wrap(code, cause, "%s", msg),
	}
}

func span(g *graph.Graph, edges []*graph.Edge) int {
	var sum int
	for _, e := range edges {
		from, _ := g.Node(e.From)
		to, _ := g.Node(e.To)
		sum += to.Layer - from.Layer
	}
	return sum
}

func layerOf(lane *graph.Lane, id int) int {
	for _, n := range lane.Nodes {
		if n.ID == id {
			return n.Layer
		}
	}
	return 0
}

// resetOrder numbers nodes inside each layer by lane position so sorting by
// layer keeps insertion order.
func resetOrder(lane *graph.Lane) {
	next := make(map[int]int)
	for _, n := range lane.Nodes {
		n.Order = next[n.Layer]
		next[n.Layer]++
	}
}
