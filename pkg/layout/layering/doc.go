// Package layering assigns every node a layer within its lane.
//
// # Formulation
//
// Each lane is an independent integer program. Every node touching an
// intra-lane edge gets one integer variable x ≥ 0; every edge u→v inside the
// lane adds the constraint x(v) − x(u) ≥ 1; the objective minimizes the total
// edge span Σ(x(v) − x(u)). Edges that leave the lane or pool take no part in
// the program. They only set [graph.Node.CrossesLanes] on their source.
//
// Many assignments share the optimal span (a source can slide right until it
// touches its successor). The objective therefore carries a secondary term
// ε·Σx with ε = 1/(n²+1), small enough never to trade a unit of span, that
// picks the most compact optimum. This makes the result unique and
// deterministic.
//
// Nodes with no intra-lane edge are placed at layer 0 without solving.
//
// # Failures
//
// A lane whose edges contain a cycle has no feasible assignment. [Assign]
// records a [LaneError] carrying the cycle and code INFEASIBLE_LAYERS, then
// gives the lane a best-effort longest-path layering so later stages can
// still place it. Only an edge referencing a missing node aborts the whole
// assignment.
package layering
