// Package milp solves small pure integer linear programs.
//
// A [Problem] has integer variables with a lower bound and an optional upper
// bound, linear constraints of the form Σ aᵢxᵢ ≥ b or Σ aᵢxᵢ ≤ b, and a linear
// objective to minimize. [Problem.Solve] runs a depth-first branch-and-bound
// search whose relaxations are solved with gonum's simplex implementation.
//
// # Determinism
//
// The search order is fixed: variables are branched in index order, the
// floor branch is explored before the ceiling branch, and a candidate only
// replaces the incumbent when it is strictly better. Solving the same problem
// twice yields the same assignment.
//
// # Limits
//
// The number of explored subproblems is capped by [Problem.MaxNodes]. Problems
// whose constraint matrix is totally unimodular (difference constraints such
// as layer assignment) are solved at the root without branching.
package milp
