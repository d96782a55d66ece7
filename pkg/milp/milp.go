package milp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize/convex/lp"
)

var (
	// ErrInfeasible is returned when no integer assignment satisfies the constraints.
	ErrInfeasible = errors.New("milp: problem is infeasible")

	// ErrUnbounded is returned when the objective can decrease without limit.
	ErrUnbounded = errors.New("milp: problem is unbounded")

	// ErrNodeLimit is returned when the search explores more than MaxNodes
	// subproblems without proving optimality.
	ErrNodeLimit = errors.New("milp: node limit reached")
)

// DefaultMaxNodes bounds the branch-and-bound search when MaxNodes is zero.
const DefaultMaxNodes = 10000

const (
	simplexTol  = 1e-10
	integralTol = 1e-6
)

// Var is a handle to a problem variable.
type Var int

// Sense is the direction of a constraint.
type Sense int

const (
	GreaterEq Sense = iota // Σ aᵢxᵢ ≥ b
	LessEq                 // Σ aᵢxᵢ ≤ b
)

// Term is one coefficient of a linear expression.
type Term struct {
	Var   Var
	Coeff float64
}

type variable struct {
	name         string
	lower, upper float64
	cost         float64
}

type constraint struct {
	terms []Term
	sense Sense
	rhs   float64
}

// Problem is an integer program to minimize. The zero value is an empty
// problem ready for use.
type Problem struct {
	// MaxNodes caps the number of LP relaxations solved. Zero means
	// DefaultMaxNodes.
	MaxNodes int

	vars []variable
	cons []constraint
}

// AddVar adds an integer variable with the given lower bound and no upper bound.
func (p *Problem) AddVar(name string, lower float64) Var {
	p.vars = append(p.vars, variable{name: name, lower: lower, upper: math.Inf(1)})
	return Var(len(p.vars) - 1)
}

// SetUpper bounds v from above.
func (p *Problem) SetUpper(v Var, upper float64) { p.vars[v].upper = upper }

// SetCost sets the objective coefficient of v.
func (p *Problem) SetCost(v Var, c float64) { p.vars[v].cost = c }

// AddCost adds c to the objective coefficient of v.
func (p *Problem) AddCost(v Var, c float64) { p.vars[v].cost += c }

// AddConstraint adds Σ terms (sense) rhs.
func (p *Problem) AddConstraint(terms []Term, sense Sense, rhs float64) {
	p.cons = append(p.cons, constraint{terms: append([]Term(nil), terms...), sense: sense, rhs: rhs})
}

// NumVars returns the number of variables.
func (p *Problem) NumVars() int { return len(p.vars) }

// NumConstraints returns the number of constraints.
func (p *Problem) NumConstraints() int { return len(p.cons) }

// Name returns the name given to v.
func (p *Problem) Name(v Var) string { return p.vars[v].name }

// Solution is an optimal integer assignment.
type Solution struct {
	Values    []float64
	Objective float64
	// Nodes is the number of LP relaxations solved.
	Nodes int
}

// Int returns the value of v rounded to the nearest integer.
func (s *Solution) Int(v Var) int { return int(math.Round(s.Values[v])) }

// Solve returns an optimal integer solution.
func (p *Problem) Solve() (*Solution, error) {
	limit := p.MaxNodes
	if limit <= 0 {
		limit = DefaultMaxNodes
	}
	root := bounds{lower: make([]float64, len(p.vars)), upper: make([]float64, len(p.vars))}
	for i, v := range p.vars {
		root.lower[i], root.upper[i] = v.lower, v.upper
	}

	var (
		best  *Solution
		nodes int
		stack = []bounds{root}
	)
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if nodes >= limit {
			return best, ErrNodeLimit
		}
		nodes++

		obj, x, err := p.relax(b)
		switch {
		case errors.Is(err, errEmpty):
			continue
		case errors.Is(err, lp.ErrInfeasible):
			continue
		case errors.Is(err, lp.ErrUnbounded):
			return nil, ErrUnbounded
		case err != nil:
			return nil, fmt.Errorf("milp: relaxation: %w", err)
		}
		if best != nil && obj >= best.Objective-integralTol {
			continue
		}

		j := fractional(x)
		if j < 0 {
			for i := range x {
				x[i] = math.Round(x[i])
			}
			best = &Solution{Values: x, Objective: p.objective(x)}
			continue
		}
		down, up := b.clone(), b.clone()
		down.upper[j] = math.Floor(x[j])
		up.lower[j] = math.Ceil(x[j])
		stack = append(stack, up, down)
	}
	if best == nil {
		return nil, ErrInfeasible
	}
	best.Nodes = nodes
	return best, nil
}

func (p *Problem) objective(x []float64) float64 {
	var sum float64
	for i, v := range p.vars {
		sum += v.cost * x[i]
	}
	return sum
}

func fractional(x []float64) int {
	for i, v := range x {
		if math.Abs(v-math.Round(v)) > integralTol {
			return i
		}
	}
	return -1
}

type bounds struct {
	lower, upper []float64
}

func (b bounds) clone() bounds {
	return bounds{
		lower: append([]float64(nil), b.lower...),
		upper: append([]float64(nil), b.upper...),
	}
}

// errEmpty marks a subproblem whose bounds cross.
var errEmpty = errors.New("empty bounds")
