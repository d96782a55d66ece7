package milp

import (
	"errors"
	"math"
	"testing"
)

func TestSolve_Chain(t *testing.T) {
	// a -> b -> c with unit gaps, minimize (b-a) + (c-b).
	var p Problem
	a := p.AddVar("a", 0)
	b := p.AddVar("b", 0)
	c := p.AddVar("c", 0)
	p.AddConstraint([]Term{{b, 1}, {a, -1}}, GreaterEq, 1)
	p.AddConstraint([]Term{{c, 1}, {b, -1}}, GreaterEq, 1)
	p.AddCost(a, -1)
	p.AddCost(b, 1)
	p.AddCost(b, -1)
	p.AddCost(c, 1)
	for _, v := range []Var{a, b, c} {
		p.AddCost(v, 0.1)
	}

	sol, err := p.Solve()
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	want := []int{0, 1, 2}
	for i, v := range []Var{a, b, c} {
		if got := sol.Int(v); got != want[i] {
			t.Errorf("%s = %d, want %d", p.Name(v), got, want[i])
		}
	}
}

func TestSolve_Infeasible(t *testing.T) {
	var p Problem
	a := p.AddVar("a", 0)
	b := p.AddVar("b", 0)
	p.AddConstraint([]Term{{b, 1}, {a, -1}}, GreaterEq, 1)
	p.AddConstraint([]Term{{a, 1}, {b, -1}}, GreaterEq, 1)

	if _, err := p.Solve(); !errors.Is(err, ErrInfeasible) {
		t.Errorf("Solve() error = %v, want %v", err, ErrInfeasible)
	}
}

func TestSolve_Unbounded(t *testing.T) {
	var p Problem
	a := p.AddVar("a", 0)
	b := p.AddVar("b", 0)
	p.AddConstraint([]Term{{b, 1}, {a, -1}}, GreaterEq, 1)
	p.SetCost(b, -1)

	if _, err := p.Solve(); !errors.Is(err, ErrUnbounded) {
		t.Errorf("Solve() error = %v, want %v", err, ErrUnbounded)
	}
}

func TestSolve_Branching(t *testing.T) {
	// max x + y  s.t. 2x + 2y <= 3, x,y integer >= 0. LP optimum is 1.5.
	var p Problem
	x := p.AddVar("x", 0)
	y := p.AddVar("y", 0)
	p.AddConstraint([]Term{{x, 2}, {y, 2}}, LessEq, 3)
	p.SetCost(x, -1)
	p.SetCost(y, -1)

	sol, err := p.Solve()
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if math.Abs(sol.Objective+1) > 1e-9 {
		t.Errorf("Objective = %v, want -1", sol.Objective)
	}
	if got := sol.Int(x) + sol.Int(y); got != 1 {
		t.Errorf("x + y = %d, want 1", got)
	}
	if sol.Nodes < 2 {
		t.Errorf("Nodes = %d, want branching", sol.Nodes)
	}
}

func TestSolve_UpperBound(t *testing.T) {
	var p Problem
	x := p.AddVar("x", 1)
	p.SetUpper(x, 4)
	p.SetCost(x, -2)

	sol, err := p.Solve()
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if got := sol.Int(x); got != 4 {
		t.Errorf("x = %d, want 4", got)
	}
}

func TestSolve_FreeVariablesStayAtLowerBound(t *testing.T) {
	var p Problem
	x := p.AddVar("x", 3)
	p.SetCost(x, 1)

	sol, err := p.Solve()
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if got := sol.Int(x); got != 3 {
		t.Errorf("x = %d, want 3", got)
	}
	if sol.Objective != 3 {
		t.Errorf("Objective = %v, want 3", sol.Objective)
	}
}

func TestSolve_NodeLimit(t *testing.T) {
	var p Problem
	p.MaxNodes = 1
	x := p.AddVar("x", 0)
	y := p.AddVar("y", 0)
	p.AddConstraint([]Term{{x, 2}, {y, 2}}, LessEq, 3)
	p.SetCost(x, -1)
	p.SetCost(y, -1)

	if _, err := p.Solve(); !errors.Is(err, ErrNodeLimit) {
		t.Errorf("Solve() error = %v, want %v", err, ErrNodeLimit)
	}
}

func TestSolve_Deterministic(t *testing.T) {
	build := func() *Problem {
		p := &Problem{}
		var vs []Var
		for i := range 5 {
			vs = append(vs, p.AddVar(string(rune('a'+i)), 0))
		}
		p.AddConstraint([]Term{{vs[1], 1}, {vs[0], -1}}, GreaterEq, 1)
		p.AddConstraint([]Term{{vs[2], 1}, {vs[0], -1}}, GreaterEq, 1)
		p.AddConstraint([]Term{{vs[3], 1}, {vs[1], -1}}, GreaterEq, 1)
		p.AddConstraint([]Term{{vs[3], 1}, {vs[2], -1}}, GreaterEq, 1)
		p.AddConstraint([]Term{{vs[4], 1}, {vs[3], -1}}, GreaterEq, 1)
		for _, v := range vs {
			p.AddCost(v, 0.01)
		}
		return p
	}
	first, err := build().Solve()
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	for range 3 {
		again, err := build().Solve()
		if err != nil {
			t.Fatalf("Solve() error = %v", err)
		}
		for i := range first.Values {
			if first.Values[i] != again.Values[i] {
				t.Fatalf("Values differ at %d: %v vs %v", i, first.Values, again.Values)
			}
		}
	}
}
