package milp

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// relax solves the LP relaxation of p under b and returns the objective and
// the assignment in the original variable space.
//
// Variables are shifted to y = x - lower so every column is non-negative.
// Each constraint and each finite upper bound becomes one equality row with
// its own slack column, which keeps the matrix at full row rank. Variables
// that appear in no row are fixed at their lower bound, or make the problem
// unbounded when their cost is negative.
func (p *Problem) relax(b bounds) (float64, []float64, error) {
	n := len(p.vars)
	for i := range n {
		if b.lower[i] > b.upper[i] {
			return 0, nil, errEmpty
		}
	}

	type row struct {
		coef  map[int]float64
		slack float64
		rhs   float64
	}
	var rows []row
	for _, c := range p.cons {
		r := row{coef: make(map[int]float64), rhs: c.rhs}
		for _, t := range c.terms {
			r.coef[int(t.Var)] += t.Coeff
			r.rhs -= t.Coeff * b.lower[t.Var]
		}
		if c.sense == GreaterEq {
			r.slack = -1
		} else {
			r.slack = 1
		}
		rows = append(rows, r)
	}
	for i := range n {
		if math.IsInf(b.upper[i], 1) {
			continue
		}
		rows = append(rows, row{
			coef:  map[int]float64{i: 1},
			slack: 1,
			rhs:   b.upper[i] - b.lower[i],
		})
	}

	used := make([]bool, n)
	for _, r := range rows {
		for j, a := range r.coef {
			if a != 0 {
				used[j] = true
			}
		}
	}
	col := make([]int, n)
	var cols int
	for i := range n {
		col[i] = -1
		if used[i] {
			col[i] = cols
			cols++
			continue
		}
		if p.vars[i].cost < 0 {
			return 0, nil, lp.ErrUnbounded
		}
	}

	x := append([]float64(nil), b.lower...)
	if len(rows) == 0 {
		return p.objective(x), x, nil
	}

	m := len(rows)
	width := cols + m
	A := mat.NewDense(m, width, nil)
	rhs := make([]float64, m)
	for i, r := range rows {
		sign := 1.0
		if r.rhs < 0 {
			sign = -1
		}
		for j, a := range r.coef {
			if col[j] >= 0 {
				A.Set(i, col[j], sign*a)
			}
		}
		A.Set(i, cols+i, sign*r.slack)
		rhs[i] = sign * r.rhs
	}
	c := make([]float64, width)
	for i, v := range p.vars {
		if col[i] >= 0 {
			c[col[i]] = v.cost
		}
	}

	_, y, err := lp.Simplex(c, A, rhs, simplexTol, nil)
	if err != nil {
		return 0, nil, err
	}
	for i := range n {
		if col[i] >= 0 {
			x[i] += y[col[i]]
		}
	}
	return p.objective(x), x, nil
}
