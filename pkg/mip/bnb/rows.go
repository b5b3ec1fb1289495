package bnb

import (
	"sync"

	"github.com/lintang-b-s/Multicutx/pkg/mip"
)

const (
	free int8 = -1
	eps       = 1e-9
)

// row is a constraint in normal form Σ coefs[i]*x_vars[i] <= rhs.
type row struct {
	vars  []mip.Var
	coefs []float64
	rhs   float64
}

func newRow(terms []mip.Term, scale, rhs float64) row {
	r := row{
		vars:  make([]mip.Var, len(terms)),
		coefs: make([]float64, len(terms)),
		rhs:   scale * rhs,
	}
	for i, t := range terms {
		r.vars[i] = t.Var
		r.coefs[i] = scale * t.Coef
	}
	return r
}

func normalize(c mip.Constraint) []row {
	switch c.Sense {
	case mip.LessEqual:
		return []row{newRow(c.Terms, 1, c.RHS)}
	case mip.GreaterEqual:
		return []row{newRow(c.Terms, -1, c.RHS)}
	default:
		return []row{newRow(c.Terms, 1, c.RHS), newRow(c.Terms, -1, c.RHS)}
	}
}

func (r row) activity(values []float64) float64 {
	act := 0.0
	for i, v := range r.vars {
		act += r.coefs[i] * values[v]
	}
	return act
}

func (r row) violatedBy(values []float64) bool {
	return r.activity(values) > r.rhs+eps
}

// minActivity is the smallest activity reachable from the partial assignment fix.
func (r row) minActivity(fix []int8) float64 {
	act := 0.0
	for i, v := range r.vars {
		a := r.coefs[i]
		switch fix[v] {
		case 1:
			act += a
		case free:
			if a < 0 {
				act += a
			}
		}
	}
	return act
}

// rowPool holds the model rows and every lazy row submitted so far. it only grows: a snapshot taken
// under the read lock stays valid after later appends.
type rowPool struct {
	mu   sync.RWMutex
	rows []row
}

func newRowPool(model *mip.Model) *rowPool {
	p := &rowPool{rows: make([]row, 0, len(model.GetConstraints()))}
	for _, c := range model.GetConstraints() {
		p.rows = append(p.rows, normalize(c)...)
	}
	return p
}

func (p *rowPool) snapshot() []row {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rows
}

func (p *rowPool) add(rs ...row) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows = append(p.rows, rs...)
}

func (p *rowPool) size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.rows)
}

func firstViolated(rows []row, values []float64) int {
	for i, r := range rows {
		if r.violatedBy(values) {
			return i
		}
	}
	return -1
}
