package mip

import (
	"fmt"
	"math"
	"strings"
)

// Var is the column index of a variable in a Model.
type Var int

type Sense uint8

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	default:
		return "="
	}
}

type Term struct {
	Var  Var
	Coef float64
}

func NewTerm(v Var, coef float64) Term {
	return Term{Var: v, Coef: coef}
}

// Constraint is the linear row Σ coef*x  (sense)  rhs.
type Constraint struct {
	Terms []Term
	Sense Sense
	RHS   float64
}

func NewConstraint(terms []Term, sense Sense, rhs float64) Constraint {
	return Constraint{Terms: terms, Sense: sense, RHS: rhs}
}

func (c Constraint) Activity(values []float64) float64 {
	act := 0.0
	for _, t := range c.Terms {
		act += t.Coef * values[t.Var]
	}
	return act
}

// IsSatisfied checks the row with absolute tolerance eps.
func (c Constraint) IsSatisfied(values []float64, eps float64) bool {
	act := c.Activity(values)
	switch c.Sense {
	case LessEqual:
		return act <= c.RHS+eps
	case GreaterEqual:
		return act >= c.RHS-eps
	default:
		return math.Abs(act-c.RHS) <= eps
	}
}

func (c Constraint) String() string {
	var sb strings.Builder
	for i, t := range c.Terms {
		if i > 0 {
			sb.WriteString(" + ")
		}
		fmt.Fprintf(&sb, "%g*x%d", t.Coef, t.Var)
	}
	fmt.Fprintf(&sb, " %s %g", c.Sense, c.RHS)
	return sb.String()
}

/*
Model is a minimisation problem over binary variables:

	min Σ obj_j x_j   s.t.  rows,  x in {0,1}^n

rows registered up front are part of the model; lazy rows are handed to the engine during the
search through CallbackContext.AddLazy.
*/
type Model struct {
	names       []string
	objective   []float64
	constraints []Constraint
}

func NewModel() *Model {
	return &Model{
		names:       make([]string, 0),
		objective:   make([]float64, 0),
		constraints: make([]Constraint, 0),
	}
}

func (m *Model) AddBinaryVar(name string, objCoef float64) Var {
	m.names = append(m.names, name)
	m.objective = append(m.objective, objCoef)
	return Var(len(m.names) - 1)
}

func (m *Model) AddConstraint(c Constraint) error {
	for _, t := range c.Terms {
		if int(t.Var) < 0 || int(t.Var) >= len(m.names) {
			return fmt.Errorf("constraint references unknown variable %d", t.Var)
		}
	}
	m.constraints = append(m.constraints, c)
	return nil
}

func (m *Model) NumVars() int {
	return len(m.names)
}

func (m *Model) GetName(v Var) string {
	return m.names[v]
}

func (m *Model) GetObjective() []float64 {
	return m.objective
}

func (m *Model) GetObjCoef(v Var) float64 {
	return m.objective[v]
}

func (m *Model) GetConstraints() []Constraint {
	return m.constraints
}

func (m *Model) Evaluate(values []float64) float64 {
	obj := 0.0
	for j, c := range m.objective {
		obj += c * values[j]
	}
	return obj
}
