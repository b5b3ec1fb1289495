package separator

import (
	"github.com/lintang-b-s/Multicutx/pkg"
	da "github.com/lintang-b-s/Multicutx/pkg/datastructure"
	"github.com/lintang-b-s/Multicutx/pkg/mip"
)

// Inequality is the cycle inequality x_cut <= Σ_{e in path} x_e, where path joins the endpoints of
// the cut edge without using it.
type Inequality struct {
	cutEdge da.Index
	path    []da.Index
}

func NewInequality(cutEdge da.Index, path []da.Index) Inequality {
	return Inequality{cutEdge: cutEdge, path: path}
}

func (in Inequality) GetCutEdge() da.Index {
	return in.cutEdge
}

func (in Inequality) GetPath() []da.Index {
	return in.path
}

// Slack returns Σ x_path - x_cut. the inequality is violated iff the slack is negative.
func (in Inequality) Slack(values []float64) float64 {
	s := -values[in.cutEdge]
	for _, e := range in.path {
		s += values[e]
	}
	return s
}

func (in Inequality) IsViolatedBy(values []float64) bool {
	return in.Slack(values) < -pkg.INTEGRALITY_TOLERANCE
}

// Constraint writes the inequality as x_cut - Σ x_path <= 0 over the given edge variables.
func (in Inequality) Constraint(vars []mip.Var) mip.Constraint {
	terms := make([]mip.Term, 0, len(in.path)+1)
	terms = append(terms, mip.NewTerm(vars[in.cutEdge], 1))
	for _, e := range in.path {
		terms = append(terms, mip.NewTerm(vars[e], -1))
	}
	return mip.NewConstraint(terms, mip.LessEqual, 0)
}
