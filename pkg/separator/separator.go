package separator

import (
	"errors"
	"math"

	"github.com/lintang-b-s/Multicutx/pkg"
	"github.com/lintang-b-s/Multicutx/pkg/connectivity"
	da "github.com/lintang-b-s/Multicutx/pkg/datastructure"
	"github.com/lintang-b-s/Multicutx/pkg/util"
)

var (
	ErrSeparationInconsistency = errors.New("separation inconsistency")
)

/*
CycleSeparator. separation oracle for the cycle inequalities of the multicut polytope.

for every cycle C of the graph and every edge uv in C:

	x_uv <= Σ_{e in C \ {uv}} x_e

given an integral candidate, an inequality of this family is violated iff a cut edge uv has both
endpoints joined by a path of kept edges. it suffices to compute the components of the kept edges
once, then a shortest kept path for each cut edge lying inside a component.

the separator holds only the immutable graph, so Separate may be called from several goroutines at
once; every call allocates its own connectivity oracle.
*/
type CycleSeparator struct {
	graph     *da.Graph
	tolerance float64
}

func NewCycleSeparator(graph *da.Graph) *CycleSeparator {
	return &CycleSeparator{
		graph:     graph,
		tolerance: pkg.INTEGRALITY_TOLERANCE,
	}
}

func (cs *CycleSeparator) WithTolerance(tolerance float64) *CycleSeparator {
	return &CycleSeparator{graph: cs.graph, tolerance: tolerance}
}

// Separate returns every cut edge of the candidate that closes a cycle with kept edges, each with
// a shortest kept path between its endpoints. an empty result means the candidate is a multicut.
func (cs *CycleSeparator) Separate(values []float64) ([]Inequality, error) {
	cut, err := cs.Round(values)
	if err != nil {
		return nil, err
	}
	return cs.SeparateLabeling(cut), nil
}

// SeparateLabeling is Separate for an already rounded 0/1 labeling.
func (cs *CycleSeparator) SeparateLabeling(cut []bool) []Inequality {
	oracle := connectivity.NewOracleFromCut(cs.graph, cut)
	comp := oracle.Components()

	violated := make([]Inequality, 0)
	for _, e := range cs.graph.GetEdges() {
		if !cut[e.GetID()] || comp[e.GetU()] != comp[e.GetV()] {
			continue
		}

		_, path, ok := oracle.ShortestPath(e.GetU(), e.GetV())
		util.AssertPanic(ok && len(path) >= 2, "kept path must exist between endpoints in one component")

		violated = append(violated, NewInequality(e.GetID(), path))
	}
	return violated
}

// Round maps candidate values to cut flags with threshold 0.5. values farther than the tolerance
// from both 0 and 1 are rejected.
func (cs *CycleSeparator) Round(values []float64) ([]bool, error) {
	m := cs.graph.NumberOfEdges()
	if len(values) != m {
		return nil, util.WrapErrorf(nil, ErrSeparationInconsistency,
			"candidate has %d values, graph has %d edges", len(values), m)
	}

	cut := make([]bool, m)
	for e, x := range values {
		if math.IsNaN(x) || (math.Abs(x) > cs.tolerance && math.Abs(x-1) > cs.tolerance) {
			edge := cs.graph.GetEdge(da.Index(e))
			return nil, util.WrapErrorf(nil, ErrSeparationInconsistency,
				"edge %d (%d,%d) has non-integral value %v", e,
				cs.graph.GetNodeID(edge.GetU()), cs.graph.GetNodeID(edge.GetV()), x)
		}
		cut[e] = x > pkg.CUT_THRESHOLD
	}
	return cut, nil
}
