package multicut

import (
	"time"

	"github.com/lintang-b-s/Multicutx/pkg"
	"github.com/lintang-b-s/Multicutx/pkg/connectivity"
	da "github.com/lintang-b-s/Multicutx/pkg/datastructure"
	"github.com/lintang-b-s/Multicutx/pkg/util"
)

type SolveStats struct {
	Duration        time.Duration
	Separations     int64
	LazyConstraints int64
	Nodes           int64
	Iterations      int64
	EngineObjective float64
}

// Solution is a multicut: the cut flag of every edge, its cost and the node clusters it induces.
type Solution struct {
	graph        *da.Graph
	labeling     []bool
	objective    float64
	optimal      bool
	nodeLabeling []da.Index
	numClusters  int
	stats        SolveStats
}

func (s *Solution) GetLabeling() []bool {
	return s.labeling
}

func (s *Solution) GetObjective() float64 {
	return s.objective
}

// IsOptimal is false only for an incumbent returned after the engine's time limit.
func (s *Solution) IsOptimal() bool {
	return s.optimal
}

func (s *Solution) GetStats() SolveStats {
	return s.stats
}

// GetNodeLabeling returns the cluster id of every vertex; ids increase with the smallest member.
func (s *Solution) GetNodeLabeling() []da.Index {
	return s.nodeLabeling
}

func (s *Solution) NumClusters() int {
	return s.numClusters
}

// IsCut is symmetric in u and v. ok is false when u and v are not adjacent.
func (s *Solution) IsCut(u, v da.Index) (bool, bool) {
	e, ok := s.graph.EdgeBetween(u, v)
	if !ok {
		return false, false
	}
	return s.labeling[e], true
}

func (s *Solution) IsEdgeCut(e da.Index) bool {
	return s.labeling[e]
}

func (s *Solution) CutEdges() []da.Index {
	cut := make([]da.Index, 0)
	for e, c := range s.labeling {
		if c {
			cut = append(cut, da.Index(e))
		}
	}
	return cut
}

// Round maps engine values to cut flags with threshold 0.5.
func Round(values []float64) []bool {
	cut := make([]bool, len(values))
	for e, x := range values {
		cut[e] = x > pkg.CUT_THRESHOLD
	}
	return cut
}

// extractSolution rounds the final values, recomputes the objective from the rounded labeling and
// checks that the labeling is a multicut.
func extractSolution(graph *da.Graph, costs *da.CostFunction, values []float64, optimal bool,
	stats SolveStats) (*Solution, error) {
	labeling := Round(values)

	eval := Evaluate(graph, costs, labeling)
	if !eval.Valid {
		e := graph.GetEdge(eval.ViolatedEdges[0])
		return nil, util.WrapErrorf(nil, ErrInvalidMulticut,
			"final labeling cuts edge (%d,%d) whose endpoints stay connected (%d violated edges)",
			graph.GetNodeID(e.GetU()), graph.GetNodeID(e.GetV()), len(eval.ViolatedEdges))
	}

	return &Solution{
		graph:        graph,
		labeling:     labeling,
		objective:    eval.Objective,
		optimal:      optimal,
		nodeLabeling: eval.NodeLabeling,
		numClusters:  eval.NumClusters,
		stats:        stats,
	}, nil
}

// Evaluation describes an arbitrary edge labeling, e.g. a cut drawn by a player.
type Evaluation struct {
	Valid         bool
	Objective     float64
	ViolatedEdges []da.Index // cut edges whose endpoints are joined by kept edges
	NodeLabeling  []da.Index
	NumClusters   int
}

// Evaluate computes the cost of labeling and the clusters of its kept edges, and lists the cut edges
// that lie inside a cluster. the labeling is a multicut iff that list is empty.
func Evaluate(graph *da.Graph, costs *da.CostFunction, labeling []bool) Evaluation {
	oracle := connectivity.NewOracleFromCut(graph, labeling)
	comp := oracle.Components()

	violated := make([]da.Index, 0)
	graph.ForEdges(func(e da.Edge) {
		if labeling[e.GetID()] && comp[e.GetU()] == comp[e.GetV()] {
			violated = append(violated, e.GetID())
		}
	})

	return Evaluation{
		Valid:         len(violated) == 0,
		Objective:     costs.Evaluate(labeling),
		ViolatedEdges: violated,
		NodeLabeling:  comp,
		NumClusters:   oracle.NumComponents(),
	}
}

// Gap is the relative distance of objective from the optimum, 0 when they are equal.
func Gap(objective, optimum float64) float64 {
	if util.Eq(objective, optimum) {
		return 0
	}
	den := util.MaxG(util.AbsG(optimum), 1.0)
	return (objective - optimum) / den
}
