package multicut

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	da "github.com/lintang-b-s/Multicutx/pkg/datastructure"
	"github.com/lintang-b-s/Multicutx/pkg/metrics"
	"github.com/lintang-b-s/Multicutx/pkg/mip"
	"github.com/lintang-b-s/Multicutx/pkg/separator"
	"github.com/lintang-b-s/Multicutx/pkg/util"
	"go.uber.org/zap"
)

var (
	ErrNoFeasibleSolution = errors.New("no feasible solution")
	ErrEngine             = errors.New("engine error")
	ErrInvalidMulticut    = errors.New("labeling is not a multicut")
)

// Solver models the minimum cost multicut problem as a binary program and lets an external engine
// search it, supplying violated cycle inequalities as lazy constraints.
type Solver struct {
	engine         mip.Engine
	log            *zap.Logger
	metrics        *metrics.Registry
	allowIncumbent bool
}

type Option func(*Solver)

func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Solver) {
		s.metrics = reg
	}
}

// WithAllowIncumbent makes Solve return the best multicut found so far, flagged as not optimal,
// when the engine stops on its time limit. without it that outcome is an ErrEngine failure.
func WithAllowIncumbent(allow bool) Option {
	return func(s *Solver) {
		s.allowIncumbent = allow
	}
}

func NewSolver(engine mip.Engine, log *zap.Logger, opts ...Option) *Solver {
	s := &Solver{
		engine: engine,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) GetEngine() mip.Engine {
	return s.engine
}

// edgeVarName names the variable of edge e after its canonical endpoints.
func edgeVarName(graph *da.Graph, e da.Edge) string {
	return fmt.Sprintf("e_%d_%d", graph.GetNodeID(e.GetU()), graph.GetNodeID(e.GetV()))
}

// BuildModel registers one binary variable per edge with the edge cost as objective coefficient.
// no cycle inequality is added up front.
func BuildModel(graph *da.Graph, costs *da.CostFunction) (*mip.Model, []mip.Var) {
	model := mip.NewModel()
	vars := make([]mip.Var, graph.NumberOfEdges())
	for _, e := range graph.GetEdges() {
		vars[e.GetID()] = model.AddBinaryVar(edgeVarName(graph, e), costs.GetCost(e.GetID()))
	}
	return model, vars
}

// Counters tallies separation calls and emitted inequalities across concurrent callback invocations.
type Counters struct {
	separations  atomic.Int64
	inequalities atomic.Int64
}

func (c *Counters) Separations() int64 {
	return c.separations.Load()
}

func (c *Counters) Inequalities() int64 {
	return c.inequalities.Load()
}

// SeparationCallback adapts the cycle separator to the engine's lazy constraint callback. it keeps no
// state besides the counters, so the engine may call it concurrently.
func SeparationCallback(sep *separator.CycleSeparator, vars []mip.Var, counters *Counters) mip.LazyCallback {
	return func(cb mip.CallbackContext) error {
		values := cb.Values()
		edgeValues := make([]float64, len(vars))
		for e, v := range vars {
			edgeValues[e] = values[v]
		}

		violated, err := sep.Separate(edgeValues)
		if err != nil {
			return err
		}
		for _, in := range violated {
			cb.AddLazy(in.Constraint(vars))
		}

		if counters != nil {
			counters.separations.Add(1)
			counters.inequalities.Add(int64(len(violated)))
		}
		return nil
	}
}

/*
Solve. computes a minimum cost multicut of graph under costs.

the returned labeling marks an edge cut iff its endpoints lie in different clusters of the
partition induced by the kept edges. an optimal solution is returned unless WithAllowIncumbent is
set and the engine ran out of time, in which case Solution.Optimal is false.
*/
func (s *Solver) Solve(ctx context.Context, graph *da.Graph, costs *da.CostFunction) (*Solution, error) {
	solveID := uuid.New().String()
	start := time.Now()
	log := s.log.With(zap.String("solve_id", solveID), zap.String("engine", s.engine.Name()))

	if graph.NumberOfEdges() == 0 {
		return extractSolution(graph, costs, []float64{}, true, SolveStats{Duration: time.Since(start)})
	}

	log.Info("solving multicut",
		zap.Int("nodes", graph.NumberOfVertices()),
		zap.Int("edges", graph.NumberOfEdges()))

	model, vars := BuildModel(graph, costs)
	sep := separator.NewCycleSeparator(graph)
	counters := &Counters{}

	res, err := s.engine.Solve(ctx, model, SeparationCallback(sep, vars, counters))

	stats := SolveStats{
		Duration:        time.Since(start),
		Separations:     counters.Separations(),
		LazyConstraints: counters.Inequalities(),
	}
	status := mip.StatusError
	if res != nil {
		status = res.Status
		stats.Nodes = res.Stats.Nodes
		stats.Iterations = res.Stats.Iterations
	}
	if s.metrics != nil {
		s.metrics.RecordSolve(s.engine.Name(), status.String(), stats.Duration, graph.NumberOfEdges(),
			stats.Nodes+stats.Iterations, stats.Separations, stats.LazyConstraints)
	}

	if err != nil {
		if errors.Is(err, separator.ErrSeparationInconsistency) {
			log.Error("engine handed a non-integral candidate to the separator", zap.Error(err))
			return nil, err
		}
		log.Error("engine failed", zap.Error(err))
		return nil, util.WrapErrorf(err, ErrEngine, "engine %s terminated with status %s", s.engine.Name(), status)
	}

	log.Info("engine finished",
		zap.String("status", status.String()),
		zap.Int64("separations", stats.Separations),
		zap.Int64("lazy_constraints", stats.LazyConstraints),
		zap.Int64("nodes", stats.Nodes),
		zap.Duration("duration", stats.Duration))

	switch status {
	case mip.StatusOptimal:
		return s.extract(graph, costs, vars, res, true, stats)
	case mip.StatusInfeasible:
		// cutting every edge is always feasible, so this is a modeling or engine defect
		log.Error("engine reported the multicut model infeasible",
			zap.Int("nodes", graph.NumberOfVertices()),
			zap.Int("edges", graph.NumberOfEdges()))
		return nil, util.WrapErrorf(nil, ErrNoFeasibleSolution, "engine %s reported infeasibility for %s",
			s.engine.Name(), graph)
	case mip.StatusTimeLimit:
		if s.allowIncumbent && res.HasSolution() {
			log.Warn("time limit reached, returning incumbent", zap.Float64("objective", res.Objective))
			return s.extract(graph, costs, vars, res, false, stats)
		}
		return nil, util.WrapErrorf(mip.ErrTimeLimit, ErrEngine, "engine %s stopped after %s",
			s.engine.Name(), stats.Duration)
	case mip.StatusInterrupted:
		return nil, util.WrapErrorf(mip.ErrInterrupted, ErrEngine, "engine %s interrupted", s.engine.Name())
	default:
		return nil, util.WrapErrorf(nil, ErrEngine, "engine %s terminated with status %s", s.engine.Name(), status)
	}
}

func (s *Solver) extract(graph *da.Graph, costs *da.CostFunction, vars []mip.Var, res *mip.Result,
	optimal bool, stats SolveStats) (*Solution, error) {
	values := make([]float64, len(vars))
	for e, v := range vars {
		values[e] = res.Values[v]
	}
	stats.EngineObjective = res.Objective
	return extractSolution(graph, costs, values, optimal, stats)
}
