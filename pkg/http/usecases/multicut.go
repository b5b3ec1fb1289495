package usecases

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/Multicutx/pkg/datastructure"
	"github.com/lintang-b-s/Multicutx/pkg/metrics"
	"github.com/lintang-b-s/Multicutx/pkg/multicut"
	"github.com/lintang-b-s/Multicutx/pkg/util"
	"go.uber.org/zap"
)

type MulticutService struct {
	log     *zap.Logger
	solver  MulticutSolver
	cache   *lru.Cache[uint64, *multicut.Solution]
	metrics *metrics.Registry
	timeout time.Duration
}

// NewMulticutService caches up to cacheSize solved instances by fingerprint. timeout bounds every
// solve on top of the request context, 0 means no extra bound.
func NewMulticutService(log *zap.Logger, solver MulticutSolver, cacheSize int, reg *metrics.Registry,
	timeout time.Duration) (*MulticutService, error) {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[uint64, *multicut.Solution](cacheSize)
	if err != nil {
		return nil, err
	}
	return &MulticutService{
		log:     log,
		solver:  solver,
		cache:   cache,
		metrics: reg,
		timeout: timeout,
	}, nil
}

// Fingerprint hashes the node ids and the ordered edge list with costs. two levels share a
// fingerprint iff they describe the same instance with the same edge order.
func Fingerprint(graph *datastructure.Graph, costs *datastructure.CostFunction) uint64 {
	h := xxhash.New()
	buf := make([]byte, 8)
	write := func(x uint64) {
		binary.LittleEndian.PutUint64(buf, x)
		_, _ = h.Write(buf)
	}

	write(uint64(graph.NumberOfVertices()))
	for _, id := range graph.GetNodeIDs() {
		write(uint64(id))
	}
	write(uint64(graph.NumberOfEdges()))
	for _, e := range graph.GetEdges() {
		write(uint64(graph.GetNodeID(e.GetU())))
		write(uint64(graph.GetNodeID(e.GetV())))
		write(math.Float64bits(costs.GetCost(e.GetID())))
	}
	return h.Sum64()
}

// Solve returns the optimal multicut of the level and whether it came from the cache.
func (ms *MulticutService) Solve(ctx context.Context, level *datastructure.Level) (*multicut.Solution,
	*datastructure.Graph, bool, error) {
	graph, costs, err := level.Build()
	if err != nil {
		return nil, nil, false, util.WrapErrorf(err, util.ErrBadParamInput, "invalid level %q", level.Name)
	}

	sol, cached, err := ms.solve(ctx, graph, costs, level.Name)
	return sol, graph, cached, err
}

func (ms *MulticutService) solve(ctx context.Context, graph *datastructure.Graph,
	costs *datastructure.CostFunction, name string) (*multicut.Solution, bool, error) {
	key := Fingerprint(graph, costs)
	if sol, ok := ms.cache.Get(key); ok {
		if ms.metrics != nil {
			ms.metrics.SolutionCacheHitsTotal.Inc()
		}
		return sol, true, nil
	}

	if ms.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ms.timeout)
		defer cancel()
	}

	sol, err := ms.solver.Solve(ctx, graph, costs)
	if err != nil {
		ms.log.Error("solve failed", zap.String("level", name), zap.Error(err))
		if ms.timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, false, util.WrapErrorf(err, util.ErrTimeout, "level %q not solved within %s", name, ms.timeout)
		}
		return nil, false, err
	}
	if sol.IsOptimal() {
		ms.cache.Add(key, sol)
	}
	return sol, false, nil
}

type Evaluation struct {
	multicut.Evaluation
	Optimum *multicut.Solution
	// OptimumProven is false when Optimum is only the incumbent left by a time limit; Gap is 0 then.
	OptimumProven bool
	Gap           float64
}

// Evaluate scores the cut stored in the level's IsCut flags against the optimal multicut.
func (ms *MulticutService) Evaluate(ctx context.Context, level *datastructure.Level) (Evaluation, error) {
	graph, costs, err := level.Build()
	if err != nil {
		return Evaluation{}, util.WrapErrorf(err, util.ErrBadParamInput, "invalid level %q", level.Name)
	}

	sol, _, err := ms.solve(ctx, graph, costs, level.Name)
	if err != nil {
		return Evaluation{}, err
	}

	eval := multicut.Evaluate(graph, costs, level.CutLabeling())
	res := Evaluation{
		Evaluation:    eval,
		Optimum:       sol,
		OptimumProven: sol.IsOptimal(),
	}
	if res.OptimumProven {
		res.Gap = multicut.Gap(eval.Objective, sol.GetObjective())
	}
	return res, nil
}
