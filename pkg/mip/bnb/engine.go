package bnb

import (
	"context"
	"math"
	"math/bits"
	"sort"
	"sync/atomic"
	"time"

	"github.com/lintang-b-s/Multicutx/pkg"
	"github.com/lintang-b-s/Multicutx/pkg/concurrent"
	"github.com/lintang-b-s/Multicutx/pkg/mip"
	"github.com/lintang-b-s/Multicutx/pkg/util"
	"go.uber.org/zap"
)

// Engine is a depth-first branch-and-bound solver for binary programs with lazy constraints.
type Engine struct {
	log  *zap.Logger
	opts mip.Options
}

func NewEngine(log *zap.Logger, opts ...mip.Option) *Engine {
	return &Engine{
		log:  log,
		opts: mip.NewOptions(opts...),
	}
}

func (e *Engine) Name() string {
	return pkg.ENGINE_BRANCH_AND_BOUND
}

// subtree is a unit of work for the worker pool: the search below a partial assignment.
type subtree struct {
	fix []int8
}

type search struct {
	ctx      context.Context
	obj      []float64
	order    []mip.Var
	pool     *rowPool
	inc      *incumbent
	callback mip.LazyCallback

	aborted   atomic.Bool
	nodes     atomic.Int64
	callbacks atomic.Int64
	lazy      atomic.Int64
}

/*
Solve. minimises the model over {0,1}^n.

every node of the search tree is handled as follows:
 1. propagate all known rows over the partial assignment (fixing forced variables, detecting
    infeasibility).
 2. bound = fixed cost + Σ min(0, c_j) over the free variables. prune if it cannot beat the incumbent.
 3. the greedy completion (every free variable at its cheaper value) attains the bound. if it violates
    a known row, branch on a free variable of that row, cheaper value first.
 4. otherwise it is an integer-feasible candidate and the lazy callback sees it. if no row violated by
    the candidate was added, the candidate is optimal for the node and offered as incumbent; else the
    node is processed again with the new rows.

the top levels of the tree are enumerated up front and the resulting subtrees are searched on a
worker pool; incumbent and rows are shared, so the callback may run concurrently on different
candidates.
*/
func (e *Engine) Solve(ctx context.Context, model *mip.Model, callback mip.LazyCallback) (*mip.Result, error) {
	start := time.Now()
	searchCtx, cancel := e.opts.Deadline(ctx)
	defer cancel()

	s := &search{
		ctx:      searchCtx,
		obj:      model.GetObjective(),
		order:    branchingOrder(model.GetObjective()),
		pool:     newRowPool(model),
		inc:      newIncumbent(),
		callback: callback,
	}

	jobs := s.splitJobs(e.opts.Workers)
	workers := concurrent.NewWorkerPoolWithContext[subtree, error](searchCtx, e.opts.Workers, len(jobs))
	for _, job := range jobs {
		workers.AddJob(job)
	}
	workers.Close()
	workers.Start(func(job subtree) error {
		err := s.dfs(job.fix)
		if err != nil {
			s.aborted.Store(true)
			cancel()
		}
		return err
	})
	workers.Wait()

	var searchErr error
	searched := 0
	for err := range workers.CollectResults() {
		searched++
		if err != nil && searchErr == nil {
			searchErr = err
		}
	}
	if searched < len(jobs) {
		// subtrees skipped after the deadline
		s.aborted.Store(true)
	}

	res := &mip.Result{
		Stats: mip.Stats{
			Nodes:           s.nodes.Load(),
			Callbacks:       s.callbacks.Load(),
			LazyConstraints: s.lazy.Load(),
			Duration:        time.Since(start),
		},
	}

	values, obj, found := s.inc.get()
	if found {
		res.Values = values
		res.Objective = obj
	}

	switch {
	case searchErr != nil:
		res.Status = mip.StatusError
	case s.aborted.Load():
		res.Status = mip.StatusFromContext(searchCtx)
	case found:
		res.Status = mip.StatusOptimal
	default:
		res.Status = mip.StatusInfeasible
	}

	e.log.Debug("branch and bound finished",
		zap.String("status", res.Status.String()),
		zap.Int("vars", model.NumVars()),
		zap.Int("rows", s.pool.size()),
		zap.Int("subtrees", len(jobs)),
		zap.Int64("nodes", res.Stats.Nodes),
		zap.Int64("callbacks", res.Stats.Callbacks),
		zap.Int64("lazy_constraints", res.Stats.LazyConstraints),
		zap.Duration("duration", res.Stats.Duration),
	)

	return res, searchErr
}

// branchingOrder sorts variables by decreasing |objective|, ties by index.
func branchingOrder(obj []float64) []mip.Var {
	order := make([]mip.Var, len(obj))
	for j := range order {
		order[j] = mip.Var(j)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(obj[order[a]]) > math.Abs(obj[order[b]])
	})
	return order
}

// splitJobs fixes the first k variables of the branching order in all 2^k ways, k growing with the
// number of workers. the job matching the greedy completion comes first.
func (s *search) splitJobs(workers int) []subtree {
	n := len(s.obj)
	k := 0
	if workers > 1 {
		k = bits.Len(uint(workers-1)) + 2
	}
	if k > n {
		k = n
	}

	jobs := make([]subtree, 0, 1<<k)
	for mask := 0; mask < 1<<k; mask++ {
		fix := make([]int8, n)
		for j := range fix {
			fix[j] = free
		}
		for i := 0; i < k; i++ {
			v := s.order[i]
			val := s.preferred(v)
			if mask&(1<<i) != 0 {
				val = 1 - val
			}
			fix[v] = val
		}
		jobs = append(jobs, subtree{fix: fix})
	}
	return jobs
}

// preferred is the value of v in the greedy completion.
func (s *search) preferred(v mip.Var) int8 {
	if s.obj[v] < 0 {
		return 1
	}
	return 0
}

func (s *search) dfs(fix []int8) error {
	s.nodes.Add(1)

	for {
		if util.StopConcurrentOperation(s.ctx) {
			s.aborted.Store(true)
			return nil
		}
		rows := s.pool.snapshot()
		if !s.propagate(fix, rows) {
			return nil
		}
		bound := s.bound(fix)
		if !s.inc.improvable(bound) {
			return nil
		}

		cand := s.complete(fix)
		if r := firstViolated(rows, cand); r >= 0 {
			v := s.branchVar(rows[r], fix, cand)
			first := int8(cand[v])
			for _, val := range [2]int8{first, 1 - first} {
				child := make([]int8, len(fix))
				copy(child, fix)
				child[v] = val
				if err := s.dfs(child); err != nil {
					return err
				}
			}
			return nil
		}

		if err := s.separate(cand); err != nil {
			return err
		}
		if firstViolated(s.pool.snapshot(), cand) < 0 {
			s.inc.offer(cand, bound)
			return nil
		}
	}
}

// propagate fixes variables forced by the rows until nothing changes. false means the partial
// assignment cannot be completed.
func (s *search) propagate(fix []int8, rows []row) bool {
	changed := true
	for changed {
		changed = false
		for _, r := range rows {
			minAct := r.minActivity(fix)
			if minAct > r.rhs+eps {
				return false
			}
			for i, v := range r.vars {
				if fix[v] != free {
					continue
				}
				a := r.coefs[i]
				if a > 0 && minAct+a > r.rhs+eps {
					fix[v] = 0
					changed = true
				} else if a < 0 && minAct-a > r.rhs+eps {
					fix[v] = 1
					changed = true
				}
			}
		}
	}
	return true
}

func (s *search) bound(fix []int8) float64 {
	b := 0.0
	for j, c := range s.obj {
		switch fix[j] {
		case 1:
			b += c
		case free:
			if c < 0 {
				b += c
			}
		}
	}
	return b
}

func (s *search) complete(fix []int8) []float64 {
	cand := make([]float64, len(fix))
	for j, f := range fix {
		switch f {
		case 1:
			cand[j] = 1
		case free:
			if s.obj[j] < 0 {
				cand[j] = 1
			}
		}
	}
	return cand
}

// branchVar picks, among the free variables whose greedy value pushes r over its rhs, the one with
// the largest |objective|.
func (s *search) branchVar(r row, fix []int8, cand []float64) mip.Var {
	best := mip.Var(-1)
	bestAbs := -1.0
	for i, v := range r.vars {
		if fix[v] != free {
			continue
		}
		a := r.coefs[i]
		if (a > 0 && cand[v] == 1) || (a < 0 && cand[v] == 0) {
			if c := math.Abs(s.obj[v]); c > bestAbs || (c == bestAbs && v < best) {
				best, bestAbs = v, c
			}
		}
	}
	return best
}

func (s *search) separate(cand []float64) error {
	s.callbacks.Add(1)
	cb := mip.NewCallbackContext(cand, func(c mip.Constraint) {
		s.pool.add(normalize(c)...)
		s.lazy.Add(1)
	})
	return s.callback(cb)
}
