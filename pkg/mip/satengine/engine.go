package satengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/crillab/gophersat/maxsat"
	"github.com/lintang-b-s/Multicutx/pkg"
	"github.com/lintang-b-s/Multicutx/pkg/mip"
	"github.com/lintang-b-s/Multicutx/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var (
	ErrNonIntegralCoefficient = errors.New("coefficient is not integral after scaling")
)

/*
Engine solves binary programs as weighted MAXSAT problems with gophersat.

the objective becomes one weighted soft unit clause per variable: a variable with cost c > 0 gets the
soft clause ¬x of weight c (violated, i.e. paid, when x = 1), a variable with cost c < 0 gets the soft
clause x of weight -c. both encodings differ from Σ c_j x_j by the constant Σ_{c<0} c. every row is a
hard pseudo-boolean constraint.

lazy rows are handled by row generation: solve, hand the optimum to the callback, add the rows it
submits and solve again, until the callback accepts the optimum. since every round solves a
relaxation of the full problem exactly, the first accepted optimum is optimal.

at most Workers gophersat runs are alive at once across all Solve calls, including runs whose caller
already gave up.
*/
type Engine struct {
	log       *zap.Logger
	opts      mip.Options
	costScale float64
	slots     *semaphore.Weighted
}

func NewEngine(log *zap.Logger, costScale float64, opts ...mip.Option) *Engine {
	if costScale <= 0 {
		costScale = pkg.DEFAULT_COST_SCALE
	}
	o := mip.NewOptions(opts...)
	return &Engine{
		log:       log,
		opts:      o,
		costScale: costScale,
		slots:     semaphore.NewWeighted(int64(o.Workers)),
	}
}

func (e *Engine) Name() string {
	return pkg.ENGINE_MAXSAT
}

type solveOutcome struct {
	model maxsat.Model
	cost  int
}

func (e *Engine) Solve(ctx context.Context, model *mip.Model, callback mip.LazyCallback) (*mip.Result, error) {
	start := time.Now()
	searchCtx, cancel := e.opts.Deadline(ctx)
	defer cancel()

	soft, err := e.softClauses(model)
	if err != nil {
		return &mip.Result{Status: mip.StatusError}, err
	}

	hard := make([]maxsat.Constr, 0, len(model.GetConstraints()))
	for i, c := range model.GetConstraints() {
		cs, err := e.hardConstraints(model, c)
		if err != nil {
			return &mip.Result{Status: mip.StatusError}, util.WrapErrorf(err, ErrNonIntegralCoefficient,
				"constraint %d", i)
		}
		hard = append(hard, cs...)
	}

	res := &mip.Result{}
	for {
		res.Stats.Iterations++

		values, ok, err := e.solveOnce(searchCtx, model, soft, hard)
		if err != nil {
			res.Status = mip.StatusFromContext(searchCtx)
			res.Stats.Duration = time.Since(start)
			return res, nil
		}
		if !ok {
			res.Status = mip.StatusInfeasible
			res.Stats.Duration = time.Since(start)
			return res, nil
		}

		added := make([]mip.Constraint, 0)
		res.Stats.Callbacks++
		cbErr := callback(mip.NewCallbackContext(values, func(c mip.Constraint) {
			added = append(added, c)
		}))
		if cbErr != nil {
			res.Status = mip.StatusError
			res.Stats.Duration = time.Since(start)
			return res, cbErr
		}
		res.Stats.LazyConstraints += int64(len(added))

		rejected := false
		for _, c := range added {
			cs, err := e.hardConstraints(model, c)
			if err != nil {
				res.Status = mip.StatusError
				return res, util.WrapErrorf(err, ErrNonIntegralCoefficient, "lazy constraint %v", c)
			}
			hard = append(hard, cs...)
			if !c.IsSatisfied(values, pkg.OBJECTIVE_EPSILON) {
				rejected = true
			}
		}

		if !rejected {
			res.Status = mip.StatusOptimal
			res.Values = values
			res.Objective = model.Evaluate(values)
			res.Stats.Duration = time.Since(start)

			e.log.Debug("maxsat row generation finished",
				zap.Int("vars", model.NumVars()),
				zap.Int("hard_constraints", len(hard)),
				zap.Int64("iterations", res.Stats.Iterations),
				zap.Int64("lazy_constraints", res.Stats.LazyConstraints),
				zap.Duration("duration", res.Stats.Duration),
			)
			return res, nil
		}
	}
}

// solveOnce runs gophersat in its own goroutine so that the time limit can interrupt the wait.
// gophersat cannot be stopped, so an interrupted solve keeps running until it finishes on its own and
// holds its slot until then.
func (e *Engine) solveOnce(ctx context.Context, model *mip.Model, soft, hard []maxsat.Constr) ([]float64, bool, error) {
	constrs := make([]maxsat.Constr, 0, len(soft)+len(hard))
	constrs = append(constrs, hard...)
	constrs = append(constrs, soft...)

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	values := make([]float64, model.NumVars())
	if len(constrs) == 0 {
		return values, true, nil
	}

	if err := e.slots.Acquire(ctx, 1); err != nil {
		return nil, false, err
	}

	done := make(chan solveOutcome, 1)
	go func() {
		defer e.slots.Release(1)
		m, cost := maxsat.New(constrs...).Solve()
		done <- solveOutcome{model: m, cost: cost}
	}()

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case out := <-done:
		if out.model == nil {
			return nil, false, nil
		}
		for j := range values {
			if out.model[model.GetName(mip.Var(j))] {
				values[j] = 1
			}
		}
		return values, true, nil
	}
}

func (e *Engine) softClauses(model *mip.Model) ([]maxsat.Constr, error) {
	soft := make([]maxsat.Constr, 0, model.NumVars())
	for j, c := range model.GetObjective() {
		w, err := e.scaled(c)
		if err != nil {
			return nil, util.WrapErrorf(err, ErrNonIntegralCoefficient, "objective coefficient of %s",
				model.GetName(mip.Var(j)))
		}
		name := model.GetName(mip.Var(j))
		switch {
		case w > 0:
			soft = append(soft, maxsat.WeightedClause([]maxsat.Lit{maxsat.Not(name)}, w))
		case w < 0:
			soft = append(soft, maxsat.WeightedClause([]maxsat.Lit{maxsat.Var(name)}, -w))
		}
	}
	return soft, nil
}

/*
hardConstraints. rewrites Σ a_j x_j (sense) b as gophersat constraints Σ w_j l_j >= k with w_j > 0.

a <= row is negated into Σ -a_j x_j >= -b. a term w*x with w < 0 is rewritten with the negated
literal: w*x = w - w*¬x, so it contributes -w to the coefficient of ¬x and -w to the bound.
*/
func (e *Engine) hardConstraints(model *mip.Model, c mip.Constraint) ([]maxsat.Constr, error) {
	switch c.Sense {
	case mip.GreaterEqual:
		pb, err := atLeast(model, c.Terms, 1, c.RHS)
		if err != nil {
			return nil, err
		}
		return []maxsat.Constr{pb}, nil
	case mip.LessEqual:
		pb, err := atLeast(model, c.Terms, -1, -c.RHS)
		if err != nil {
			return nil, err
		}
		return []maxsat.Constr{pb}, nil
	default:
		ge, err := atLeast(model, c.Terms, 1, c.RHS)
		if err != nil {
			return nil, err
		}
		le, err := atLeast(model, c.Terms, -1, -c.RHS)
		if err != nil {
			return nil, err
		}
		return []maxsat.Constr{ge, le}, nil
	}
}

func atLeast(model *mip.Model, terms []mip.Term, sign float64, rhs float64) (maxsat.Constr, error) {
	k, err := integral(rhs)
	if err != nil {
		return maxsat.Constr{}, err
	}

	lits := make([]maxsat.Lit, 0, len(terms))
	coefs := make([]int, 0, len(terms))
	for _, t := range terms {
		w, err := integral(sign * t.Coef)
		if err != nil {
			return maxsat.Constr{}, err
		}
		name := model.GetName(t.Var)
		switch {
		case w > 0:
			lits = append(lits, maxsat.Var(name))
			coefs = append(coefs, w)
		case w < 0:
			lits = append(lits, maxsat.Not(name))
			coefs = append(coefs, -w)
			k -= w
		}
	}
	return maxsat.HardPBConstr(lits, coefs, k), nil
}

func (e *Engine) scaled(c float64) (int, error) {
	return integral(c * e.costScale)
}

func integral(x float64) (int, error) {
	r := math.Round(x)
	if math.Abs(x-r) > 1e-9 || math.Abs(r) > math.MaxInt32 {
		return 0, fmt.Errorf("%v is not an integer", x)
	}
	return int(r), nil
}
