package bnb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lintang-b-s/Multicutx/pkg/mip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func noLazy(cb mip.CallbackContext) error {
	return nil
}

func newModel(t *testing.T, obj []float64, rows ...mip.Constraint) *mip.Model {
	t.Helper()
	m := mip.NewModel()
	for j, c := range obj {
		m.AddBinaryVar("x"+string(rune('a'+j)), c)
	}
	for _, r := range rows {
		require.NoError(t, m.AddConstraint(r))
	}
	return m
}

func TestSolveStaticRows(t *testing.T) {
	testCases := []struct {
		name       string
		obj        []float64
		rows       []mip.Constraint
		wantStatus mip.Status
		wantValues []float64
		wantObj    float64
	}{
		{
			name:       "unconstrained",
			obj:        []float64{3, -2, 0, -1},
			wantStatus: mip.StatusOptimal,
			wantValues: []float64{0, 1, 0, 1},
			wantObj:    -3,
		},
		{
			name: "covering row",
			obj:  []float64{3, 2},
			rows: []mip.Constraint{
				mip.NewConstraint([]mip.Term{mip.NewTerm(0, 1), mip.NewTerm(1, 1)}, mip.GreaterEqual, 1),
			},
			wantStatus: mip.StatusOptimal,
			wantValues: []float64{0, 1},
			wantObj:    2,
		},
		{
			name: "equality row",
			obj:  []float64{-4, -3, -5},
			rows: []mip.Constraint{
				mip.NewConstraint([]mip.Term{mip.NewTerm(0, 1), mip.NewTerm(1, 1), mip.NewTerm(2, 1)}, mip.Equal, 2),
			},
			wantStatus: mip.StatusOptimal,
			wantValues: []float64{1, 0, 1},
			wantObj:    -9,
		},
		{
			name: "infeasible",
			obj:  []float64{1},
			rows: []mip.Constraint{
				mip.NewConstraint([]mip.Term{mip.NewTerm(0, 1)}, mip.GreaterEqual, 1),
				mip.NewConstraint([]mip.Term{mip.NewTerm(0, 1)}, mip.LessEqual, 0),
			},
			wantStatus: mip.StatusInfeasible,
		},
	}

	for _, tt := range testCases {
		for _, workers := range []int{1, 4} {
			t.Run(tt.name, func(t *testing.T) {
				e := NewEngine(zap.NewNop(), mip.WithWorkers(workers))
				res, err := e.Solve(context.Background(), newModel(t, tt.obj, tt.rows...), noLazy)
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, res.Status)
				if tt.wantStatus == mip.StatusOptimal {
					assert.Equal(t, tt.wantValues, res.Values)
					assert.InDelta(t, tt.wantObj, res.Objective, 1e-9)
				} else {
					assert.False(t, res.HasSolution())
				}
			})
		}
	}
}

func TestSolveLazyRows(t *testing.T) {
	// the callback forbids x0 = 1 with x1 = 0 by adding x0 - x1 <= 0 when it sees such a candidate
	lazy := func(cb mip.CallbackContext) error {
		v := cb.Values()
		if v[0] == 1 && v[1] == 0 {
			cb.AddLazy(mip.NewConstraint([]mip.Term{mip.NewTerm(0, 1), mip.NewTerm(1, -1)}, mip.LessEqual, 0))
		}
		return nil
	}

	for _, workers := range []int{1, 3} {
		e := NewEngine(zap.NewNop(), mip.WithWorkers(workers))
		res, err := e.Solve(context.Background(), newModel(t, []float64{-5, 2}), lazy)
		require.NoError(t, err)
		assert.Equal(t, mip.StatusOptimal, res.Status)
		assert.Equal(t, []float64{1, 1}, res.Values)
		assert.InDelta(t, -3.0, res.Objective, 1e-9)
		assert.GreaterOrEqual(t, res.Stats.Callbacks, int64(2))
		assert.GreaterOrEqual(t, res.Stats.LazyConstraints, int64(1))
	}
}

func TestSolveCallbackError(t *testing.T) {
	errBoom := errors.New("boom")
	e := NewEngine(zap.NewNop(), mip.WithWorkers(2))
	res, err := e.Solve(context.Background(), newModel(t, []float64{1, -1, 2}), func(cb mip.CallbackContext) error {
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, mip.StatusError, res.Status)
}

func TestSolveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEngine(zap.NewNop(), mip.WithWorkers(2))
	res, err := e.Solve(ctx, newModel(t, []float64{1, -1, 2}), noLazy)
	require.NoError(t, err)
	assert.Equal(t, mip.StatusInterrupted, res.Status)
}

func TestSolveTimeLimit(t *testing.T) {
	// the callback blocks past the time limit and never accepts a candidate on its own
	lazy := func(cb mip.CallbackContext) error {
		time.Sleep(30 * time.Millisecond)
		v := cb.Values()
		cb.AddLazy(mip.NewConstraint([]mip.Term{mip.NewTerm(0, 1)}, mip.LessEqual, v[0]-1+0.5))
		return nil
	}

	e := NewEngine(zap.NewNop(), mip.WithTimeLimit(10*time.Millisecond))
	res, err := e.Solve(context.Background(), newModel(t, []float64{-1, -1, -1, -1, -1, -1}), lazy)
	require.NoError(t, err)
	assert.Equal(t, mip.StatusTimeLimit, res.Status)
}

func TestSplitJobs(t *testing.T) {
	s := &search{obj: []float64{-3, 1, 2}}
	s.order = branchingOrder(s.obj)
	assert.Equal(t, []mip.Var{0, 2, 1}, s.order)

	assert.Len(t, s.splitJobs(1), 1)
	jobs := s.splitJobs(4)
	assert.Len(t, jobs, 8)
	// the first job follows the greedy completion
	assert.Equal(t, []int8{1, 0, 0}, jobs[0].fix)
}
