package satengine

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
			obj:        []float64{3, -2, -1},
			wantStatus: mip.StatusOptimal,
			wantValues: []float64{0, 1, 1},
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
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(zap.NewNop(), 1)
			res, err := e.Solve(context.Background(), newModel(t, tt.obj, tt.rows...), noLazy)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			if tt.wantStatus == mip.StatusOptimal {
				assert.Equal(t, tt.wantValues, res.Values)
				assert.InDelta(t, tt.wantObj, res.Objective, 1e-9)
			}
		})
	}
}

func TestSolveLazyRows(t *testing.T) {
	lazy := func(cb mip.CallbackContext) error {
		v := cb.Values()
		if v[0] == 1 && v[1] == 0 {
			cb.AddLazy(mip.NewConstraint([]mip.Term{mip.NewTerm(0, 1), mip.NewTerm(1, -1)}, mip.LessEqual, 0))
		}
		return nil
	}

	e := NewEngine(zap.NewNop(), 1)
	res, err := e.Solve(context.Background(), newModel(t, []float64{-5, 2}), lazy)
	require.NoError(t, err)
	assert.Equal(t, mip.StatusOptimal, res.Status)
	assert.Equal(t, []float64{1, 1}, res.Values)
	assert.InDelta(t, -3.0, res.Objective, 1e-9)
	assert.Equal(t, int64(2), res.Stats.Iterations)
	assert.Equal(t, int64(1), res.Stats.LazyConstraints)
}

func TestSolveCostScale(t *testing.T) {
	model := newModel(t, []float64{0.5, -1.5})

	_, err := NewEngine(zap.NewNop(), 1).Solve(context.Background(), model, noLazy)
	assert.True(t, errors.Is(err, ErrNonIntegralCoefficient))

	res, err := NewEngine(zap.NewNop(), 2).Solve(context.Background(), model, noLazy)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, res.Values)
	assert.InDelta(t, -1.5, res.Objective, 1e-9)
}

func TestSolveCallbackError(t *testing.T) {
	errBoom := errors.New("boom")
	res, err := NewEngine(zap.NewNop(), 1).Solve(context.Background(), newModel(t, []float64{1, -1}),
		func(cb mip.CallbackContext) error {
			return errBoom
		})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, mip.StatusError, res.Status)
}

func TestSolveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewEngine(zap.NewNop(), 1).Solve(ctx, newModel(t, []float64{1, -1}), noLazy)
	require.NoError(t, err)
	assert.Equal(t, mip.StatusInterrupted, res.Status)
}

func TestSolveWaitsForFreeSlot(t *testing.T) {
	e := NewEngine(zap.NewNop(), 1, mip.WithWorkers(1))
	model := newModel(t, []float64{1, -1})

	// a detached gophersat run from an earlier timed-out solve still owns the only slot.
	require.True(t, e.slots.TryAcquire(1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res, err := e.Solve(ctx, model, noLazy)
	require.NoError(t, err)
	assert.Equal(t, mip.StatusTimeLimit, res.Status)
	assert.False(t, res.HasSolution())

	e.slots.Release(1)
	res, err = e.Solve(context.Background(), model, noLazy)
	require.NoError(t, err)
	assert.Equal(t, mip.StatusOptimal, res.Status)
	assert.Equal(t, []float64{0, 1}, res.Values)
}

func TestAtLeastNegatedLiterals(t *testing.T) {
	model := newModel(t, []float64{0, 0})
	// x0 - x1 <= 0  becomes  ¬x0 + x1 >= 1
	pb, err := atLeast(model, []mip.Term{mip.NewTerm(0, 1), mip.NewTerm(1, -1)}, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, pb.AtLeast)
	assert.Equal(t, []int{1, 1}, pb.Coeffs)
	assert.True(t, pb.Lits[0].Negated)
	assert.False(t, pb.Lits[1].Negated)
}
