package multicut

import (
	"context"
	"path/filepath"
	"testing"

	da "github.com/lintang-b-s/Multicutx/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSolveLevelFile(t *testing.T) {
	levels, err := da.ReadLevels(filepath.Join("testdata", "levels.json"))
	require.NoError(t, err)
	require.NotEmpty(t, levels.Graphs)

	for _, engine := range engines() {
		solver := NewSolver(engine, zap.NewNop())
		for _, level := range levels.Graphs {
			t.Run(engine.Name()+"/"+level.Name, func(t *testing.T) {
				g, cf, err := level.Build()
				require.NoError(t, err)

				stored := make([]bool, len(level.Edges))
				for i, e := range level.Edges {
					stored[i] = e.OptimalCut
				}
				storedEval := Evaluate(g, cf, stored)
				require.True(t, storedEval.Valid)
				require.InDelta(t, level.OptimalCost, storedEval.Objective, 1e-9)

				sol, err := solver.Solve(context.Background(), g, cf)
				require.NoError(t, err)
				assert.True(t, sol.IsOptimal())
				assert.InDelta(t, level.OptimalCost, sol.GetObjective(), 1e-9)
				assert.Equal(t, 0.0, Gap(sol.GetObjective(), level.OptimalCost))
			})
		}
	}
}

func TestEvaluatePlayerCut(t *testing.T) {
	g, cf := triangle(t)

	testCases := []struct {
		name         string
		labeling     []bool
		wantValid    bool
		wantObj      float64
		wantViolated []da.Index
		wantClusters int
		wantGap      float64
	}{
		{
			name:         "optimal cut",
			labeling:     []bool{false, true, true},
			wantValid:    true,
			wantObj:      -3,
			wantViolated: []da.Index{},
			wantClusters: 2,
			wantGap:      0,
		},
		{
			name:         "no cut",
			labeling:     []bool{false, false, false},
			wantValid:    true,
			wantObj:      0,
			wantViolated: []da.Index{},
			wantClusters: 1,
			wantGap:      1,
		},
		{
			name:         "dangling cut edge",
			labeling:     []bool{false, true, false},
			wantValid:    false,
			wantObj:      -2,
			wantViolated: []da.Index{1},
			wantClusters: 1,
			wantGap:      1.0 / 3.0,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			eval := Evaluate(g, cf, tt.labeling)
			assert.Equal(t, tt.wantValid, eval.Valid)
			assert.Equal(t, tt.wantObj, eval.Objective)
			assert.Equal(t, tt.wantViolated, eval.ViolatedEdges)
			assert.Equal(t, tt.wantClusters, eval.NumClusters)
			assert.InDelta(t, tt.wantGap, Gap(eval.Objective, -3), 1e-9)
		})
	}
}

func TestGap(t *testing.T) {
	assert.Equal(t, 0.0, Gap(-3, -3))
	assert.InDelta(t, 0.5, Gap(0.5, 0), 1e-12)
	assert.InDelta(t, 0.1, Gap(-9, -10), 1e-12)
}
