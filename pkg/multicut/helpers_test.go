package multicut

import (
	"context"
	"math"
	"math/rand"
	"testing"

	da "github.com/lintang-b-s/Multicutx/pkg/datastructure"
	"github.com/lintang-b-s/Multicutx/pkg/mip"
	"github.com/stretchr/testify/require"
)

// triangle: e0 = (0,1) cost 5, e1 = (1,2) cost -2, e2 = (0,2) cost -1.
// the optimum isolates node 2 at cost -3.
func triangle(t *testing.T) (*da.Graph, *da.CostFunction) {
	t.Helper()
	g, cf, err := da.NewGraph([]int64{0, 1, 2}, []da.EdgeSpec{
		da.NewEdgeSpec(0, 1, 5),
		da.NewEdgeSpec(1, 2, -2),
		da.NewEdgeSpec(0, 2, -1),
	})
	require.NoError(t, err)
	return g, cf
}

// randomInstance draws a connected-ish graph on 2..7 nodes with at most 12 edges and integral costs
// in [-5, 5].
func randomInstance(seed int64) (*da.Graph, *da.CostFunction, error) {
	rng := rand.New(rand.NewSource(seed))
	n := 2 + rng.Intn(6)

	nodes := make([]int64, n)
	for i := range nodes {
		nodes[i] = int64(i * 10)
	}

	edges := make([]da.EdgeSpec, 0)
	for u := 0; u < n && len(edges) < 12; u++ {
		for v := u + 1; v < n && len(edges) < 12; v++ {
			if rng.Float64() < 0.6 {
				cost := float64(rng.Intn(11) - 5)
				edges = append(edges, da.NewEdgeSpec(nodes[u], nodes[v], cost))
			}
		}
	}
	rng.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })
	return da.NewGraph(nodes, edges)
}

// bruteForce enumerates every labeling and returns the cost of the cheapest multicut.
func bruteForce(graph *da.Graph, costs *da.CostFunction) float64 {
	m := graph.NumberOfEdges()
	best := math.Inf(1)
	labeling := make([]bool, m)
	for mask := 0; mask < 1<<m; mask++ {
		for e := 0; e < m; e++ {
			labeling[e] = mask&(1<<e) != 0
		}
		eval := Evaluate(graph, costs, labeling)
		if eval.Valid && eval.Objective < best {
			best = eval.Objective
		}
	}
	return best
}

// fakeEngine replays a fixed outcome, optionally running the callback on candidate first.
type fakeEngine struct {
	candidate []float64
	result    *mip.Result
	err       error
	calls     int
}

func (f *fakeEngine) Name() string {
	return "fake"
}

func (f *fakeEngine) Solve(ctx context.Context, model *mip.Model, callback mip.LazyCallback) (*mip.Result, error) {
	f.calls++
	if f.candidate != nil {
		if err := callback(mip.NewCallbackContext(f.candidate, func(c mip.Constraint) {})); err != nil {
			return &mip.Result{Status: mip.StatusError}, err
		}
	}
	return f.result, f.err
}
