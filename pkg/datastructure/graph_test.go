package datastructure

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle(t *testing.T) (*Graph, *CostFunction) {
	t.Helper()
	g, cf, err := NewGraph([]int64{30, 10, 20}, []EdgeSpec{
		NewEdgeSpec(10, 20, 5),
		NewEdgeSpec(30, 20, -2),
		NewEdgeSpec(10, 30, -1),
	})
	require.NoError(t, err)
	return g, cf
}

func TestNewGraph(t *testing.T) {
	g, cf := triangle(t)

	assert.Equal(t, 3, g.NumberOfVertices())
	assert.Equal(t, 3, g.NumberOfEdges())
	assert.Equal(t, []int64{10, 20, 30}, g.GetNodeIDs())

	// edge ids follow input order, endpoints are canonical
	e := g.GetEdge(1)
	assert.Equal(t, Index(1), e.GetID())
	assert.Equal(t, int64(20), g.GetNodeID(e.GetU()))
	assert.Equal(t, int64(30), g.GetNodeID(e.GetV()))
	assert.Equal(t, e.GetU(), e.GetOther(e.GetV()))

	assert.Equal(t, []float64{5, -2, -1}, cf.GetCosts())
	assert.Equal(t, "graph(|V|=3, |E|=3)", g.String())
}

func TestGraphSymmetricAccess(t *testing.T) {
	g, cf := triangle(t)

	u, _ := g.GetIndex(10)
	v, _ := g.GetIndex(20)

	e1, ok1 := g.EdgeBetween(u, v)
	e2, ok2 := g.EdgeBetween(v, u)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, e1, e2)

	c1, _ := cf.GetCostBetween(u, v)
	c2, _ := cf.GetCostBetween(v, u)
	assert.Equal(t, 5.0, c1)
	assert.Equal(t, c1, c2)

	e3, ok := g.EdgeBetweenIDs(30, 10)
	require.True(t, ok)
	assert.Equal(t, Index(2), e3)

	_, ok = g.EdgeBetweenIDs(10, 99)
	assert.False(t, ok)
}

func TestGraphNeighborsSorted(t *testing.T) {
	g, _, err := NewGraph([]int64{0, 1, 2, 3}, []EdgeSpec{
		NewEdgeSpec(0, 3, 1),
		NewEdgeSpec(0, 1, 1),
		NewEdgeSpec(2, 0, 1),
	})
	require.NoError(t, err)

	heads := make([]Index, 0)
	g.ForNeighborsOf(0, func(head, edge Index) {
		heads = append(heads, head)
	})
	assert.Equal(t, []Index{1, 2, 3}, heads)
	assert.Equal(t, 3, g.GetDegree(0))
	assert.Equal(t, 1, g.GetDegree(3))
}

func TestNewGraphInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		nodes []int64
		edges []EdgeSpec
	}{
		{
			name:  "duplicate node id",
			nodes: []int64{1, 2, 1},
		},
		{
			name:  "undeclared node",
			nodes: []int64{1, 2},
			edges: []EdgeSpec{NewEdgeSpec(1, 3, 1)},
		},
		{
			name:  "self loop",
			nodes: []int64{1, 2},
			edges: []EdgeSpec{NewEdgeSpec(2, 2, 1)},
		},
		{
			name:  "duplicate edge",
			nodes: []int64{1, 2},
			edges: []EdgeSpec{NewEdgeSpec(1, 2, 1), NewEdgeSpec(2, 1, 3)},
		},
		{
			name:  "nan cost",
			nodes: []int64{1, 2},
			edges: []EdgeSpec{NewEdgeSpec(1, 2, math.NaN())},
		},
		{
			name:  "infinite cost",
			nodes: []int64{1, 2},
			edges: []EdgeSpec{NewEdgeSpec(1, 2, math.Inf(-1))},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewGraph(tt.nodes, tt.edges)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidGraph))
		})
	}
}

func TestCostFunctionEvaluate(t *testing.T) {
	_, cf := triangle(t)

	assert.Equal(t, 0.0, cf.Evaluate([]bool{false, false, false}))
	assert.Equal(t, -3.0, cf.Evaluate([]bool{false, true, true}))
	assert.Equal(t, 2.0, cf.Evaluate([]bool{true, true, true}))
}

func TestEmptyGraph(t *testing.T) {
	g, cf, err := NewGraph([]int64{7}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, g.NumberOfVertices())
	assert.Equal(t, 0, g.NumberOfEdges())
	assert.Equal(t, 0.0, cf.Evaluate([]bool{}))
}
