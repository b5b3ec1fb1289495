package datastructure

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lintang-b-s/Multicutx/pkg/util"
)

type Index uint32

const INVALID_INDEX = Index(math.MaxUint32)

var (
	ErrInvalidGraph = errors.New("invalid graph")
)

// Edge is an undirected edge stored in canonical order (u < v).
type Edge struct {
	id   Index
	u, v Index
}

func NewEdge(id, u, v Index) Edge {
	if u > v {
		u, v = v, u
	}
	return Edge{id: id, u: u, v: v}
}

func (e Edge) GetID() Index {
	return e.id
}

func (e Edge) GetU() Index {
	return e.u
}

func (e Edge) GetV() Index {
	return e.v
}

// GetOther returns the endpoint of e that is not w.
func (e Edge) GetOther(w Index) Index {
	if w == e.u {
		return e.v
	}
	return e.u
}

// EdgeSpec is an edge as given by the caller, keyed by external node ids.
type EdgeSpec struct {
	From int64
	To   int64
	Cost float64
}

func NewEdgeSpec(from, to int64, cost float64) EdgeSpec {
	return EdgeSpec{From: from, To: to, Cost: cost}
}

// Adjacent is one entry of the adjacency array: the neighbour and the edge leading to it.
type Adjacent struct {
	head Index
	edge Index
}

func (a Adjacent) GetHead() Index {
	return a.head
}

func (a Adjacent) GetEdgeID() Index {
	return a.edge
}

/*
Graph is an immutable undirected simple graph.

vertices are dense indices 0..n-1 assigned by ascending external node id, so any scan in index order
is a scan in ascending node id order. the adjacency is kept in compressed sparse row form:
the neighbours of u are adj[firstOut[u]:firstOut[u+1]], sorted by neighbour index.
*/
type Graph struct {
	nodeIDs  []int64
	idToIdx  map[int64]Index
	edges    []Edge
	firstOut []Index
	adj      []Adjacent
	edgeKey  map[uint64]Index
}

// NewGraph validates nodes and edges and builds the graph together with its cost function.
// edge ids follow the order of edgeSpecs.
func NewGraph(nodeIDs []int64, edgeSpecs []EdgeSpec) (*Graph, *CostFunction, error) {
	ids := make([]int64, len(nodeIDs))
	copy(ids, nodeIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	idToIdx := make(map[int64]Index, len(ids))
	for i, id := range ids {
		if i > 0 && ids[i-1] == id {
			return nil, nil, util.WrapErrorf(nil, ErrInvalidGraph, "duplicate node id %d", id)
		}
		idToIdx[id] = Index(i)
	}

	g := &Graph{
		nodeIDs: ids,
		idToIdx: idToIdx,
		edges:   make([]Edge, 0, len(edgeSpecs)),
		edgeKey: make(map[uint64]Index, len(edgeSpecs)),
	}
	costs := make([]float64, 0, len(edgeSpecs))

	for i, es := range edgeSpecs {
		u, ok := idToIdx[es.From]
		if !ok {
			return nil, nil, util.WrapErrorf(nil, ErrInvalidGraph, "edge %d (%d,%d) references undeclared node %d",
				i, es.From, es.To, es.From)
		}
		v, ok := idToIdx[es.To]
		if !ok {
			return nil, nil, util.WrapErrorf(nil, ErrInvalidGraph, "edge %d (%d,%d) references undeclared node %d",
				i, es.From, es.To, es.To)
		}
		if u == v {
			return nil, nil, util.WrapErrorf(nil, ErrInvalidGraph, "edge %d (%d,%d) is a self-loop", i, es.From, es.To)
		}
		if math.IsNaN(es.Cost) || math.IsInf(es.Cost, 0) {
			return nil, nil, util.WrapErrorf(nil, ErrInvalidGraph, "edge %d (%d,%d) has non-finite cost %v",
				i, es.From, es.To, es.Cost)
		}

		e := NewEdge(Index(len(g.edges)), u, v)
		key := pairKey(e.u, e.v)
		if prev, dup := g.edgeKey[key]; dup {
			return nil, nil, util.WrapErrorf(nil, ErrInvalidGraph, "edge %d (%d,%d) duplicates edge %d",
				i, es.From, es.To, prev)
		}
		g.edgeKey[key] = e.id
		g.edges = append(g.edges, e)
		costs = append(costs, es.Cost)
	}

	g.buildAdjacency()

	return g, newCostFunction(g, costs), nil
}

func (g *Graph) buildAdjacency() {
	n := len(g.nodeIDs)
	degree := make([]Index, n+1)
	for _, e := range g.edges {
		degree[e.u]++
		degree[e.v]++
	}

	g.firstOut = make([]Index, n+1)
	for u := 0; u < n; u++ {
		g.firstOut[u+1] = g.firstOut[u] + degree[u]
	}

	g.adj = make([]Adjacent, 2*len(g.edges))
	pos := make([]Index, n)
	copy(pos, g.firstOut[:n])
	for _, e := range g.edges {
		g.adj[pos[e.u]] = Adjacent{head: e.v, edge: e.id}
		pos[e.u]++
		g.adj[pos[e.v]] = Adjacent{head: e.u, edge: e.id}
		pos[e.v]++
	}

	for u := 0; u < n; u++ {
		nbs := g.adj[g.firstOut[u]:g.firstOut[u+1]]
		sort.Slice(nbs, func(i, j int) bool { return nbs[i].head < nbs[j].head })
	}
}

func pairKey(u, v Index) uint64 {
	if u > v {
		u, v = v, u
	}
	return uint64(u)<<32 | uint64(v)
}

func (g *Graph) NumberOfVertices() int {
	return len(g.nodeIDs)
}

func (g *Graph) NumberOfEdges() int {
	return len(g.edges)
}

func (g *Graph) GetEdge(e Index) Edge {
	return g.edges[e]
}

func (g *Graph) GetEdges() []Edge {
	return g.edges
}

func (g *Graph) ForEdges(handle func(e Edge)) {
	for _, e := range g.edges {
		handle(e)
	}
}

// GetNeighbors returns the adjacency of u sorted by neighbour index. the slice must not be modified.
func (g *Graph) GetNeighbors(u Index) []Adjacent {
	return g.adj[g.firstOut[u]:g.firstOut[u+1]]
}

func (g *Graph) GetDegree(u Index) int {
	return int(g.firstOut[u+1] - g.firstOut[u])
}

func (g *Graph) ForNeighborsOf(u Index, handle func(head, edge Index)) {
	for _, a := range g.GetNeighbors(u) {
		handle(a.head, a.edge)
	}
}

// EdgeBetween is symmetric: EdgeBetween(u,v) == EdgeBetween(v,u).
func (g *Graph) EdgeBetween(u, v Index) (Index, bool) {
	e, ok := g.edgeKey[pairKey(u, v)]
	return e, ok
}

func (g *Graph) EdgeBetweenIDs(from, to int64) (Index, bool) {
	u, ok := g.idToIdx[from]
	if !ok {
		return INVALID_INDEX, false
	}
	v, ok := g.idToIdx[to]
	if !ok {
		return INVALID_INDEX, false
	}
	return g.EdgeBetween(u, v)
}

func (g *Graph) GetNodeID(u Index) int64 {
	return g.nodeIDs[u]
}

func (g *Graph) GetNodeIDs() []int64 {
	return g.nodeIDs
}

func (g *Graph) GetIndex(id int64) (Index, bool) {
	u, ok := g.idToIdx[id]
	return u, ok
}

func (g *Graph) String() string {
	return fmt.Sprintf("graph(|V|=%d, |E|=%d)", g.NumberOfVertices(), g.NumberOfEdges())
}

// CostFunction maps every edge of a graph to a real cost. negative costs reward cutting, positive costs penalise it.
type CostFunction struct {
	graph *Graph
	costs []float64
}

func newCostFunction(g *Graph, costs []float64) *CostFunction {
	return &CostFunction{graph: g, costs: costs}
}

func (cf *CostFunction) GetCost(e Index) float64 {
	return cf.costs[e]
}

// GetCostBetween is symmetric in u and v. ok is false when u and v are not adjacent.
func (cf *CostFunction) GetCostBetween(u, v Index) (float64, bool) {
	e, ok := cf.graph.EdgeBetween(u, v)
	if !ok {
		return 0, false
	}
	return cf.costs[e], true
}

func (cf *CostFunction) GetCosts() []float64 {
	return cf.costs
}

// Evaluate returns Σ cost_e over the edges marked as cut.
func (cf *CostFunction) Evaluate(cut []bool) float64 {
	total := 0.0
	for e, c := range cf.costs {
		if cut[e] {
			total += c
		}
	}
	return total
}
