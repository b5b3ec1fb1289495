package connectivity

import (
	da "github.com/lintang-b-s/Multicutx/pkg/datastructure"
)

// Oracle answers connectivity queries on the subgraph made of the active edges of a graph.
// its working state (component labels, bfs buffers) belongs to a single oracle and must not be
// shared between goroutines. build one oracle per candidate assignment.
type Oracle struct {
	graph  *da.Graph
	active []bool

	components    []da.Index
	numComponents int

	dist  []int32
	queue []da.Index
}

func NewOracle(graph *da.Graph, active []bool) *Oracle {
	return &Oracle{
		graph:  graph,
		active: active,
	}
}

// NewOracleFromCut builds the oracle of the kept edges: an edge is active iff it is not cut.
func NewOracleFromCut(graph *da.Graph, cut []bool) *Oracle {
	active := make([]bool, len(cut))
	for e, c := range cut {
		active[e] = !c
	}
	return NewOracle(graph, active)
}

func (o *Oracle) IsActive(e da.Index) bool {
	return o.active[e]
}

/*
Components. labels every vertex with the id of its connected component w.r.t. the active edges.

vertices are scanned in ascending index order and a new component id is handed out whenever an
unlabeled vertex is met, so component ids increase with the smallest member of each component.
the labels are computed once per oracle. O(V+E).
*/
func (o *Oracle) Components() []da.Index {
	if o.components != nil {
		return o.components
	}

	n := o.graph.NumberOfVertices()
	comp := make([]da.Index, n)
	for i := range comp {
		comp[i] = da.INVALID_INDEX
	}

	stack := make([]da.Index, 0, 16)
	next := da.Index(0)
	for s := da.Index(0); s < da.Index(n); s++ {
		if comp[s] != da.INVALID_INDEX {
			continue
		}
		comp[s] = next
		stack = append(stack[:0], s)
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, a := range o.graph.GetNeighbors(u) {
				if !o.active[a.GetEdgeID()] || comp[a.GetHead()] != da.INVALID_INDEX {
					continue
				}
				comp[a.GetHead()] = next
				stack = append(stack, a.GetHead())
			}
		}
		next++
	}

	o.components = comp
	o.numComponents = int(next)
	return comp
}

func (o *Oracle) NumComponents() int {
	o.Components()
	return o.numComponents
}

func (o *Oracle) SameComponent(u, v da.Index) bool {
	comp := o.Components()
	return comp[u] == comp[v]
}

/*
ShortestPath. returns a path with the fewest active edges between u and v.

a bfs is run from v so that dist[w] is the number of active edges between w and v. the path is then
walked from u, always stepping to the smallest-index neighbour that is one step closer to v.
among all shortest paths this yields the lexicographically smallest node sequence, which makes the
generated inequalities reproducible. ok is false when u and v are in different components. O(V+E).
*/
func (o *Oracle) ShortestPath(u, v da.Index) ([]da.Index, []da.Index, bool) {
	if u == v {
		return []da.Index{u}, []da.Index{}, true
	}
	if o.components != nil && !o.SameComponent(u, v) {
		return nil, nil, false
	}

	o.bfs(v, u)
	if o.dist[u] < 0 {
		return nil, nil, false
	}

	length := int(o.dist[u])
	nodes := make([]da.Index, 0, length+1)
	edges := make([]da.Index, 0, length)
	nodes = append(nodes, u)

	cur := u
	for cur != v {
		for _, a := range o.graph.GetNeighbors(cur) {
			if !o.active[a.GetEdgeID()] {
				continue
			}
			if o.dist[a.GetHead()] == o.dist[cur]-1 {
				edges = append(edges, a.GetEdgeID())
				cur = a.GetHead()
				nodes = append(nodes, cur)
				break
			}
		}
	}

	return nodes, edges, true
}

// bfs fills o.dist with hop distances from source, stopping once target is settled.
// unreached vertices keep -1.
func (o *Oracle) bfs(source, target da.Index) {
	n := o.graph.NumberOfVertices()
	if o.dist == nil {
		o.dist = make([]int32, n)
		o.queue = make([]da.Index, 0, n)
	}
	for i := range o.dist {
		o.dist[i] = -1
	}

	o.queue = append(o.queue[:0], source)
	o.dist[source] = 0
	for head := 0; head < len(o.queue); head++ {
		w := o.queue[head]
		if w == target {
			return
		}
		for _, a := range o.graph.GetNeighbors(w) {
			if !o.active[a.GetEdgeID()] || o.dist[a.GetHead()] >= 0 {
				continue
			}
			o.dist[a.GetHead()] = o.dist[w] + 1
			o.queue = append(o.queue, a.GetHead())
		}
	}
}
