package controllers

import (
	"github.com/lintang-b-s/Multicutx/pkg/datastructure"
	"github.com/lintang-b-s/Multicutx/pkg/http/usecases"
	"github.com/lintang-b-s/Multicutx/pkg/multicut"
	"github.com/lintang-b-s/Multicutx/pkg/util"
)

type positionRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type nodeRequest struct {
	Id       int64           `json:"Id"`
	Position positionRequest `json:"Position"`
}

type edgeRequest struct {
	FromNodeId int64    `json:"FromNodeId"`
	ToNodeId   int64    `json:"ToNodeId" validate:"nefield=FromNodeId"`
	Cost       *float64 `json:"Cost" validate:"required"`
	IsCut      bool     `json:"IsCut"`
}

// levelRequest is one level in the format of the level files.
type levelRequest struct {
	Name  string        `json:"Name" validate:"max=256"`
	Nodes []nodeRequest `json:"Nodes" validate:"required,min=1,max=10000,dive"`
	Edges []edgeRequest `json:"Edges" validate:"max=50000,dive"`
}

func (lr *levelRequest) ToLevel() *datastructure.Level {
	level := &datastructure.Level{
		Name:  lr.Name,
		Nodes: make([]datastructure.LevelNode, len(lr.Nodes)),
		Edges: make([]datastructure.LevelEdge, len(lr.Edges)),
	}
	for i, n := range lr.Nodes {
		level.Nodes[i] = datastructure.LevelNode{
			Id:       n.Id,
			Position: datastructure.Position{X: n.Position.X, Y: n.Position.Y},
		}
	}
	for i, e := range lr.Edges {
		level.Edges[i] = datastructure.LevelEdge{
			FromNodeId: e.FromNodeId,
			ToNodeId:   e.ToNodeId,
			Cost:       *e.Cost,
			IsCut:      e.IsCut,
		}
	}
	return level
}

type edgeResponse struct {
	FromNodeId int64   `json:"FromNodeId"`
	ToNodeId   int64   `json:"ToNodeId"`
	Cost       float64 `json:"Cost"`
	OptimalCut bool    `json:"OptimalCut"`
}

type nodeLabelResponse struct {
	Id      int64 `json:"Id"`
	Cluster int   `json:"Cluster"`
}

type statsResponse struct {
	DurationMs      int64 `json:"duration_ms"`
	Separations     int64 `json:"separations"`
	LazyConstraints int64 `json:"lazy_constraints"`
	Nodes           int64 `json:"nodes"`
	Iterations      int64 `json:"iterations"`
}

type solveResponse struct {
	Name        string              `json:"Name,omitempty"`
	OptimalCost float64             `json:"OptimalCost"`
	Optimal     bool                `json:"optimal"`
	Cached      bool                `json:"cached"`
	NumClusters int                 `json:"num_clusters"`
	Edges       []edgeResponse      `json:"Edges"`
	Nodes       []nodeLabelResponse `json:"Nodes"`
	Stats       statsResponse       `json:"stats"`
}

func NewSolveResponse(level *datastructure.Level, graph *datastructure.Graph, sol *multicut.Solution,
	cached bool) solveResponse {
	labeling := sol.GetLabeling()
	edges := make([]edgeResponse, len(level.Edges))
	for i, e := range level.Edges {
		edges[i] = edgeResponse{
			FromNodeId: e.FromNodeId,
			ToNodeId:   e.ToNodeId,
			Cost:       e.Cost,
			OptimalCut: labeling[i],
		}
	}

	stats := sol.GetStats()
	return solveResponse{
		Name:        level.Name,
		OptimalCost: sol.GetObjective(),
		Optimal:     sol.IsOptimal(),
		Cached:      cached,
		NumClusters: sol.NumClusters(),
		Edges:       edges,
		Nodes:       newNodeLabels(graph, sol.GetNodeLabeling()),
		Stats: statsResponse{
			DurationMs:      stats.Duration.Milliseconds(),
			Separations:     stats.Separations,
			LazyConstraints: stats.LazyConstraints,
			Nodes:           stats.Nodes,
			Iterations:      stats.Iterations,
		},
	}
}

func newNodeLabels(graph *datastructure.Graph, labels []datastructure.Index) []nodeLabelResponse {
	nodes := make([]nodeLabelResponse, graph.NumberOfVertices())
	for u := range nodes {
		nodes[u] = nodeLabelResponse{
			Id:      graph.GetNodeID(datastructure.Index(u)),
			Cluster: int(labels[u]),
		}
	}
	return nodes
}

type edgeRefResponse struct {
	FromNodeId int64 `json:"FromNodeId"`
	ToNodeId   int64 `json:"ToNodeId"`
}

type evaluateResponse struct {
	Name          string            `json:"Name,omitempty"`
	Valid         bool              `json:"valid"`
	Cost          float64           `json:"cost"`
	OptimalCost   float64           `json:"OptimalCost"`
	OptimumProven bool              `json:"optimum_proven"`
	Gap           *float64          `json:"gap,omitempty"`
	IsOptimal     bool              `json:"is_optimal"`
	NumClusters   int               `json:"num_clusters"`
	ViolatedEdges []edgeRefResponse `json:"violated_edges"`
}

func NewEvaluateResponse(level *datastructure.Level, eval usecases.Evaluation) evaluateResponse {
	violated := make([]edgeRefResponse, len(eval.ViolatedEdges))
	for i, e := range eval.ViolatedEdges {
		violated[i] = edgeRefResponse{
			FromNodeId: level.Edges[e].FromNodeId,
			ToNodeId:   level.Edges[e].ToNodeId,
		}
	}
	resp := evaluateResponse{
		Name:          level.Name,
		Valid:         eval.Valid,
		Cost:          eval.Objective,
		OptimalCost:   eval.Optimum.GetObjective(),
		OptimumProven: eval.OptimumProven,
		NumClusters:   eval.NumClusters,
		ViolatedEdges: violated,
	}
	if eval.OptimumProven {
		gap := util.RoundFloat(eval.Gap, 6)
		resp.Gap = &gap
		resp.IsOptimal = eval.Valid && gap == 0
	}
	return resp
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
