package usecases

import (
	"context"

	"github.com/lintang-b-s/Multicutx/pkg/datastructure"
	"github.com/lintang-b-s/Multicutx/pkg/multicut"
)

type MulticutSolver interface {
	Solve(ctx context.Context, graph *datastructure.Graph, costs *datastructure.CostFunction) (*multicut.Solution, error)
}
