package controllers

import (
	"context"

	"github.com/lintang-b-s/Multicutx/pkg/datastructure"
	"github.com/lintang-b-s/Multicutx/pkg/http/usecases"
	"github.com/lintang-b-s/Multicutx/pkg/multicut"
)

type MulticutService interface {
	Solve(ctx context.Context, level *datastructure.Level) (*multicut.Solution, *datastructure.Graph, bool, error)
	Evaluate(ctx context.Context, level *datastructure.Level) (usecases.Evaluation, error)
}
