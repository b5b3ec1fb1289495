package engine

import (
	"errors"
	"time"

	"github.com/lintang-b-s/Multicutx/pkg"
	"github.com/lintang-b-s/Multicutx/pkg/metrics"
	"github.com/lintang-b-s/Multicutx/pkg/mip"
	"github.com/lintang-b-s/Multicutx/pkg/mip/bnb"
	"github.com/lintang-b-s/Multicutx/pkg/mip/satengine"
	"github.com/lintang-b-s/Multicutx/pkg/multicut"
	"github.com/lintang-b-s/Multicutx/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var ErrUnknownEngine = errors.New("unknown engine")

type Config struct {
	Engine         string
	Workers        int
	TimeLimit      time.Duration
	AllowIncumbent bool
	CostScale      float64
}

// ConfigFromViper reads the solver settings, after util.SetConfigDefaults and any flag bindings.
func ConfigFromViper() Config {
	return Config{
		Engine:         viper.GetString("ENGINE"),
		Workers:        viper.GetInt("WORKERS"),
		TimeLimit:      viper.GetDuration("TIME_LIMIT"),
		AllowIncumbent: viper.GetBool("ALLOW_INCUMBENT"),
		CostScale:      viper.GetFloat64("COST_SCALE"),
	}
}

type Engine struct {
	solver *multicut.Solver
	cfg    Config
}

func (e *Engine) GetSolver() *multicut.Solver {
	return e.solver
}

func (e *Engine) GetConfig() Config {
	return e.cfg
}

func NewEngine(cfg Config, logger *zap.Logger, reg *metrics.Registry) (*Engine, error) {
	mipEngine, err := NewMIPEngine(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Starting multicut solver...",
		zap.String("engine", mipEngine.Name()),
		zap.Int("workers", cfg.Workers),
		zap.Duration("time_limit", cfg.TimeLimit))

	opts := []multicut.Option{multicut.WithAllowIncumbent(cfg.AllowIncumbent)}
	if reg != nil {
		opts = append(opts, multicut.WithMetrics(reg))
	}
	return &Engine{
		solver: multicut.NewSolver(mipEngine, logger, opts...),
		cfg:    cfg,
	}, nil
}

func NewMIPEngine(cfg Config, logger *zap.Logger) (mip.Engine, error) {
	opts := []mip.Option{mip.WithWorkers(cfg.Workers), mip.WithTimeLimit(cfg.TimeLimit)}

	switch cfg.Engine {
	case pkg.ENGINE_BRANCH_AND_BOUND, "":
		return bnb.NewEngine(logger, opts...), nil
	case pkg.ENGINE_MAXSAT:
		scale := cfg.CostScale
		if scale <= 0 {
			scale = pkg.DEFAULT_COST_SCALE
		}
		return satengine.NewEngine(logger, scale, opts...), nil
	default:
		return nil, util.WrapErrorf(ErrUnknownEngine, util.ErrBadParamInput, "engine %q, want %s or %s",
			cfg.Engine, pkg.ENGINE_BRANCH_AND_BOUND, pkg.ENGINE_MAXSAT)
	}
}
