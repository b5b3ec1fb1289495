package cmd

import (
	"context"

	"github.com/lintang-b-s/Multicutx/pkg/engine"
	"github.com/lintang-b-s/Multicutx/pkg/http"
	"github.com/lintang-b-s/Multicutx/pkg/http/usecases"
	"github.com/lintang-b-s/Multicutx/pkg/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rateLimit bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the solve/evaluate HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&rateLimit, "rate-limit", true, "enable the request rate limiter")
	serveCmd.Flags().Int("port", 6060, "API port")
	_ = viper.BindPFlag("API_PORT", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	reg := metrics.DefaultRegistry()

	eng, err := engine.NewEngine(engine.ConfigFromViper(), log, reg)
	if err != nil {
		return err
	}

	multicutService, err := usecases.NewMulticutService(log, eng.GetSolver(),
		viper.GetInt("SOLUTION_CACHE_SIZE"), reg, viper.GetDuration("API_TIMEOUT"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := http.NewServer(log)
	if _, err := api.Use(ctx, log, rateLimit, reg, multicutService); err != nil {
		return err
	}

	signal := http.GracefulShutdown()
	cancel()
	_ = api.Wait()

	log.Info("Multicutx Server Stopped", zap.String("signal", signal.String()))
	return nil
}
