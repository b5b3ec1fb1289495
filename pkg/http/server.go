package http

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	http_router "github.com/lintang-b-s/Multicutx/pkg/http/router"
	"github.com/lintang-b-s/Multicutx/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/Multicutx/pkg/http/server"
	"github.com/lintang-b-s/Multicutx/pkg/metrics"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	g   *errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use starts the API in the background; Wait returns its error once ctx is canceled or it fails.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	useRateLimit bool,
	reg *metrics.Registry,
	multicutService controllers.MulticutService,
) (*Server, error) {
	config := http_server.Config{
		Port:    viper.GetInt("API_PORT"),
		Timeout: viper.GetDuration("API_TIMEOUT"),
	}

	var rateLimit *http_router.RateLimit
	if useRateLimit {
		rateLimit = &http_router.RateLimit{
			RPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst: viper.GetInt("RATE_LIMIT_BURST"),
		}
	}

	server := http_router.NewAPI(log, reg, rateLimit)

	s.g = &errgroup.Group{}
	s.g.Go(func() error {
		return server.Run(ctx, config, multicutService)
	})

	return s, nil
}

func (s *Server) Wait() error {
	if s.g == nil {
		return nil
	}
	return s.g.Wait()
}

func GracefulShutdown() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	return <-quit
}
