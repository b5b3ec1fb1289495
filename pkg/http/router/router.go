package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/Multicutx/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/Multicutx/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/Multicutx/pkg/http/server"
	"github.com/lintang-b-s/Multicutx/pkg/metrics"
	"github.com/lintang-b-s/Multicutx/pkg/util"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	httpSwagger "github.com/swaggo/http-swagger"
)

type RateLimit struct {
	RPS   float64
	Burst int
}

type API struct {
	log       *zap.Logger
	metrics   *metrics.Registry
	rateLimit *RateLimit
}

func NewAPI(log *zap.Logger, reg *metrics.Registry, rateLimit *RateLimit) *API {
	return &API{log: log, metrics: reg, rateLimit: rateLimit}
}

//	@title			Multicutx API
//	@version		1.0
//	@description	Minimum cost multicut solver for puzzle levels.

//	@contact.name	Lintang Birda Saputra
//	@contact.url	_
//	@contact.email	lintang.birda.saputra@mail.ugm.ac.id

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost
// @BasePath	/api
func (api *API) Handler(multicutService controllers.MulticutService) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", requestIDHeader},
		ExposedHeaders:   []string{"Link", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.NotFound = http.HandlerFunc(notFound)
	router.GET("/doc/*any", swaggerHandler)
	if api.metrics != nil {
		router.Handler(http.MethodGet, "/metrics",
			promhttp.HandlerFor(api.metrics.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	}

	group := router_helper.NewRouteGroup(router, "/api")

	multicutRoutes := controllers.New(multicutService, api.log)
	multicutRoutes.Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Labels, Logger(api.log)}
	if api.metrics != nil {
		mwChain = append(mwChain, Metrics(api.metrics))
	}
	if api.rateLimit != nil {
		mwChain = append(mwChain, Limit(api.rateLimit.RPS, api.rateLimit.Burst))
	}
	return alice.New(mwChain...).Then(router)
}

func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	multicutService controllers.MulticutService,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(multicutService), config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		api.log.Info("HTTP server stopped", zap.Error(err))
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		_ = srv.Shutdown(context.Background())
		return ctx.Err()
	}
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(fmt.Sprintf(`{"error":{"code":"not_found","message":%q}}`,
		fmt.Sprintf("%s: %s", util.ErrNotFound, r.URL.Path))))
}
