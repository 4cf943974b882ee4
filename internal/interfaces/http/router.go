// Package http wires the gin route tree and the server around it.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
	"github.com/precedex/precedex/internal/infrastructure/monitoring/prometheus"
	"github.com/precedex/precedex/internal/interfaces/http/handlers"
	"github.com/precedex/precedex/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for the
// complete route tree.
type RouterConfig struct {
	StrategyHandler *handlers.StrategyHandler
	CorpusHandler   *handlers.CorpusHandler
	HealthHandler   *handlers.HealthHandler

	Logger  logging.Logger
	Metrics *prometheus.Metrics
}

// NewRouter builds the route tree: public probes, the metrics endpoint, and
// the versioned API group.
func NewRouter(cfg RouterConfig) http.Handler {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	var observer middleware.RequestObserver
	if cfg.Metrics != nil {
		observer = cfg.Metrics
	}
	r.Use(middleware.Logging(cfg.Logger, observer))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	{
		if cfg.StrategyHandler != nil {
			api.POST("/strategy/recommend", cfg.StrategyHandler.Recommend)
			api.GET("/strategy/graph", cfg.StrategyHandler.Graph)
		}
		if cfg.CorpusHandler != nil {
			api.POST("/corpus/rebuild", cfg.CorpusHandler.Rebuild)
			api.GET("/corpus/stats", cfg.CorpusHandler.Stats)
		}
	}

	return r
}
