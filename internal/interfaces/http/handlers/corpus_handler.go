package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/precedex/precedex/internal/domain/graph"
	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
)

// CorpusService is the engine surface the corpus handlers depend on.
type CorpusService interface {
	LoadFromStore(ctx context.Context) (*graph.BuildStats, error)
	Stats() (*graph.BuildStats, error)
}

// CorpusHandler serves corpus lifecycle endpoints.
type CorpusHandler struct {
	service CorpusService
	log     logging.Logger
}

func NewCorpusHandler(service CorpusService, log logging.Logger) *CorpusHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CorpusHandler{service: service, log: log}
}

// Rebuild handles POST /api/v1/corpus/rebuild. It refetches the corpus and
// swaps in a freshly built graph; in-flight requests keep the old one.
func (h *CorpusHandler) Rebuild(c *gin.Context) {
	stats, err := h.service.LoadFromStore(c.Request.Context())
	if err != nil {
		h.log.Error("corpus rebuild failed", logging.Err(err))
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Stats handles GET /api/v1/corpus/stats.
func (h *CorpusHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats()
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
