package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/precedex/precedex/internal/domain/graph"
	"github.com/precedex/precedex/pkg/errors"
)

type fakeCorpusService struct {
	stats   *graph.BuildStats
	err     error
	rebuilt int
}

func (f *fakeCorpusService) LoadFromStore(ctx context.Context) (*graph.BuildStats, error) {
	f.rebuilt++
	return f.stats, f.err
}

func (f *fakeCorpusService) Stats() (*graph.BuildStats, error) {
	return f.stats, f.err
}

func corpusRouter(svc CorpusService) *gin.Engine {
	r := gin.New()
	h := NewCorpusHandler(svc, nil)
	r.POST("/api/v1/corpus/rebuild", h.Rebuild)
	r.GET("/api/v1/corpus/stats", h.Stats)
	return r
}

func TestCorpusHandler_Rebuild(t *testing.T) {
	svc := &fakeCorpusService{stats: &graph.BuildStats{
		Cases:     12,
		Nodes:     40,
		Edges:     88,
		Threshold: 0.75,
		Elapsed:   120 * time.Millisecond,
	}}
	r := corpusRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/corpus/rebuild", nil)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.rebuilt)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 12, resp["cases"])
}

func TestCorpusHandler_Rebuild_EmptyCorpus(t *testing.T) {
	svc := &fakeCorpusService{err: errors.New(errors.ErrCodeCorpusEmpty, "no complete cases with embeddings")}
	r := corpusRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/corpus/rebuild", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCorpusHandler_Stats_NotLoaded(t *testing.T) {
	svc := &fakeCorpusService{err: errors.NotLoaded("corpus not loaded")}
	r := corpusRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/corpus/stats", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
