package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/precedex/precedex/internal/infrastructure/monitoring/prometheus"
	"github.com/precedex/precedex/internal/interfaces/http/handlers"
	"github.com/precedex/precedex/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubChecker struct{ loaded bool }

func (s *stubChecker) Loaded() bool { return s.loaded }

func TestRouter_HealthAndMetrics(t *testing.T) {
	metrics := prometheus.NewMetrics()
	router := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler(&stubChecker{loaded: true}),
		Metrics:       metrics,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	// The probe requests above were observed by the metrics middleware.
	assert.Contains(t, rec.Body.String(), "precedex_http_requests_total")
}

func TestRouter_AssignsRequestID(t *testing.T) {
	router := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler(&stubChecker{}),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_PreservesCallerRequestID(t *testing.T) {
	router := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler(&stubChecker{}),
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "caller-id-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "caller-id-1", rec.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := NewRouter(RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
