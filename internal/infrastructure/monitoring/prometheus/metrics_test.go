package prometheus

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_EngineCollectors(t *testing.T) {
	m := NewMetrics()

	m.ObserveRecommend(0.05)
	m.ObserveRecommend(0.1)
	m.ObserveBuild(2.5)
	m.SetCorpusSize(42)

	assert.Equal(t, float64(42), testutil.ToFloat64(m.corpusSize))
	assert.Equal(t, uint64(2), histogramSampleCount(t, m, "precedex_recommend_duration_seconds"))
	assert.Equal(t, uint64(1), histogramSampleCount(t, m, "precedex_graph_build_duration_seconds"))
}

// histogramSampleCount gathers the registry and returns the observation count
// of the named histogram. CollectAndCount would only count series, not
// observations.
func histogramSampleCount(t *testing.T, m *Metrics, name string) uint64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.Len(t, mf.GetMetric(), 1)
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestMetrics_HTTPCollectors(t *testing.T) {
	m := NewMetrics()

	m.ObserveHTTPRequest("POST", "/api/v1/strategy/recommend", 200, 30*time.Millisecond)
	m.ObserveHTTPRequest("POST", "/api/v1/strategy/recommend", 200, 40*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/api/v1/strategy/graph", 409, 5*time.Millisecond)

	counter, err := m.httpRequestsTotal.GetMetricWithLabelValues("POST", "/api/v1/strategy/recommend", "200")
	require.NoError(t, err)
	assert.Equal(t, float64(2), testutil.ToFloat64(counter))
}

func TestMetrics_HandlerServesExposition(t *testing.T) {
	m := NewMetrics()
	m.SetCorpusSize(7)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "precedex_corpus_cases 7")
}

func TestMetrics_IsolatedRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.SetCorpusSize(1)
	b.SetCorpusSize(2)

	assert.Equal(t, float64(1), testutil.ToFloat64(a.corpusSize))
	assert.Equal(t, float64(2), testutil.ToFloat64(b.corpusSize))
}
