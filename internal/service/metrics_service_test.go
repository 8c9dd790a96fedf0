package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

func TestMetricsUpstreamOutcomes(t *testing.T) {
	m := NewMetricsService()

	m.ObserveCompletion("groq", time.Second, nil)
	m.ObserveCompletion("groq", time.Second, appErrors.Clone(appErrors.ErrTimeout, "slow"))
	m.ObserveCompletion("groq", time.Second, errors.New("boom"))
	m.RecordParseFailure("groq")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmRequests.WithLabelValues("groq", outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmRequests.WithLabelValues("groq", outcomeTimeout)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmRequests.WithLabelValues("groq", outcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmRequests.WithLabelValues("groq", outcomeParse)))
}

func TestMetricsStoreObserver(t *testing.T) {
	m := NewMetricsService()

	m.ObserveStore("document", "put", errors.New("503"), true)
	m.ObserveStore("document", "get", appErrors.ErrNotFound, false)
	m.ObserveStore("document", "list", errors.New("boom"), false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOperations.WithLabelValues("document", "put", outcomeFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOperations.WithLabelValues("document", "get", outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOperations.WithLabelValues("document", "list", outcomeError)))
	assert.Equal(t, uint64(1), m.Snapshot().StoreFailovers)
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/health", 200, 10*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/plan/generate", 200, 30*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordPlan("llm")
	m.RecordPlan("fallback")
	m.RecordSearch(searchKindResources, outcomeFallback)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.Requests)
	assert.InDelta(t, 20.0, snap.AvgLatencyMs, 0.001)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.001)
	assert.Equal(t, uint64(2), snap.PlansGenerated)
	assert.Equal(t, uint64(1), snap.FallbackPlans)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searchRequests.WithLabelValues(searchKindResources, outcomeFallback)))
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	m := NewMetricsService()
	m.RecordPlan("mock")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `plan_generations_total{source="mock"} 1`)

	var nilMetrics *MetricsService
	rec = httptest.NewRecorder()
	nilMetrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	nilMetrics.RecordPlan("llm")
}
