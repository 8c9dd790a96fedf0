package service

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

// Outcome labels shared by the upstream counters.
const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeTimeout  = "timeout"
	outcomeParse    = "parse_error"
	outcomeCached   = "cached"
	outcomeFallback = "fallback"
	outcomeSkipped  = "skipped"
)

// MetricsSnapshot is the lightweight view of counters reported by the health endpoint.
type MetricsSnapshot struct {
	Requests       uint64  `json:"requests"`
	AvgLatencyMs   float64 `json:"avgLatencyMs"`
	CacheHitRatio  float64 `json:"cacheHitRatio"`
	PlansGenerated uint64  `json:"plansGenerated"`
	FallbackPlans  uint64  `json:"fallbackPlans"`
	StoreFailovers uint64  `json:"storeFailovers"`
	Goroutines     int     `json:"goroutines"`
}

// MetricsService owns the Prometheus registry for HTTP traffic and upstream outcomes.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	llmDuration     *prometheus.HistogramVec
	llmRequests     *prometheus.CounterVec
	planGenerations *prometheus.CounterVec
	searchRequests  *prometheus.CounterVec
	storeOperations *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	planCount            uint64
	fallbackPlanCount    uint64
	storeFailoverCount   uint64
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	llmDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_request_duration_seconds",
		Help:    "Duration of completion requests",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
	}, []string{"provider"})

	llmRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_requests_total",
		Help: "Completion requests by provider and outcome",
	}, []string{"provider", "outcome"})

	planGenerations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_generations_total",
		Help: "Generated plans by content source",
	}, []string{"source"})

	searchRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "search_requests_total",
		Help: "Resource and strategy searches by outcome",
	}, []string{"kind", "outcome"})

	storeOperations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "profile_store_operations_total",
		Help: "Profile store operations by backend and outcome",
	}, []string{"backend", "operation", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		llmDuration, llmRequests, planGenerations, searchRequests, storeOperations, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		llmDuration:     llmDuration,
		llmRequests:     llmRequests,
		planGenerations: planGenerations,
		searchRequests:  searchRequests,
		storeOperations: storeOperations,
	}
}

// Registry exposes the underlying registry for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup and updates the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	m.cacheHitRatio.Set(m.hitRatio())
}

// ObserveCacheWrite records latency for cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveCompletion records a completion call. A nil error counts as ok.
func (m *MetricsService) ObserveCompletion(provider string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.llmDuration.WithLabelValues(provider).Observe(duration.Seconds())
	m.llmRequests.WithLabelValues(provider, upstreamOutcome(err)).Inc()
}

// RecordParseFailure counts completions that produced no usable plan.
func (m *MetricsService) RecordParseFailure(provider string) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(provider, outcomeParse).Inc()
}

// RecordPlan counts a returned plan by its source.
func (m *MetricsService) RecordPlan(source string) {
	if m == nil {
		return
	}
	m.planGenerations.WithLabelValues(source).Inc()
	atomic.AddUint64(&m.planCount, 1)
	if source != "llm" {
		atomic.AddUint64(&m.fallbackPlanCount, 1)
	}
}

// RecordSearch counts a search by kind and outcome.
func (m *MetricsService) RecordSearch(kind, outcome string) {
	if m == nil {
		return
	}
	m.searchRequests.WithLabelValues(kind, outcome).Inc()
}

// ObserveStore records a profile store call. fellBack marks calls served by the secondary store.
func (m *MetricsService) ObserveStore(backend, operation string, err error, fellBack bool) {
	if m == nil {
		return
	}
	outcome := outcomeOK
	switch {
	case fellBack:
		outcome = outcomeFallback
		atomic.AddUint64(&m.storeFailoverCount, 1)
	case err != nil && !appErrors.IsNotFound(err):
		outcome = outcomeError
	}
	m.storeOperations.WithLabelValues(backend, operation, outcome).Inc()
}

// Snapshot returns the aggregate counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{Goroutines: runtime.NumGoroutine()}
	}
	snapshot := MetricsSnapshot{
		Requests:       atomic.LoadUint64(&m.requestCount),
		CacheHitRatio:  m.hitRatio(),
		PlansGenerated: atomic.LoadUint64(&m.planCount),
		FallbackPlans:  atomic.LoadUint64(&m.fallbackPlanCount),
		StoreFailovers: atomic.LoadUint64(&m.storeFailoverCount),
		Goroutines:     runtime.NumGoroutine(),
	}
	if snapshot.Requests > 0 {
		total := atomic.LoadUint64(&m.requestDurationTotal)
		snapshot.AvgLatencyMs = float64(total) / float64(snapshot.Requests) / float64(time.Millisecond)
	}
	return snapshot
}

func (m *MetricsService) hitRatio() float64 {
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

func upstreamOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, appErrors.ErrTimeout):
		return outcomeTimeout
	default:
		return outcomeError
	}
}
