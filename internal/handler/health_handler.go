package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iep-planner-api/internal/service"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
	"github.com/noah-isme/iep-planner-api/pkg/response"
)

const readyTimeout = 2 * time.Second

// HealthInfo describes which external dependencies the process was started with.
type HealthInfo struct {
	LLMConfigured    bool   `json:"llmConfigured"`
	LLMProvider      string `json:"llmProvider,omitempty"`
	LLMModel         string `json:"llmModel,omitempty"`
	SearchConfigured bool   `json:"searchConfigured"`
	StoreBackend     string `json:"storeBackend"`
	CacheEnabled     bool   `json:"cacheEnabled"`
	MockMode         bool   `json:"mockMode"`
}

type healthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Config    HealthInfo               `json:"config"`
	Metrics   *service.MetricsSnapshot `json:"metrics,omitempty"`
}

// Pinger checks that a backing service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes liveness, readiness and Prometheus endpoints.
type HealthHandler struct {
	info    HealthInfo
	metrics *service.MetricsService
	cache   Pinger
	now     func() time.Time
}

// NewHealthHandler constructs a health handler. cache may be nil when caching is disabled.
func NewHealthHandler(info HealthInfo, metrics *service.MetricsService, cache Pinger) *HealthHandler {
	return &HealthHandler{info: info, metrics: metrics, cache: cache, now: time.Now}
}

// Health godoc
// @Summary Liveness and configuration flags
// @Tags Operations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status := healthStatus{Status: "ok", Timestamp: h.now().UTC(), Config: h.info}
	if h.metrics != nil {
		snap := h.metrics.Snapshot()
		status.Metrics = &snap
	}
	response.JSON(c, http.StatusOK, status)
}

// Ready godoc
// @Summary Readiness probe
// @Tags Operations
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			response.Error(c, appErrors.Wrap(err, "NOT_READY", http.StatusServiceUnavailable, "cache unavailable"))
			return
		}
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "ready"})
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *HealthHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
