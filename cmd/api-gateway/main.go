package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/iep-planner-api/api/swagger"
	"github.com/noah-isme/iep-planner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/iep-planner-api/internal/middleware"
	"github.com/noah-isme/iep-planner-api/internal/planner"
	"github.com/noah-isme/iep-planner-api/internal/repository"
	"github.com/noah-isme/iep-planner-api/internal/service"
	"github.com/noah-isme/iep-planner-api/pkg/cache"
	"github.com/noah-isme/iep-planner-api/pkg/config"
	"github.com/noah-isme/iep-planner-api/pkg/database"
	"github.com/noah-isme/iep-planner-api/pkg/llm"
	"github.com/noah-isme/iep-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/iep-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/iep-planner-api/pkg/middleware/requestid"
	"github.com/noah-isme/iep-planner-api/pkg/search"
)

// @title IEP Planner API
// @version 1.0.0
// @description Personalized 7-day learning plans for neurodiverse students
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	store, closeStore, err := openProfileStore(ctx, cfg, metrics, logr)
	if err != nil {
		logr.Fatal("failed to open profile store", zap.Error(err))
	}
	defer closeStore()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, search cache disabled", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Search.CacheTTL, logr, cacheRepo.Enabled())

	var completer llm.Completer
	if cfg.LLMConfigured() && !cfg.UseMockData {
		completer, err = llm.New(cfg.LLM, logr)
		if err != nil {
			logr.Warn("completion client unavailable, serving fallback plans", zap.Error(err))
			completer = nil
		}
	}

	var searcher search.Searcher
	if cfg.SearchConfigured() && !cfg.UseMockData {
		searcher = search.NewTavilyClient(cfg.Search, nil)
	}

	resourceSvc := service.NewResourceService(searcher, cacheSvc, metrics, cfg.Search.MaxResults, cfg.Search.CacheTTL, logr)
	planSvc := service.NewPlanService(
		store,
		completer,
		planner.NewParser(),
		planner.NewFallbackGenerator(),
		resourceSvc,
		metrics,
		service.PlanOptions{MockMode: cfg.UseMockData},
		nil,
		logr,
	)
	shareSvc := service.NewShareService(store, cfg.Share, nil, logr)

	var readiness handler.Pinger
	if cacheRepo.Enabled() {
		readiness = cacheRepo
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	handler.RegisterRoutes(r, handler.Handlers{
		Plan:         handler.NewPlanHandler(planSvc, service.NewExportService(planSvc, nil, nil, logr)),
		Profile:      handler.NewProfileHandler(service.NewProfileService(store, nil, logr)),
		Resource:     handler.NewResourceHandler(resourceSvc),
		Consultation: handler.NewConsultationHandler(service.NewConsultationService(store, nil, logr)),
		Share:        handler.NewShareHandler(shareSvc),
		Health: handler.NewHealthHandler(handler.HealthInfo{
			LLMConfigured:    completer != nil,
			LLMProvider:      cfg.LLM.Provider,
			LLMModel:         cfg.LLM.Model,
			SearchConfigured: searcher != nil,
			StoreBackend:     store.Backend(),
			CacheEnabled:     cacheSvc.Enabled(),
			MockMode:         cfg.UseMockData,
		}, metrics, readiness),
	}, handler.RouteOptions{
		APIPrefix:   cfg.APIPrefix,
		MetricsPath: metricsPath,
		ShareAuth:   internalmiddleware.ShareToken(shareSvc),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	ln, err := listen(cfg.Port, cfg.PortScanAttempts, logr)
	if err != nil {
		logr.Fatal("no free port", zap.Error(err))
	}

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logr.Sugar().Infow("server starting", "addr", ln.Addr().String(), "env", cfg.Env, "store", store.Backend(), "mock", cfg.UseMockData)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openProfileStore builds the configured backend. Remote backends are wrapped so that failures
// degrade to an in-memory copy.
func openProfileStore(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (repository.ProfileStore, func(), error) {
	noop := func() {}
	memory := repository.NewMemoryProfileRepository()

	switch cfg.StoreBackend() {
	case config.StoreDocument:
		primary := repository.NewDocumentProfileRepository(cfg.DocumentStore, nil)
		return repository.NewFailoverProfileRepository(primary, memory, metrics, logr), noop, nil
	case config.StoreSQL:
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, noop, fmt.Errorf("open database: %w", err)
		}
		primary := repository.NewSQLProfileRepository(db)
		if err := primary.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("ensure schema: %w", err)
		}
		return repository.NewFailoverProfileRepository(primary, memory, metrics, logr), func() { _ = db.Close() }, nil
	default:
		return memory, noop, nil
	}
}

// listen binds the first free port starting at port, trying up to attempts ports.
func listen(port, attempts int, logr *zap.Logger) (net.Listener, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		addr := fmt.Sprintf(":%d", port+i)
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			if i > 0 {
				logr.Warn("configured port busy, using next free port", zap.Int("configured", port), zap.Int("port", port+i))
			}
			return ln, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("ports %d-%d unavailable: %w", port, port+attempts-1, lastErr)
}
