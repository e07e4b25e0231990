package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mr1hm/siting-dashboard/internal/api"
	"github.com/mr1hm/siting-dashboard/internal/catalog"
	"github.com/mr1hm/siting-dashboard/internal/config"
	"github.com/mr1hm/siting-dashboard/internal/dashboard"
	"github.com/mr1hm/siting-dashboard/internal/layout"
	"github.com/mr1hm/siting-dashboard/internal/logging"
	"github.com/mr1hm/siting-dashboard/internal/memo"
	"github.com/mr1hm/siting-dashboard/internal/ontology"
	"github.com/mr1hm/siting-dashboard/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "catalog_source", cfg.Catalog.Source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		logging.Fatalf("Failed to load catalog: %v", err)
	}

	graph, err := loadOntology(cfg)
	if err != nil {
		logging.Fatalf("Failed to load ontology: %v", err)
	}

	var (
		registerer prometheus.Registerer
		gatherer   prometheus.Gatherer
	)
	if cfg.Server.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		registerer, gatherer = reg, reg
	}

	dashCfg := dashboard.Config{
		HotThreshold: cfg.Ranking.HotThreshold,
		Layout:       layoutConfig(cfg.Layout),
		CacheSize:    cfg.Cache.Size,
		WarmWorkers:  cfg.Worker.Count,
		WarmBuffer:   cfg.Worker.BufferSize,
	}
	svc := dashboard.New(cat, graph, dashCfg, memo.NewMetrics(registerer))

	if err := svc.Warm(ctx); err != nil {
		slog.Warn("cache warm-up incomplete", "error", err)
	}

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	if registerer != nil {
		router.Use(api.MetricsMiddleware(registerer))
	}
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS))

	handler := api.NewHandler(svc, gatherer)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	switch {
	case cfg.Catalog.Source == config.SourceSQLite:
		db, err := repository.NewSQLiteDB(cfg.DB.Path)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.LoadCatalog(ctx)
	case cfg.Catalog.Path != "":
		return catalog.LoadFile(cfg.Catalog.Path)
	default:
		return catalog.Default()
	}
}

func loadOntology(cfg *config.Config) (*ontology.Graph, error) {
	if cfg.Catalog.OntologyPath != "" {
		return ontology.LoadFile(cfg.Catalog.OntologyPath)
	}
	return ontology.Default()
}

func layoutConfig(lc config.LayoutConfig) layout.Config {
	l := layout.Default()
	l.RootGap = lc.RootGap
	l.SiblingGap = lc.SiblingGap
	l.FallbackGap = lc.FallbackGap
	return l
}
