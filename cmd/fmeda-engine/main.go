package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/miradorstack/mirador-fmeda/internal/api"
	"github.com/miradorstack/mirador-fmeda/internal/cache"
	"github.com/miradorstack/mirador-fmeda/internal/catalog"
	"github.com/miradorstack/mirador-fmeda/internal/config"
	"github.com/miradorstack/mirador-fmeda/internal/engine"
	"github.com/miradorstack/mirador-fmeda/internal/httpapi"
	"github.com/miradorstack/mirador-fmeda/internal/metrics"
	"github.com/miradorstack/mirador-fmeda/internal/repo"
	"github.com/miradorstack/mirador-fmeda/internal/services"
	"github.com/miradorstack/mirador-fmeda/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting mirador-fmeda",
		slog.String("grpc_address", cfg.Server.Address),
		slog.String("http_address", cfg.Server.HTTPAddress))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	constants, err := engine.LoadConstants(cfg.Standards.ConstantsPath, logger)
	if err != nil {
		logger.Error("failed to load standards constants", slog.Any("error", err))
		os.Exit(1)
	}

	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled {
		provider, err := cache.NewRedisProvider(ctx, cache.RedisConfig{
			Addr:         cfg.Cache.Addr,
			Username:     cfg.Cache.Username,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
			MaxRetries:   cfg.Cache.MaxRetries,
			TLS:          cfg.Cache.TLS,
		})
		if err != nil {
			logger.Warn("redis cache unavailable", slog.Any("error", err))
		} else {
			cacheProvider = provider
			defer provider.Close()
		}
	}

	db, err := repo.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()
	repository := repo.NewPostgresRepo(db, cacheProvider, cfg.Cache.RecordTTL, logger)

	registry := engine.DefaultRegistry(constants, logger)
	logger.Info("standards registered", slog.Any("standards", registry.Standards()))
	estimator := engine.NewEstimator(registry, constants.SN29500, logger)
	pipeline := engine.NewPipeline(
		logger,
		repository,
		catalog.NewResolver(logger, repository, cfg.Calculation.FamilyLimit),
		estimator,
		engine.WithSnapshots(repository),
		engine.WithCrossChecker(engine.NewCrossChecker(logger, cfg.Standards.CrossCheckRatio)),
		engine.WithConcurrency(cfg.Calculation.Concurrency),
	)

	fmedaService := services.NewFMEDAService(logger, pipeline, repository, repository, cacheProvider, services.Options{
		DefaultStandard: cfg.Standards.DefaultStandard,
		ResultTTL:       cfg.Cache.ResultTTL,
		MaxComponents:   cfg.Calculation.MaxComponents,
	}).WithHistory(repository)

	var grpcServer *api.Server
	if cfg.Server.Address != "" {
		grpcServer, err = api.NewServer(cfg.Server, logger, services.NewGRPCServer(logger, fmedaService))
		if err != nil {
			logger.Error("failed to create gRPC server", slog.Any("error", err))
			os.Exit(1)
		}
		go func() {
			if serveErr := grpcServer.Start(); serveErr != nil {
				logger.Error("gRPC server exited", slog.Any("error", serveErr))
				stop()
			}
		}()
	}

	var httpServer *httpapi.Server
	if cfg.Server.HTTPAddress != "" {
		httpServer, err = httpapi.NewServer(cfg.Server.HTTPAddress, logger, fmedaService)
		if err != nil {
			logger.Error("failed to create HTTP server", slog.Any("error", err))
			os.Exit(1)
		}
		go func() {
			logger.Info("http server listening", slog.String("address", httpServer.Address()))
			if serveErr := httpServer.Start(); serveErr != nil {
				logger.Error("http server exited", slog.Any("error", serveErr))
				stop()
			}
		}()
	}

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http server shutdown", slog.Any("error", err))
		}
	}
	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	logger.Info("mirador-fmeda stopped", slog.Any("latency", fmedaService.LatencySummary()))
}
