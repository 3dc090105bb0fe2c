package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/goalie-roster-api/internal/handler"
	"github.com/noah-isme/goalie-roster-api/internal/repository"
	"github.com/noah-isme/goalie-roster-api/internal/service"
	"github.com/noah-isme/goalie-roster-api/pkg/cache"
	"github.com/noah-isme/goalie-roster-api/pkg/config"
	"github.com/noah-isme/goalie-roster-api/pkg/database"
	"github.com/noah-isme/goalie-roster-api/pkg/jobs"
	"github.com/noah-isme/goalie-roster-api/pkg/logger"
)

// @title Goalie Roster API
// @version 1.0.0
// @description Roster and session-history CSV import service
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching and async imports disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	metricsSvc := service.NewMetricsService()
	var cacheSvc *service.CacheService
	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Athletes.CacheTTL, logr, true)
		checks["redis"] = handler.PingFunc(cacheRepo.Ping)
	}

	athleteRepo := repository.NewAthleteRepository(db)
	sessionRepo := repository.NewSessionLogRepository(db)
	userRepo := repository.NewUserRepository(db)

	validate := validator.New()
	importSvc := service.NewImportService(athleteRepo, sessionRepo, userRepo, cacheSvc, metricsSvc, logr, service.ImportServiceConfig{
		ChunkSize:       cfg.Import.ChunkSize,
		ChunksPerSecond: cfg.Import.ChunksPerSecond,
		JobTTL:          cfg.Import.JobTTL,
	})
	athleteSvc := service.NewAthleteService(athleteRepo, sessionRepo, cacheSvc, validate, logr)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)

	var queue *jobs.Queue
	if cfg.Import.AsyncEnabled && cacheSvc.Enabled() {
		// One worker keeps identifier assignment serial within this process.
		queue = jobs.NewQueue("roster-imports", importSvc.HandleJob, jobs.QueueConfig{
			Workers:    1,
			BufferSize: 32,
			MaxRetries: cfg.Import.WorkerRetries,
			RetryDelay: cfg.Import.RetryDelay,
			Logger:     logr,
		})
		queue.Start(ctx)
		importSvc.UseQueue(queue)
	}

	router := newRouter(cfg, logr, routerDeps{
		imports:  handler.NewImportHandler(importSvc, validate, cfg.Import.MaxUploadBytes),
		athletes: handler.NewAthleteHandler(athleteSvc),
		metrics:  handler.NewMetricsHandler(metricsSvc, checks),
		tokens:   tokenSvc,
		observer: metricsSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.Bool("async_imports", importSvc.AsyncEnabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if queue != nil {
		queue.Stop()
	}
}
