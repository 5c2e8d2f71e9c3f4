package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/linkrank/config"
	"github.com/d60-Lab/linkrank/internal/api/handler"
	"github.com/d60-Lab/linkrank/internal/api/router"
	"github.com/d60-Lab/linkrank/internal/feedcache"
	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/internal/repository"
	"github.com/d60-Lab/linkrank/internal/service"
	"github.com/d60-Lab/linkrank/pkg/auth"
	"github.com/d60-Lab/linkrank/pkg/database"
	"github.com/d60-Lab/linkrank/pkg/logger"
	"github.com/d60-Lab/linkrank/pkg/monitoring"
	"github.com/d60-Lab/linkrank/pkg/tracing"
)

var version = "dev"

// @title linkrank API
// @version 1.0
// @description 链接提交、审核、投票与排行
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	flush, err := monitoring.InitSentry(cfg.Sentry, version)
	if err != nil {
		logger.Fatal("init sentry", zap.Error(err))
	}
	defer flush()

	shutdownTracing, err := tracing.Init(context.Background(), cfg.Tracing)
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()
	if err := db.AutoMigrate(model.Models()...); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	store := repository.NewStore(db)
	opts := []service.Option{service.WithOpTimeout(cfg.Database.OpTimeout)}

	var cache service.FeedCache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// 缓存不可用时照常启动，读请求回源数据库
			logger.Warn("redis unavailable, feed cache degraded", zap.Error(err))
		}
		cancel()
		cache = feedcache.New(rdb, cfg.Redis.FeedTTL)
		opts = append(opts, service.WithFeedCache(cache))
	}

	issuer := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)
	h := handler.New(handler.Services{
		Submissions: service.NewSubmissionService(store, opts...),
		Moderation:  service.NewModerationService(store, opts...),
		Votes:       service.NewVoteService(store, opts...),
		Feed:        service.NewFeedService(store, opts...),
		Auth:        service.NewAuthService(store, issuer, opts...),
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	var stopReconciler func(context.Context) error
	if cfg.Reconcile.Enabled {
		reconciler := service.NewScoreReconciler(store, cfg.Reconcile, cache)
		stopReconciler = reconciler.Start()
		logger.Info("score reconciler started", zap.Duration("interval", cfg.Reconcile.Interval))
	}

	gin.SetMode(cfg.Server.Mode)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router.Setup(h, issuer, cfg.Tracing.ServiceName),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if stopReconciler != nil {
		if err := stopReconciler(ctx); err != nil {
			logger.Error("stop reconciler", zap.Error(err))
		}
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("tracing shutdown", zap.Error(err))
	}
}
