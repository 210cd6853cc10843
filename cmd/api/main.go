package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/bootstrap"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/core/config"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/core/logger"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/core/server"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/service"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/transport/http/handler"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))

	log, cleanup := logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON,
		cfg.Log.File.Path, cfg.Log.File.MaxSizeMB, cfg.Log.File.MaxBackups, cfg.Log.File.MaxAgeDays, cfg.Log.File.Compress)
	defer cleanup()
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log.Named("gin"), zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log.Named("gin"), zapcore.ErrorLevel)

	ctx := context.Background()
	store, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("store open failed", zap.Error(err))
	}
	defer store.Close()

	rp, err := bootstrap.RateProvider(cfg, log)
	if err != nil {
		log.Fatal("rate provider", zap.Error(err))
	}

	if cfg.Admin.Token == "" {
		log.Warn("admin token not set, admin routes will answer 500 until ADMIN_TOKEN is configured")
	}

	svc := service.NewListingService(store.Listings, rp, log.Named("service"))
	r := router.NewEngine(log, router.Options{
		AdminToken:     cfg.Admin.Token,
		MaxBodyBytes:   int64(cfg.App.HTTP.MaxBodyMB) << 20,
		MaxConcurrent:  int64(cfg.App.HTTP.MaxConcurrent),
		RequestTimeout: time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second,
	}, handler.NewListings(svc, log))

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "localhost"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("domain sales api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.String("api", baseURL+"/api"),
		zap.String("health", baseURL+"/health"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("domain sales api stopped")
}
