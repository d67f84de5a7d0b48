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

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/kisaansahayak/sahayak/config"
	"github.com/kisaansahayak/sahayak/internal/adapter/rag"
	"github.com/kisaansahayak/sahayak/internal/logging"
	"github.com/kisaansahayak/sahayak/internal/service"
	handler "github.com/kisaansahayak/sahayak/internal/transport/http"
	"github.com/kisaansahayak/sahayak/internal/transport/ws"
	"github.com/kisaansahayak/sahayak/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting KisaanSahayak gateway",
		zap.Int("port", cfg.Port),
		zap.String("python_api_url", cfg.PythonAPIURL),
		zap.String("frontend_url", cfg.FrontendURL),
	)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy, policy.DefaultMaxMessageLength)
	if err != nil {
		logger.Fatal("failed to initialize policy engine", zap.Error(err))
	}

	// Initialize RAG client
	ragClient := rag.NewClient(cfg.PythonAPIURL, cfg.UpstreamTimeout)

	// Initialize service
	svc := service.New(ragClient, cfg, policyEngine, service.WithLogger(logger))

	// Initialize rate limiter
	var limiter middleware.RateLimiterStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiter will allow requests until it recovers", zap.Error(err))
		}
		cancel()
		limiter = handler.NewRedisStore(rdb, cfg.RateLimitMax, cfg.RateLimitWindow, logger)
	} else {
		limiter = handler.NewFixedWindowStore(cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	// Create servers
	wsCfg := ws.DefaultConfig()
	wsCfg.AllowedOrigin = cfg.FrontendURL
	wsServer := ws.NewServer(wsCfg, svc, limiter, logger)
	server := handler.NewServer(cfg, svc, wsServer, limiter, logger)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	logger.Info("gateway started",
		zap.String("health", fmt.Sprintf("http://localhost:%d/api/health", cfg.Port)),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gateway")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to close websocket connections", zap.Error(err))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to shutdown server gracefully", zap.Error(err))
	}

	logger.Info("gateway stopped")
}
