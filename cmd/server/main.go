package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/common/id"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/common/logger"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/common/otel"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/core/config"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/cache"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/http/middleware"
	httprouter "github.com/AlexanderRomeroBasetis/jira-test-generator/internal/http/router"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/metrics"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/process"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/service"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/testgen"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "jira test generator starting", "env", cfg.Env, "service", cfg.OTel.ServiceName, "ai_provider", cfg.AI.Provider)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	var issueCache *cache.IssueCache
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		issueCache = cache.NewIssueCache(redisClient, cfg.Redis.IssueTTL, m)
		slog.InfoContext(ctx, "redis connected", "issue_ttl", cfg.Redis.IssueTTL)
	}

	services, err := service.NewServicesFromConfig(ctx, service.ServicesConfig{
		Jira:     cfg.Jira,
		Cache:    issueCache,
		Settings: testgen.LoadSettings(config.ServiceTypeServer),
		Runner:   process.ExecRunner{},
		Metrics:  m,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create services", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	// WriteTimeout leaves room for the longest CLI invocation.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      config.MaxCLITimeout + config.DefaultProbe + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services)

	return router
}

const banner = `
 _____ _____ ____ _____ ____ _____ _   _
|_   _| ____/ ___|_   _/ ___| ____| \ | |
  | | |  _| \___ \ | || |  _|  _| |  \| |
  | | | |___ ___) || || |_| | |___| |\  |
  |_| |_____|____/ |_| \____|_____|_| \_|
`
