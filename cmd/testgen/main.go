package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/common/id"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/common/logger"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/common/otel"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/core/config"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/cache"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/cli"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/metrics"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/process"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/service"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/testgen"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Ctrl+C cancels the running generation, which kills the AI subprocess.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		os.Stderr.WriteString(tui.RenderError(err) + "\n")
		return 1
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		return 1
	}
	if telemetry != nil {
		defer telemetry.Shutdown(context.Background())
	}

	// stdout carries rendered output and JSON; logs go to stderr and stay
	// quiet unless TESTGEN_DEBUG is set.
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger.SetupWriterLevel(cfg, os.Stderr, level)

	if err := id.Init(2); err != nil {
		os.Stderr.WriteString(tui.RenderError(err) + "\n")
		return 1
	}

	m := metrics.New()

	var issueCache *cache.IssueCache
	if cfg.Redis.Enabled() {
		if redisClient, err := cache.NewRedisClient(ctx, cfg.Redis); err != nil {
			// the CLI works without the cache
			slog.WarnContext(ctx, "redis unavailable, reading issues from jira", "error", err)
		} else {
			defer redisClient.Close()
			issueCache = cache.NewIssueCache(redisClient, cfg.Redis.IssueTTL, m)
		}
	}

	services, err := service.NewServicesFromConfig(ctx, service.ServicesConfig{
		Jira:     cfg.Jira,
		Cache:    issueCache,
		Settings: testgen.LoadSettings(config.ServiceTypeCLI),
		Runner:   process.ExecRunner{},
		Metrics:  m,
	})
	if err != nil {
		os.Stderr.WriteString(tui.RenderError(err) + "\n")
		return 1
	}

	root := cli.NewRoot(cli.Deps{
		TestCases: services.TestCases(),
		Stdin:     os.Stdin,
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
		},
	})
	if err := root.ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString(tui.RenderError(err) + "\n")
		return 1
	}
	return 0
}
