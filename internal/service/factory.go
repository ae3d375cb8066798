package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/core/config"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/cache"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/metrics"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/process"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/service/issue_tracker"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/testgen"
)

// ServicesConfig holds what both front-ends need to build the services.
type ServicesConfig struct {
	Jira config.JiraConfig
	// Cache is optional; issues are then always read from Jira.
	Cache *cache.IssueCache
	// Settings is consulted at the start of every generation.
	Settings testgen.SettingsSource
	Runner   process.Runner
	Metrics  *metrics.Metrics
}

type Services struct {
	tracker   issue_tracker.IssueTrackerService
	generator Generator
	metrics   *metrics.Metrics
}

func NewServices(tracker issue_tracker.IssueTrackerService, generator Generator, m *metrics.Metrics) *Services {
	return &Services{
		tracker:   tracker,
		generator: generator,
		metrics:   m,
	}
}

// NewServicesFromConfig wires the Jira tracker and the generator. A missing
// Jira configuration is not fatal: issue operations report it when used.
func NewServicesFromConfig(ctx context.Context, cfg ServicesConfig) (*Services, error) {
	var tracker issue_tracker.IssueTrackerService
	jira, err := issue_tracker.NewJiraIssueTrackerService(cfg.Jira, cfg.Metrics)
	switch {
	case errors.Is(err, issue_tracker.ErrNotConfigured):
		slog.WarnContext(ctx, "jira not configured; issue operations will fail", "error", err)
	case err != nil:
		return nil, err
	default:
		tracker = jira
		if cfg.Cache != nil {
			tracker = issue_tracker.NewCachedIssueTrackerService(jira, cfg.Cache)
		}
	}

	runner := cfg.Runner
	if runner == nil {
		runner = process.ExecRunner{}
	}
	generator := testgen.NewGenerator(cfg.Settings, testgen.NewTransportFactory(runner), cfg.Metrics)

	return NewServices(tracker, generator, cfg.Metrics), nil
}

func (s *Services) TestCases() TestCaseService {
	return NewTestCaseService(s.tracker, s.generator, s.metrics)
}

func (s *Services) Metrics() *metrics.Metrics {
	return s.metrics
}
