package testgen

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/common/id"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/common/logger"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/core/config"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/metrics"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

// SettingsSource supplies AI settings. Generate calls it once per run so edits
// take effect on the next call.
type SettingsSource interface {
	AISettings() (config.AIConfig, error)
}

// SettingsFunc adapts a function to SettingsSource.
type SettingsFunc func() (config.AIConfig, error)

func (f SettingsFunc) AISettings() (config.AIConfig, error) {
	return f()
}

// LoadSettings reads AI settings through config.Load for the given service.
func LoadSettings(serviceType config.ServiceType) SettingsSource {
	return SettingsFunc(func() (config.AIConfig, error) {
		cfg, err := config.Load(serviceType)
		if err != nil {
			return config.AIConfig{}, err
		}
		return cfg.AI, nil
	})
}

// Generator runs prompt building, provider transport and parsing for one
// issue. It holds no state across calls.
type Generator struct {
	settings SettingsSource
	factory  TransportFactory
	metrics  *metrics.Metrics
}

func NewGenerator(settings SettingsSource, factory TransportFactory, m *metrics.Metrics) *Generator {
	return &Generator{
		settings: settings,
		factory:  factory,
		metrics:  m,
	}
}

// run tracks the state of a single Generate call.
type run struct {
	stage    Stage
	provider model.ProviderKind
	redact   redactor
}

// Generate walks Idle → CheckingAvailability → Invoking → Parsing → Done.
// Any failure, including a panic, ends the run with one *Error naming the
// stage that failed. Nothing is retried.
func (g *Generator) Generate(ctx context.Context, issue model.Issue, hint model.TestTypeHint) (result *model.GenerationResult, err error) {
	start := time.Now()
	runID := id.New()

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		IssueKey:  logger.Ptr(issue.Key),
		RunID:     logger.Ptr(runID),
		Component: "testgen.generator",
	})

	sc := logger.StartSpan(ctx, "testgen.generate")
	defer sc.End()
	ctx = sc.Context()
	sc.Span().SetAttributes(
		attribute.String("issue.key", issue.Key),
		attribute.Int64("run.id", runID),
		attribute.String("test_type_hint", string(hint)),
	)

	r := &run{stage: StageIdle}

	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, "panic during test case generation",
				"stage", r.stage,
				"panic", r.redact.String(fmt.Sprint(p)),
				"stack", string(debug.Stack()))
			result = nil
			err = &Error{Stage: r.stage, Kind: KindUnexpected, Err: fmt.Errorf("%w: %s", ErrUnexpected, r.redact.String(fmt.Sprint(p)))}
		}
		if err == nil {
			return
		}

		failedAt := StageOf(err)
		sc.RecordError(err)
		g.metrics.IncGenerationFailure(string(failedAt), string(KindOf(err)))
		g.metrics.ObserveGeneration(providerLabel(r.provider), "failed", time.Since(start))
		slog.ErrorContext(ctx, "test case generation failed",
			"stage", failedAt,
			"kind", KindOf(err),
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		r.stage = StageFailed
	}()

	slog.InfoContext(ctx, "test case generation starting", "hint", hint)

	g.transition(ctx, r, StageConfiguration)
	cfg, err := g.settings.AISettings()
	if err != nil {
		return nil, &Error{Stage: StageConfiguration, Kind: KindConfigurationMissing, Err: err}
	}
	r.redact = newRedactor(cfg.Chat.APIKey, cfg.CLI.APIKey)

	kind, err := ParseProviderKind(cfg.Provider)
	if err != nil {
		return nil, wrapStage(StageConfiguration, err)
	}
	r.provider = kind
	ctx = logger.WithLogFields(ctx, logger.LogFields{Provider: logger.Ptr(string(kind))})
	sc.Span().SetAttributes(attribute.String("provider", string(kind)))

	transport, err := g.factory.NewTransport(kind, cfg)
	if err != nil {
		return nil, wrapStage(StageConfiguration, r.redact.Error(err))
	}

	err = g.step(ctx, r, StageAvailability, func(ctx context.Context) error {
		return transport.CheckAvailability(ctx)
	})
	if err != nil {
		return nil, err
	}

	var raw string
	err = g.step(ctx, r, StageInvocation, func(ctx context.Context) error {
		var invokeErr error
		raw, invokeErr = transport.Invoke(ctx, BuildPrompt(issue, hint))
		return invokeErr
	})
	if err != nil {
		return nil, err
	}

	var parsed ParseResult
	_ = g.step(ctx, r, StageParsing, func(ctx context.Context) error {
		parsed = Parse(raw, hint)
		return nil
	})

	if parsed.Degraded {
		slog.WarnContext(ctx, "provider response could not be parsed, returning placeholders",
			"sections", parsed.Sections,
			"response_chars", len(raw),
			"response_preview", logger.Truncate(r.redact.String(raw), 300))
		g.metrics.IncDegraded(string(kind))
	}

	g.transition(ctx, r, StageDone)

	result = &model.GenerationResult{
		RunID:    runID,
		IssueKey: issue.Key,
		Provider: kind,
		Cases:    parsed.Cases,
		Degraded: parsed.Degraded,
		Duration: time.Since(start),
	}

	for _, tc := range result.Cases {
		g.metrics.IncTestCase(string(tc.Category))
	}
	g.metrics.ObserveGeneration(string(kind), outcome(result), result.Duration)

	slog.InfoContext(ctx, "test case generation completed",
		"cases", len(result.Cases),
		"sections", parsed.Sections,
		"degraded", result.Degraded,
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

// step runs fn as one traced stage and wraps its error with the stage.
func (g *Generator) step(ctx context.Context, r *run, stage Stage, fn func(context.Context) error) error {
	g.transition(ctx, r, stage)

	sc := logger.StartSpan(ctx, "testgen."+spanName(stage))
	defer sc.End()

	stageStart := time.Now()
	err := fn(sc.Context())
	if err != nil {
		err = wrapStage(stage, r.redact.Error(err))
		sc.RecordError(err)
		return err
	}

	slog.DebugContext(ctx, "stage completed", "stage", stage, "duration_ms", time.Since(stageStart).Milliseconds())
	return nil
}

func (g *Generator) transition(ctx context.Context, r *run, to Stage) {
	slog.DebugContext(ctx, "generation state transition", "from", r.stage, "to", to)
	r.stage = to
}

func spanName(stage Stage) string {
	switch stage {
	case StageAvailability:
		return "check_availability"
	case StageInvocation:
		return "invoke"
	case StageParsing:
		return "parse"
	default:
		return string(stage)
	}
}

func outcome(result *model.GenerationResult) string {
	switch {
	case result.Degraded:
		return "degraded"
	case result.Empty():
		return "empty"
	default:
		return "ok"
	}
}

func providerLabel(kind model.ProviderKind) string {
	if kind == "" {
		return "unknown"
	}
	return string(kind)
}

// CheckProvider reads settings and runs only the availability check of the
// configured provider.
func (g *Generator) CheckProvider(ctx context.Context) (model.ProviderKind, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "testgen.generator"})

	cfg, err := g.settings.AISettings()
	if err != nil {
		return "", &Error{Stage: StageConfiguration, Kind: KindConfigurationMissing, Err: err}
	}
	redact := newRedactor(cfg.Chat.APIKey, cfg.CLI.APIKey)

	kind, err := ParseProviderKind(cfg.Provider)
	if err != nil {
		return "", wrapStage(StageConfiguration, err)
	}

	transport, err := g.factory.NewTransport(kind, cfg)
	if err != nil {
		return kind, wrapStage(StageConfiguration, redact.Error(err))
	}

	if err := transport.CheckAvailability(ctx); err != nil {
		return kind, wrapStage(StageAvailability, redact.Error(err))
	}

	slog.InfoContext(ctx, "ai provider available", "provider", kind)
	return kind, nil
}
