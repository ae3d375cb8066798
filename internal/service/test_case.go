package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/common/logger"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/metrics"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/service/issue_tracker"
)

var (
	ErrInvalidIssueKey   = errors.New("invalid issue key")
	ErrInvalidProjectKey = errors.New("invalid project key")
	ErrNoTestCases       = errors.New("no test cases selected")
	ErrPlaceholderCase   = errors.New("placeholder test cases cannot be posted")
	ErrInvalidTestCase   = errors.New("invalid test case")
)

var (
	issueKeyPattern   = regexp.MustCompile(`^[A-Z][A-Z0-9_]*-[0-9]+$`)
	projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

// Generator is the part of testgen.Generator the service depends on.
type Generator interface {
	Generate(ctx context.Context, issue model.Issue, hint model.TestTypeHint) (*model.GenerationResult, error)
	CheckProvider(ctx context.Context) (model.ProviderKind, error)
}

// TestCaseService is the single entry point of both front-ends: fetch an
// issue, generate test cases for it and post the selected ones back.
type TestCaseService interface {
	GetIssue(ctx context.Context, key string) (*model.Issue, error)
	ListProjectIssues(ctx context.Context, projectKey string) ([]model.Issue, error)
	Generate(ctx context.Context, key string, hint model.TestTypeHint) (*model.Issue, *model.GenerationResult, error)
	PostComment(ctx context.Context, key string, cases []model.TestCase) error
	CheckProvider(ctx context.Context) (model.ProviderKind, error)
}

type testCaseService struct {
	tracker   issue_tracker.IssueTrackerService
	generator Generator
	metrics   *metrics.Metrics
}

// NewTestCaseService accepts a nil tracker when Jira is not configured; issue
// operations then fail with issue_tracker.ErrNotConfigured.
func NewTestCaseService(tracker issue_tracker.IssueTrackerService, generator Generator, m *metrics.Metrics) TestCaseService {
	return &testCaseService{
		tracker:   tracker,
		generator: generator,
		metrics:   m,
	}
}

// NormalizeIssueKey upper-cases and validates a key such as "proj-12".
func NormalizeIssueKey(key string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(key))
	if !issueKeyPattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIssueKey, key)
	}
	return normalized, nil
}

func NormalizeProjectKey(key string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(key))
	if !projectKeyPattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: %q", ErrInvalidProjectKey, key)
	}
	return normalized, nil
}

func (s *testCaseService) GetIssue(ctx context.Context, key string) (*model.Issue, error) {
	key, err := NormalizeIssueKey(key)
	if err != nil {
		return nil, err
	}
	if s.tracker == nil {
		return nil, issue_tracker.ErrNotConfigured
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{IssueKey: logger.Ptr(key), Component: "service.test_case"})

	issue, err := s.tracker.FetchIssue(ctx, key)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch issue", "error", err)
		return nil, err
	}
	return issue, nil
}

func (s *testCaseService) ListProjectIssues(ctx context.Context, projectKey string) ([]model.Issue, error) {
	projectKey, err := NormalizeProjectKey(projectKey)
	if err != nil {
		return nil, err
	}
	if s.tracker == nil {
		return nil, issue_tracker.ErrNotConfigured
	}

	issues, err := s.tracker.SearchProjectIssues(ctx, projectKey)
	if err != nil {
		slog.ErrorContext(ctx, "failed to search project issues", "project", projectKey, "error", err)
		return nil, err
	}
	return issues, nil
}

func (s *testCaseService) Generate(ctx context.Context, key string, hint model.TestTypeHint) (*model.Issue, *model.GenerationResult, error) {
	issue, err := s.GetIssue(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.generator.Generate(ctx, *issue, hint)
	if err != nil {
		return issue, nil, err
	}
	return issue, result, nil
}

func (s *testCaseService) PostComment(ctx context.Context, key string, cases []model.TestCase) error {
	key, err := NormalizeIssueKey(key)
	if err != nil {
		return err
	}

	body, err := FormatComment(cases)
	if err != nil {
		return err
	}
	if s.tracker == nil {
		return issue_tracker.ErrNotConfigured
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{IssueKey: logger.Ptr(key), Component: "service.test_case"})

	if err := s.tracker.AddComment(ctx, key, body); err != nil {
		slog.ErrorContext(ctx, "failed to post test case comment", "error", err)
		return err
	}

	s.metrics.IncCommentPosted()
	slog.InfoContext(ctx, "test cases posted as comment", "cases", len(cases))
	return nil
}

func (s *testCaseService) CheckProvider(ctx context.Context) (model.ProviderKind, error) {
	return s.generator.CheckProvider(ctx)
}
