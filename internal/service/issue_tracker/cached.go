package issue_tracker

import (
	"context"
	"log/slog"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/cache"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

type cachedIssueTrackerService struct {
	inner IssueTrackerService
	cache *cache.IssueCache
}

// NewCachedIssueTrackerService serves FetchIssue from the cache when possible.
// Searches and comments always reach Jira.
func NewCachedIssueTrackerService(inner IssueTrackerService, c *cache.IssueCache) IssueTrackerService {
	return &cachedIssueTrackerService{inner: inner, cache: c}
}

func (s *cachedIssueTrackerService) FetchIssue(ctx context.Context, key string) (*model.Issue, error) {
	if issue, ok := s.cache.Get(ctx, key); ok {
		slog.DebugContext(ctx, "issue served from cache", "issue_key", key)
		return issue, nil
	}

	issue, err := s.inner.FetchIssue(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, issue)
	return issue, nil
}

func (s *cachedIssueTrackerService) SearchProjectIssues(ctx context.Context, projectKey string) ([]model.Issue, error) {
	issues, err := s.inner.SearchProjectIssues(ctx, projectKey)
	if err != nil {
		return nil, err
	}
	for i := range issues {
		s.cache.Set(ctx, &issues[i])
	}
	return issues, nil
}

func (s *cachedIssueTrackerService) AddComment(ctx context.Context, key string, body string) error {
	if err := s.inner.AddComment(ctx, key, body); err != nil {
		return err
	}
	// the issue's updated timestamp moves with every comment
	s.cache.Invalidate(ctx, key)
	return nil
}
