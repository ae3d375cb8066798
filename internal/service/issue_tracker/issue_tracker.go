package issue_tracker

import (
	"context"
	"errors"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

var (
	ErrNotConfigured = errors.New("jira is not configured")
	ErrIssueNotFound = errors.New("issue not found")
)

// DefaultSearchLimit caps project searches.
const DefaultSearchLimit = 50

type IssueTrackerService interface {
	FetchIssue(ctx context.Context, key string) (*model.Issue, error)
	// SearchProjectIssues lists the newest issues of a project first.
	SearchProjectIssues(ctx context.Context, projectKey string) ([]model.Issue, error)
	AddComment(ctx context.Context, key string, body string) error
}
