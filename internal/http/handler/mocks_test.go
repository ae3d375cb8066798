package handler_test

import (
	"context"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

type mockTestCaseService struct {
	getIssueFn      func(ctx context.Context, key string) (*model.Issue, error)
	listFn          func(ctx context.Context, projectKey string) ([]model.Issue, error)
	generateFn      func(ctx context.Context, key string, hint model.TestTypeHint) (*model.Issue, *model.GenerationResult, error)
	postCommentFn   func(ctx context.Context, key string, cases []model.TestCase) error
	checkProviderFn func(ctx context.Context) (model.ProviderKind, error)
}

func (m *mockTestCaseService) GetIssue(ctx context.Context, key string) (*model.Issue, error) {
	if m.getIssueFn != nil {
		return m.getIssueFn(ctx, key)
	}
	return nil, nil
}

func (m *mockTestCaseService) ListProjectIssues(ctx context.Context, projectKey string) ([]model.Issue, error) {
	if m.listFn != nil {
		return m.listFn(ctx, projectKey)
	}
	return []model.Issue{}, nil
}

func (m *mockTestCaseService) Generate(ctx context.Context, key string, hint model.TestTypeHint) (*model.Issue, *model.GenerationResult, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, key, hint)
	}
	return nil, nil, nil
}

func (m *mockTestCaseService) PostComment(ctx context.Context, key string, cases []model.TestCase) error {
	if m.postCommentFn != nil {
		return m.postCommentFn(ctx, key, cases)
	}
	return nil
}

func (m *mockTestCaseService) CheckProvider(ctx context.Context) (model.ProviderKind, error) {
	if m.checkProviderFn != nil {
		return m.checkProviderFn(ctx)
	}
	return model.ProviderCLI, nil
}
