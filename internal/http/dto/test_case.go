package dto

import (
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

type GenerateTestCasesRequest struct {
	Type string `json:"type" binding:"omitempty,oneof=Web Api web api WEB API"`
}

type TestCaseRequest struct {
	Title          string `json:"title" binding:"required,max=500"`
	Category       string `json:"category" binding:"required,oneof=Web Api Error"`
	Description    string `json:"description" binding:"required"`
	ExpectedResult string `json:"expected_result" binding:"required"`
	Placeholder    bool   `json:"placeholder"`
}

func (r TestCaseRequest) ToModel() model.TestCase {
	return model.TestCase{
		Title:          r.Title,
		Category:       model.Category(r.Category),
		Description:    r.Description,
		ExpectedResult: r.ExpectedResult,
		Placeholder:    r.Placeholder,
	}
}

type PostCommentRequest struct {
	Cases []TestCaseRequest `json:"cases" binding:"required,min=1,dive"`
}

func (r PostCommentRequest) ToModel() []model.TestCase {
	cases := make([]model.TestCase, 0, len(r.Cases))
	for _, tc := range r.Cases {
		cases = append(cases, tc.ToModel())
	}
	return cases
}

type PostCommentResponse struct {
	IssueKey string `json:"issue_key"`
	Posted   int    `json:"posted"`
}

type TestCaseResponse struct {
	Number         int    `json:"number"`
	Title          string `json:"title"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	ExpectedResult string `json:"expected_result"`
	Placeholder    bool   `json:"placeholder"`
}

type GenerateTestCasesResponse struct {
	RunID      int64              `json:"run_id,string"`
	IssueKey   string             `json:"issue_key"`
	Provider   string             `json:"provider"`
	Degraded   bool               `json:"degraded"`
	DurationMs int64              `json:"duration_ms"`
	Cases      []TestCaseResponse `json:"cases"`
}

func ToGenerateTestCasesResponse(r *model.GenerationResult) GenerateTestCasesResponse {
	cases := make([]TestCaseResponse, 0, len(r.Cases))
	for i, tc := range r.Cases {
		cases = append(cases, TestCaseResponse{
			Number:         i + 1,
			Title:          tc.Title,
			Category:       string(tc.Category),
			Description:    tc.Description,
			ExpectedResult: tc.ExpectedResult,
			Placeholder:    tc.Placeholder,
		})
	}
	return GenerateTestCasesResponse{
		RunID:      r.RunID,
		IssueKey:   r.IssueKey,
		Provider:   string(r.Provider),
		Degraded:   r.Degraded,
		DurationMs: r.Duration.Milliseconds(),
		Cases:      cases,
	}
}

type ProviderStatusResponse struct {
	Provider  string `json:"provider,omitempty"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}
