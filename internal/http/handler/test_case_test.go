package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/http/handler"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/service"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/service/issue_tracker"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/testgen"
)

func loginIssue() *model.Issue {
	return &model.Issue{
		ID:          "10001",
		Key:         "PROJ-1",
		Summary:     "Login fails",
		IssueType:   "Bug",
		Status:      model.Status{Name: "Open"},
		Priority:    "High",
		Project:     model.Project{Key: "PROJ", Name: "Project"},
		Description: "Steps: open /login",
		Reporter:    model.User{DisplayName: "Ana"},
	}
}

func generated(cases ...model.TestCase) *model.GenerationResult {
	return &model.GenerationResult{RunID: 42, IssueKey: "PROJ-1", Provider: model.ProviderCLI, Cases: cases}
}

var validCase = model.TestCase{
	Title:          "Login <ok>",
	Category:       model.CategoryApi,
	Description:    "POST /login with valid credentials",
	ExpectedResult: "HTTP 200",
}

var _ = Describe("TestCaseHandler", func() {
	var (
		router *gin.Engine
		svc    *mockTestCaseService
	)

	BeforeEach(func() {
		router = gin.New()
		router.SetHTMLTemplate(handler.Templates())
		svc = &mockTestCaseService{}
		h := handler.NewTestCaseHandler(svc)

		router.GET("/issues/:key", h.IssuePage)
		router.GET("/api/v1/issues/:key", h.GetIssue)
		router.POST("/api/v1/issues/:key/test-cases", h.Generate)
		router.POST("/api/v1/issues/:key/comments", h.PostComment)
		router.GET("/api/v1/projects/:key/issues", h.ListProjectIssues)
		router.GET("/api/v1/provider", h.ProviderStatus)
	})

	serve := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) map[string]any {
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		return resp
	}

	Describe("GetIssue", func() {
		It("returns the issue", func() {
			svc.getIssueFn = func(_ context.Context, key string) (*model.Issue, error) {
				Expect(key).To(Equal("proj-1"))
				return loginIssue(), nil
			}

			w := serve(http.MethodGet, "/api/v1/issues/proj-1", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["key"]).To(Equal("PROJ-1"))
			Expect(resp["project_key"]).To(Equal("PROJ"))
			Expect(resp["status"]).To(Equal("Open"))
		})

		It("returns 404 when Jira does not know the issue", func() {
			svc.getIssueFn = func(context.Context, string) (*model.Issue, error) {
				return nil, &issue_tracker.APIError{StatusCode: http.StatusNotFound, Message: "Issue does not exist or you do not have permission to see it."}
			}

			w := serve(http.MethodGet, "/api/v1/issues/PROJ-404", nil)

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decode(w)["error"]).To(Equal("issue not found"))
		})

		It("returns 502 for other Jira failures", func() {
			svc.getIssueFn = func(context.Context, string) (*model.Issue, error) {
				return nil, &issue_tracker.APIError{StatusCode: http.StatusUnauthorized, Message: "Unauthorized"}
			}

			w := serve(http.MethodGet, "/api/v1/issues/PROJ-1", nil)

			Expect(w.Code).To(Equal(http.StatusBadGateway))
			Expect(decode(w)["error"]).To(Equal("jira api: 401 - Unauthorized"))
		})
	})

	Describe("Generate", func() {
		It("passes the type hint and returns numbered cases", func() {
			var gotHint model.TestTypeHint
			svc.generateFn = func(_ context.Context, _ string, hint model.TestTypeHint) (*model.Issue, *model.GenerationResult, error) {
				gotHint = hint
				return loginIssue(), generated(validCase), nil
			}

			w := serve(http.MethodPost, "/api/v1/issues/PROJ-1/test-cases", map[string]string{"type": "api"})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotHint).To(Equal(model.HintApi))
			resp := decode(w)
			Expect(resp["run_id"]).To(Equal("42"))
			Expect(resp["degraded"]).To(BeFalse())
			cases := resp["cases"].([]any)
			Expect(cases).To(HaveLen(1))
			Expect(cases[0].(map[string]any)["number"]).To(Equal(float64(1)))
			Expect(cases[0].(map[string]any)["category"]).To(Equal("Api"))
		})

		It("accepts an empty body", func() {
			var gotHint model.TestTypeHint = "unset"
			svc.generateFn = func(_ context.Context, _ string, hint model.TestTypeHint) (*model.Issue, *model.GenerationResult, error) {
				gotHint = hint
				return loginIssue(), generated(), nil
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/issues/PROJ-1/test-cases", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotHint).To(Equal(model.HintNone))
			Expect(decode(w)["cases"]).To(BeEmpty())
		})

		It("rejects unknown types", func() {
			w := serve(http.MethodPost, "/api/v1/issues/PROJ-1/test-cases", map[string]string{"type": "mobile"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		DescribeTable("maps generation failures onto status codes",
			func(err error, status int) {
				svc.generateFn = func(context.Context, string, model.TestTypeHint) (*model.Issue, *model.GenerationResult, error) {
					return loginIssue(), nil, err
				}

				w := serve(http.MethodPost, "/api/v1/issues/PROJ-1/test-cases", nil)

				Expect(w.Code).To(Equal(status))
				Expect(decode(w)["error"]).NotTo(BeEmpty())
			},
			Entry("configuration missing", &testgen.Error{Stage: testgen.StageConfiguration, Kind: testgen.KindConfigurationMissing, Err: errors.New("CLI_API_KEY is not set")}, http.StatusInternalServerError),
			Entry("provider unavailable", &testgen.Error{Stage: testgen.StageAvailability, Kind: testgen.KindProviderUnavailable, Err: errors.New("gemini not found")}, http.StatusServiceUnavailable),
			Entry("timeout", &testgen.Error{Stage: testgen.StageInvocation, Kind: testgen.KindTimeout, Err: testgen.ErrTimeout}, http.StatusGatewayTimeout),
			Entry("process failed", &testgen.Error{Stage: testgen.StageInvocation, Kind: testgen.KindProcessFailed, Err: errors.New("exit 1")}, http.StatusBadGateway),
			Entry("unexpected", &testgen.Error{Stage: testgen.StageParsing, Kind: testgen.KindUnexpected, Err: errors.New("boom")}, http.StatusInternalServerError),
			Entry("jira not configured", issue_tracker.ErrNotConfigured, http.StatusInternalServerError),
			Entry("invalid key", fmt.Errorf("%w: %q", service.ErrInvalidIssueKey, "x"), http.StatusBadRequest),
		)

		It("shows the configuration message to the caller", func() {
			svc.generateFn = func(context.Context, string, model.TestTypeHint) (*model.Issue, *model.GenerationResult, error) {
				return loginIssue(), nil, &testgen.Error{Stage: testgen.StageConfiguration, Kind: testgen.KindConfigurationMissing, Err: errors.New("CLI_API_KEY is not set")}
			}

			w := serve(http.MethodPost, "/api/v1/issues/PROJ-1/test-cases", nil)

			Expect(decode(w)["error"]).To(ContainSubstring("CLI_API_KEY is not set"))
		})

		It("names the failed stage of an unexpected generation error", func() {
			svc.generateFn = func(context.Context, string, model.TestTypeHint) (*model.Issue, *model.GenerationResult, error) {
				return loginIssue(), nil, fmt.Errorf("generating: %w", &testgen.Error{Stage: testgen.StageParsing, Kind: testgen.KindUnexpected, Err: testgen.ErrUnexpected})
			}

			w := serve(http.MethodPost, "/api/v1/issues/PROJ-1/test-cases", nil)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(decode(w)["error"]).To(Equal("test case generation failed during parsing: unexpected failure"))
		})

		It("hides errors that carry no generation stage", func() {
			svc.generateFn = func(context.Context, string, model.TestTypeHint) (*model.Issue, *model.GenerationResult, error) {
				return nil, nil, errors.New("dial tcp 10.0.0.1:5432: secret-host")
			}

			w := serve(http.MethodPost, "/api/v1/issues/PROJ-1/test-cases", nil)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(decode(w)["error"]).To(Equal("internal server error"))
		})
	})

	Describe("PostComment", func() {
		It("posts the cases", func() {
			var got []model.TestCase
			svc.postCommentFn = func(_ context.Context, _ string, cases []model.TestCase) error {
				got = cases
				return nil
			}

			w := serve(http.MethodPost, "/api/v1/issues/proj-1/comments", map[string]any{
				"cases": []map[string]any{{
					"title":           validCase.Title,
					"category":        "Api",
					"description":     validCase.Description,
					"expected_result": validCase.ExpectedResult,
				}},
			})

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(got).To(ConsistOf(validCase))
			resp := decode(w)
			Expect(resp["issue_key"]).To(Equal("PROJ-1"))
			Expect(resp["posted"]).To(Equal(float64(1)))
		})

		It("rejects an empty selection", func() {
			w := serve(http.MethodPost, "/api/v1/issues/PROJ-1/comments", map[string]any{"cases": []any{}})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects an unknown category", func() {
			w := serve(http.MethodPost, "/api/v1/issues/PROJ-1/comments", map[string]any{
				"cases": []map[string]any{{"title": "t", "category": "Mobile", "description": "d", "expected_result": "r"}},
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 when the service refuses placeholders", func() {
			svc.postCommentFn = func(context.Context, string, []model.TestCase) error {
				return fmt.Errorf("%w: test case 1", service.ErrPlaceholderCase)
			}

			w := serve(http.MethodPost, "/api/v1/issues/PROJ-1/comments", map[string]any{
				"cases": []map[string]any{{"title": "Test Case 1", "category": "Error", "description": "d", "expected_result": "r", "placeholder": true}},
			})

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w)["error"]).To(ContainSubstring("placeholder"))
		})
	})

	Describe("ListProjectIssues", func() {
		It("lists issue briefs", func() {
			svc.listFn = func(_ context.Context, projectKey string) ([]model.Issue, error) {
				return []model.Issue{*loginIssue()}, nil
			}

			w := serve(http.MethodGet, "/api/v1/projects/proj/issues", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["project_key"]).To(Equal("PROJ"))
			Expect(resp["issues"]).To(HaveLen(1))
		})
	})

	Describe("ProviderStatus", func() {
		It("reports an available provider", func() {
			w := serve(http.MethodGet, "/api/v1/provider", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["provider"]).To(Equal("cli"))
			Expect(resp["available"]).To(BeTrue())
		})

		It("reports why the provider is unavailable", func() {
			svc.checkProviderFn = func(context.Context) (model.ProviderKind, error) {
				return model.ProviderCLI, &testgen.Error{Stage: testgen.StageAvailability, Kind: testgen.KindProviderUnavailable, Err: errors.New("gemini: executable file not found")}
			}

			w := serve(http.MethodGet, "/api/v1/provider", nil)

			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
			resp := decode(w)
			Expect(resp["available"]).To(BeFalse())
			Expect(resp["error"]).To(ContainSubstring("executable file not found"))
		})
	})

	Describe("IssuePage", func() {
		It("renders issue details and escaped test cases", func() {
			placeholder := model.TestCase{Title: "Test Case 2", Category: model.CategoryError, Description: "d", ExpectedResult: "r", Placeholder: true}
			svc.generateFn = func(context.Context, string, model.TestTypeHint) (*model.Issue, *model.GenerationResult, error) {
				result := generated(validCase, placeholder)
				result.Degraded = true
				return loginIssue(), result, nil
			}

			w := serve(http.MethodGet, "/issues/PROJ-1", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			body := w.Body.String()
			Expect(body).To(ContainSubstring("Proyecto: Project (PROJ)"))
			Expect(body).To(ContainSubstring("Test Case 1: Login &lt;ok&gt;"))
			Expect(body).To(ContainSubstring("(provisional)"))
			Expect(body).To(ContainSubstring(`class="warning"`))
		})

		It("renders the issue with an error box when generation fails", func() {
			svc.generateFn = func(context.Context, string, model.TestTypeHint) (*model.Issue, *model.GenerationResult, error) {
				return loginIssue(), nil, &testgen.Error{Stage: testgen.StageInvocation, Kind: testgen.KindTimeout, Err: testgen.ErrTimeout}
			}

			w := serve(http.MethodGet, "/issues/PROJ-1?type=Web", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			body := w.Body.String()
			Expect(body).To(ContainSubstring("PROJ-1"))
			Expect(body).To(ContainSubstring(`class="error-message"`))
			Expect(body).To(ContainSubstring(`<option value="Web" selected>`))
		})

		It("renders the empty message when nothing was generated", func() {
			svc.generateFn = func(context.Context, string, model.TestTypeHint) (*model.Issue, *model.GenerationResult, error) {
				return loginIssue(), generated(), nil
			}

			w := serve(http.MethodGet, "/issues/PROJ-1", nil)

			Expect(w.Body.String()).To(ContainSubstring("No se pudieron generar test cases para esta issue."))
		})

		It("uses the error status when the issue cannot be loaded", func() {
			svc.generateFn = func(context.Context, string, model.TestTypeHint) (*model.Issue, *model.GenerationResult, error) {
				return nil, nil, issue_tracker.ErrIssueNotFound
			}

			w := serve(http.MethodGet, "/issues/PROJ-9", nil)

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(w.Body.String()).To(ContainSubstring("issue not found"))
		})
	})
})
