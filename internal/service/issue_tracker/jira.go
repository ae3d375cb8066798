package issue_tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	jira "github.com/andygrunwald/go-jira"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/core/config"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/mapper"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/metrics"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

type jiraIssueTrackerService struct {
	client     *jira.Client
	baseURL    string
	apiPath    string
	serverType model.ServerType
	mapper     mapper.IssueMapper
	metrics    *metrics.Metrics
}

// NewJiraIssueTrackerService talks to Jira Cloud over REST API v3 with basic
// auth (email + API token), or to Jira Server over v2 with a bearer token.
func NewJiraIssueTrackerService(cfg config.JiraConfig, m *metrics.Metrics) (IssueTrackerService, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("%w: JIRA_URL is not set", ErrNotConfigured)
	}

	serverType := model.ServerTypeCloud
	apiPath := "rest/api/3"
	if cfg.IsServer() {
		serverType = model.ServerTypeServer
		apiPath = "rest/api/2"
	}

	httpClient := newHTTPClient(cfg)

	client, err := jira.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("creating jira client: %w", err)
	}

	return &jiraIssueTrackerService{
		client:     client,
		baseURL:    cfg.URL,
		apiPath:    apiPath,
		serverType: serverType,
		mapper:     mapper.NewIssueMapper(serverType),
		metrics:    m,
	}, nil
}

func newHTTPClient(cfg config.JiraConfig) *http.Client {
	var httpClient *http.Client
	switch {
	case cfg.IsServer() && cfg.APIToken != "":
		httpClient = (&jira.PATAuthTransport{Token: cfg.APIToken}).Client()
	case !cfg.IsServer() && cfg.Email != "" && cfg.APIToken != "":
		httpClient = (&jira.BasicAuthTransport{Username: cfg.Email, Password: cfg.APIToken}).Client()
	default:
		httpClient = &http.Client{}
	}
	httpClient.Timeout = cfg.Timeout
	return httpClient
}

func (s *jiraIssueTrackerService) FetchIssue(ctx context.Context, key string) (*model.Issue, error) {
	key = strings.TrimSpace(key)
	path := fmt.Sprintf("%s/issue/%s?expand=names,renderedFields", s.apiPath, url.PathEscape(key))

	var payload mapper.JiraIssue
	err := s.do(ctx, http.MethodGet, path, nil, &payload)
	s.metrics.IncJiraRequest("get_issue", err)
	if err != nil {
		return nil, fmt.Errorf("fetching issue %s: %w", key, err)
	}

	issue := s.mapper.Map(payload)
	slog.DebugContext(ctx, "fetched jira issue", "issue_key", issue.Key, "server_type", s.serverType)
	return &issue, nil
}

func (s *jiraIssueTrackerService) SearchProjectIssues(ctx context.Context, projectKey string) ([]model.Issue, error) {
	query := url.Values{}
	query.Set("jql", fmt.Sprintf("project = %q ORDER BY created DESC", strings.TrimSpace(projectKey)))
	query.Set("expand", "names,renderedFields")
	query.Set("maxResults", fmt.Sprint(DefaultSearchLimit))
	path := fmt.Sprintf("%s/search?%s", s.apiPath, query.Encode())

	var result mapper.JiraSearchResult
	err := s.do(ctx, http.MethodGet, path, nil, &result)
	s.metrics.IncJiraRequest("search", err)
	if err != nil {
		return nil, fmt.Errorf("searching issues of project %s: %w", projectKey, err)
	}

	slog.DebugContext(ctx, "searched jira issues", "project", projectKey, "count", len(result.Issues), "total", result.Total)
	return mapper.MapAll(s.mapper, result.Issues), nil
}

// AddComment posts body as plain text on server and as a one-paragraph ADF
// document on cloud.
func (s *jiraIssueTrackerService) AddComment(ctx context.Context, key string, body string) error {
	key = strings.TrimSpace(key)
	path := fmt.Sprintf("%s/issue/%s/comment", s.apiPath, url.PathEscape(key))

	var payload any
	if s.serverType == model.ServerTypeServer {
		payload = map[string]any{"body": body}
	} else {
		payload = map[string]any{"body": mapper.NewADFDocument(body)}
	}

	err := s.do(ctx, http.MethodPost, path, payload, nil)
	s.metrics.IncJiraRequest("add_comment", err)
	if err != nil {
		return fmt.Errorf("adding comment to %s: %w", key, err)
	}

	slog.InfoContext(ctx, "comment added to jira issue", "issue_key", key, "chars", len(body))
	return nil
}

// jiraErrorBody is the error envelope Jira returns on 4xx/5xx.
type jiraErrorBody struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

func (s *jiraIssueTrackerService) do(ctx context.Context, method, path string, body, v any) error {
	req, err := s.client.NewRequestWithContext(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("building jira request: %w", err)
	}

	resp, err := s.client.Do(req, v)
	if resp == nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		slog.WarnContext(ctx, "jira request failed without a response", "error", err)
		return fmt.Errorf("could not connect to jira at %s", s.baseURL)
	}
	// go-jira only closes the body when it decodes into v.
	defer drainAndClose(resp.Body)
	if err == nil {
		return nil
	}

	if resp.StatusCode < http.StatusBadRequest {
		return fmt.Errorf("decoding jira response: %w", err)
	}

	return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Response)}
}

// drainAndClose reads what is left of body so the connection can be reused.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}

// APIError is a non-2xx answer from Jira. A 404 matches ErrIssueNotFound.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira api: %d - %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrIssueNotFound && e.StatusCode == http.StatusNotFound
}

func errorMessage(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body jiraErrorBody
	if json.Unmarshal(data, &body) == nil {
		if len(body.ErrorMessages) > 0 && body.ErrorMessages[0] != "" {
			return body.ErrorMessages[0]
		}
		for field, msg := range body.Errors {
			return field + ": " + msg
		}
	}

	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
