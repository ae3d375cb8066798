package handler

import (
	"errors"
	"net/http"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/service"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/service/issue_tracker"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/testgen"
)

// errorStatus maps a service error onto the status code and the message
// shown to the caller. Generation errors are already free of credentials.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidIssueKey),
		errors.Is(err, service.ErrInvalidProjectKey),
		errors.Is(err, service.ErrNoTestCases),
		errors.Is(err, service.ErrPlaceholderCase),
		errors.Is(err, service.ErrInvalidTestCase):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, issue_tracker.ErrIssueNotFound):
		return http.StatusNotFound, "issue not found"
	case errors.Is(err, issue_tracker.ErrNotConfigured):
		return http.StatusInternalServerError, "jira is not configured: set JIRA_URL, JIRA_EMAIL and JIRA_API_TOKEN"
	case errors.Is(err, testgen.ErrConfigurationMissing):
		return http.StatusInternalServerError, err.Error()
	case errors.Is(err, testgen.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, testgen.ErrTimeout):
		return http.StatusGatewayTimeout, err.Error()
	case errors.Is(err, testgen.ErrProcessFailed):
		return http.StatusBadGateway, err.Error()
	}

	var apiErr *issue_tracker.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway, apiErr.Error()
	}
	var genErr *testgen.Error
	if errors.As(err, &genErr) {
		return http.StatusInternalServerError, genErr.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}
