package mapper

import (
	"encoding/json"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

type JiraServerMapper struct{}

func NewJiraServerMapper() *JiraServerMapper {
	return &JiraServerMapper{}
}

// Map reads the description as the plain string API v2 returns.
func (m *JiraServerMapper) Map(payload JiraIssue) model.Issue {
	issue := mapCommon(payload)

	var description string
	if len(payload.Fields.Description) > 0 && json.Unmarshal(payload.Fields.Description, &description) == nil {
		issue.Description = description
	}

	return issue
}
