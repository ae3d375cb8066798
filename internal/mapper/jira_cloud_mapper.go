package mapper

import (
	"encoding/json"
	"strings"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

type JiraCloudMapper struct{}

func NewJiraCloudMapper() *JiraCloudMapper {
	return &JiraCloudMapper{}
}

// Map prefers the rendered HTML description and falls back to the ADF
// document.
func (m *JiraCloudMapper) Map(payload JiraIssue) model.Issue {
	issue := mapCommon(payload)

	switch {
	case payload.RenderedFields != nil && strings.TrimSpace(payload.RenderedFields.Description) != "":
		issue.Description = HTMLToText(payload.RenderedFields.Description)
	case len(payload.Fields.Description) > 0:
		issue.Description = strings.TrimSpace(m.adfDescription(payload.Fields.Description))
	}

	return issue
}

func (m *JiraCloudMapper) adfDescription(raw json.RawMessage) string {
	var doc ADFNode
	if err := json.Unmarshal(raw, &doc); err != nil {
		// some cloud sites still answer v3 with a plain string
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
		return ""
	}
	return ADFText(doc)
}
