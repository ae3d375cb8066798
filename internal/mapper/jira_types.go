package mapper

import (
	"encoding/json"
	"time"
)

// JiraIssue is the subset of GET /rest/api/{2,3}/issue/{key} the generator
// reads. Description is raw because v3 returns an ADF document and v2 a
// string.
type JiraIssue struct {
	ID             string              `json:"id"`
	Key            string              `json:"key"`
	Fields         JiraFields          `json:"fields"`
	RenderedFields *JiraRenderedFields `json:"renderedFields,omitempty"`
}

type JiraFields struct {
	Summary     string          `json:"summary"`
	Status      JiraStatus      `json:"status"`
	Priority    *JiraNamed      `json:"priority,omitempty"`
	IssueType   JiraNamed       `json:"issuetype"`
	Reporter    *JiraUser       `json:"reporter,omitempty"`
	Assignee    *JiraUser       `json:"assignee,omitempty"`
	Created     string          `json:"created"`
	Updated     string          `json:"updated"`
	Project     JiraProject     `json:"project"`
	Description json.RawMessage `json:"description,omitempty"`
}

type JiraRenderedFields struct {
	Description string `json:"description,omitempty"`
}

type JiraStatus struct {
	Name           string    `json:"name"`
	StatusCategory JiraNamed `json:"statusCategory"`
}

type JiraNamed struct {
	Name string `json:"name"`
}

type JiraUser struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	Name         string `json:"name,omitempty"` // server only
}

type JiraProject struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// JiraSearchResult is the body of GET /rest/api/{2,3}/search.
type JiraSearchResult struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []JiraIssue `json:"issues"`
}

// ADFNode is one node of an Atlassian Document Format tree.
type ADFNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Version int       `json:"version,omitempty"`
	Content []ADFNode `json:"content,omitempty"`
}

// NewADFDocument wraps plain text in a single-paragraph ADF document, the
// shape Jira Cloud expects for comment bodies.
func NewADFDocument(text string) ADFNode {
	return ADFNode{
		Type:    "doc",
		Version: 1,
		Content: []ADFNode{{
			Type:    "paragraph",
			Content: []ADFNode{{Type: "text", Text: text}},
		}},
	}
}

var jiraTimeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
}

// parseTime accepts Jira's timestamp layouts; unparseable values map to the
// zero time.
func parseTime(s string) time.Time {
	for _, layout := range jiraTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
