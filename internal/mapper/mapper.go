// Package mapper converts Jira REST payloads into model.Issue.
package mapper

import (
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

// IssueMapper maps one Jira issue payload onto the normalized issue record.
type IssueMapper interface {
	Map(payload JiraIssue) model.Issue
}

// NewIssueMapper returns the mapper for a Jira deployment flavour. Anything
// other than server maps as cloud.
func NewIssueMapper(serverType model.ServerType) IssueMapper {
	if serverType == model.ServerTypeServer {
		return NewJiraServerMapper()
	}
	return NewJiraCloudMapper()
}

// MapAll maps a search page in order.
func MapAll(m IssueMapper, payloads []JiraIssue) []model.Issue {
	issues := make([]model.Issue, 0, len(payloads))
	for _, p := range payloads {
		issues = append(issues, m.Map(p))
	}
	return issues
}

// mapCommon fills every field shared by cloud and server payloads.
func mapCommon(payload JiraIssue) model.Issue {
	f := payload.Fields

	issue := model.Issue{
		ID:        payload.ID,
		Key:       payload.Key,
		Summary:   f.Summary,
		IssueType: f.IssueType.Name,
		Status: model.Status{
			Name:     f.Status.Name,
			Category: f.Status.StatusCategory.Name,
		},
		Priority: model.DefaultPriorityName,
		Project: model.Project{
			Key:  f.Project.Key,
			Name: f.Project.Name,
		},
		Reporter: model.User{DisplayName: model.DefaultReporterName},
		Created:  parseTime(f.Created),
		Updated:  parseTime(f.Updated),
	}

	if f.Priority != nil && f.Priority.Name != "" {
		issue.Priority = f.Priority.Name
	}
	if f.Reporter != nil {
		issue.Reporter = mapUser(*f.Reporter)
		if issue.Reporter.DisplayName == "" {
			issue.Reporter.DisplayName = model.DefaultReporterName
		}
	}
	if f.Assignee != nil {
		assignee := mapUser(*f.Assignee)
		issue.Assignee = &assignee
	}

	return issue
}

func mapUser(u JiraUser) model.User {
	name := u.DisplayName
	if name == "" {
		name = u.Name
	}
	return model.User{DisplayName: name, EmailAddress: u.EmailAddress}
}
