package dto

import (
	"time"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

type UserResponse struct {
	DisplayName  string `json:"display_name"`
	EmailAddress string `json:"email_address,omitempty"`
}

type IssueResponse struct {
	ID          string        `json:"id"`
	Key         string        `json:"key"`
	Summary     string        `json:"summary"`
	IssueType   string        `json:"issue_type"`
	Status      string        `json:"status"`
	Priority    string        `json:"priority"`
	ProjectKey  string        `json:"project_key"`
	ProjectName string        `json:"project_name"`
	Description string        `json:"description,omitempty"`
	Reporter    UserResponse  `json:"reporter"`
	Assignee    *UserResponse `json:"assignee,omitempty"`
	Created     time.Time     `json:"created"`
	Updated     time.Time     `json:"updated"`
}

func ToIssueResponse(i *model.Issue) *IssueResponse {
	resp := &IssueResponse{
		ID:          i.ID,
		Key:         i.Key,
		Summary:     i.Summary,
		IssueType:   i.IssueType,
		Status:      i.Status.Name,
		Priority:    i.Priority,
		ProjectKey:  i.Project.Key,
		ProjectName: i.Project.Name,
		Description: i.Description,
		Reporter:    toUserResponse(i.Reporter),
		Created:     i.Created,
		Updated:     i.Updated,
	}
	if i.Assignee != nil {
		assignee := toUserResponse(*i.Assignee)
		resp.Assignee = &assignee
	}
	return resp
}

func toUserResponse(u model.User) UserResponse {
	return UserResponse{
		DisplayName:  u.DisplayName,
		EmailAddress: u.EmailAddress,
	}
}

type IssueBrief struct {
	Key       string `json:"key"`
	Summary   string `json:"summary"`
	IssueType string `json:"issue_type"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
}

type ProjectIssuesResponse struct {
	ProjectKey string       `json:"project_key"`
	Issues     []IssueBrief `json:"issues"`
}

func ToProjectIssuesResponse(projectKey string, issues []model.Issue) ProjectIssuesResponse {
	briefs := make([]IssueBrief, 0, len(issues))
	for _, i := range issues {
		briefs = append(briefs, IssueBrief{
			Key:       i.Key,
			Summary:   i.Summary,
			IssueType: i.IssueType,
			Status:    i.Status.Name,
			Priority:  i.Priority,
		})
	}
	return ProjectIssuesResponse{ProjectKey: projectKey, Issues: briefs}
}
