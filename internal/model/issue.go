package model

import (
	"strings"
	"time"
)

// ServerType selects which Jira deployment flavour an issue was read from.
type ServerType string

const (
	ServerTypeCloud  ServerType = "cloud"
	ServerTypeServer ServerType = "server"
)

const (
	DefaultPriorityName = "No Priority"
	DefaultReporterName = "Unknown"
)

type Status struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type User struct {
	DisplayName  string `json:"display_name"`
	EmailAddress string `json:"email_address"`
}

// Issue is the normalized view of a Jira issue. It is read-only for the
// duration of a generation request.
type Issue struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Summary     string    `json:"summary"`
	IssueType   string    `json:"issue_type"`
	Status      Status    `json:"status"`
	Priority    string    `json:"priority"`
	Project     Project   `json:"project"`
	Description string    `json:"description,omitempty"`
	Reporter    User      `json:"reporter"`
	Assignee    *User     `json:"assignee,omitempty"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

func (i Issue) HasDescription() bool {
	return strings.TrimSpace(i.Description) != ""
}
