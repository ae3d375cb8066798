package model

import (
	"strings"
	"time"
)

// Category classifies a generated test case. Error doubles as the fallback
// when no classification can be determined.
type Category string

const (
	CategoryWeb   Category = "Web"
	CategoryApi   Category = "Api"
	CategoryError Category = "Error"
)

// Valid reports whether c is one of the recognized categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryWeb, CategoryApi, CategoryError:
		return true
	}
	return false
}

// TestTypeHint steers prompt and parser towards a domain. The zero value
// means no hint.
type TestTypeHint string

const (
	HintNone TestTypeHint = ""
	HintWeb  TestTypeHint = "Web"
	HintApi  TestTypeHint = "Api"
)

// ParseHint maps free text onto a hint. Unrecognized input yields HintNone.
func ParseHint(s string) TestTypeHint {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "web":
		return HintWeb
	case "api":
		return HintApi
	default:
		return HintNone
	}
}

// Category returns the category a hint substitutes for an unrecognized one.
func (h TestTypeHint) Category() (Category, bool) {
	switch h {
	case HintWeb:
		return CategoryWeb, true
	case HintApi:
		return CategoryApi, true
	}
	return "", false
}

type TestCase struct {
	Title          string   `json:"title" jsonschema:"required,minLength=1"`
	Category       Category `json:"category" jsonschema:"required,enum=Web,enum=Api,enum=Error"`
	Description    string   `json:"description" jsonschema:"required,minLength=1"`
	ExpectedResult string   `json:"expected_result" jsonschema:"required,minLength=1"`
	// Placeholder marks synthetic cases emitted when nothing could be parsed.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Valid reports whether the case has a title, description and expected result
// and one of the known categories.
func (tc TestCase) Valid() bool {
	return tc.Title != "" && tc.Description != "" && tc.ExpectedResult != "" && tc.Category.Valid()
}

// ProviderKind is the closed set of AI backends.
type ProviderKind string

const (
	ProviderChat ProviderKind = "chat"
	ProviderCLI  ProviderKind = "cli"
)

// GenerationResult is the outcome of one generation call.
type GenerationResult struct {
	RunID    int64         `json:"run_id,string"`
	IssueKey string        `json:"issue_key"`
	Provider ProviderKind  `json:"provider"`
	Cases    []TestCase    `json:"cases"`
	Degraded bool          `json:"degraded"`
	Duration time.Duration `json:"duration_ns"`
}

// Empty reports whether generation produced no usable cases.
func (r GenerationResult) Empty() bool {
	return len(r.Cases) == 0
}
