// Package cli implements the testgen command line.
package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/service"
)

var ErrSelectionRequired = errors.New("--select is required when stdin is not a terminal")

// Deps are the collaborators the commands run against. Services is built by
// the caller so commands stay free of configuration concerns.
type Deps struct {
	TestCases service.TestCaseService
	Stdin     io.Reader
	// IsTerminal reports whether interactive selection can be offered.
	IsTerminal func() bool
}

func NewRoot(deps Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "testgen",
		Short:         "Generate QA test cases for Jira issues with AI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		GenerateCmd(deps),
		IssueCmd(deps),
		IssuesCmd(deps),
		CheckCmd(deps),
		SchemaCmd(),
	)
	return root
}
