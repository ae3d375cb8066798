package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/http/dto"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/service"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/tui"
)

func IssueCmd(deps Deps) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "issue ISSUE-KEY",
		Short: "Show a Jira issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issue, err := deps.TestCases.GetIssue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), dto.ToIssueResponse(issue))
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderIssue(issue))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the issue as JSON")
	return cmd
}

func IssuesCmd(deps Deps) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "issues PROJECT-KEY",
		Short: "List the latest issues of a Jira project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issues, err := deps.TestCases.ListProjectIssues(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				projectKey, _ := service.NormalizeProjectKey(args[0])
				return writeJSON(cmd.OutOrStdout(), dto.ToProjectIssuesResponse(projectKey, issues))
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderIssueList(issues))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the issues as JSON")
	return cmd
}
