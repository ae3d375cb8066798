package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/common/llm"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/tui"
)

func CheckCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the configured AI provider is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := deps.TestCases.CheckProvider(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSuccess(fmt.Sprintf("AI provider %q is available", kind)))
			return nil
		},
	}
}

func SchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of `generate --json` output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), llm.GenerateSchema[GenerateOutput]())
		},
	}
}
