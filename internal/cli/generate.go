package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/http/dto"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/tui"
)

// GenerateOutput is what `generate --json` prints.
type GenerateOutput struct {
	Issue  *dto.IssueResponse            `json:"issue"`
	Result dto.GenerateTestCasesResponse `json:"result"`
}

type generateOptions struct {
	testType string
	asJSON   bool
	comment  bool
	selected string
}

func GenerateCmd(deps Deps) *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate ISSUE-KEY",
		Short: "Generate test cases for a Jira issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, deps, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.testType, "type", "t", "", "Focus the test cases on Web or Api")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the issue and test cases as JSON")
	cmd.Flags().BoolVar(&opts.comment, "comment", false, "Post the selected test cases as a Jira comment")
	cmd.Flags().StringVar(&opts.selected, "select", "", `Test cases to post, e.g. "1,3", "2-4" or "all"`)
	return cmd
}

func runGenerate(cmd *cobra.Command, deps Deps, key string, opts generateOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	hint := model.ParseHint(opts.testType)
	if opts.testType != "" && hint == model.HintNone {
		return fmt.Errorf("--type must be Web or Api, got %q", opts.testType)
	}

	issue, result, err := deps.TestCases.Generate(ctx, key, hint)
	if issue != nil && !opts.asJSON {
		fmt.Fprintln(out, tui.RenderIssue(issue))
	}
	if err != nil {
		return err
	}

	if opts.asJSON {
		if err := writeJSON(out, GenerateOutput{
			Issue:  dto.ToIssueResponse(issue),
			Result: dto.ToGenerateTestCasesResponse(result),
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, tui.RenderResult(result))
	}

	if !opts.comment {
		return nil
	}
	return postSelection(cmd, deps, issue.Key, result.Cases, opts.selected)
}

func postSelection(cmd *cobra.Command, deps Deps, key string, cases []model.TestCase, selection string) error {
	ctx := cmd.Context()
	out := cmd.ErrOrStderr()

	if len(cases) == 0 {
		return fmt.Errorf("nothing to post: no test cases were generated")
	}

	var chosen []model.TestCase
	var err error
	switch {
	case selection != "":
		chosen, err = tui.ParseSelection(selection, cases)
	case deps.IsTerminal != nil && deps.IsTerminal():
		chosen, err = tui.RunSelector(cases, deps.Stdin, out)
	default:
		return ErrSelectionRequired
	}
	if err != nil {
		return err
	}
	if len(chosen) == 0 {
		fmt.Fprintln(out, "No test cases selected; nothing posted.")
		return nil
	}

	if err := deps.TestCases.PostComment(ctx, key, chosen); err != nil {
		return err
	}
	fmt.Fprintln(out, tui.RenderSuccess(fmt.Sprintf("%d test cases posted to %s", len(chosen), key)))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
